// Package settlement provides cities, their progression levels, and the
// building catalog.
package settlement

import (
	"fmt"
	"sort"
	"strings"

	"github.com/talgya/hexisle/internal/errs"
	"github.com/talgya/hexisle/internal/world"
)

// CityID is a stable arena index for a city.
type CityID uint64

// CivID identifies a civilization. Opaque; compare by equality only.
type CivID string

// Level is a city's progression level.
type Level uint8

const (
	LevelOutpost    Level = iota // 0
	LevelColony                  // 1
	LevelTown                    // 2
	LevelMetropolis              // 3
	LevelCapital                 // 4
)

// MaxCityLevel is the top of the progression ladder.
const MaxCityLevel = LevelCapital

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	return l <= MaxCityLevel
}

func (l Level) String() string {
	switch l {
	case LevelOutpost:
		return "outpost"
	case LevelColony:
		return "colony"
	case LevelTown:
		return "town"
	case LevelMetropolis:
		return "metropolis"
	case LevelCapital:
		return "capital"
	}
	return fmt.Sprintf("level(%d)", uint8(l))
}

// ParseLevel maps a level name back to its Level.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for l := LevelOutpost; l <= MaxCityLevel; l++ {
		if l.String() == name {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown city level %q", s)
}

// MarshalText encodes the level by name.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid city level %d", uint8(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText decodes a level name.
func (l *Level) UnmarshalText(b []byte) error {
	v, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Limits holds the level-dependent building caps.
type Limits struct {
	MaxBuildings [MaxCityLevel + 1]int
}

// DefaultLimits returns the standard building slots per city level.
func DefaultLimits() Limits {
	return Limits{MaxBuildings: [MaxCityLevel + 1]int{1, 2, 4, 6, 8}}
}

// MaxBuildingsFor returns the building cap at level l.
func (lim Limits) MaxBuildingsFor(l Level) int {
	if !l.Valid() {
		return 0
	}
	return lim.MaxBuildings[l]
}

// City is a settlement occupying one vertex.
type City struct {
	ID        CityID                     `json:"id"`
	Name      string                     `json:"name"`
	Vertex    world.Vertex               `json:"vertex"`
	Level     Level                      `json:"level"`
	Owner     CivID                      `json:"owner"`
	Buildings map[BuildingType]*Building `json:"buildings"`
}

// NewCity creates a city with no buildings.
func NewCity(id CityID, v world.Vertex, owner CivID, level Level, name string) *City {
	return &City{
		ID:        id,
		Name:      name,
		Vertex:    v,
		Level:     level,
		Owner:     owner,
		Buildings: make(map[BuildingType]*Building),
	}
}

// CanUpgrade reports whether the city can climb another level.
func (c *City) CanUpgrade() error {
	if c.Level >= MaxCityLevel {
		return errs.Validationf(errs.ErrMaxLevel, "%s is already a %s", c.Name, c.Level)
	}
	return nil
}

// Upgrade raises the level by exactly one step.
func (c *City) Upgrade() error {
	if err := c.CanUpgrade(); err != nil {
		return err
	}
	c.Level++
	return nil
}

// Building returns the building of type t, or nil.
func (c *City) Building(t BuildingType) *Building {
	return c.Buildings[t]
}

// Has reports whether the city holds a building of type t.
func (c *City) Has(t BuildingType) bool {
	_, ok := c.Buildings[t]
	return ok
}

// BuildingCount returns the number of buildings.
func (c *City) BuildingCount() int {
	return len(c.Buildings)
}

// BuildingTypes returns the types present, in catalog order.
func (c *City) BuildingTypes() []BuildingType {
	out := make([]BuildingType, 0, len(c.Buildings))
	for t := range c.Buildings {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CanAddBuilding checks uniqueness and the level-dependent cap.
func (c *City) CanAddBuilding(t BuildingType, lim Limits) error {
	if !t.Valid() {
		return errs.Validationf(errs.ErrInvalidArgument, "building type %d", uint8(t))
	}
	if c.Has(t) {
		return errs.Validationf(errs.ErrDuplicateBuilding, "%s already has a %s", c.Name, t)
	}
	if max := lim.MaxBuildingsFor(c.Level); c.BuildingCount() >= max {
		return errs.Validationf(errs.ErrBuildingLimit, "%s (%s) holds %d of %d", c.Name, c.Level, c.BuildingCount(), max)
	}
	return nil
}

// AddBuilding places a new level 1 building.
func (c *City) AddBuilding(t BuildingType, lim Limits) (*Building, error) {
	if err := c.CanAddBuilding(t, lim); err != nil {
		return nil, err
	}
	b := NewBuilding(t)
	c.Buildings[t] = b
	return b, nil
}

// Count returns how many buildings of type t the city has (0 or 1).
func (c *City) Count(t BuildingType) int {
	if c.Has(t) {
		return 1
	}
	return 0
}

// Clone returns a deep copy.
func (c *City) Clone() *City {
	out := NewCity(c.ID, c.Vertex, c.Owner, c.Level, c.Name)
	for t, b := range c.Buildings {
		out.Buildings[t] = b.Clone()
	}
	return out
}
