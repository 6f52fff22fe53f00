package settlement

import (
	"fmt"
	"strings"

	"github.com/talgya/hexisle/internal/errs"
	"github.com/talgya/hexisle/internal/world"
)

// BuildingType tags a building in the catalog.
type BuildingType uint8

const (
	BuildingLumberyard BuildingType = iota // Harvests adjacent forest
	BuildingBrickworks                     // Harvests adjacent clay
	BuildingFarm                           // Harvests adjacent fields
	BuildingRanch                          // Harvests adjacent pasture
	BuildingMine                           // Harvests adjacent mountains
	BuildingProspector                     // Level 2: one random resource per cycle
	BuildingStorehouse                     // Raises resource capacity
	BuildingLibrary                        // +1 civilization point
	BuildingTemple                         // +1 civilization point
	BuildingMarket                         // Grants trade access
	BuildingPort                           // Trade access and better rates; coastal only
	BuildingConstructionGuild              // Unlocks automation tiers
)

// NumBuildingTypes is the size of the catalog.
const NumBuildingTypes = 12

// Category groups building types by what they do.
type Category uint8

const (
	CategoryProducer Category = iota
	CategoryRandomProducer
	CategoryStorage
	CategoryCulture
	CategoryTrade
	CategoryGuild
)

// BuildingInfo is the static catalog entry for a building type.
type BuildingInfo struct {
	Name     string
	Category Category
	MaxLevel int
	Coastal  bool // Only buildable in cities touching water
}

var catalog = [NumBuildingTypes]BuildingInfo{
	BuildingLumberyard:        {"lumberyard", CategoryProducer, 5, false},
	BuildingBrickworks:        {"brickworks", CategoryProducer, 5, false},
	BuildingFarm:              {"farm", CategoryProducer, 5, false},
	BuildingRanch:             {"ranch", CategoryProducer, 5, false},
	BuildingMine:              {"mine", CategoryProducer, 5, false},
	BuildingProspector:        {"prospector", CategoryRandomProducer, 2, false},
	BuildingStorehouse:        {"storehouse", CategoryStorage, 1, false},
	BuildingLibrary:           {"library", CategoryCulture, 1, false},
	BuildingTemple:            {"temple", CategoryCulture, 1, false},
	BuildingMarket:            {"market", CategoryTrade, 1, false},
	BuildingPort:              {"port", CategoryTrade, 1, true},
	BuildingConstructionGuild: {"construction_guild", CategoryGuild, 3, false},
}

// AllBuildingTypes lists the catalog in ordinal order.
func AllBuildingTypes() []BuildingType {
	out := make([]BuildingType, NumBuildingTypes)
	for i := range out {
		out[i] = BuildingType(i)
	}
	return out
}

// Valid reports whether t is in the catalog.
func (t BuildingType) Valid() bool {
	return t < NumBuildingTypes
}

// Info returns the catalog entry for t.
func (t BuildingType) Info() BuildingInfo {
	if !t.Valid() {
		return BuildingInfo{Name: "unknown"}
	}
	return catalog[t]
}

// MaxLevel returns the highest level t can reach.
func (t BuildingType) MaxLevel() int {
	return t.Info().MaxLevel
}

// Harvests returns the resource an ordinary producer gathers from adjacent hexes.
func (t BuildingType) Harvests() (world.Resource, bool) {
	switch t {
	case BuildingLumberyard:
		return world.ResourceWood, true
	case BuildingBrickworks:
		return world.ResourceBrick, true
	case BuildingFarm:
		return world.ResourceWheat, true
	case BuildingRanch:
		return world.ResourceWool, true
	case BuildingMine:
		return world.ResourceOre, true
	}
	return 0, false
}

// ProducerFor returns the ordinary producer that harvests r.
func ProducerFor(r world.Resource) BuildingType {
	return BuildingType(r)
}

// IsProducer reports whether t ever produces resources on its own.
func (t BuildingType) IsProducer() bool {
	c := t.Info().Category
	return t.Valid() && (c == CategoryProducer || c == CategoryRandomProducer)
}

func (t BuildingType) String() string {
	return t.Info().Name
}

// ParseBuildingType maps a catalog name back to its type.
func ParseBuildingType(s string) (BuildingType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, t := range AllBuildingTypes() {
		if t.Info().Name == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown building %q", s)
}

// MarshalText encodes the type by catalog name.
func (t BuildingType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid building type %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a catalog name.
func (t *BuildingType) UnmarshalText(b []byte) error {
	v, err := ParseBuildingType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Building is one structure inside a city.
type Building struct {
	Type  BuildingType `json:"type"`
	Level int          `json:"level"`

	// LastProduction is the game time of the last completed production
	// cycle; nil until the scheduler first visits the building.
	LastProduction *float64 `json:"last_production,omitempty"`

	// Specialization is the resource a port favors; ports only.
	Specialization *world.Resource `json:"specialization,omitempty"`
}

// NewBuilding creates a level 1 building of type t.
func NewBuilding(t BuildingType) *Building {
	return &Building{Type: t, Level: 1}
}

// Upgrade raises the level by one, failing at the type's maximum.
func (b *Building) Upgrade() error {
	if b.Level >= b.Type.MaxLevel() {
		return errs.Validationf(errs.ErrMaxLevel, "%s level %d", b.Type, b.Level)
	}
	b.Level++
	return nil
}

// AtMaxLevel reports whether further upgrades are impossible.
func (b *Building) AtMaxLevel() bool {
	return b.Level >= b.Type.MaxLevel()
}

// Specialize fixes the port's favored resource. A specialization, once set,
// cannot be replaced.
func (b *Building) Specialize(r world.Resource) error {
	if b.Type != BuildingPort {
		return errs.Validationf(errs.ErrNotEligible, "%s cannot be specialized", b.Type)
	}
	if !r.Valid() {
		return errs.Validationf(errs.ErrInvalidArgument, "resource %d", uint8(r))
	}
	if b.Specialization != nil {
		return errs.Validationf(errs.ErrAlreadySpecialized, "port favors %s", *b.Specialization)
	}
	b.Specialization = &r
	return nil
}

// RandomOutput reports whether the building is currently the random-output
// variant (a prospector at level 2 or above).
func (b *Building) RandomOutput() bool {
	return b.Type == BuildingProspector && b.Level >= 2
}

// Clone returns a deep copy.
func (b *Building) Clone() *Building {
	out := &Building{Type: b.Type, Level: b.Level}
	if b.LastProduction != nil {
		ts := *b.LastProduction
		out.LastProduction = &ts
	}
	if b.Specialization != nil {
		r := *b.Specialization
		out.Specialization = &r
	}
	return out
}
