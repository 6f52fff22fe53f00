package world

import (
	"fmt"
	"strings"
)

// Terrain types for hex tiles.
type Terrain uint8

const (
	TerrainForest   Terrain = iota // Wood
	TerrainClay                    // Brick
	TerrainField                   // Wheat
	TerrainPasture                 // Wool
	TerrainMountain                // Ore
	TerrainDesert                  // Barren, yields nothing
	TerrainWater                   // Island boundary; no cities or harvest
)

// Resource enumerates the five harvestable resources.
type Resource uint8

const (
	ResourceWood Resource = iota
	ResourceBrick
	ResourceWheat
	ResourceWool
	ResourceOre
)

// NumResources is the count of harvestable resource types.
const NumResources = 5

// AllResources lists every harvestable resource in ordinal order.
var AllResources = [NumResources]Resource{
	ResourceWood, ResourceBrick, ResourceWheat, ResourceWool, ResourceOre,
}

// AllTerrains lists every terrain in ordinal order.
var AllTerrains = [...]Terrain{
	TerrainForest, TerrainClay, TerrainField, TerrainPasture,
	TerrainMountain, TerrainDesert, TerrainWater,
}

// Resource returns the resource a terrain yields and whether it yields one at all.
func (t Terrain) Resource() (Resource, bool) {
	switch t {
	case TerrainForest:
		return ResourceWood, true
	case TerrainClay:
		return ResourceBrick, true
	case TerrainField:
		return ResourceWheat, true
	case TerrainPasture:
		return ResourceWool, true
	case TerrainMountain:
		return ResourceOre, true
	}
	return 0, false
}

// Harvestable reports whether the terrain yields a resource.
func (t Terrain) Harvestable() bool {
	_, ok := t.Resource()
	return ok
}

// IsBoundary reports whether the terrain is the island's water ring.
func (t Terrain) IsBoundary() bool {
	return t == TerrainWater
}

// Valid reports whether t is a known terrain.
func (t Terrain) Valid() bool {
	return t <= TerrainWater
}

// TerrainFor returns the terrain that yields r.
func TerrainFor(r Resource) Terrain {
	return Terrain(r)
}

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainForest:
		return "Forest"
	case TerrainClay:
		return "Clay"
	case TerrainField:
		return "Field"
	case TerrainPasture:
		return "Pasture"
	case TerrainMountain:
		return "Mountain"
	case TerrainDesert:
		return "Desert"
	case TerrainWater:
		return "Water"
	default:
		return "Unknown"
	}
}

func (t Terrain) String() string { return TerrainName(t) }

// Valid reports whether r is one of the five harvestable resources.
func (r Resource) Valid() bool {
	return r < NumResources
}

func (r Resource) String() string {
	switch r {
	case ResourceWood:
		return "wood"
	case ResourceBrick:
		return "brick"
	case ResourceWheat:
		return "wheat"
	case ResourceWool:
		return "wool"
	case ResourceOre:
		return "ore"
	}
	return fmt.Sprintf("resource(%d)", uint8(r))
}

// ParseResource maps a name like "wood" back to its Resource.
func ParseResource(s string) (Resource, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, r := range AllResources {
		if r.String() == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown resource %q", s)
}

// MarshalText encodes the resource by name so it can key JSON objects.
func (r Resource) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid resource %d", uint8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a resource name.
func (r *Resource) UnmarshalText(b []byte) error {
	v, err := ParseResource(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
