// Package config loads gameplay tuning (a YAML file) and host settings
// (environment variables, optionally from a .env file).
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/hexisle/internal/economy"
	"github.com/talgya/hexisle/internal/settlement"
)

// Meta-upgrade keys.
const (
	UpgradeHarvestYield = "harvest_yield"
	UpgradeStorage      = "storage"
	UpgradeHeadStart    = "head_start"
)

// UpgradeKeys lists the meta-upgrades in display order.
var UpgradeKeys = []string{UpgradeHarvestYield, UpgradeStorage, UpgradeHeadStart}

// Tuning holds every gameplay constant. Times are in game seconds.
type Tuning struct {
	Island     IslandTuning     `yaml:"island"`
	Production ProductionTuning `yaml:"production"`
	Harvest    HarvestTuning    `yaml:"harvest"`
	Capacity   CapacityTuning   `yaml:"capacity"`
	Trade      TradeTuning      `yaml:"trade"`
	Prestige   PrestigeTuning   `yaml:"prestige"`
	Automation AutomationTuning `yaml:"automation"`

	MaxBuildings []int                    `yaml:"max_buildings"` // By city level
	Costs        CostTuning               `yaml:"costs"`
	Upgrades     map[string]UpgradeTuning `yaml:"upgrades"`
}

type IslandTuning struct {
	Radius          int     `yaml:"radius"`
	DiscoveryRadius int     `yaml:"discovery_radius"`
	DesertShare     float64 `yaml:"desert_share"`
}

type ProductionTuning struct {
	BaseInterval    float64 `yaml:"base_interval"`
	ReductionFactor float64 `yaml:"reduction_factor"` // Interval multiplier per level above 1
	RandomInterval  float64 `yaml:"random_interval"`  // Prospector cycle
}

type HarvestTuning struct {
	Cooldown float64 `yaml:"cooldown"`
	BaseGain int     `yaml:"base_gain"`
}

type CapacityTuning struct {
	Base          int `yaml:"base"`
	PerCity       int `yaml:"per_city"`
	PerCityLevel  int `yaml:"per_city_level"`
	PerStorehouse int `yaml:"per_storehouse"`
}

type TradeTuning struct {
	DefaultRate         int `yaml:"default_rate"`
	GenericPortRate     int `yaml:"generic_port_rate"`
	SpecializedPortRate int `yaml:"specialized_port_rate"`
}

type PrestigeTuning struct {
	Threshold  int     `yaml:"threshold"`
	Multiplier float64 `yaml:"multiplier"`
}

type AutomationTuning struct {
	Interval float64 `yaml:"interval"`
}

// CostTuning holds resource costs keyed by resource name.
type CostTuning struct {
	Road          map[string]int            `yaml:"road"`
	Outpost       map[string]int            `yaml:"outpost"`
	CityUpgrade   []map[string]int          `yaml:"city_upgrade"` // Indexed by current level
	Buildings     map[string]map[string]int `yaml:"buildings"`    // Level 1 cost by building name
	UpgradeGrowth float64                   `yaml:"upgrade_growth"`
}

// UpgradeTuning describes one meta-upgrade bought with prestige.
// The next level costs floor(BaseCost × Growth^level); each level adds Step.
type UpgradeTuning struct {
	BaseCost int     `yaml:"base_cost"`
	Growth   float64 `yaml:"growth"`
	MaxLevel int     `yaml:"max_level"`
	Step     float64 `yaml:"step"`
}

// Default returns the built-in tuning.
func Default() Tuning {
	return Tuning{
		Island: IslandTuning{Radius: 3, DiscoveryRadius: 1, DesertShare: 0.06},
		Production: ProductionTuning{
			BaseInterval:    10,
			ReductionFactor: 0.8,
			RandomInterval:  30,
		},
		Harvest:    HarvestTuning{Cooldown: 5, BaseGain: 1},
		Capacity:   CapacityTuning{Base: 50, PerCity: 10, PerCityLevel: 10, PerStorehouse: 50},
		Trade:      TradeTuning{DefaultRate: 4, GenericPortRate: 3, SpecializedPortRate: 2},
		Prestige:   PrestigeTuning{Threshold: 20, Multiplier: 0.5},
		Automation: AutomationTuning{Interval: 5},

		MaxBuildings: []int{1, 2, 4, 6, 8},
		Costs: CostTuning{
			Road:    map[string]int{"wood": 1, "brick": 1},
			Outpost: map[string]int{"wood": 1, "brick": 1, "wheat": 1, "wool": 1},
			CityUpgrade: []map[string]int{
				{"wheat": 2, "wool": 1, "ore": 1},
				{"wheat": 2, "ore": 3},
				{"wheat": 4, "brick": 3, "ore": 5},
				{"wheat": 6, "brick": 5, "wool": 4, "ore": 8},
			},
			Buildings: map[string]map[string]int{
				"lumberyard":         {"wood": 2, "brick": 1},
				"brickworks":         {"wood": 1, "brick": 2},
				"farm":               {"wood": 2, "wheat": 1},
				"ranch":              {"wood": 1, "wheat": 1, "wool": 1},
				"mine":               {"wood": 2, "brick": 1, "wheat": 1},
				"prospector":         {"wood": 2, "ore": 2},
				"storehouse":         {"wood": 3, "brick": 2},
				"library":            {"brick": 2, "wool": 2, "ore": 1},
				"temple":             {"brick": 3, "ore": 2},
				"market":             {"wood": 2, "wheat": 2, "wool": 2},
				"port":               {"wood": 4, "brick": 2},
				"construction_guild": {"wood": 3, "brick": 3, "ore": 2},
			},
			UpgradeGrowth: 1.5,
		},
		Upgrades: map[string]UpgradeTuning{
			UpgradeHarvestYield: {BaseCost: 5, Growth: 2, MaxLevel: 5, Step: 0.5},
			UpgradeStorage:      {BaseCost: 3, Growth: 2, MaxLevel: 10, Step: 25},
			UpgradeHeadStart:    {BaseCost: 4, Growth: 2, MaxLevel: 5, Step: 2},
		},
	}
}

// Load reads a tuning file. Keys missing from the file keep their defaults.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Validate checks ranges and that every cost names real resources and buildings.
func (t Tuning) Validate() error {
	_, err := t.Compile()
	return err
}

func (t Tuning) checkScalars() error {
	switch {
	case t.Island.Radius < 1:
		return fmt.Errorf("island.radius must be at least 1")
	case t.Island.DiscoveryRadius < 0:
		return fmt.Errorf("island.discovery_radius must not be negative")
	case t.Island.DesertShare < 0 || t.Island.DesertShare >= 1:
		return fmt.Errorf("island.desert_share must be in [0, 1)")
	case t.Production.BaseInterval <= 0:
		return fmt.Errorf("production.base_interval must be positive")
	case t.Production.ReductionFactor <= 0 || t.Production.ReductionFactor > 1:
		return fmt.Errorf("production.reduction_factor must be in (0, 1]")
	case t.Production.RandomInterval <= 0:
		return fmt.Errorf("production.random_interval must be positive")
	case t.Harvest.Cooldown < 0:
		return fmt.Errorf("harvest.cooldown must not be negative")
	case t.Harvest.BaseGain < 1:
		return fmt.Errorf("harvest.base_gain must be at least 1")
	case t.Capacity.Base < 1:
		return fmt.Errorf("capacity.base must be at least 1")
	case t.Prestige.Threshold < 0:
		return fmt.Errorf("prestige.threshold must not be negative")
	case t.Prestige.Multiplier <= 0:
		return fmt.Errorf("prestige.multiplier must be positive")
	case t.Automation.Interval < 0:
		return fmt.Errorf("automation.interval must not be negative")
	case t.Costs.UpgradeGrowth < 1:
		return fmt.Errorf("costs.upgrade_growth must be at least 1")
	}

	for name, rate := range map[string]int{
		"default_rate":          t.Trade.DefaultRate,
		"generic_port_rate":     t.Trade.GenericPortRate,
		"specialized_port_rate": t.Trade.SpecializedPortRate,
	} {
		if !economy.ValidRate(rate) {
			return fmt.Errorf("trade.%s %d must divide 60", name, rate)
		}
	}

	if len(t.MaxBuildings) != int(settlement.MaxCityLevel)+1 {
		return fmt.Errorf("max_buildings needs %d entries, got %d", settlement.MaxCityLevel+1, len(t.MaxBuildings))
	}
	for i := 1; i < len(t.MaxBuildings); i++ {
		if t.MaxBuildings[i] < t.MaxBuildings[i-1] {
			return fmt.Errorf("max_buildings must not shrink as cities grow")
		}
	}
	if t.MaxBuildings[0] < 1 {
		return fmt.Errorf("max_buildings[0] must be at least 1")
	}

	for _, key := range UpgradeKeys {
		u, ok := t.Upgrades[key]
		if !ok {
			return fmt.Errorf("upgrades.%s missing", key)
		}
		if u.BaseCost < 1 || u.Growth < 1 || u.MaxLevel < 1 || u.Step <= 0 {
			return fmt.Errorf("upgrades.%s: base_cost, growth and max_level must be at least 1 and step positive", key)
		}
	}
	for key := range t.Upgrades {
		if !knownUpgrade(key) {
			return fmt.Errorf("unknown upgrade %q", key)
		}
	}
	return nil
}

func knownUpgrade(key string) bool {
	for _, k := range UpgradeKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Rules is validated tuning with costs resolved to typed values.
type Rules struct {
	Tuning

	RoadCost        economy.Cost
	OutpostCost     economy.Cost
	CityUpgradeCost [settlement.MaxCityLevel]economy.Cost
	BuildingCost    [settlement.NumBuildingTypes]economy.Cost
	Limits          settlement.Limits
	RatePolicy      economy.RatePolicy
}

// Compile validates t and resolves its costs.
func (t Tuning) Compile() (*Rules, error) {
	if err := t.checkScalars(); err != nil {
		return nil, err
	}
	r := &Rules{
		Tuning: t,
		RatePolicy: economy.RatePolicy{
			Default:     t.Trade.DefaultRate,
			GenericPort: t.Trade.GenericPortRate,
			Specialized: t.Trade.SpecializedPortRate,
		},
	}
	copy(r.Limits.MaxBuildings[:], t.MaxBuildings)

	var err error
	if r.RoadCost, err = economy.ParseCost(t.Costs.Road); err != nil {
		return nil, fmt.Errorf("costs.road: %w", err)
	}
	if r.OutpostCost, err = economy.ParseCost(t.Costs.Outpost); err != nil {
		return nil, fmt.Errorf("costs.outpost: %w", err)
	}

	if len(t.Costs.CityUpgrade) != int(settlement.MaxCityLevel) {
		return nil, fmt.Errorf("costs.city_upgrade needs %d entries, got %d", settlement.MaxCityLevel, len(t.Costs.CityUpgrade))
	}
	for i, raw := range t.Costs.CityUpgrade {
		if r.CityUpgradeCost[i], err = economy.ParseCost(raw); err != nil {
			return nil, fmt.Errorf("costs.city_upgrade[%d]: %w", i, err)
		}
	}

	for name, raw := range t.Costs.Buildings {
		bt, perr := settlement.ParseBuildingType(name)
		if perr != nil {
			return nil, fmt.Errorf("costs.buildings: %w", perr)
		}
		if r.BuildingCost[bt], err = economy.ParseCost(raw); err != nil {
			return nil, fmt.Errorf("costs.buildings.%s: %w", name, err)
		}
	}
	for _, bt := range settlement.AllBuildingTypes() {
		if r.BuildingCost[bt] == nil {
			return nil, fmt.Errorf("costs.buildings.%s missing", bt)
		}
	}
	return r, nil
}

// MustCompile is Compile for tuning known to be valid, such as Default().
func (t Tuning) MustCompile() *Rules {
	r, err := t.Compile()
	if err != nil {
		panic(err)
	}
	return r
}

// ProductionInterval returns the cycle length of an ordinary producer at level.
func (r *Rules) ProductionInterval(level int) float64 {
	if level < 1 {
		level = 1
	}
	return r.Production.BaseInterval * math.Pow(r.Production.ReductionFactor, float64(level-1))
}

// UpgradeBuildingCost returns the cost of raising a building from level.
func (r *Rules) UpgradeBuildingCost(t settlement.BuildingType, level int) economy.Cost {
	return r.BuildingCost[t].Scale(math.Pow(r.Costs.UpgradeGrowth, float64(level)))
}

// CityCost returns the cost of upgrading a city from level.
func (r *Rules) CityCost(level settlement.Level) (economy.Cost, bool) {
	if level >= settlement.MaxCityLevel {
		return nil, false
	}
	return r.CityUpgradeCost[level], true
}

// MetaUpgradeCost returns the prestige cost of the next level of key
// and false when the upgrade is unknown or maxed.
func (r *Rules) MetaUpgradeCost(key string, level int) (int, bool) {
	u, ok := r.Upgrades[key]
	if !ok || level >= u.MaxLevel {
		return 0, false
	}
	return int(math.Floor(float64(u.BaseCost) * math.Pow(u.Growth, float64(level)))), true
}

// MetaUpgradeBonus returns the total bonus level levels of key grant.
func (r *Rules) MetaUpgradeBonus(key string, level int) float64 {
	return r.Upgrades[key].Step * float64(level)
}
