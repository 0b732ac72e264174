package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

// ErrInvalidCatalog wraps every validation failure found while loading.
var ErrInvalidCatalog = errors.New("invalid crop catalog")

type fileFormat struct {
	Varieties []varietyRecord `yaml:"varieties"`
}

type varietyRecord struct {
	ID              string         `yaml:"id"`
	Name            string         `yaml:"name"`
	Category        string         `yaml:"category"`
	GrowDays        int            `yaml:"grow_days"`
	HarvestWindow   int            `yaml:"harvest_window"`
	GerminationDays int            `yaml:"germination_days"`
	BlackoutDays    int            `yaml:"blackout_days"`
	SoakHours       int            `yaml:"soak_hours"`
	YieldPerUnit    float64        `yaml:"yield_per_unit"`
	YieldUnit       string         `yaml:"yield_unit"`
	SeedCost        string         `yaml:"seed_cost"`
	WholesalePrice  string         `yaml:"wholesale_price"`
	PlantingDays    []string       `yaml:"planting_days"`
	StageDays       map[string]int `yaml:"stage_days"`
	Aliases         []string       `yaml:"aliases"`
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalogYAML)
}

// MustDefault is Default for package-level wiring and tests; the embedded table
// is validated by the catalog tests.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadFile reads a YAML catalog from path. An empty path yields the default catalog.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if len(f.Varieties) == 0 {
		return nil, fmt.Errorf("%w: no varieties defined", ErrInvalidCatalog)
	}

	c := &Catalog{
		varieties: make(map[string]*domain.Variety, len(f.Varieties)),
		byName:    make(map[string]string),
	}
	for i, rec := range f.Varieties {
		v, err := rec.toVariety()
		if err != nil {
			return nil, fmt.Errorf("%w: variety #%d (%s): %v", ErrInvalidCatalog, i+1, rec.ID, err)
		}
		if _, dup := c.varieties[v.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate variety id %q", ErrInvalidCatalog, v.ID)
		}
		c.varieties[v.ID] = v
		c.order = append(c.order, v.ID)
	}

	for _, id := range c.order {
		v := c.varieties[id]
		names := append([]string{v.ID, v.Name}, v.Aliases...)
		for _, n := range names {
			key := normalizeName(n)
			if key == "" {
				continue
			}
			if owner, taken := c.byName[key]; taken && owner != v.ID {
				return nil, fmt.Errorf("%w: name %q used by both %s and %s", ErrInvalidCatalog, n, owner, v.ID)
			}
			c.byName[key] = v.ID
		}
	}
	return c, nil
}

func (r varietyRecord) toVariety() (*domain.Variety, error) {
	if r.ID == "" {
		return nil, errors.New("id is required")
	}
	cat := domain.CropCategory(r.Category)
	def, ok := categoryDefs[cat]
	if !ok {
		return nil, fmt.Errorf("unknown category %q", r.Category)
	}
	if r.GrowDays <= 0 {
		return nil, fmt.Errorf("grow_days must be positive, got %d", r.GrowDays)
	}
	if r.HarvestWindow < 0 || r.GerminationDays < 0 || r.BlackoutDays < 0 || r.SoakHours < 0 {
		return nil, errors.New("day and hour fields must not be negative")
	}
	if r.YieldPerUnit <= 0 || math.IsNaN(r.YieldPerUnit) || math.IsInf(r.YieldPerUnit, 0) {
		return nil, fmt.Errorf("yield_per_unit must be positive, got %v", r.YieldPerUnit)
	}
	if r.BlackoutDays > 0 && cat != domain.CategoryMicrogreens {
		return nil, errors.New("blackout_days only applies to microgreens")
	}
	if r.GerminationDays+r.BlackoutDays > r.GrowDays {
		return nil, errors.New("germination_days + blackout_days exceeds grow_days")
	}

	seedCost, err := parseMoney(r.SeedCost)
	if err != nil {
		return nil, fmt.Errorf("seed_cost: %w", err)
	}
	price, err := parseMoney(r.WholesalePrice)
	if err != nil {
		return nil, fmt.Errorf("wholesale_price: %w", err)
	}

	days, err := parseWeekdays(r.PlantingDays)
	if err != nil {
		return nil, err
	}

	var stageDays map[domain.StageID]int
	if len(r.StageDays) > 0 {
		stageDays = make(map[domain.StageID]int, len(r.StageDays))
		for k, d := range r.StageDays {
			id := domain.StageID(k)
			if idx := def.StageIndex(id); idx < 0 || id == domain.StageHarvested {
				return nil, fmt.Errorf("stage_days: %q is not a pre-harvest stage of %s", k, cat)
			}
			if d < 0 {
				return nil, fmt.Errorf("stage_days: %q must not be negative", k)
			}
			stageDays[id] = d
		}
	}

	return &domain.Variety{
		ID:              r.ID,
		Name:            domain.CoalesceStr(r.Name, r.ID),
		Category:        cat,
		GrowDays:        r.GrowDays,
		HarvestWindow:   r.HarvestWindow,
		GerminationDays: r.GerminationDays,
		BlackoutDays:    r.BlackoutDays,
		SoakHours:       r.SoakHours,
		YieldPerUnit:    r.YieldPerUnit,
		YieldUnit:       domain.CoalesceStr(r.YieldUnit, "oz"),
		SeedCost:        seedCost,
		WholesalePrice:  price,
		PlantingDays:    days,
		StageDays:       stageDays,
		Aliases:         r.Aliases,
	}, nil
}

func parseMoney(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("must not be negative, got %s", d)
	}
	return d, nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

func parseWeekdays(names []string) ([]time.Weekday, error) {
	var out []time.Weekday
	for _, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if len(key) > 3 {
			key = key[:3]
		}
		wd, ok := weekdayNames[key]
		if !ok {
			return nil, fmt.Errorf("planting_days: unknown weekday %q", n)
		}
		out = append(out, wd)
	}
	return out, nil
}
