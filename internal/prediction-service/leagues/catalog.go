package leagues

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSeasonStartMonth vale para ligas europeias (temporada ago-mai)
const DefaultSeasonStartMonth = time.July

// League é uma liga do catálogo.
// SeasonStartMonth é o mês em que a temporada vira; 1 para ligas de ano civil.
type League struct {
	ID               int    `yaml:"id" json:"id"`
	Name             string `yaml:"name" json:"name"`
	Country          string `yaml:"country" json:"country"`
	Default          bool   `yaml:"default" json:"default"`
	SeasonStartMonth int    `yaml:"season_start_month" json:"seasonStartMonth"`
}

// Catalog indexa as ligas por id
type Catalog struct {
	list []League
	byID map[int]League
}

type catalogFile struct {
	Leagues []League `yaml:"leagues"`
}

// Load lê o catálogo YAML do disco
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read leagues catalog: %w", err)
	}
	return Parse(data)
}

// Parse valida ids positivos e únicos, mês de virada e ao menos uma liga default
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse leagues catalog: %w", err)
	}

	c := &Catalog{byID: make(map[int]League, len(f.Leagues))}
	for _, l := range f.Leagues {
		if l.ID <= 0 {
			return nil, fmt.Errorf("league %q: id must be positive", l.Name)
		}
		if _, dup := c.byID[l.ID]; dup {
			return nil, fmt.Errorf("league %d: duplicated id", l.ID)
		}
		if l.SeasonStartMonth == 0 {
			l.SeasonStartMonth = int(DefaultSeasonStartMonth)
		}
		if l.SeasonStartMonth < 1 || l.SeasonStartMonth > 12 {
			return nil, fmt.Errorf("league %d: season_start_month must be 1..12", l.ID)
		}
		c.byID[l.ID] = l
		c.list = append(c.list, l)
	}
	sort.Slice(c.list, func(i, j int) bool { return c.list[i].ID < c.list[j].ID })
	if len(c.Defaults()) == 0 {
		return nil, fmt.Errorf("leagues catalog: at least one league must be default")
	}
	return c, nil
}

func (c *Catalog) All() []League { return c.list }

func (c *Catalog) Get(id int) (League, bool) {
	l, ok := c.byID[id]
	return l, ok
}

// Defaults retorna os ids marcados como default, em ordem crescente
func (c *Catalog) Defaults() []int {
	var ids []int
	for _, l := range c.list {
		if l.Default {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

// Name devolve o nome da liga ou "league <id>" quando fora do catálogo
func (c *Catalog) Name(id int) string {
	if l, ok := c.byID[id]; ok {
		return l.Name
	}
	return fmt.Sprintf("league %d", id)
}

// Season devolve o ano de início da temporada em curso na data.
// Ex.: Premier League em 2026-03-01 é a temporada 2025.
func (c *Catalog) Season(id int, date time.Time) int {
	start := int(DefaultSeasonStartMonth)
	if l, ok := c.byID[id]; ok {
		start = l.SeasonStartMonth
	}
	if int(date.Month()) < start {
		return date.Year() - 1
	}
	return date.Year()
}
