package ledger

import (
	"strings"
)

// Catalog lists the accepted varieties, units and grades.
// It can be overridden from a YAML file, see config.LoadCatalog.
type Catalog struct {
	RiceTypes  []string `yaml:"riceTypes" json:"riceTypes"`
	PaddyTypes []string `yaml:"paddyTypes" json:"paddyTypes"`
	Units      []string `yaml:"units" json:"units"`
	Grades     []string `yaml:"grades" json:"grades"`
}

// DefaultCatalog returns the varieties milled at the reference site.
func DefaultCatalog() Catalog {
	return Catalog{
		RiceTypes: []string{
			"Basmati", "Jasmine", "Sona Masoori", "Ponni",
			"Brown Rice", "Red Rice", "Black Rice",
			"Nadu", "Samba", "Keeri Samba",
		},
		PaddyTypes: []string{
			"Raw Paddy", "Boiled Paddy", "Organic Paddy", "Hybrid Paddy",
			"Nadu", "Samba", "Keeri Samba",
		},
		Units:  []string{"kg", "ton", "quintal", "bags"},
		Grades: []string{"A+", "A", "B+", "B", "C"},
	}
}

// WithDefaults fills empty lists from DefaultCatalog.
func (c Catalog) WithDefaults() Catalog {
	def := DefaultCatalog()
	if len(c.RiceTypes) == 0 {
		c.RiceTypes = def.RiceTypes
	}
	if len(c.PaddyTypes) == 0 {
		c.PaddyTypes = def.PaddyTypes
	}
	if len(c.Units) == 0 {
		c.Units = def.Units
	}
	if len(c.Grades) == 0 {
		c.Grades = def.Grades
	}
	return c
}

// Types returns the varieties of a family.
func (c Catalog) Types(f Family) []string {
	if f == FamilyPaddy {
		return c.PaddyTypes
	}
	return c.RiceTypes
}

// CanonicalType matches t case-insensitively and returns the catalog spelling.
func (c Catalog) CanonicalType(f Family, t string) (string, bool) {
	return lookup(c.Types(f), t)
}

// HasUnit reports whether u is an accepted unit.
func (c Catalog) HasUnit(u string) bool {
	_, ok := lookup(c.Units, u)
	return ok
}

// HasGrade reports whether g is an accepted rice grade.
func (c Catalog) HasGrade(g string) bool {
	_, ok := lookup(c.Grades, g)
	return ok
}

func lookup(list []string, v string) (string, bool) {
	v = strings.TrimSpace(v)
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return item, true
		}
	}
	return "", false
}
