package parser

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Locale maps month names and abbreviations of one language to months.
// A Locale is immutable once built and safe for concurrent use.
type Locale struct {
	name   string
	months map[string]time.Month
}

type localeFile struct {
	Name   string         `yaml:"name"`
	Months map[string]int `yaml:"months"`
}

var french = mustLoadLocale("fr")

// French returns the built-in French month table.
func French() *Locale {
	return french
}

// LoadLocale returns a built-in locale by name (e.g. "fr").
func LoadLocale(name string) (*Locale, error) {
	data, err := localeFS.ReadFile("locales/" + strings.ToLower(name) + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown locale %q: %w", name, err)
	}
	return ParseLocale(data)
}

// LoadLocaleFile reads a month table from a YAML file on disk.
func LoadLocaleFile(path string) (*Locale, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading locale file: %w", err)
	}
	return ParseLocale(data)
}

// ParseLocale builds a Locale from YAML of the form:
//
//	name: fr
//	months:
//	  janv: 1
//	  févr: 2
func ParseLocale(data []byte) (*Locale, error) {
	var lf localeFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parsing locale: %w", err)
	}
	if len(lf.Months) == 0 {
		return nil, fmt.Errorf("locale %q has no months", lf.Name)
	}

	months := make(map[string]time.Month, len(lf.Months))
	for name, num := range lf.Months {
		if num < 1 || num > 12 {
			return nil, fmt.Errorf("locale %q: month %q maps to %d", lf.Name, name, num)
		}
		months[monthKey(name)] = time.Month(num)
	}
	return &Locale{name: lf.Name, months: months}, nil
}

func mustLoadLocale(name string) *Locale {
	l, err := LoadLocale(name)
	if err != nil {
		panic(err)
	}
	return l
}

// Name returns the locale identifier.
func (l *Locale) Name() string {
	return l.name
}

// Month resolves a month name case-insensitively. A trailing "." is ignored.
func (l *Locale) Month(name string) (time.Month, bool) {
	m, ok := l.months[monthKey(name)]
	return m, ok
}

// monthKey folds case and composes accents so "AOÛT", "août" and a
// decomposed "août" share one key.
func monthKey(name string) string {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".")
	return cases.Fold().String(norm.NFC.String(name))
}
