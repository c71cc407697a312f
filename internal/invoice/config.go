// SPDX-License-Identifier: Apache-2.0

package invoice

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/goccy/go-yaml"
)

// YAML overlay for custom dialects. Overlays are read once at startup and
// registered ahead of the built-in generic fallback; a bad overlay is a
// startup error, never a per-file one.

type dialectFile struct {
	Dialects []dialectConfig `yaml:"dialects"`
}

type dialectConfig struct {
	Name        string              `yaml:"name"`
	Namespaces  []string            `yaml:"namespaces"`
	RootTags    []string            `yaml:"root_tags"`
	Prefixes    map[string]string   `yaml:"prefixes"`
	DateFormats []string            `yaml:"date_formats"`
	Number      numberConfig        `yaml:"number"`
	Fields      map[string][]string `yaml:"fields"`
	Lines       lineConfig          `yaml:"line_items"`
	Defaults    map[string]string   `yaml:"defaults"`
}

type numberConfig struct {
	Decimal  string `yaml:"decimal"`
	Grouping string `yaml:"grouping"`
}

type lineConfig struct {
	Path        string   `yaml:"path"`
	Description []string `yaml:"description"`
	Quantity    []string `yaml:"quantity"`
	UnitPrice   []string `yaml:"unit_price"`
	LineTotal   []string `yaml:"line_total"`
}

// LoadDialects reads custom dialect definitions from a YAML file.
func LoadDialects(path string) ([]Dialect, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dialect file: %w", err)
	}
	var file dialectFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing dialect file %s: %w", path, err)
	}

	dialects := make([]Dialect, 0, len(file.Dialects))
	for _, dc := range file.Dialects {
		d, err := dc.toDialect()
		if err != nil {
			return nil, fmt.Errorf("dialect file %s: %w", path, err)
		}
		dialects = append(dialects, d)
	}
	return dialects, nil
}

// LoadRegistry builds a registry with the file's dialects taking priority
// over the built-in table. Path expressions and field names are validated
// here, at construction.
func LoadRegistry(path string) (*Registry, error) {
	custom, err := LoadDialects(path)
	if err != nil {
		return nil, err
	}
	return NewRegistry(append(custom, builtinDialects()...)...)
}

func (dc dialectConfig) toDialect() (Dialect, error) {
	if dc.Name == "" {
		return Dialect{}, fmt.Errorf("dialect entry has no name")
	}
	if len(dc.Namespaces) == 0 && len(dc.RootTags) == 0 {
		return Dialect{}, fmt.Errorf("dialect %q declares neither namespaces nor root_tags", dc.Name)
	}

	dec, err := singleRune(dc.Number.Decimal, '.')
	if err != nil {
		return Dialect{}, fmt.Errorf("dialect %q: decimal separator: %w", dc.Name, err)
	}
	grp, err := singleRune(dc.Number.Grouping, ',')
	if err != nil {
		return Dialect{}, fmt.Errorf("dialect %q: grouping separator: %w", dc.Name, err)
	}

	fields := make(FieldMapping, len(dc.Fields))
	for name, paths := range dc.Fields {
		fields[Field(name)] = paths
	}
	defaults := make(map[Field]string, len(dc.Defaults))
	for name, v := range dc.Defaults {
		defaults[Field(name)] = v
	}

	dateFormats := dc.DateFormats
	if len(dateFormats) == 0 {
		dateFormats = []string{isoDate}
	}

	return Dialect{
		Name:        dc.Name,
		Namespaces:  dc.Namespaces,
		RootTags:    dc.RootTags,
		Prefixes:    dc.Prefixes,
		DateFormats: dateFormats,
		Number:      NumberFormat{Decimal: dec, Grouping: grp},
		Fields:      fields,
		Lines: LineMapping{
			Path:        dc.Lines.Path,
			Description: dc.Lines.Description,
			Quantity:    dc.Lines.Quantity,
			UnitPrice:   dc.Lines.UnitPrice,
			LineTotal:   dc.Lines.LineTotal,
		},
		Defaults: defaults,
	}, nil
}

func singleRune(s string, fallback rune) (rune, error) {
	if s == "" {
		return fallback, nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) {
		return 0, fmt.Errorf("%q is not a single character", s)
	}
	return r, nil
}
