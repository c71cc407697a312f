// SPDX-License-Identifier: Apache-2.0

package invoice

import (
	"fmt"

	"github.com/beevik/etree"
)

// FieldMapping associates each canonical field with an ordered list of path
// expressions. Paths are evaluated in order and the first one that resolves
// wins, which lets a dialect tolerate attribute spelling variants
// (e.g. Rfc vs RfcEmisor in older CFDI emitters).
//
// Path syntax is the etree path language, relative to the invoice root,
// optionally ending in "/@Name" to read an attribute of the matched element.
type FieldMapping map[Field][]string

// LineMapping locates line items and their sub-fields. Path selects the item
// elements in document order; the per-field paths are evaluated relative to
// each item element.
type LineMapping struct {
	Path        string
	Description []string
	Quantity    []string
	UnitPrice   []string
	LineTotal   []string
}

// NumberFormat declares a dialect's monetary text convention.
type NumberFormat struct {
	Decimal  rune
	Grouping rune
}

// Dialect describes one invoice XML convention: how to recognize it and how
// to map its tree onto canonical fields.
type Dialect struct {
	Name string

	// Namespaces are the root namespace URIs this dialect claims. A dialect
	// with no namespaces matches on RootTags instead and only when the
	// document root carries no namespace.
	Namespaces []string
	RootTags   []string

	// Prefixes maps namespace URIs to the canonical prefixes used in this
	// dialect's path expressions, so lookup is independent of whatever
	// prefixes a particular document declares.
	Prefixes map[string]string

	// DateFormats are Go layouts tried in order when parsing issue dates.
	DateFormats []string

	Number NumberFormat

	Fields FieldMapping
	Lines  LineMapping

	// Defaults supplies values for fields whose paths resolve to nothing,
	// without raising a warning (e.g. CFDI's implicit MXN currency).
	Defaults map[Field]string
}

// matchesNamespace reports whether the root namespace URI belongs to this
// dialect.
func (d *Dialect) matchesNamespace(uri string) bool {
	for _, ns := range d.Namespaces {
		if ns == uri {
			return true
		}
	}
	return false
}

// matchesRootTag reports whether this dialect claims the given namespace-less
// root tag.
func (d *Dialect) matchesRootTag(tag string) bool {
	for _, t := range d.RootTags {
		if t == tag {
			return true
		}
	}
	return false
}

// paths returns every path expression the dialect declares, for validation.
func (d *Dialect) paths() []string {
	var all []string
	for _, ps := range d.Fields {
		all = append(all, ps...)
	}
	if d.Lines.Path != "" {
		all = append(all, d.Lines.Path)
	}
	for _, ps := range [][]string{d.Lines.Description, d.Lines.Quantity, d.Lines.UnitPrice, d.Lines.LineTotal} {
		all = append(all, ps...)
	}
	return all
}

// Registry is the read-only, priority-ordered dialect table. It is built
// once at process start; resolution walks it in registration order, so more
// specific dialects must be registered before generic fallbacks.
type Registry struct {
	dialects []Dialect
}

// NewRegistry builds a Registry, validating every path expression up front
// so malformed dialect tables fail at startup rather than per document.
func NewRegistry(dialects ...Dialect) (*Registry, error) {
	for i := range dialects {
		d := &dialects[i]
		if d.Name == "" {
			return nil, fmt.Errorf("dialect %d has no name", i)
		}
		for _, f := range fieldKeys(d.Fields) {
			if !isCanonical(f) {
				return nil, fmt.Errorf("dialect %q maps unknown field %q", d.Name, f)
			}
		}
		for _, p := range d.paths() {
			if err := validatePath(p); err != nil {
				return nil, fmt.Errorf("dialect %q: %w", d.Name, err)
			}
		}
		// A declared namespace without an explicit prefix maps to the empty
		// prefix, so unprefixed paths address namespace-confirmed elements.
		for _, ns := range d.Namespaces {
			if _, ok := d.Prefixes[ns]; !ok {
				if d.Prefixes == nil {
					d.Prefixes = make(map[string]string)
				}
				d.Prefixes[ns] = ""
			}
		}
	}
	return &Registry{dialects: dialects}, nil
}

// MustRegistry is like NewRegistry but panics on error. Intended for
// registries built from static tables.
func MustRegistry(dialects ...Dialect) *Registry {
	r, err := NewRegistry(dialects...)
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve picks the dialect for a parsed document root. Namespace matches
// are considered first; root-tag matching applies only when the root element
// carries no namespace at all.
func (r *Registry) Resolve(root *etree.Element) (*Dialect, bool) {
	uri := root.NamespaceURI()
	if uri != "" {
		for i := range r.dialects {
			if r.dialects[i].matchesNamespace(uri) {
				return &r.dialects[i], true
			}
		}
		return nil, false
	}
	for i := range r.dialects {
		d := &r.dialects[i]
		if len(d.Namespaces) == 0 && d.matchesRootTag(root.Tag) {
			return d, true
		}
	}
	return nil, false
}

// Names returns the registered dialect names in priority order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.dialects))
	for i, d := range r.dialects {
		names[i] = d.Name
	}
	return names
}

func fieldKeys(m FieldMapping) []Field {
	keys := make([]Field, 0, len(m))
	for f := range m {
		keys = append(keys, f)
	}
	return keys
}

func isCanonical(f Field) bool {
	for _, c := range CanonicalFields {
		if c == f {
			return true
		}
	}
	return false
}
