// SPDX-License-Identifier: Apache-2.0

package invoice_test

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refactura/refactura/internal/invoice"
)

func parseRoot(t *testing.T, doc string) *etree.Element {
	t.Helper()
	d := etree.NewDocument()
	require.NoError(t, d.ReadFromString(doc))
	require.NotNil(t, d.Root())
	return d.Root()
}

func TestDefaultRegistry_PriorityOrder(t *testing.T) {
	assert.Equal(t,
		[]string{"cfdi-4.0", "cfdi-3.3", "ubl-2.1", "plain"},
		invoice.Default().Names())
}

func TestRegistry_Resolve(t *testing.T) {
	tests := []struct {
		name        string
		doc         string
		wantDialect string
		wantOK      bool
	}{
		{
			name:        "cfdi 4.0 namespace",
			doc:         `<c:Comprobante xmlns:c="http://www.sat.gob.mx/cfd/4"/>`,
			wantDialect: "cfdi-4.0",
			wantOK:      true,
		},
		{
			name:        "cfdi 3.3 namespace",
			doc:         `<c:Comprobante xmlns:c="http://www.sat.gob.mx/cfd/3"/>`,
			wantDialect: "cfdi-3.3",
			wantOK:      true,
		},
		{
			name:        "misspelled sat namespace variant",
			doc:         `<c:Comprobante xmlns:c="http://www.sat.gobmx/cfd/4"/>`,
			wantDialect: "cfdi-4.0",
			wantOK:      true,
		},
		{
			name:        "ubl default namespace",
			doc:         `<Invoice xmlns="urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"/>`,
			wantDialect: "ubl-2.1",
			wantOK:      true,
		},
		{
			name:        "namespace-less root tag falls back to plain",
			doc:         `<Factura/>`,
			wantDialect: "plain",
			wantOK:      true,
		},
		{
			name:   "unknown namespace does not fall back to tags",
			doc:    `<Invoice xmlns="urn:unregistered"/>`,
			wantOK: false,
		},
		{
			name:   "unknown namespace-less tag",
			doc:    `<Quote/>`,
			wantOK: false,
		},
	}

	reg := invoice.Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := reg.Resolve(parseRoot(t, tt.doc))
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantDialect, d.Name)
			}
		})
	}
}

func TestNewRegistry_Validation(t *testing.T) {
	tests := []struct {
		name        string
		dialect     invoice.Dialect
		errContains string
	}{
		{
			name:        "missing name",
			dialect:     invoice.Dialect{RootTags: []string{"X"}},
			errContains: "no name",
		},
		{
			name: "unknown canonical field",
			dialect: invoice.Dialect{
				Name:     "bad-fields",
				RootTags: []string{"X"},
				Fields:   invoice.FieldMapping{"grand_total": {"./Total"}},
			},
			errContains: "unknown field",
		},
		{
			name: "invalid path expression",
			dialect: invoice.Dialect{
				Name:     "bad-path",
				RootTags: []string{"X"},
				Fields:   invoice.FieldMapping{invoice.FieldCurrency: {"./Total[["}},
			},
			errContains: "invalid path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := invoice.NewRegistry(tt.dialect)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestNewRegistry_NamespaceWithoutPrefixes(t *testing.T) {
	// A dialect that declares a namespace but no prefix map addresses its
	// namespace-confirmed elements with unprefixed paths.
	custom := invoice.Dialect{
		Name:       "simple-ns",
		Namespaces: []string{"urn:simple-invoice"},
		Fields:     invoice.FieldMapping{invoice.FieldInvoiceNumber: {"./Number"}},
	}
	reg, err := invoice.NewRegistry(custom)
	require.NoError(t, err)

	ex := invoice.NewExtractor(reg, nil)
	rec, err := ex.Extract([]byte(`<Invoice xmlns="urn:simple-invoice"><Number>N-1</Number></Invoice>`), "n.xml")
	require.NoError(t, err)
	assert.Equal(t, "simple-ns", rec.Dialect)
	assert.Equal(t, "N-1", rec.InvoiceNumber)
}

func TestNewRegistry_AcceptsBuiltinsPlusCustom(t *testing.T) {
	custom := invoice.Dialect{
		Name:     "receipt",
		RootTags: []string{"Receipt"},
		Fields:   invoice.FieldMapping{invoice.FieldInvoiceNumber: {"./Ref"}},
	}
	reg, err := invoice.NewRegistry(custom)
	require.NoError(t, err)

	d, ok := reg.Resolve(parseRoot(t, `<Receipt/>`))
	require.True(t, ok)
	assert.Equal(t, "receipt", d.Name)
}
