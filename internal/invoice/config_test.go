// SPDX-License-Identifier: Apache-2.0

package invoice_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refactura/refactura/internal/invoice"
)

const rechnungOverlay = `dialects:
  - name: rechnung
    root_tags: [Rechnung]
    date_formats: ["02.01.2006"]
    number:
      decimal: ","
      grouping: "."
    fields:
      invoice_number: ["./Nummer"]
      issue_date: ["./Datum"]
      seller_name: ["./Verkaeufer"]
      total_gross: ["./Brutto"]
    line_items:
      path: ./Posten/Post
      description: ["./Text"]
      quantity: ["./Menge"]
      line_total: ["./Summe"]
`

func writeOverlay(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dialects.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRegistry_CustomDialect(t *testing.T) {
	reg, err := invoice.LoadRegistry(writeOverlay(t, rechnungOverlay))
	require.NoError(t, err)

	names := reg.Names()
	require.NotEmpty(t, names)
	assert.Equal(t, "rechnung", names[0], "overlay dialects take priority")
	assert.Equal(t, "plain", names[len(names)-1], "generic fallback stays last")

	doc := `<Rechnung>
  <Nummer>R-2024-17</Nummer>
  <Datum>31.01.2024</Datum>
  <Verkaeufer>Beispiel GmbH</Verkaeufer>
  <Brutto>1.234,56</Brutto>
  <Posten>
    <Post><Text>Beratung</Text><Menge>3</Menge><Summe>1.234,56</Summe></Post>
  </Posten>
</Rechnung>`

	ex := invoice.NewExtractor(reg, nil)
	rec, err := ex.Extract([]byte(doc), "rechnung.xml")
	require.NoError(t, err)

	assert.Equal(t, "rechnung", rec.Dialect)
	assert.Equal(t, "R-2024-17", rec.InvoiceNumber)
	assert.Equal(t, "2024-01-31", rec.IssueDate)
	assert.Equal(t, "Beispiel GmbH", rec.SellerName)
	require.NotNil(t, rec.TotalGross)
	assert.True(t, rec.TotalGross.Equal(decimal.RequireFromString("1234.56")))
	require.Len(t, rec.LineItems, 1)
	assert.Equal(t, "Beratung", rec.LineItems[0].Description)
}

func TestLoadRegistry_Errors(t *testing.T) {
	tests := []struct {
		name        string
		overlay     string
		errContains string
	}{
		{
			name:        "not yaml",
			overlay:     "{dialects: [unclosed",
			errContains: "parsing dialect file",
		},
		{
			name:        "entry without name",
			overlay:     "dialects:\n  - root_tags: [X]\n",
			errContains: "no name",
		},
		{
			name:        "entry without matcher",
			overlay:     "dialects:\n  - name: floating\n",
			errContains: "neither namespaces nor root_tags",
		},
		{
			name:        "multi-character decimal separator",
			overlay:     "dialects:\n  - name: odd\n    root_tags: [X]\n    number: {decimal: \",,\"}\n",
			errContains: "not a single character",
		},
		{
			name:        "unknown canonical field",
			overlay:     "dialects:\n  - name: odd\n    root_tags: [X]\n    fields: {grand_total: [\"./T\"]}\n",
			errContains: "unknown field",
		},
		{
			name:        "invalid path expression",
			overlay:     "dialects:\n  - name: odd\n    root_tags: [X]\n    fields: {currency: [\"./T[[\"]}\n",
			errContains: "invalid path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := invoice.LoadRegistry(writeOverlay(t, tt.overlay))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestLoadDialects_MissingFile(t *testing.T) {
	_, err := invoice.LoadDialects(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
