// SPDX-License-Identifier: Apache-2.0

package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refactura/refactura/internal/export"
	"github.com/refactura/refactura/internal/invoice"
)

func money(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func renderRows(t *testing.T, batch invoice.BatchResult) [][]string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, batch))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWrite_Header(t *testing.T) {
	rows := renderRows(t, nil)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{
		"filename",
		"invoice_number", "document_uuid", "issue_date",
		"seller_id", "seller_name", "buyer_id", "buyer_name",
		"currency", "total_net", "total_tax", "total_gross",
		"line_items", "warnings", "error",
	}, rows[0])
}

func TestWrite_RecordRow(t *testing.T) {
	qty := decimal.NewFromInt(2)
	rec := &invoice.Record{
		Filename:      "a.xml",
		InvoiceNumber: "INV-1",
		IssueDate:     "2024-01-31",
		SellerID:      "AAA",
		Currency:      "MXN",
		TotalNet:      money("100"),
		TotalTax:      money("16"),
		TotalGross:    money("116"),
		LineItems: []invoice.LineItem{
			{Description: "Servicio", Quantity: &qty, UnitPrice: money("50"), LineTotal: money("100")},
			{Description: "Sin importe"},
		},
		Warnings: []invoice.Warning{
			{Kind: invoice.WarnMissingField, Detail: "mandatory field issue_date not present"},
		},
	}

	rows := renderRows(t, invoice.BatchResult{{Filename: "a.xml", Record: rec}})
	require.Len(t, rows, 2)
	row := rows[1]

	assert.Equal(t, "a.xml", row[0])
	assert.Equal(t, "INV-1", row[1])
	assert.Equal(t, "2024-01-31", row[3])
	assert.Equal(t, "100.00", row[9], "monetary cells are rendered to two decimals")
	assert.Equal(t, "16.00", row[10])
	assert.Equal(t, "116.00", row[11])
	assert.Equal(t, "Servicio|2.00|50.00|100.00;Sin importe|||", row[12])
	assert.Equal(t, "missing_field: mandatory field issue_date not present", row[13])
	assert.Empty(t, row[14])
}

func TestWrite_ErrorRow(t *testing.T) {
	batch := invoice.BatchResult{{
		Filename: "bad.xml",
		Err: &invoice.ExtractionError{
			Filename: "bad.xml",
			Kind:     invoice.KindMalformedXML,
			Detail:   "XML syntax error on line 1",
		},
	}}

	rows := renderRows(t, batch)
	require.Len(t, rows, 2)
	row := rows[1]

	assert.Equal(t, "bad.xml", row[0])
	for i := 1; i < len(row)-1; i++ {
		assert.Empty(t, row[i], "column %d of an error row must be blank", i)
	}
	assert.Equal(t, "malformed_xml: XML syntax error on line 1", row[len(row)-1])
}

func TestWrite_PreservesBatchOrder(t *testing.T) {
	batch := invoice.BatchResult{
		{Filename: "1.xml", Record: &invoice.Record{Filename: "1.xml", InvoiceNumber: "A"}},
		{Filename: "2.xml", Err: &invoice.ExtractionError{Filename: "2.xml", Kind: invoice.KindUnknownDialect, Detail: "no dialect"}},
		{Filename: "3.xml", Record: &invoice.Record{Filename: "3.xml", InvoiceNumber: "C"}},
	}
	rows := renderRows(t, batch)
	require.Len(t, rows, 4)
	assert.Equal(t, "1.xml", rows[1][0])
	assert.Equal(t, "2.xml", rows[2][0])
	assert.Equal(t, "3.xml", rows[3][0])
}
