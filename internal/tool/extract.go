// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/refactura/refactura/internal/invoice"
)

// MetadataExtractInvoices describes the extract_invoices tool.
var MetadataExtractInvoices = &mcp.Tool{
	Name: "extract_invoices",
	Description: "Extract canonical fields from one or more XML invoice documents. " +
		"Supported dialects: CFDI 3.3/4.0, UBL 2.1 Invoice, and a generic namespace-less fallback. " +
		"Each row carries the canonical invoice fields, the ordered line items, and any non-fatal " +
		"warnings (missing fields, unparseable numbers or dates, skipped line items, total mismatches). " +
		"Files that cannot be parsed or matched to a dialect yield a row with the error field set; " +
		"one bad file never affects the others, and row order equals input order.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"files"},
		"properties": map[string]interface{}{
			"files": map[string]interface{}{
				"type":        "array",
				"description": "Invoice documents to extract, processed in order.",
				"items": map[string]interface{}{
					"type":     "object",
					"required": []string{"name", "content"},
					"properties": map[string]interface{}{
						"name": map[string]interface{}{
							"type":        "string",
							"description": "Source filename, echoed into the result row.",
						},
						"content": map[string]interface{}{
							"type":        "string",
							"description": "Complete XML document text.",
						},
					},
				},
			},
		},
	},
}

// InputFile is one document in the extraction request.
type InputFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// InputExtractInvoices is the input for the ExtractInvoices tool.
type InputExtractInvoices struct {
	Files []InputFile `json:"files"`
}

// LineItemRow mirrors invoice.LineItem with monetary values rendered as
// strings ("" when absent).
type LineItemRow struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity,omitempty"`
	UnitPrice   string `json:"unit_price,omitempty"`
	LineTotal   string `json:"line_total,omitempty"`
}

// Row is the per-file result: either the canonical fields or Error.
type Row struct {
	Filename      string        `json:"filename"`
	Dialect       string        `json:"dialect,omitempty"`
	InvoiceNumber string        `json:"invoice_number,omitempty"`
	DocumentUUID  string        `json:"document_uuid,omitempty"`
	IssueDate     string        `json:"issue_date,omitempty"`
	SellerID      string        `json:"seller_id,omitempty"`
	SellerName    string        `json:"seller_name,omitempty"`
	BuyerID       string        `json:"buyer_id,omitempty"`
	BuyerName     string        `json:"buyer_name,omitempty"`
	Currency      string        `json:"currency,omitempty"`
	TotalNet      string        `json:"total_net,omitempty"`
	TotalTax      string        `json:"total_tax,omitempty"`
	TotalGross    string        `json:"total_gross,omitempty"`
	LineItems     []LineItemRow `json:"line_items,omitempty"`
	Warnings      []string      `json:"warnings,omitempty"`
	Error         string        `json:"error,omitempty"`
}

// OutputExtractInvoices is the output for the ExtractInvoices tool.
type OutputExtractInvoices struct {
	// Rows holds one entry per input file, in input order.
	Rows []Row `json:"rows"`
	// Dialects lists the registered dialect names in priority order.
	Dialects []string `json:"dialects"`
}

// ExtractInvoices runs batch extraction over the provided documents.
func ExtractInvoices(_ context.Context, _ *mcp.CallToolRequest, input InputExtractInvoices) (*mcp.CallToolResult, OutputExtractInvoices, error) {
	if len(input.Files) == 0 {
		return nil, OutputExtractInvoices{}, fmt.Errorf("files is required")
	}

	items := make([]invoice.BatchItem, len(input.Files))
	for i, f := range input.Files {
		name := f.Name
		if name == "" {
			name = fmt.Sprintf("file-%d.xml", i+1)
		}
		items[i] = invoice.BatchItem{Filename: name, Content: []byte(f.Content)}
	}

	registry := invoice.Default()
	batch := invoice.NewExtractor(registry, nil).ExtractBatch(items, 0)

	rows := make([]Row, len(batch))
	for i, fr := range batch {
		rows[i] = toRow(fr)
	}
	return nil, OutputExtractInvoices{
		Rows:     rows,
		Dialects: registry.Names(),
	}, nil
}

func toRow(fr invoice.FileResult) Row {
	if fr.Err != nil {
		return Row{
			Filename: fr.Filename,
			Error:    string(fr.Err.Kind) + ": " + fr.Err.Detail,
		}
	}

	rec := fr.Record
	row := Row{
		Filename:      fr.Filename,
		Dialect:       rec.Dialect,
		InvoiceNumber: rec.InvoiceNumber,
		DocumentUUID:  rec.DocumentUUID,
		IssueDate:     rec.IssueDate,
		SellerID:      rec.SellerID,
		SellerName:    rec.SellerName,
		BuyerID:       rec.BuyerID,
		BuyerName:     rec.BuyerName,
		Currency:      rec.Currency,
		TotalNet:      rec.FieldValue(invoice.FieldTotalNet),
		TotalTax:      rec.FieldValue(invoice.FieldTotalTax),
		TotalGross:    rec.FieldValue(invoice.FieldTotalGross),
	}
	for _, it := range rec.LineItems {
		li := LineItemRow{Description: it.Description}
		if it.Quantity != nil {
			li.Quantity = it.Quantity.String()
		}
		if it.UnitPrice != nil {
			li.UnitPrice = it.UnitPrice.StringFixed(2)
		}
		if it.LineTotal != nil {
			li.LineTotal = it.LineTotal.StringFixed(2)
		}
		row.LineItems = append(row.LineItems, li)
	}
	for _, w := range rec.Warnings {
		row.Warnings = append(row.Warnings, w.String())
	}
	return row
}
