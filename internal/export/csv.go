// SPDX-License-Identifier: Apache-2.0

// Package export renders batch extraction results as CSV, one row per input
// file, with a fixed deterministic column set across heterogeneous batches.
package export

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/refactura/refactura/internal/invoice"
	"github.com/shopspring/decimal"
)

// Header is the fixed CSV column order: filename, the canonical fields, the
// flattened line items, warnings, and the error column populated for files
// that produced no record.
var Header = buildHeader()

func buildHeader() []string {
	h := []string{"filename"}
	for _, f := range invoice.CanonicalFields {
		h = append(h, string(f))
	}
	return append(h, "line_items", "warnings", "error")
}

// Write renders the batch in input order. Error entries appear with blank
// canonical fields and the error column set.
func Write(w io.Writer, batch invoice.BatchResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, fr := range batch {
		if err := cw.Write(row(fr)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(fr invoice.FileResult) []string {
	cells := make([]string, 0, len(Header))
	cells = append(cells, fr.Filename)

	if fr.Err != nil {
		for range invoice.CanonicalFields {
			cells = append(cells, "")
		}
		return append(cells, "", "", string(fr.Err.Kind)+": "+fr.Err.Detail)
	}

	rec := fr.Record
	for _, f := range invoice.CanonicalFields {
		cells = append(cells, rec.FieldValue(f))
	}
	return append(cells, lineItemsCell(rec.LineItems), warningsCell(rec.Warnings), "")
}

// lineItemsCell flattens the ordered items into one cell as
// "desc|qty|unit|total" segments joined with ";".
func lineItemsCell(items []invoice.LineItem) string {
	segs := make([]string, len(items))
	for i, it := range items {
		segs[i] = strings.Join([]string{
			it.Description,
			amount(it.Quantity),
			amount(it.UnitPrice),
			amount(it.LineTotal),
		}, "|")
	}
	return strings.Join(segs, ";")
}

func warningsCell(warnings []invoice.Warning) string {
	segs := make([]string, len(warnings))
	for i, w := range warnings {
		segs[i] = w.String()
	}
	return strings.Join(segs, "; ")
}

func amount(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}
