// SPDX-License-Identifier: Apache-2.0

package invoice

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

// totalTolerance is the maximum accepted difference between total_gross and
// total_net + total_tax before a mismatch warning is raised.
var totalTolerance = decimal.New(1, -2) // 0.01 currency units

// Extractor turns raw invoice XML into canonical records. It is pure and
// stateless beyond its read-only registry, so a single instance is safe for
// concurrent use.
type Extractor struct {
	registry *Registry
	logger   *zap.Logger
}

// NewExtractor creates an Extractor over the given dialect registry.
// A nil logger disables logging.
func NewExtractor(registry *Registry, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{registry: registry, logger: logger}
}

// Extract maps one document onto a Record. It is total: every failure is
// expressed either as an *ExtractionError (unparseable document, unknown
// dialect) or as warnings on an otherwise valid record. The returned error,
// when non-nil, is always an *ExtractionError.
func (e *Extractor) Extract(content []byte, filename string) (*Record, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if err := doc.ReadFromBytes(content); err != nil {
		return nil, &ExtractionError{Filename: filename, Kind: KindMalformedXML, Detail: err.Error()}
	}
	root := doc.Root()
	if root == nil {
		return nil, &ExtractionError{Filename: filename, Kind: KindMalformedXML, Detail: "document has no root element"}
	}

	d, ok := e.registry.Resolve(root)
	if !ok {
		return nil, &ExtractionError{
			Filename: filename,
			Kind:     KindUnknownDialect,
			Detail:   fmt.Sprintf("no dialect registered for root <%s> (namespace %q)", root.Tag, root.NamespaceURI()),
		}
	}
	canonicalizePrefixes(root, d.Prefixes)

	rec := &Record{Filename: filename, Dialect: d.Name}
	for _, f := range CanonicalFields {
		raw, found := evalFirst(root, d.Fields[f])
		if !found {
			if def, has := d.Defaults[f]; has {
				setText(rec, f, def)
			} else if isMandatory(f) {
				warn(rec, WarnMissingField, "mandatory field %s not present", f)
			}
			continue
		}

		switch f {
		case FieldIssueDate:
			iso, err := parseDate(raw, d.DateFormats)
			if err != nil {
				warn(rec, WarnBadDate, "%s: %v", f, err)
				continue
			}
			rec.IssueDate = iso
		case FieldTotalNet, FieldTotalTax, FieldTotalGross:
			amt, err := parseAmount(raw, d.Number)
			if err != nil {
				warn(rec, WarnBadNumber, "%s: %v", f, err)
				continue
			}
			setMoney(rec, f, amt)
		default:
			setText(rec, f, raw)
		}
	}

	e.collectLineItems(root, d, rec)
	checkTotals(rec)

	e.logger.Debug("extracted invoice",
		zap.String("file", filename),
		zap.String("dialect", d.Name),
		zap.Int("line_items", len(rec.LineItems)),
		zap.Int("warnings", len(rec.Warnings)))
	return rec, nil
}

// collectLineItems maps line-item elements in document order. A malformed
// item produces a warning and is skipped; it never aborts the invoice.
func (e *Extractor) collectLineItems(root *etree.Element, d *Dialect, rec *Record) {
	if d.Lines.Path == "" {
		return
	}
	for i, el := range root.FindElements(d.Lines.Path) {
		item, problems := mapLineItem(el, d)
		if len(problems) > 0 {
			warn(rec, WarnLineItemSkipped, "line item %d: %s", i+1, strings.Join(problems, "; "))
			continue
		}
		if item == nil {
			warn(rec, WarnLineItemSkipped, "line item %d: no recognizable fields", i+1)
			continue
		}
		rec.LineItems = append(rec.LineItems, *item)
	}
}

// mapLineItem resolves one item element. It returns (nil, nil) when no
// sub-field resolved at all, and a problem list when a resolved numeric
// sub-field does not parse under the dialect's number convention.
func mapLineItem(el *etree.Element, d *Dialect) (*LineItem, []string) {
	var item LineItem
	var problems []string
	resolved := false

	if v, ok := evalFirst(el, d.Lines.Description); ok {
		item.Description = v
		resolved = true
	}

	numeric := []struct {
		name  string
		paths []string
		dst   **decimal.Decimal
	}{
		{"quantity", d.Lines.Quantity, &item.Quantity},
		{"unit_price", d.Lines.UnitPrice, &item.UnitPrice},
		{"line_total", d.Lines.LineTotal, &item.LineTotal},
	}
	for _, n := range numeric {
		raw, ok := evalFirst(el, n.paths)
		if !ok {
			continue
		}
		resolved = true
		amt, err := parseAmount(raw, d.Number)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", n.name, err))
			continue
		}
		*n.dst = &amt
	}

	if len(problems) > 0 {
		return nil, problems
	}
	if !resolved {
		return nil, nil
	}
	return &item, nil
}

// checkTotals compares total_gross against total_net + total_tax when all
// three are present; a difference beyond the tolerance is a warning, not an
// error.
func checkTotals(rec *Record) {
	if rec.TotalGross == nil || rec.TotalNet == nil || rec.TotalTax == nil {
		return
	}
	sum := rec.TotalNet.Add(*rec.TotalTax)
	if rec.TotalGross.Sub(sum).Abs().GreaterThan(totalTolerance) {
		warn(rec, WarnTotalMismatch, "total_gross %s does not equal total_net %s + total_tax %s",
			rec.TotalGross.StringFixed(2), rec.TotalNet.StringFixed(2), rec.TotalTax.StringFixed(2))
	}
}

func isMandatory(f Field) bool {
	for _, m := range MandatoryFields {
		if m == f {
			return true
		}
	}
	return false
}

func warn(rec *Record, kind WarningKind, format string, args ...any) {
	rec.Warnings = append(rec.Warnings, Warning{Kind: kind, Detail: fmt.Sprintf(format, args...)})
}

func setText(rec *Record, f Field, v string) {
	switch f {
	case FieldInvoiceNumber:
		rec.InvoiceNumber = v
	case FieldDocumentUUID:
		rec.DocumentUUID = v
	case FieldIssueDate:
		rec.IssueDate = v
	case FieldSellerID:
		rec.SellerID = v
	case FieldSellerName:
		rec.SellerName = v
	case FieldBuyerID:
		rec.BuyerID = v
	case FieldBuyerName:
		rec.BuyerName = v
	case FieldCurrency:
		rec.Currency = v
	}
}

func setMoney(rec *Record, f Field, d decimal.Decimal) {
	switch f {
	case FieldTotalNet:
		rec.TotalNet = &d
	case FieldTotalTax:
		rec.TotalTax = &d
	case FieldTotalGross:
		rec.TotalGross = &d
	}
}
