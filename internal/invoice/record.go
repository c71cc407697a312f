// SPDX-License-Identifier: Apache-2.0

package invoice

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Field is a canonical, dialect-independent attribute name used in
// extracted records.
type Field string

const (
	FieldInvoiceNumber Field = "invoice_number"
	FieldDocumentUUID  Field = "document_uuid"
	FieldIssueDate     Field = "issue_date"
	FieldSellerID      Field = "seller_id"
	FieldSellerName    Field = "seller_name"
	FieldBuyerID       Field = "buyer_id"
	FieldBuyerName     Field = "buyer_name"
	FieldCurrency      Field = "currency"
	FieldTotalNet      Field = "total_net"
	FieldTotalTax      Field = "total_tax"
	FieldTotalGross    Field = "total_gross"
)

// CanonicalFields lists every canonical field in the fixed order used for
// extraction and tabular output.
var CanonicalFields = []Field{
	FieldInvoiceNumber,
	FieldDocumentUUID,
	FieldIssueDate,
	FieldSellerID,
	FieldSellerName,
	FieldBuyerID,
	FieldBuyerName,
	FieldCurrency,
	FieldTotalNet,
	FieldTotalTax,
	FieldTotalGross,
}

// MandatoryFields are the fields whose absence is flagged with a warning.
// The record is still produced; partial data beats a dropped row.
var MandatoryFields = []Field{FieldInvoiceNumber, FieldIssueDate}

// LineItem is one invoice line in document order. Monetary fields are nil
// when the dialect path resolved to nothing.
type LineItem struct {
	Description string
	Quantity    *decimal.Decimal
	UnitPrice   *decimal.Decimal
	LineTotal   *decimal.Decimal
}

// WarningKind classifies non-fatal extraction anomalies.
type WarningKind string

const (
	WarnMissingField    WarningKind = "missing_field"
	WarnBadNumber       WarningKind = "bad_number"
	WarnBadDate         WarningKind = "bad_date"
	WarnLineItemSkipped WarningKind = "line_item_skipped"
	WarnTotalMismatch   WarningKind = "total_mismatch"
)

// Warning is a non-fatal anomaly attached to an otherwise valid record.
type Warning struct {
	Kind   WarningKind
	Detail string
}

func (w Warning) String() string {
	return string(w.Kind) + ": " + w.Detail
}

// Record is the canonical output for one successfully parsed invoice.
// Text fields hold "" when absent; monetary fields are nil when absent.
// IssueDate is normalized to ISO form (YYYY-MM-DD).
type Record struct {
	Filename string

	InvoiceNumber string
	DocumentUUID  string
	IssueDate     string
	SellerID      string
	SellerName    string
	BuyerID       string
	BuyerName     string
	Currency      string

	TotalNet   *decimal.Decimal
	TotalTax   *decimal.Decimal
	TotalGross *decimal.Decimal

	LineItems []LineItem
	Warnings  []Warning

	// Dialect is the name of the dialect the document resolved to.
	Dialect string
}

// FieldValue returns the string form of a canonical field, with monetary
// values rendered to two decimal places. Absent fields render as "".
func (r *Record) FieldValue(f Field) string {
	switch f {
	case FieldInvoiceNumber:
		return r.InvoiceNumber
	case FieldDocumentUUID:
		return r.DocumentUUID
	case FieldIssueDate:
		return r.IssueDate
	case FieldSellerID:
		return r.SellerID
	case FieldSellerName:
		return r.SellerName
	case FieldBuyerID:
		return r.BuyerID
	case FieldBuyerName:
		return r.BuyerName
	case FieldCurrency:
		return r.Currency
	case FieldTotalNet:
		return moneyString(r.TotalNet)
	case FieldTotalTax:
		return moneyString(r.TotalTax)
	case FieldTotalGross:
		return moneyString(r.TotalGross)
	}
	return ""
}

func moneyString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

// ErrorKind classifies terminal per-file extraction failures.
type ErrorKind string

const (
	KindMalformedXML   ErrorKind = "malformed_xml"
	KindUnknownDialect ErrorKind = "unknown_dialect"
)

// ExtractionError is produced instead of a Record when a document cannot be
// parsed at all or its dialect cannot be resolved. It is terminal for the
// affected file only, never for the batch.
type ExtractionError struct {
	Filename string
	Kind     ErrorKind
	Detail   string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Filename, e.Kind, e.Detail)
}

// BatchItem is one input document: complete file content plus its name.
type BatchItem struct {
	Filename string
	Content  []byte
}

// FileResult holds the outcome for a single file: exactly one of Record or
// Err is set.
type FileResult struct {
	Filename string
	Record   *Record
	Err      *ExtractionError
}

// BatchResult is the ordered per-file outcome sequence; order equals input
// order regardless of how extractions were scheduled.
type BatchResult []FileResult

// Records returns the successful records in batch order.
func (b BatchResult) Records() []*Record {
	var recs []*Record
	for _, fr := range b {
		if fr.Record != nil {
			recs = append(recs, fr.Record)
		}
	}
	return recs
}

// Errors returns the failed entries in batch order.
func (b BatchResult) Errors() []*ExtractionError {
	var errs []*ExtractionError
	for _, fr := range b {
		if fr.Err != nil {
			errs = append(errs, fr.Err)
		}
	}
	return errs
}
