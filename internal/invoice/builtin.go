// SPDX-License-Identifier: Apache-2.0

package invoice

// Built-in dialect table. Order matters: dialects with specific namespaces
// come first, the namespace-less fallback last.

const (
	nsCFDI40    = "http://www.sat.gob.mx/cfd/4"
	nsCFDI40Alt = "http://www.sat.gobmx/cfd/4" // misspelled variant seen in the wild
	nsCFDI33    = "http://www.sat.gob.mx/cfd/3"
	nsCFDI33Alt = "http://www.sat.gobmx/cfd/3"
	nsTimbre    = "http://www.sat.gob.mx/TimbreFiscalDigital"

	nsUBLInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	nsUBLBasic   = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
	nsUBLAggr    = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
)

// cfdiDialect builds the shared CFDI shape; 3.3 and 4.0 differ only in the
// Comprobante namespace.
func cfdiDialect(name string, namespaces ...string) Dialect {
	prefixes := map[string]string{nsTimbre: "tfd"}
	for _, ns := range namespaces {
		prefixes[ns] = "cfdi"
	}
	return Dialect{
		Name:        name,
		Namespaces:  namespaces,
		Prefixes:    prefixes,
		DateFormats: []string{"2006-01-02T15:04:05", "2006-01-02"},
		Number:      NumberFormat{Decimal: '.', Grouping: ','},
		Fields: FieldMapping{
			FieldInvoiceNumber: {"./@Folio", "./@Serie"},
			FieldDocumentUUID:  {".//tfd:TimbreFiscalDigital/@UUID"},
			FieldIssueDate:     {"./@Fecha"},
			FieldSellerID:      {"./cfdi:Emisor/@Rfc", "./cfdi:Emisor/@RfcEmisor"},
			FieldSellerName:    {"./cfdi:Emisor/@Nombre"},
			FieldBuyerID:       {"./cfdi:Receptor/@Rfc", "./cfdi:Receptor/@RfcReceptor"},
			FieldBuyerName:     {"./cfdi:Receptor/@Nombre"},
			FieldCurrency:      {"./@Moneda"},
			FieldTotalNet:      {"./@SubTotal"},
			FieldTotalTax:      {"./cfdi:Impuestos/@TotalImpuestosTrasladados"},
			FieldTotalGross:    {"./@Total"},
		},
		Lines: LineMapping{
			Path:        "./cfdi:Conceptos/cfdi:Concepto",
			Description: []string{"./@Descripcion"},
			Quantity:    []string{"./@Cantidad"},
			UnitPrice:   []string{"./@ValorUnitario"},
			LineTotal:   []string{"./@Importe"},
		},
		Defaults: map[Field]string{FieldCurrency: "MXN"},
	}
}

func ublDialect() Dialect {
	return Dialect{
		Name:       "ubl-2.1",
		Namespaces: []string{nsUBLInvoice},
		Prefixes: map[string]string{
			nsUBLInvoice: "inv",
			nsUBLBasic:   "cbc",
			nsUBLAggr:    "cac",
		},
		DateFormats: []string{"2006-01-02"},
		Number:      NumberFormat{Decimal: '.', Grouping: ','},
		Fields: FieldMapping{
			FieldInvoiceNumber: {"./cbc:ID"},
			FieldDocumentUUID:  {"./cbc:UUID"},
			FieldIssueDate:     {"./cbc:IssueDate"},
			FieldSellerID: {
				"./cac:AccountingSupplierParty/cac:Party/cac:PartyTaxScheme/cbc:CompanyID",
				"./cac:AccountingSupplierParty/cac:Party/cac:PartyIdentification/cbc:ID",
			},
			FieldSellerName: {"./cac:AccountingSupplierParty/cac:Party/cac:PartyName/cbc:Name"},
			FieldBuyerID: {
				"./cac:AccountingCustomerParty/cac:Party/cac:PartyTaxScheme/cbc:CompanyID",
				"./cac:AccountingCustomerParty/cac:Party/cac:PartyIdentification/cbc:ID",
			},
			FieldBuyerName: {"./cac:AccountingCustomerParty/cac:Party/cac:PartyName/cbc:Name"},
			FieldCurrency:  {"./cbc:DocumentCurrencyCode"},
			FieldTotalNet:  {"./cac:LegalMonetaryTotal/cbc:TaxExclusiveAmount"},
			FieldTotalTax:  {"./cac:TaxTotal/cbc:TaxAmount"},
			FieldTotalGross: {
				"./cac:LegalMonetaryTotal/cbc:TaxInclusiveAmount",
				"./cac:LegalMonetaryTotal/cbc:PayableAmount",
			},
		},
		Lines: LineMapping{
			Path:        "./cac:InvoiceLine",
			Description: []string{"./cac:Item/cbc:Description", "./cac:Item/cbc:Name"},
			Quantity:    []string{"./cbc:InvoicedQuantity"},
			UnitPrice:   []string{"./cac:Price/cbc:PriceAmount"},
			LineTotal:   []string{"./cbc:LineExtensionAmount"},
		},
	}
}

// plainDialect is the generic fallback for namespace-less invoices: element
// text instead of attributes, day-first dates, comma decimal separator.
func plainDialect() Dialect {
	return Dialect{
		Name:        "plain",
		RootTags:    []string{"Invoice", "invoice", "Factura"},
		DateFormats: []string{"02/01/2006", "2006-01-02"},
		Number:      NumberFormat{Decimal: ',', Grouping: '.'},
		Fields: FieldMapping{
			FieldInvoiceNumber: {"./Number", "./InvoiceNumber"},
			FieldIssueDate:     {"./Date", "./IssueDate"},
			FieldSellerID:      {"./Seller/TaxID", "./Seller/ID"},
			FieldSellerName:    {"./Seller/Name"},
			FieldBuyerID:       {"./Buyer/TaxID", "./Buyer/ID"},
			FieldBuyerName:     {"./Buyer/Name"},
			FieldCurrency:      {"./Currency"},
			FieldTotalNet:      {"./Totals/Net"},
			FieldTotalTax:      {"./Totals/Tax"},
			FieldTotalGross:    {"./Totals/Gross"},
		},
		Lines: LineMapping{
			Path:        "./Lines/Line",
			Description: []string{"./Description"},
			Quantity:    []string{"./Quantity"},
			UnitPrice:   []string{"./UnitPrice"},
			LineTotal:   []string{"./Total"},
		},
	}
}

// builtinDialects returns the default dialect table in priority order.
func builtinDialects() []Dialect {
	return []Dialect{
		cfdiDialect("cfdi-4.0", nsCFDI40, nsCFDI40Alt),
		cfdiDialect("cfdi-3.3", nsCFDI33, nsCFDI33Alt),
		ublDialect(),
		plainDialect(),
	}
}

// Default returns the registry of built-in dialects.
func Default() *Registry {
	return MustRegistry(builtinDialects()...)
}
