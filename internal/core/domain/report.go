package domain

import "time"

// TypeStat aggregates stored documents of one type.
type TypeStat struct {
	DocType     string  `json:"doc_type"`
	Count       int     `json:"count"`
	TotalAmount float64 `json:"total_amount"`
	VATAmount   float64 `json:"vat_amount"`
	Invalid     int     `json:"invalid"`
}

// SummaryReport is the per-type overview of all stored documents within an
// optional date window.
type SummaryReport struct {
	GeneratedAt time.Time  `json:"generated_at"`
	From        *time.Time `json:"from,omitempty"`
	To          *time.Time `json:"to,omitempty"`

	TotalDocuments   int     `json:"total_documents"`
	InvalidDocuments int     `json:"invalid_documents"`
	TotalAmount      float64 `json:"total_amount"`
	TotalVAT         float64 `json:"total_vat"`

	ByType []TypeStat `json:"by_type"`
}

// FiscalReport is the monthly VAT summary submitted to FISC. Only VAT-bearing
// types (factura_fiscala, declaratie_tva) contribute to VATCollected.
type FiscalReport struct {
	GeneratedAt time.Time `json:"generated_at"`
	Month       int       `json:"month"`
	Year        int       `json:"year"`

	DocumentCount int     `json:"document_count"`
	TaxableTotal  float64 `json:"taxable_total"`
	VATCollected  float64 `json:"vat_collected"`

	// FilingDeadline is the 25th of the month following the report period.
	FilingDeadline time.Time `json:"filing_deadline"`

	ByType []TypeStat `json:"by_type"`
}

// DetailedReport lists the documents behind a summary, for export.
type DetailedReport struct {
	GeneratedAt time.Time  `json:"generated_at"`
	From        *time.Time `json:"from,omitempty"`
	To          *time.Time `json:"to,omitempty"`
	Documents   []Document `json:"documents"`
}
