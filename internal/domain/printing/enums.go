package printing

import "github.com/rentalcore/backend/internal/domain/trade"

// DocumentKind identifies a printable business document
type DocumentKind string

const (
	DocumentRentalAgreement DocumentKind = "RENTAL_AGREEMENT"
	DocumentSalesInvoice    DocumentKind = "SALES_INVOICE"
	DocumentStatement       DocumentKind = "TRANSACTION_STATEMENT"
	DocumentReturnReceipt   DocumentKind = "RETURN_RECEIPT"
)

// IsValid checks if the DocumentKind is a valid value
func (k DocumentKind) IsValid() bool {
	switch k {
	case DocumentRentalAgreement, DocumentSalesInvoice, DocumentStatement, DocumentReturnReceipt:
		return true
	}
	return false
}

// String returns the string representation of DocumentKind
func (k DocumentKind) String() string {
	return string(k)
}

// FilePrefix is the lower-case stem used in download file names
func (k DocumentKind) FilePrefix() string {
	switch k {
	case DocumentRentalAgreement:
		return "agreement"
	case DocumentSalesInvoice:
		return "invoice"
	case DocumentReturnReceipt:
		return "receipt"
	default:
		return "statement"
	}
}

// KindForTransaction picks the document printed for a transaction type.
// Rentals print an agreement, sales an invoice and everything else a
// plain statement.
func KindForTransaction(t trade.TransactionType) DocumentKind {
	switch t {
	case trade.TransactionTypeRental:
		return DocumentRentalAgreement
	case trade.TransactionTypeSale:
		return DocumentSalesInvoice
	default:
		return DocumentStatement
	}
}

// PaperSize represents the paper size for printing
type PaperSize string

const (
	PaperSizeA4          PaperSize = "A4"           // 210mm x 297mm
	PaperSizeA5          PaperSize = "A5"           // 148mm x 210mm
	PaperSizeLetter      PaperSize = "LETTER"       // 216mm x 279mm
	PaperSizeReceipt80MM PaperSize = "RECEIPT_80MM" // 80mm thermal roll
)

// IsValid checks if the PaperSize is a valid value
func (p PaperSize) IsValid() bool {
	switch p {
	case PaperSizeA4, PaperSizeA5, PaperSizeLetter, PaperSizeReceipt80MM:
		return true
	}
	return false
}

// String returns the string representation of PaperSize
func (p PaperSize) String() string {
	return string(p)
}

// Dimensions returns the paper dimensions in millimeters. Roll paper has
// no fixed height and reports 0.
func (p PaperSize) Dimensions() (width, height int) {
	switch p {
	case PaperSizeA5:
		return 148, 210
	case PaperSizeLetter:
		return 216, 279
	case PaperSizeReceipt80MM:
		return 80, 0
	default:
		return 210, 297
	}
}

// IsReceipt returns true for roll paper
func (p PaperSize) IsReceipt() bool {
	return p == PaperSizeReceipt80MM
}

// Orientation represents the page orientation for printing
type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// IsValid checks if the Orientation is a valid value
func (o Orientation) IsValid() bool {
	return o == OrientationPortrait || o == OrientationLandscape
}
