// Package printing describes the business documents the service renders
// as PDF: rental agreements, sales invoices, transaction statements and
// return receipts.
package printing
