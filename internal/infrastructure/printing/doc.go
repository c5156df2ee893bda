// Package printing renders business documents to PDF. Documents are built
// from domain aggregates, executed against embedded html/template files and
// printed by headless Chrome over the DevTools protocol.
package printing
