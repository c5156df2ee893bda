// Package models holds the GORM rows behind the rental aggregates. Domain
// types never carry tags; each row converts with ToDomain and FromDomain.
//
// Money columns are fixed point decimals read back through shopspring decimal. Every
// mutable row carries a version column used for optimistic locking.
package models
