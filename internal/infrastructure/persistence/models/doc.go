// Package models holds the GORM persistence models for the cash tables.
// Domain aggregates carry no ORM tags; each model converts to and from its
// aggregate with ToDomain / FromDomain. The schema itself is owned by the SQL
// migrations; CashModels is only used to build throwaway sqlite schemas in tests.
package models
