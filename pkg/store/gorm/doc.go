// Package gorm implements the tenant isolation store on PostgreSQL via GORM.
//
// Statements are composed with squirrel against registry descriptors, so the
// only identifiers that ever appear in SQL come from the closed registry and
// every caller value is a bound parameter. All reads and writes carry the
// ownership predicate for the tenant context passed in.
package gorm
