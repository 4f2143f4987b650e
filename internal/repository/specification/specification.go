package specification

import "gorm.io/gorm"

// Specification narrows a query. Repositories apply them in order, so a
// filter followed by an OrderBy behaves the way the call site reads.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
