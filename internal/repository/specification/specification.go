package specification

import "gorm.io/gorm"

// Specification narrows, orders or pages a repository query. Repositories
// apply every specification they receive in order.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
