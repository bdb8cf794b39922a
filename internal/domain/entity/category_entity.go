package entity

import "time"

// Category groups products. Products reference a category by id; deleting
// a category does not cascade, so dangling references are possible.
type Category struct {
	ID           string
	CategoryName string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
