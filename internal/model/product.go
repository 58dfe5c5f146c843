package model

import "github.com/shopspring/decimal"

// Product is a catalog entry. ID is zero until the store assigns one.
type Product struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	ImageURL *string
}

// IsPersisted reports whether the store has assigned an id.
func (p Product) IsPersisted() bool {
	return p.ID != 0
}

// Equal reports entity identity: same assigned id. Products without an id are
// never equal, not even to themselves.
func (p Product) Equal(other Product) bool {
	return p.IsPersisted() && p.ID == other.ID
}
