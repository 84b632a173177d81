package domain

import "time"

// Product is a published listing. Every product is owned by exactly one user
// through OwnerID (internal id). Price is a non-negative decimal; UseTime is a
// free-text duration label such as "6 mois".
type Product struct {
	ID          int64
	Name        string
	Price       float64
	Description string
	UseTime     string
	OwnerID     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
