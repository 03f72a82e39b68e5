package domain

import "time"

type Product struct {
	ID          string
	SellerID    string
	CategoryID  string
	Name        string
	Description string
	Price       float64
	Stock       int
	ImageRef    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Category struct {
	ID   string
	Name string
	Slug string
}
