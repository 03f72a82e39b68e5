package domain

import "time"

type Review struct {
	ID        string
	ProductID string
	AuthorID  string
	Rating    int
	Comment   string
	CreatedAt time.Time
}
