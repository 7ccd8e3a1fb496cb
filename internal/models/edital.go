package models

import "time"

// Edital is one admission cycle (public notice) candidates register under.
// NumRegistrants is an aggregate counter bumped by the import.
type Edital struct {
	ID             string    `db:"id" json:"id"`
	Description    string    `db:"description" json:"description"`
	NumRegistrants int       `db:"num_registrants" json:"num_registrants"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
