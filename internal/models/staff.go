package models

import "time"

// Staff represents a supervision-eligible staff member.
type Staff struct {
	ID           string    `db:"id" json:"id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        *string   `db:"email" json:"email,omitempty"`
	Grade        string    `db:"grade" json:"grade"`
	Participates bool      `db:"participates" json:"participates"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// StaffFilter captures filtering options for listing staff.
type StaffFilter struct {
	Search       string
	Grade        string
	Participates *bool
	Page         int
	PageSize     int
}
