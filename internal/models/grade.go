package models

// Grade represents a staff grade with its supervision quota ceiling.
type Grade struct {
	ID      string `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Ceiling int    `db:"ceiling" json:"ceiling"`
}
