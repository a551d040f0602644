package models

import (
	"time"

	"github.com/google/uuid"
)

// Dosen is a faculty member. Rows are provisioned from the campus identity
// system; this service only reads them.
type Dosen struct {
	ID        uuid.UUID `db:"id" json:"id"`
	NIDN      string    `db:"nidn" json:"nidn"`
	Nama      string    `db:"nama" json:"nama"`
	Email     string    `db:"email" json:"email"`
	Fakultas  string    `db:"fakultas" json:"fakultas"`
	Prodi     string    `db:"prodi" json:"prodi"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TableName returns the database table name
func (Dosen) TableName() string {
	return "dosen"
}
