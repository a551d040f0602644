package models

import (
	"time"

	"github.com/google/uuid"
)

// SkemaTipe classifies a funding scheme
type SkemaTipe string

const (
	SchemeBasic       SkemaTipe = "DASAR"
	SchemeApplied     SkemaTipe = "TERAPAN"
	SchemeDevelopment SkemaTipe = "PENGEMBANGAN"
	SchemeSelfFunded  SkemaTipe = "MANDIRI"
)

// Skema is a funding scheme proposals are submitted under
type Skema struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Nama         string    `db:"nama" json:"nama"`
	Tipe         SkemaTipe `db:"tipe" json:"tipe"`
	DanaMaksimal int64     `db:"dana_maksimal" json:"dana_maksimal"`
	Deskripsi    *string   `db:"deskripsi" json:"deskripsi,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// TableName returns the database table name
func (Skema) TableName() string {
	return "skema"
}
