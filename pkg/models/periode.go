package models

import (
	"time"

	"github.com/google/uuid"
)

// PeriodeStatus is the state of a submission period
type PeriodeStatus string

const (
	PeriodeActive PeriodeStatus = "AKTIF"
	PeriodeClosed PeriodeStatus = "DITUTUP"
)

// Periode is a grant submission period
type Periode struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	Nama           string        `db:"nama" json:"nama"`
	TahunAnggaran  string        `db:"tahun_anggaran" json:"tahun_anggaran"`
	TanggalMulai   time.Time     `db:"tanggal_mulai" json:"tanggal_mulai"`
	TanggalSelesai time.Time     `db:"tanggal_selesai" json:"tanggal_selesai"`
	Status         PeriodeStatus `db:"status" json:"status"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
}

// TableName returns the database table name
func (Periode) TableName() string {
	return "periode"
}

// IsOpen reports whether the period accepts submissions at the given time
func (p *Periode) IsOpen(at time.Time) bool {
	return p.Status == PeriodeActive && !at.Before(p.TanggalMulai) && !at.After(p.TanggalSelesai)
}
