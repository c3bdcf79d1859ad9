package models

import "time"

// CurveSnapshot is a periodic reading of one curve's reserves, taken for
// charting and reconciliation.
type CurveSnapshot struct {
	BaseModel
	Asset             string    `gorm:"index;not null;type:varchar(44)"`
	VirtualQuote      uint64    `gorm:"not null"`
	VirtualBase       uint64    `gorm:"not null"`
	RealQuoteReserves uint64    `gorm:"not null"`
	RealBase          uint64    `gorm:"not null"`
	TakenAt           time.Time `gorm:"index;not null"`
}
