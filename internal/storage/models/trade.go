package models

import "time"

// TradeRecord is one settled trade against a curve. Amounts are raw integer
// units (lamports and base units), never floats.
type TradeRecord struct {
	BaseModel
	Asset       string    `gorm:"index;not null;type:varchar(44)"`
	Trader      string    `gorm:"index;not null;type:varchar(44)"`
	IsBuy       bool      `gorm:"not null"`
	QuoteAmount uint64    `gorm:"not null"`
	BaseAmount  uint64    `gorm:"not null"`
	Fee         uint64    `gorm:"not null"`
	ExecutedAt  time.Time `gorm:"index;not null"`
}
