package models

// TokenRecord is one launched asset and its lifecycle flags.
type TokenRecord struct {
	BaseModel
	Asset     string `gorm:"unique;not null;type:varchar(44)"`
	Creator   string `gorm:"index;not null;type:varchar(44)"`
	Name      string `gorm:"type:varchar(100)"`
	Symbol    string `gorm:"type:varchar(20)"`
	URI       string `gorm:"type:text"`
	Completed bool   `gorm:"default:false"`
	Migrated  bool   `gorm:"default:false"`
	Pool      string `gorm:"type:varchar(44)"`
}
