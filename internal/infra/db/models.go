package db

import "time"

type ReceiptModel struct {
	ID              string    `gorm:"type:uuid;primaryKey"`
	WiseReceiptHash string    `gorm:"uniqueIndex;not null"`
	SourceHost      string    `gorm:"index;not null"`
	TransferID      string    `gorm:"index;not null"`
	PayerRef        string    `gorm:"not null"`
	Amount          string    `gorm:"not null"`
	ClaimTimestamp  int64     `gorm:"not null"`
	CreatedAt       time.Time `gorm:"not null"`
}

func (ReceiptModel) TableName() string { return "receipts" }
