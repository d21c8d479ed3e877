package models

import "time"

// BaseModel replaces gorm.Model: records are hard-deleted so cascades remove them for good.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
