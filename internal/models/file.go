package models

// File is an uploaded file's metadata; the bytes live wherever FileURL points.
type File struct {
	BaseModel

	FileName  string `gorm:"type:varchar(255);not null"`
	FileURL   string `gorm:"type:varchar(500);not null"`
	ProjectID uint   `gorm:"not null;index"`
	UserID    uint   `gorm:"not null;index"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
