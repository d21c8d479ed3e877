package models

type Comment struct {
	BaseModel

	Content   string `gorm:"type:text;not null"`
	ProjectID uint   `gorm:"not null;index"`
	UserID    uint   `gorm:"not null;index"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
