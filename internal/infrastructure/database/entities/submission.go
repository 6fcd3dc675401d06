package entities

import "time"

// Submission represents the persisted moderation record.
type Submission struct {
	ID           string    `gorm:"type:varchar(40);primaryKey"`
	Status       string    `gorm:"type:varchar(16);not null;index"`
	ContentType  string    `gorm:"type:varchar(64);not null"`
	Bytes        int64     `gorm:"not null"`
	OriginalName string    `gorm:"type:varchar(255)"`
	PublicURL    string    `gorm:"type:text"`
	Reason       string    `gorm:"type:varchar(255)"`
	Error        string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (Submission) TableName() string {
	return "submissions"
}
