package course

import (
	"time"

	"gorm.io/gorm"
)

// Certificate represents an issued completion certificate for either a single
// course or a whole learning path. Exactly one of CourseID / LearningPathID
// is set.
type Certificate struct {
	gorm.Model
	UserID            uint      `json:"user_id" gorm:"index;not null"`
	CourseID          *uint     `json:"course_id" gorm:"index"`
	LearningPathID    *uint     `json:"learning_path_id" gorm:"index"`
	StorageKey        string    `json:"storage_key"`
	CertificateNumber string    `json:"certificate_number" gorm:"unique"`
	IssuedAt          time.Time `json:"issued_at"`
	IsDeleted         bool      `gorm:"default:false"`
}
