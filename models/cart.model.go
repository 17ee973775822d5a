package models

import "gorm.io/gorm"

// CartItem holds either a single course or a learning-path bundle.
// Exactly one of CourseID / LearningPathID is set.
type CartItem struct {
	gorm.Model
	UserID         uint  `json:"user_id" gorm:"not null;index"`
	CourseID       *uint `json:"course_id" gorm:"index"`
	LearningPathID *uint `json:"learning_path_id" gorm:"index"`
	IsDeleted      bool  `gorm:"default:false"`
}
