package course

import "gorm.io/gorm"

// Quiz is a graded check attached to a course
type Quiz struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Question    string `json:"question" gorm:"type:text"`
	Options     string `json:"options" gorm:"type:text"` // JSON array of option texts
	AnswerIndex int    `json:"-"`
	OrderIndex  int    `json:"order_index" gorm:"default:0"`
	IsDeleted   bool   `gorm:"default:false"`
}

// QuizAttempt represents a student's attempt at a quiz. A passed attempt
// counts the quiz as complete for enrollment progress.
type QuizAttempt struct {
	gorm.Model
	UserID        uint `json:"user_id" gorm:"index;not null"`
	QuizID        uint `json:"quiz_id" gorm:"index;not null"`
	CourseID      uint `json:"course_id" gorm:"index;not null"`
	SelectedIndex int  `json:"selected_index"`
	IsCorrect     bool `json:"is_correct" gorm:"default:false"`
	AttemptNumber int  `json:"attempt_number" gorm:"default:1"`
	IsDeleted     bool `gorm:"default:false"`
}
