package course

import (
	"time"

	"gorm.io/gorm"
)

const (
	EnrollmentNotStarted = "NOT_STARTED"
	EnrollmentInProgress = "IN_PROGRESS"
	EnrollmentCompleted  = "COMPLETED"
)

// Enrollment tracks a user's enrollment in a course with progress.
// Exactly one row exists per (user, course) no matter how the course was
// acquired; a purchase through a learning path attaches LearningPathID to the
// existing row instead of creating a second one.
type Enrollment struct {
	gorm.Model
	UserID            uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	CourseID          uint       `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	LearningPathID    *uint      `json:"learning_path_id" gorm:"index"`
	Status            string     `json:"status" gorm:"type:varchar(20);default:'NOT_STARTED'"`
	CompletedChapters int        `json:"completed_chapters" gorm:"default:0"`
	TotalChapters     int        `json:"total_chapters" gorm:"default:0"`
	CompletedQuizzes  int        `json:"completed_quizzes" gorm:"default:0"`
	TotalQuizzes      int        `json:"total_quizzes" gorm:"default:0"`
	CertificateID     *uint      `json:"certificate_id"`
	CompletedAt       *time.Time `json:"completed_at"`
	IsDeleted         bool       `gorm:"default:false"`
}

// IsComplete reports whether every chapter and quiz of the course is done.
// Totals of zero mean the course has no content yet, which never counts
// as complete.
func (e *Enrollment) IsComplete() bool {
	if e.TotalChapters == 0 && e.TotalQuizzes == 0 {
		return false
	}
	return e.CompletedChapters >= e.TotalChapters && e.CompletedQuizzes >= e.TotalQuizzes
}
