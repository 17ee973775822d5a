package course

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LearningPath bundles courses into an ordered track sold at a bundle price
type LearningPath struct {
	gorm.Model
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Price        float64 `json:"price" gorm:"not null;default:0"`
	ThumbnailURL string  `json:"thumbnail_url"`
	IsPublished  bool    `json:"is_published" gorm:"default:false"`
	IsDeleted    bool    `gorm:"default:false"`
}

// LearningPathCourse links a course into a path at a position.
// OrderNumber drives the unlock sequence, ascending from 1.
type LearningPathCourse struct {
	gorm.Model
	LearningPathID uint `json:"learning_path_id" gorm:"not null;uniqueIndex:idx_path_course"`
	CourseID       uint `json:"course_id" gorm:"not null;uniqueIndex:idx_path_course"`
	OrderNumber    int  `json:"order_number" gorm:"not null"`
	IsDeleted      bool `gorm:"default:false"`
}

// LearningPathEnrollment is a user's progression through a purchased path.
// UnlockWatermark is the highest OrderNumber made available and never
// decreases. Unlocked and completed course id sets are stored as JSON.
type LearningPathEnrollment struct {
	gorm.Model
	UserID           uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_path_enrollment"`
	LearningPathID   uint           `json:"learning_path_id" gorm:"not null;uniqueIndex:idx_path_enrollment"`
	UnlockedCourses  datatypes.JSON `json:"unlocked_courses"`
	CompletedCourses datatypes.JSON `json:"completed_courses"`
	UnlockWatermark  int            `json:"unlock_watermark" gorm:"default:1"`
	Status           string         `json:"status" gorm:"type:varchar(20);default:'NOT_STARTED'"`
	CertificateID    *uint          `json:"certificate_id"`
	CompletedAt      *time.Time     `json:"completed_at"`
	IsDeleted        bool           `gorm:"default:false"`
}

// UnlockedSet decodes the unlocked course id list
func (e *LearningPathEnrollment) UnlockedSet() []uint {
	return decodeIDList(e.UnlockedCourses)
}

// CompletedSet decodes the completed course id list
func (e *LearningPathEnrollment) CompletedSet() []uint {
	return decodeIDList(e.CompletedCourses)
}

// SetUnlocked encodes the unlocked course id list
func (e *LearningPathEnrollment) SetUnlocked(ids []uint) {
	e.UnlockedCourses = encodeIDList(ids)
}

// SetCompleted encodes the completed course id list
func (e *LearningPathEnrollment) SetCompleted(ids []uint) {
	e.CompletedCourses = encodeIDList(ids)
}

func decodeIDList(raw datatypes.JSON) []uint {
	if len(raw) == 0 {
		return nil
	}
	var ids []uint
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil
	}
	return ids
}

func encodeIDList(ids []uint) datatypes.JSON {
	if ids == nil {
		ids = []uint{}
	}
	raw, _ := json.Marshal(ids)
	return datatypes.JSON(raw)
}
