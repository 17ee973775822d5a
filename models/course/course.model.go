package course

import (
	"time"

	"gorm.io/gorm"
)

// Course represents a published course in the catalog
type Course struct {
	gorm.Model
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	InstructorID uint    `json:"instructor_id" gorm:"not null;index"`
	Price        float64 `json:"price" gorm:"not null;default:0"`
	Duration     int64   `json:"duration" gorm:"default:0"`     // duration in hours
	Status       string  `json:"status" gorm:"default:'DRAFT'"` // DRAFT, ACTIVE, INACTIVE
	ThumbnailURL string  `json:"thumbnail_url"`
	IsPublished  bool    `json:"is_published" gorm:"default:false"`
	IsDeleted    bool    `gorm:"default:false"`
}

// CourseOffer is a time-boxed percentage discount on a single course.
// Only APPROVED offers inside their window affect pricing.
type CourseOffer struct {
	gorm.Model
	CourseID    uint      `json:"course_id" gorm:"not null;index"`
	DiscountPct float64   `json:"discount_pct" gorm:"not null"`
	StartsAt    time.Time `json:"starts_at" gorm:"not null"`
	EndsAt      time.Time `json:"ends_at" gorm:"not null"`
	Status      string    `json:"status" gorm:"type:varchar(20);default:'PENDING'"` // PENDING, APPROVED, REJECTED
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	IsDeleted   bool      `gorm:"default:false"`
}
