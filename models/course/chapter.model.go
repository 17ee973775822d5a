package course

import "gorm.io/gorm"

// Chapter is a unit of course content, ordered within the course
type Chapter struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	Title       string `json:"title"`
	ContentType string `json:"content_type" gorm:"default:'TEXT'"` // TEXT, VIDEO
	TextContent string `json:"text_content" gorm:"type:text"`
	VideoURL    string `json:"video_url"`
	OrderIndex  int    `json:"order_index" gorm:"default:0"`
	IsPublished bool   `json:"is_published" gorm:"default:false"`
	IsDeleted   bool   `gorm:"default:false"`
}

// ChapterCompletion tracks a user's completion of a chapter
type ChapterCompletion struct {
	gorm.Model
	UserID    uint `json:"user_id" gorm:"index;not null;uniqueIndex:idx_chapter_user"`
	ChapterID uint `json:"chapter_id" gorm:"not null;uniqueIndex:idx_chapter_user"`
	CourseID  uint `json:"course_id" gorm:"index;not null"`
	IsDeleted bool `gorm:"default:false"`
}
