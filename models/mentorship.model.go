package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	SlotStatusOpen      = "OPEN"
	SlotStatusBooked    = "BOOKED"
	SlotStatusCancelled = "CANCELLED"
)

// MentorshipSlot is a time window an instructor opens for 1:1 mentorship
type MentorshipSlot struct {
	gorm.Model
	InstructorID uint      `json:"instructor_id" gorm:"not null;index"`
	StartTime    time.Time `json:"start_time" gorm:"not null"`
	EndTime      time.Time `json:"end_time" gorm:"not null"`
	Status       string    `json:"status" gorm:"type:varchar(20);default:'OPEN'"`
	IsDeleted    bool      `gorm:"default:false"`
}

// MentorshipBooking ties a student to a slot. One booking per slot.
type MentorshipBooking struct {
	gorm.Model
	SlotID       uint `json:"slot_id" gorm:"not null;uniqueIndex"`
	UserID       uint `json:"user_id" gorm:"not null;index"`
	ReminderSent bool `json:"reminder_sent" gorm:"default:false"`
	IsDeleted    bool `gorm:"default:false"`

	Slot MentorshipSlot `gorm:"foreignKey:SlotID" json:"slot"`
}
