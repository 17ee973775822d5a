package utils

import (
	"log"
	"time"

	"lms/database"
	"lms/models"
	"lms/models/course"

	"github.com/robfig/cron/v3"
)

// InitializeSchedulers starts the background jobs: daily offer expiry and
// hourly mentorship session reminders. Stale-order cleanup is NOT scheduled;
// it runs opportunistically at checkout time.
func InitializeSchedulers() {
	log.Println("[SCHEDULER] Initializing background jobs...")

	c := cron.New()

	// Run daily at midnight to deactivate offers past their window
	c.AddFunc("0 0 * * *", func() {
		ExpireCourseOffers()
	})

	// Run hourly to remind students of upcoming mentorship sessions
	c.AddFunc("0 * * * *", func() {
		SendMentorshipReminders()
	})

	c.Start()
	log.Println("[SCHEDULER] Background jobs started")
}

// ExpireCourseOffers deactivates offers whose window has closed. Pricing
// already ignores them by window check; this keeps the catalog honest and is
// the explicit replacement for save-time cascade hooks.
func ExpireCourseOffers() {
	db := database.Database.Db

	result := db.Model(&course.CourseOffer{}).
		Where("is_active = true AND is_deleted = false AND ends_at < ?", time.Now()).
		Update("is_active", false)
	if result.Error != nil {
		log.Printf("[SCHEDULER] offer expiry sweep failed: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("[SCHEDULER] deactivated %d expired course offers", result.RowsAffected)
	}
}

// SendMentorshipReminders emails students whose booked session starts within
// the next 24 hours and has not been reminded yet
func SendMentorshipReminders() {
	db := database.Database.Db
	windowEnd := time.Now().Add(24 * time.Hour)

	var bookings []models.MentorshipBooking
	if err := db.Preload("Slot").
		Joins("JOIN mentorship_slots ON mentorship_slots.id = mentorship_bookings.slot_id").
		Where("mentorship_bookings.reminder_sent = false AND mentorship_bookings.is_deleted = false").
		Where("mentorship_slots.start_time BETWEEN ? AND ?", time.Now(), windowEnd).
		Find(&bookings).Error; err != nil {
		log.Printf("[SCHEDULER] reminder lookup failed: %v", err)
		return
	}

	for _, booking := range bookings {
		var student models.User
		if err := db.Where("id = ?", booking.UserID).First(&student).Error; err != nil {
			log.Printf("[SCHEDULER] reminder skipped, user %d not found: %v", booking.UserID, err)
			continue
		}
		var mentor models.User
		if err := db.Where("id = ?", booking.Slot.InstructorID).First(&mentor).Error; err != nil {
			log.Printf("[SCHEDULER] reminder skipped, mentor %d not found: %v", booking.Slot.InstructorID, err)
			continue
		}

		SendMentorshipReminder(student.Email, student.Name, mentor.Name, booking.Slot.StartTime)

		if err := db.Model(&models.MentorshipBooking{}).Where("id = ?", booking.ID).
			Update("reminder_sent", true).Error; err != nil {
			log.Printf("[SCHEDULER] failed to mark reminder sent for booking %d: %v", booking.ID, err)
		}
	}
}
