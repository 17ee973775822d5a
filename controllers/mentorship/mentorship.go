package mentorshipController

import (
	"errors"
	"time"

	"lms/database"
	"lms/middleware"
	"lms/models"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// CreateSlot lets an instructor open a 1:1 mentorship time window
func CreateSlot(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCreateSlot").(*struct {
		StartTime time.Time `json:"startTime" validate:"required"`
		EndTime   time.Time `json:"endTime" validate:"required"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if !reqData.EndTime.After(reqData.StartTime) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Slot must end after it starts!", nil)
	}
	if reqData.StartTime.Before(time.Now()) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Slot must be in the future!", nil)
	}

	db := database.Database.Db

	// Reject overlap with the instructor's existing open or booked slots
	var overlapping int64
	db.Model(&models.MentorshipSlot{}).
		Where("instructor_id = ? AND is_deleted = false AND status != ?", userID, models.SlotStatusCancelled).
		Where("start_time < ? AND end_time > ?", reqData.EndTime, reqData.StartTime).
		Count(&overlapping)
	if overlapping > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Slot overlaps an existing slot!", nil)
	}

	slot := models.MentorshipSlot{
		InstructorID: userID,
		StartTime:    reqData.StartTime,
		EndTime:      reqData.EndTime,
		Status:       models.SlotStatusOpen,
	}
	if err := db.Create(&slot).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create slot!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Slot created!", slot)
}

// ListSlots returns open future slots. Pass ?date=2006-01-02 to see a
// single day, or ?instructorId= to filter by mentor.
func ListSlots(c *fiber.Ctx) error {
	db := database.Database.Db

	query := db.Where("is_deleted = false AND status = ?", models.SlotStatusOpen)

	if dateStr := c.Query("date"); dateStr != "" {
		day, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid date, expected YYYY-MM-DD!", nil)
		}
		dayWindow := now.New(day)
		query = query.Where("start_time BETWEEN ? AND ?", dayWindow.BeginningOfDay(), dayWindow.EndOfDay())
	} else {
		query = query.Where("start_time > ?", time.Now())
	}

	if instructorID := c.QueryInt("instructorId"); instructorID > 0 {
		query = query.Where("instructor_id = ?", instructorID)
	}

	var slots []models.MentorshipSlot
	if err := query.Order("start_time asc").Find(&slots).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch slots!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Slots fetched!", slots)
}

// BookSlot claims an open slot for the calling student. The unique index on
// slot id makes a double booking fail even under a race.
func BookSlot(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	slotID, err := c.ParamsInt("id")
	if err != nil || slotID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid slot id!", nil)
	}

	db := database.Database.Db

	var booking models.MentorshipBooking
	txErr := db.Transaction(func(tx *gorm.DB) error {
		var slot models.MentorshipSlot
		if err := tx.Where("id = ? AND is_deleted = false", slotID).First(&slot).Error; err != nil {
			return err
		}
		if slot.Status != models.SlotStatusOpen || slot.StartTime.Before(time.Now()) {
			return gorm.ErrInvalidData
		}

		booking = models.MentorshipBooking{SlotID: slot.ID, UserID: userID}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		return tx.Model(&slot).Update("status", models.SlotStatusBooked).Error
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Slot not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Slot is no longer available!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Slot booked!", booking)
}

// GetMyBookings lists the caller's upcoming bookings with slot details
func GetMyBookings(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var bookings []models.MentorshipBooking
	if err := database.Database.Db.Preload("Slot").
		Where("user_id = ? AND is_deleted = false", userID).
		Order("created_at desc").Find(&bookings).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch bookings!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Bookings fetched!", bookings)
}
