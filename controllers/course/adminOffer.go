package courseController

import (
	"time"

	"lms/database"
	"lms/middleware"
	"lms/models/course"

	"github.com/gofiber/fiber/v2"
)

// CreateOffer lets an instructor propose a time-boxed discount on their
// course. Offers start PENDING and only affect pricing once approved.
func CreateOffer(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCreateOffer").(*struct {
		CourseID    uint      `json:"courseId" validate:"required"`
		DiscountPct float64   `json:"discountPct" validate:"required,gt=0,lte=100"`
		StartsAt    time.Time `json:"startsAt" validate:"required"`
		EndsAt      time.Time `json:"endsAt" validate:"required"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if !reqData.EndsAt.After(reqData.StartsAt) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Offer must end after it starts!", nil)
	}

	db := database.Database.Db

	var crs course.Course
	if err := db.Where("id = ? AND instructor_id = ? AND is_deleted = false", reqData.CourseID, userID).First(&crs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	offer := course.CourseOffer{
		CourseID:    reqData.CourseID,
		DiscountPct: reqData.DiscountPct,
		StartsAt:    reqData.StartsAt,
		EndsAt:      reqData.EndsAt,
		Status:      "PENDING",
	}
	if err := db.Create(&offer).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create offer!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Offer submitted for approval!", offer)
}

// ReviewOffer lets an admin approve or reject a pending offer
func ReviewOffer(c *fiber.Ctx) error {
	offerID, err := c.ParamsInt("id")
	if err != nil || offerID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid offer id!", nil)
	}

	reqData, ok := c.Locals("validatedReviewOffer").(*struct {
		Status string `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var offer course.CourseOffer
	if err := db.Where("id = ? AND is_deleted = false", offerID).First(&offer).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Offer not found!", nil)
	}

	if offer.Status != "PENDING" {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Offer already reviewed!", nil)
	}

	if err := db.Model(&offer).Update("status", reqData.Status).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update offer!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Offer reviewed!", offer)
}

// ListOffers returns offers for review, newest first. Filter by status
// with ?status=PENDING.
func ListOffers(c *fiber.Ctx) error {
	db := database.Database.Db

	query := db.Where("is_deleted = false")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var offers []course.CourseOffer
	if err := query.Order("created_at desc").Find(&offers).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch offers!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Offers fetched!", offers)
}
