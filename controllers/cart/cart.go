package cartController

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/models/course"
	"lms/services/pricing"

	"github.com/gofiber/fiber/v2"
)

// AddToCart puts a course or a learning path into the user's cart
func AddToCart(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedAddToCart").(*struct {
		CourseID       *uint `json:"courseId"`
		LearningPathID *uint `json:"learningPathId"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	if reqData.CourseID != nil {
		var crs course.Course
		if err := db.Where("id = ? AND is_deleted = false AND is_published = true", *reqData.CourseID).First(&crs).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		var existing models.CartItem
		if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = false", userID, *reqData.CourseID).First(&existing).Error; err == nil {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Course already in cart!", nil)
		}
	} else {
		var path course.LearningPath
		if err := db.Where("id = ? AND is_deleted = false AND is_published = true", *reqData.LearningPathID).First(&path).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Learning path not found!", nil)
		}
		var existing models.CartItem
		if err := db.Where("user_id = ? AND learning_path_id = ? AND is_deleted = false", userID, *reqData.LearningPathID).First(&existing).Error; err == nil {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Learning path already in cart!", nil)
		}
	}

	item := models.CartItem{
		UserID:         userID,
		CourseID:       reqData.CourseID,
		LearningPathID: reqData.LearningPathID,
	}
	if err := db.Create(&item).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add to cart!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Added to cart!", item)
}

// RemoveFromCart removes a cart item owned by the user
func RemoveFromCart(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	itemID, err := c.ParamsInt("id")
	if err != nil || itemID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid cart item id!", nil)
	}

	db := database.Database.Db

	var item models.CartItem
	if err := db.Where("id = ? AND user_id = ? AND is_deleted = false", itemID, userID).First(&item).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Cart item not found!", nil)
	}

	if err := db.Model(&item).Update("is_deleted", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to remove from cart!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Removed from cart!", nil)
}

// GetCart lists the user's cart with effective prices resolved fresh
func GetCart(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var items []models.CartItem
	if err := db.Where("user_id = ? AND is_deleted = false", userID).Find(&items).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch cart!", nil)
	}

	// Collect course ids: standalone items plus bundle contents
	var courseIDs []uint
	pathCourses := make(map[uint][]course.LearningPathCourse)
	for _, item := range items {
		if item.CourseID != nil {
			courseIDs = append(courseIDs, *item.CourseID)
		}
		if item.LearningPathID != nil {
			var pcs []course.LearningPathCourse
			db.Where("learning_path_id = ? AND is_deleted = false", *item.LearningPathID).
				Order("order_number asc").Find(&pcs)
			pathCourses[*item.LearningPathID] = pcs
			for _, pc := range pcs {
				courseIDs = append(courseIDs, pc.CourseID)
			}
		}
	}

	prices, err := pricing.Resolve(db, courseIDs)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to resolve prices!", nil)
	}

	type cartLine struct {
		models.CartItem
		EffectivePrice float64 `json:"effective_price"`
	}

	total := 0.0
	lines := make([]cartLine, 0, len(items))
	for _, item := range items {
		line := cartLine{CartItem: item}
		if item.CourseID != nil {
			line.EffectivePrice = prices[*item.CourseID].EffectivePrice
		}
		if item.LearningPathID != nil {
			for _, pc := range pathCourses[*item.LearningPathID] {
				line.EffectivePrice += prices[pc.CourseID].EffectivePrice
			}
			line.EffectivePrice = pricing.Truncate2(line.EffectivePrice)
		}
		total += line.EffectivePrice
		lines = append(lines, line)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Cart fetched!", fiber.Map{
		"items": lines,
		"total": pricing.Truncate2(total),
	})
}
