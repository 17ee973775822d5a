package courseController

import (
	"lms/database"
	"lms/middleware"
	"lms/models/course"
	"lms/services/pricing"
	"lms/services/progression"

	"github.com/gofiber/fiber/v2"
)

// ListLearningPaths returns the published bundles with their course counts
func ListLearningPaths(c *fiber.Ctx) error {
	db := database.Database.Db

	var paths []course.LearningPath
	if err := db.Where("is_deleted = false AND is_published = true").
		Order("created_at desc").Find(&paths).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch learning paths!", nil)
	}

	type pathEntry struct {
		course.LearningPath
		CourseCount int64 `json:"course_count"`
	}

	entries := make([]pathEntry, 0, len(paths))
	for _, path := range paths {
		var count int64
		db.Model(&course.LearningPathCourse{}).
			Where("learning_path_id = ? AND is_deleted = false", path.ID).Count(&count)
		entries = append(entries, pathEntry{LearningPath: path, CourseCount: count})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Learning paths fetched!", entries)
}

// GetPathProgress returns the caller's reconciled progression through a path
func GetPathProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	pathID, err := c.ParamsInt("id")
	if err != nil || pathID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid learning path id!", nil)
	}

	progress, err := Progression().PathDetails(userID, uint(pathID))
	if err != nil {
		return mapProgressionError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Learning path progress fetched!", progress)
}

// MarkCourseCompleted closes out a course inside a path the caller owns,
// unlocking the next course in sequence
func MarkCourseCompleted(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedMarkCourseCompleted").(*struct {
		LearningPathID uint `json:"learningPathId" validate:"required"`
		CourseID       uint `json:"courseId" validate:"required"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var pe course.LearningPathEnrollment
	if err := db.Where("user_id = ? AND learning_path_id = ? AND is_deleted = false", userID, reqData.LearningPathID).
		First(&pe).Error; err != nil {
		return mapProgressionError(c, progression.ErrPathEnrollmentNotFound)
	}

	updated, err := Progression().MarkCourseCompleted(pe.ID, reqData.CourseID)
	if err != nil {
		return mapProgressionError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course marked completed!", updated)
}

// CreateLearningPath lets an admin assemble a new bundle
func CreateLearningPath(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCreateLearningPath").(*struct {
		Title     string  `json:"title" validate:"required,min=3"`
		Price     float64 `json:"price" validate:"gte=0"`
		CourseIDs []uint  `json:"courseIds" validate:"required,min=1"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var count int64
	db.Model(&course.Course{}).Where("id IN ? AND is_deleted = false", reqData.CourseIDs).Count(&count)
	if count != int64(len(reqData.CourseIDs)) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "One or more courses not found!", nil)
	}

	path := course.LearningPath{
		Title: reqData.Title,
		Price: pricing.Truncate2(reqData.Price),
	}
	if err := db.Create(&path).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create learning path!", nil)
	}

	for i, courseID := range reqData.CourseIDs {
		pc := course.LearningPathCourse{
			LearningPathID: path.ID,
			CourseID:       courseID,
			OrderNumber:    i + 1,
		}
		if err := db.Create(&pc).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to attach courses!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Learning path created!", path)
}

// PublishLearningPath makes a bundle purchasable
func PublishLearningPath(c *fiber.Ctx) error {
	pathID, err := c.ParamsInt("id")
	if err != nil || pathID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid learning path id!", nil)
	}

	db := database.Database.Db

	var path course.LearningPath
	if err := db.Where("id = ? AND is_deleted = false", pathID).First(&path).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Learning path not found!", nil)
	}

	if err := db.Model(&path).Update("is_published", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to publish learning path!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Learning path published!", nil)
}
