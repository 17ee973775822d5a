package courseController

import (
	"encoding/json"

	"lms/database"
	"lms/middleware"
	"lms/models/course"
	"lms/services/pricing"

	"github.com/gofiber/fiber/v2"
)

// ListCourses returns the published catalog with effective prices resolved fresh
func ListCourses(c *fiber.Ctx) error {
	db := database.Database.Db

	var courses []course.Course
	if err := db.Where("is_deleted = false AND is_published = true AND status = 'ACTIVE'").
		Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	ids := make([]uint, 0, len(courses))
	for _, crs := range courses {
		ids = append(ids, crs.ID)
	}
	prices, err := pricing.Resolve(db, ids)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to resolve prices!", nil)
	}

	type catalogEntry struct {
		course.Course
		EffectivePrice float64 `json:"effective_price"`
		HasOffer       bool    `json:"has_offer"`
	}

	entries := make([]catalogEntry, 0, len(courses))
	for _, crs := range courses {
		p := prices[crs.ID]
		entries = append(entries, catalogEntry{Course: crs, EffectivePrice: p.EffectivePrice, HasOffer: p.HasOffer})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched!", entries)
}

// GetCourse returns a course with its published chapters and quizzes.
// Quiz answers are never serialized.
func GetCourse(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil || courseID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
	}

	db := database.Database.Db

	var crs course.Course
	if err := db.Where("id = ? AND is_deleted = false AND is_published = true", courseID).First(&crs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var chapters []course.Chapter
	db.Where("course_id = ? AND is_deleted = false AND is_published = true", courseID).
		Order("order_index asc").Find(&chapters)

	var quizzes []course.Quiz
	db.Where("course_id = ? AND is_deleted = false", courseID).
		Order("order_index asc").Find(&quizzes)

	prices, err := pricing.Resolve(db, []uint{crs.ID})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to resolve prices!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched!", fiber.Map{
		"course":          crs,
		"effective_price": prices[crs.ID].EffectivePrice,
		"chapters":        chapters,
		"quizzes":         quizzes,
	})
}

// CreateCourse lets an instructor add a new draft course
func CreateCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCreateCourse").(*struct {
		Title       string  `json:"title" validate:"required,min=3"`
		Description string  `json:"description"`
		Price       float64 `json:"price" validate:"gte=0"`
		Duration    int64   `json:"duration" validate:"gte=0"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	crs := course.Course{
		Title:        reqData.Title,
		Description:  reqData.Description,
		InstructorID: userID,
		Price:        pricing.Truncate2(reqData.Price),
		Duration:     reqData.Duration,
		Status:       "DRAFT",
	}
	if err := database.Database.Db.Create(&crs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created!", crs)
}

// PublishCourse flips a draft course live. Only the owning instructor may do this.
func PublishCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("id")
	if err != nil || courseID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
	}

	db := database.Database.Db

	var crs course.Course
	if err := db.Where("id = ? AND instructor_id = ? AND is_deleted = false", courseID, userID).First(&crs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if err := db.Model(&crs).Updates(map[string]interface{}{
		"is_published": true,
		"status":       "ACTIVE",
	}).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to publish course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course published!", nil)
}

// AddChapter appends a chapter to the instructor's course
func AddChapter(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedAddChapter").(*struct {
		CourseID    uint   `json:"courseId" validate:"required"`
		Title       string `json:"title" validate:"required,min=3"`
		ContentType string `json:"contentType" validate:"required,oneof=TEXT VIDEO"`
		TextContent string `json:"textContent"`
		VideoURL    string `json:"videoUrl"`
		OrderIndex  int    `json:"orderIndex" validate:"gte=0"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var crs course.Course
	if err := db.Where("id = ? AND instructor_id = ? AND is_deleted = false", reqData.CourseID, userID).First(&crs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	chapter := course.Chapter{
		CourseID:    reqData.CourseID,
		Title:       reqData.Title,
		ContentType: reqData.ContentType,
		TextContent: reqData.TextContent,
		VideoURL:    reqData.VideoURL,
		OrderIndex:  reqData.OrderIndex,
		IsPublished: true,
	}
	if err := db.Create(&chapter).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add chapter!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Chapter added!", chapter)
}

// AddQuiz appends a quiz question to the instructor's course
func AddQuiz(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedAddQuiz").(*struct {
		CourseID    uint     `json:"courseId" validate:"required"`
		Title       string   `json:"title" validate:"required"`
		Question    string   `json:"question" validate:"required"`
		Options     []string `json:"options" validate:"required,min=2"`
		AnswerIndex int      `json:"answerIndex" validate:"gte=0"`
		OrderIndex  int      `json:"orderIndex" validate:"gte=0"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.AnswerIndex >= len(reqData.Options) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Answer index out of range!", nil)
	}

	db := database.Database.Db

	var crs course.Course
	if err := db.Where("id = ? AND instructor_id = ? AND is_deleted = false", reqData.CourseID, userID).First(&crs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	encodedOptions, _ := json.Marshal(reqData.Options)
	quiz := course.Quiz{
		CourseID:    reqData.CourseID,
		Title:       reqData.Title,
		Question:    reqData.Question,
		Options:     string(encodedOptions),
		AnswerIndex: reqData.AnswerIndex,
		OrderIndex:  reqData.OrderIndex,
	}
	if err := db.Create(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add quiz!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz added!", quiz)
}
