package courseController

import (
	"errors"
	"log"

	"lms/certificates"
	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/models/course"
	"lms/services/progression"
	"lms/storage"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

var progressionSvc *progression.Service

// Progression lazily builds the progression service with the local
// certificate renderer. Freshly issued certificates are emailed to the
// student with a signed download link.
func Progression() *progression.Service {
	if progressionSvc == nil {
		store := storage.NewLocalStore()
		progressionSvc = progression.NewService(
			database.Database.Db,
			certificates.NewStorageRenderer(store),
			func(student models.User, contentName, storageKey string) {
				url, err := store.GetSignedURL(storageKey)
				if err != nil {
					log.Printf("[PROGRESSION] no signed URL for certificate %s: %v", storageKey, err)
					return
				}
				utils.SendCertificateIssued(student.Email, student.Name, contentName, url)
			},
		)
	}
	return progressionSvc
}

// CompleteChapter marks a chapter done for the caller and returns the
// refreshed enrollment. Completing the same chapter twice is a no-op.
func CompleteChapter(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCompleteChapter").(*struct {
		CourseID  uint `json:"courseId" validate:"required"`
		ChapterID uint `json:"chapterId" validate:"required"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	enrollment, err := Progression().CompleteChapter(userID, reqData.CourseID, reqData.ChapterID)
	if err != nil {
		return mapProgressionError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Chapter completed!", enrollment)
}

// SubmitQuiz records a quiz attempt and returns its grading plus the
// refreshed enrollment
func SubmitQuiz(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedSubmitQuiz").(*struct {
		CourseID      uint `json:"courseId" validate:"required"`
		QuizID        uint `json:"quizId" validate:"required"`
		SelectedIndex int  `json:"selectedIndex" validate:"gte=0"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	attempt, enrollment, err := Progression().SubmitQuiz(userID, reqData.CourseID, reqData.QuizID, reqData.SelectedIndex)
	if err != nil {
		return mapProgressionError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz submitted!", fiber.Map{
		"attempt":    attempt,
		"enrollment": enrollment,
	})
}

// GetMyEnrollments lists the caller's course enrollments with progress counters
func GetMyEnrollments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var enrollments []course.Enrollment
	if err := database.Database.Db.
		Where("user_id = ? AND is_deleted = false", userID).
		Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched!", enrollments)
}

func mapProgressionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, progression.ErrNotEnrolled):
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, err.Error(), nil)
	case errors.Is(err, progression.ErrChapterNotFound),
		errors.Is(err, progression.ErrQuizNotFound),
		errors.Is(err, progression.ErrPathEnrollmentNotFound),
		errors.Is(err, progression.ErrCourseNotInPath):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, err.Error(), nil)
	case errors.Is(err, progression.ErrCourseNotFinished):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
	}
	return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
}
