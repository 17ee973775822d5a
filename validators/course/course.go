package courseValidator

import (
	"time"

	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// CreateCourse validator middleware
func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string  `json:"title" validate:"required,min=3"`
			Description string  `json:"description"`
			Price       float64 `json:"price" validate:"gte=0"`
			Duration    int64   `json:"duration" validate:"gte=0"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCreateCourse", reqData)
		return c.Next()
	}
}

// AddChapter validator middleware
func AddChapter() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CourseID    uint   `json:"courseId" validate:"required"`
			Title       string `json:"title" validate:"required,min=3"`
			ContentType string `json:"contentType" validate:"required,oneof=TEXT VIDEO"`
			TextContent string `json:"textContent"`
			VideoURL    string `json:"videoUrl"`
			OrderIndex  int    `json:"orderIndex" validate:"gte=0"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAddChapter", reqData)
		return c.Next()
	}
}

// AddQuiz validator middleware
func AddQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CourseID    uint     `json:"courseId" validate:"required"`
			Title       string   `json:"title" validate:"required"`
			Question    string   `json:"question" validate:"required"`
			Options     []string `json:"options" validate:"required,min=2"`
			AnswerIndex int      `json:"answerIndex" validate:"gte=0"`
			OrderIndex  int      `json:"orderIndex" validate:"gte=0"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAddQuiz", reqData)
		return c.Next()
	}
}

// CompleteChapter validator middleware
func CompleteChapter() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CourseID  uint `json:"courseId" validate:"required"`
			ChapterID uint `json:"chapterId" validate:"required"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCompleteChapter", reqData)
		return c.Next()
	}
}

// SubmitQuiz validator middleware
func SubmitQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CourseID      uint `json:"courseId" validate:"required"`
			QuizID        uint `json:"quizId" validate:"required"`
			SelectedIndex int  `json:"selectedIndex" validate:"gte=0"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSubmitQuiz", reqData)
		return c.Next()
	}
}

// MarkCourseCompleted validator middleware
func MarkCourseCompleted() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			LearningPathID uint `json:"learningPathId" validate:"required"`
			CourseID       uint `json:"courseId" validate:"required"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedMarkCourseCompleted", reqData)
		return c.Next()
	}
}

// CreateLearningPath validator middleware
func CreateLearningPath() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title     string  `json:"title" validate:"required,min=3"`
			Price     float64 `json:"price" validate:"gte=0"`
			CourseIDs []uint  `json:"courseIds" validate:"required,min=1"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCreateLearningPath", reqData)
		return c.Next()
	}
}

// CreateOffer validator middleware
func CreateOffer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CourseID    uint      `json:"courseId" validate:"required"`
			DiscountPct float64   `json:"discountPct" validate:"required,gt=0,lte=100"`
			StartsAt    time.Time `json:"startsAt" validate:"required"`
			EndsAt      time.Time `json:"endsAt" validate:"required"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCreateOffer", reqData)
		return c.Next()
	}
}

// ReviewOffer validator middleware
func ReviewOffer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Status string `json:"status" validate:"required,oneof=APPROVED REJECTED"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := middleware.ValidateStruct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedReviewOffer", reqData)
		return c.Next()
	}
}
