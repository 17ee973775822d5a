package courseController

import (
	"lms/database"
	"lms/middleware"
	"lms/models/course"
	"lms/storage"

	"github.com/gofiber/fiber/v2"
)

// GetMyCertificates lists the caller's certificates with signed download links
func GetMyCertificates(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var certs []course.Certificate
	if err := database.Database.Db.
		Where("user_id = ? AND is_deleted = false", userID).
		Order("issued_at desc").Find(&certs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	store := storage.NewLocalStore()

	type certEntry struct {
		course.Certificate
		DownloadURL string `json:"download_url"`
	}

	entries := make([]certEntry, 0, len(certs))
	for _, cert := range certs {
		url, err := store.GetSignedURL(cert.StorageKey)
		if err != nil {
			url = ""
		}
		entries = append(entries, certEntry{Certificate: cert, DownloadURL: url})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched!", entries)
}
