package certificates

import (
	"fmt"
	"strings"

	"lms/storage"
)

// Request carries everything the renderer needs to produce a certificate
type Request struct {
	UserID         uint
	StudentName    string
	ContentName    string
	InstructorName string
	CourseID       *uint
	LearningPathID *uint
}

// Renderer produces a certificate document and returns its storage key.
// Actual PDF composition is a collaborator concern; the core only passes
// keys through.
type Renderer interface {
	Generate(req Request) (string, error)
}

// StorageRenderer writes a minimal certificate document to object storage.
// A PDF renderer can replace it without touching the progression logic.
type StorageRenderer struct {
	Store storage.Uploader
}

// NewStorageRenderer wires the renderer with its object store
func NewStorageRenderer(store storage.Uploader) *StorageRenderer {
	return &StorageRenderer{Store: store}
}

// Generate uploads the certificate content and returns the storage key
func (r *StorageRenderer) Generate(req Request) (string, error) {
	body := fmt.Sprintf(
		"Certificate of Completion\n\n%s\nhas successfully completed\n%s\nInstructor: %s\n",
		req.StudentName, req.ContentName, req.InstructorName,
	)
	filename := fmt.Sprintf("certificate-%d.txt", req.UserID)
	return r.Store.Upload(strings.NewReader(body), "certificates", filename)
}
