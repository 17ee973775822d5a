package progression

import (
	"errors"
	"log"
	"time"

	"lms/certificates"
	"lms/models"
	"lms/models/course"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrNotEnrolled means the user has no enrollment for the course
	ErrNotEnrolled = errors.New("not enrolled in this course")
	// ErrChapterNotFound means the chapter does not belong to the course
	ErrChapterNotFound = errors.New("chapter not found in this course")
	// ErrQuizNotFound means the quiz does not belong to the course
	ErrQuizNotFound = errors.New("quiz not found in this course")
	// ErrPathEnrollmentNotFound means no progression record exists
	ErrPathEnrollmentNotFound = errors.New("learning path enrollment not found")
	// ErrCourseNotInPath means the course is not bundled in the learning path
	ErrCourseNotInPath = errors.New("course is not part of this learning path")
	// ErrCourseNotFinished gates path completion on full course completion
	ErrCourseNotFinished = errors.New("complete every chapter and quiz of the course first")
)

// statusRank orders enrollment states; progression never regresses
var statusRank = map[string]int{
	course.EnrollmentNotStarted: 0,
	course.EnrollmentInProgress: 1,
	course.EnrollmentCompleted:  2,
}

// NotifyFunc is called after a certificate is rendered and recorded, so the
// student can be sent their download link. May be nil.
type NotifyFunc func(student models.User, contentName, storageKey string)

// Service drives course progress and the learning-path progression state
// machine, including certificate triggering on completion.
type Service struct {
	db       *gorm.DB
	renderer certificates.Renderer
	notify   NotifyFunc
}

// NewService wires the progression service
func NewService(db *gorm.DB, renderer certificates.Renderer, notify NotifyFunc) *Service {
	return &Service{db: db, renderer: renderer, notify: notify}
}

// CompleteChapter records a chapter as done for the user and refreshes the
// enrollment's derived progress. Idempotent per (user, chapter).
func (s *Service) CompleteChapter(userID, courseID, chapterID uint) (*course.Enrollment, error) {
	enr, err := s.enrollment(userID, courseID)
	if err != nil {
		return nil, err
	}

	var chapter course.Chapter
	if err := s.db.Where("id = ? AND course_id = ? AND is_deleted = false", chapterID, courseID).
		First(&chapter).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChapterNotFound
		}
		return nil, err
	}

	var existing course.ChapterCompletion
	err = s.db.Where("user_id = ? AND chapter_id = ? AND is_deleted = false", userID, chapterID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		completion := course.ChapterCompletion{UserID: userID, ChapterID: chapterID, CourseID: courseID}
		if err := s.db.Create(&completion).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	return s.refreshEnrollment(enr)
}

// SubmitQuiz grades an attempt. A correct attempt counts the quiz complete
// for enrollment progress; repeat attempts are numbered.
func (s *Service) SubmitQuiz(userID, courseID, quizID uint, selectedIndex int) (*course.QuizAttempt, *course.Enrollment, error) {
	enr, err := s.enrollment(userID, courseID)
	if err != nil {
		return nil, nil, err
	}

	var quiz course.Quiz
	if err := s.db.Where("id = ? AND course_id = ? AND is_deleted = false", quizID, courseID).
		First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrQuizNotFound
		}
		return nil, nil, err
	}

	var attempts int64
	if err := s.db.Model(&course.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ? AND is_deleted = false", userID, quizID).
		Count(&attempts).Error; err != nil {
		return nil, nil, err
	}

	attempt := course.QuizAttempt{
		UserID:        userID,
		QuizID:        quizID,
		CourseID:      courseID,
		SelectedIndex: selectedIndex,
		IsCorrect:     selectedIndex == quiz.AnswerIndex,
		AttemptNumber: int(attempts) + 1,
	}
	if err := s.db.Create(&attempt).Error; err != nil {
		return nil, nil, err
	}

	enr, err = s.refreshEnrollment(enr)
	if err != nil {
		return nil, nil, err
	}
	return &attempt, enr, nil
}

// refreshEnrollment recomputes the enrollment's counters and derived status
// from the completion tables and triggers the single-course certificate the
// first time it reaches 100%.
func (s *Service) refreshEnrollment(enr *course.Enrollment) (*course.Enrollment, error) {
	var completedChapters int64
	if err := s.db.Model(&course.ChapterCompletion{}).
		Where("user_id = ? AND course_id = ? AND is_deleted = false", enr.UserID, enr.CourseID).
		Count(&completedChapters).Error; err != nil {
		return nil, err
	}

	var completedQuizzes int64
	if err := s.db.Model(&course.QuizAttempt{}).
		Where("user_id = ? AND course_id = ? AND is_correct = true AND is_deleted = false", enr.UserID, enr.CourseID).
		Distinct("quiz_id").Count(&completedQuizzes).Error; err != nil {
		return nil, err
	}

	// Content may have grown since enrollment; totals track the live catalog
	var totalChapters, totalQuizzes int64
	if err := s.db.Model(&course.Chapter{}).
		Where("course_id = ? AND is_deleted = false", enr.CourseID).Count(&totalChapters).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&course.Quiz{}).
		Where("course_id = ? AND is_deleted = false", enr.CourseID).Count(&totalQuizzes).Error; err != nil {
		return nil, err
	}

	enr.CompletedChapters = int(completedChapters)
	enr.CompletedQuizzes = int(completedQuizzes)
	enr.TotalChapters = int(totalChapters)
	enr.TotalQuizzes = int(totalQuizzes)

	next := course.EnrollmentNotStarted
	if enr.CompletedChapters > 0 || enr.CompletedQuizzes > 0 {
		next = course.EnrollmentInProgress
	}
	if enr.IsComplete() {
		next = course.EnrollmentCompleted
	}
	if statusRank[next] > statusRank[enr.Status] {
		enr.Status = next
	}

	if enr.Status == course.EnrollmentCompleted && enr.CompletedAt == nil {
		now := time.Now()
		enr.CompletedAt = &now
	}

	if err := s.db.Save(enr).Error; err != nil {
		return nil, err
	}

	if enr.Status == course.EnrollmentCompleted && enr.CertificateID == nil {
		s.issueCourseCertificate(enr)
	}

	return enr, nil
}

// MarkCourseCompleted records a bundled course as finished inside a path
// enrollment: gated on the underlying course enrollment being 100% complete,
// it advances the unlock watermark to the next order number, recomputes the
// path status and fires the path certificate once everything is done.
func (s *Service) MarkCourseCompleted(pathEnrollmentID, courseID uint) (*course.LearningPathEnrollment, error) {
	var pe course.LearningPathEnrollment
	if err := s.db.Where("id = ? AND is_deleted = false", pathEnrollmentID).First(&pe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPathEnrollmentNotFound
		}
		return nil, err
	}

	pcs, err := s.pathCourses(pe.LearningPathID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, pc := range pcs {
		if pc.CourseID == courseID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrCourseNotInPath
	}

	enr, err := s.enrollment(pe.UserID, courseID)
	if err != nil {
		return nil, err
	}
	if !enr.IsComplete() {
		return nil, ErrCourseNotFinished
	}

	completed := pe.CompletedSet()
	if !containsID(completed, courseID) {
		completed = append(completed, courseID)
		pe.SetCompleted(completed)
	}

	unlocked := pe.UnlockedSet()
	if !containsID(unlocked, courseID) {
		unlocked = append(unlocked, courseID)
	}

	// Unlock the next course in order; the watermark never decreases
	if idx+1 < len(pcs) {
		next := pcs[idx+1]
		if !containsID(unlocked, next.CourseID) {
			unlocked = append(unlocked, next.CourseID)
		}
		if next.OrderNumber > pe.UnlockWatermark {
			pe.UnlockWatermark = next.OrderNumber
		}
	}
	pe.SetUnlocked(unlocked)

	s.advancePathStatus(&pe, pcs, completed)

	if err := s.db.Save(&pe).Error; err != nil {
		return nil, err
	}

	if pe.Status == course.EnrollmentCompleted && pe.CertificateID == nil {
		s.issuePathCertificate(&pe)
	}

	return &pe, nil
}

// PathCourseProgress is the reconciled per-course view of a path enrollment
type PathCourseProgress struct {
	CourseID    uint `json:"course_id"`
	OrderNumber int  `json:"order_number"`
	Unlocked    bool `json:"unlocked"`
	Completed   bool `json:"completed"`
}

// PathProgress is a path enrollment with its reconciled course breakdown
type PathProgress struct {
	Enrollment *course.LearningPathEnrollment `json:"enrollment"`
	Courses    []PathCourseProgress           `json:"courses"`
}

// PathDetails reconciles the stored unlocked/completed sets against live
// course-enrollment completion, so a course finished out-of-band is
// reflected without a separate sync job. Persists any advance it discovers.
func (s *Service) PathDetails(userID, pathID uint) (*PathProgress, error) {
	var pe course.LearningPathEnrollment
	if err := s.db.Where("user_id = ? AND learning_path_id = ? AND is_deleted = false", userID, pathID).
		First(&pe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPathEnrollmentNotFound
		}
		return nil, err
	}

	pcs, err := s.pathCourses(pathID)
	if err != nil {
		return nil, err
	}

	courseIDs := make([]uint, 0, len(pcs))
	for _, pc := range pcs {
		courseIDs = append(courseIDs, pc.CourseID)
	}
	var enrollments []course.Enrollment
	if err := s.db.Where("user_id = ? AND course_id IN ? AND is_deleted = false", userID, courseIDs).
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	done := make(map[uint]bool, len(enrollments))
	for _, enr := range enrollments {
		if enr.IsComplete() {
			done[enr.CourseID] = true
		}
	}

	// Recompute: a course is unlocked when it is first in order or every
	// earlier course is complete. The stored watermark only ever moves up.
	var completed []uint
	var unlocked []uint
	watermark := pe.UnlockWatermark
	prefixComplete := true
	for i, pc := range pcs {
		isUnlocked := i == 0 || prefixComplete || pc.OrderNumber <= pe.UnlockWatermark
		if done[pc.CourseID] {
			completed = append(completed, pc.CourseID)
		} else {
			// keep explicit completions recorded earlier
			if containsID(pe.CompletedSet(), pc.CourseID) {
				completed = append(completed, pc.CourseID)
			} else {
				prefixComplete = false
			}
		}
		if isUnlocked {
			unlocked = append(unlocked, pc.CourseID)
			if pc.OrderNumber > watermark {
				watermark = pc.OrderNumber
			}
		}
	}

	pe.SetCompleted(completed)
	pe.SetUnlocked(unlocked)
	pe.UnlockWatermark = watermark
	s.advancePathStatus(&pe, pcs, completed)

	if err := s.db.Save(&pe).Error; err != nil {
		return nil, err
	}

	if pe.Status == course.EnrollmentCompleted && pe.CertificateID == nil {
		s.issuePathCertificate(&pe)
	}

	progress := &PathProgress{Enrollment: &pe}
	unlockedSet := make(map[uint]bool, len(unlocked))
	for _, id := range unlocked {
		unlockedSet[id] = true
	}
	completedSet := make(map[uint]bool, len(completed))
	for _, id := range completed {
		completedSet[id] = true
	}
	for _, pc := range pcs {
		progress.Courses = append(progress.Courses, PathCourseProgress{
			CourseID:    pc.CourseID,
			OrderNumber: pc.OrderNumber,
			Unlocked:    unlockedSet[pc.CourseID],
			Completed:   completedSet[pc.CourseID],
		})
	}
	return progress, nil
}

// advancePathStatus recomputes the overall status without ever regressing it
func (s *Service) advancePathStatus(pe *course.LearningPathEnrollment, pcs []course.LearningPathCourse, completed []uint) {
	next := course.EnrollmentNotStarted
	if len(completed) > 0 {
		next = course.EnrollmentInProgress
	}
	if len(completed) >= len(pcs) && len(pcs) > 0 {
		next = course.EnrollmentCompleted
	}
	if statusRank[next] > statusRank[pe.Status] {
		pe.Status = next
	}
	if pe.Status == course.EnrollmentCompleted && pe.CompletedAt == nil {
		now := time.Now()
		pe.CompletedAt = &now
	}
}

func (s *Service) enrollment(userID, courseID uint) (*course.Enrollment, error) {
	var enr course.Enrollment
	if err := s.db.Where("user_id = ? AND course_id = ? AND is_deleted = false", userID, courseID).
		First(&enr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}
	return &enr, nil
}

func (s *Service) pathCourses(pathID uint) ([]course.LearningPathCourse, error) {
	var pcs []course.LearningPathCourse
	if err := s.db.Where("learning_path_id = ? AND is_deleted = false", pathID).
		Order("order_number asc").Find(&pcs).Error; err != nil {
		return nil, err
	}
	if len(pcs) == 0 {
		return nil, ErrCourseNotInPath
	}
	return pcs, nil
}

// issueCourseCertificate renders and records the single-course certificate.
// Render failures are logged and left for the next completion event to retry.
func (s *Service) issueCourseCertificate(enr *course.Enrollment) {
	var c course.Course
	if err := s.db.Where("id = ?", enr.CourseID).First(&c).Error; err != nil {
		log.Printf("[PROGRESSION] certificate skipped, course %d not found: %v", enr.CourseID, err)
		return
	}
	cert := s.issueCertificate(enr.UserID, c.Title, c.InstructorID, &enr.CourseID, nil)
	if cert == nil {
		return
	}
	if err := s.db.Model(&course.Enrollment{}).Where("id = ?", enr.ID).
		Update("certificate_id", cert.ID).Error; err != nil {
		log.Printf("[PROGRESSION] failed to attach certificate %d to enrollment %d: %v", cert.ID, enr.ID, err)
		return
	}
	enr.CertificateID = &cert.ID
}

// issuePathCertificate renders and records the learning-path certificate
func (s *Service) issuePathCertificate(pe *course.LearningPathEnrollment) {
	var path course.LearningPath
	if err := s.db.Where("id = ?", pe.LearningPathID).First(&path).Error; err != nil {
		log.Printf("[PROGRESSION] certificate skipped, path %d not found: %v", pe.LearningPathID, err)
		return
	}
	cert := s.issueCertificate(pe.UserID, path.Title, 0, nil, &pe.LearningPathID)
	if cert == nil {
		return
	}
	if err := s.db.Model(&course.LearningPathEnrollment{}).Where("id = ?", pe.ID).
		Update("certificate_id", cert.ID).Error; err != nil {
		log.Printf("[PROGRESSION] failed to attach certificate %d to path enrollment %d: %v", cert.ID, pe.ID, err)
		return
	}
	pe.CertificateID = &cert.ID
}

func (s *Service) issueCertificate(userID uint, contentName string, instructorID uint, courseID, pathID *uint) *course.Certificate {
	var student models.User
	if err := s.db.Where("id = ?", userID).First(&student).Error; err != nil {
		log.Printf("[PROGRESSION] certificate skipped, user %d not found: %v", userID, err)
		return nil
	}

	instructorName := ""
	if instructorID != 0 {
		var instructor models.User
		if err := s.db.Where("id = ?", instructorID).First(&instructor).Error; err == nil {
			instructorName = instructor.Name
		}
	}

	key, err := s.renderer.Generate(certificates.Request{
		UserID:         userID,
		StudentName:    student.Name,
		ContentName:    contentName,
		InstructorName: instructorName,
		CourseID:       courseID,
		LearningPathID: pathID,
	})
	if err != nil {
		log.Printf("[PROGRESSION] certificate render failed for user %d: %v", userID, err)
		return nil
	}

	cert := course.Certificate{
		UserID:            userID,
		CourseID:          courseID,
		LearningPathID:    pathID,
		StorageKey:        key,
		CertificateNumber: uuid.NewString(),
		IssuedAt:          time.Now(),
	}
	if err := s.db.Create(&cert).Error; err != nil {
		log.Printf("[PROGRESSION] failed to record certificate for user %d: %v", userID, err)
		return nil
	}

	if s.notify != nil {
		s.notify(student, contentName, key)
	}
	return &cert
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
