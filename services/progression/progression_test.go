package progression

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"lms/certificates"
	"lms/models"
	"lms/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeRenderer struct {
	calls int
	fail  bool
}

func (r *fakeRenderer) Generate(req certificates.Request) (string, error) {
	if r.fail {
		return "", errors.New("renderer unavailable")
	}
	r.calls++
	return fmt.Sprintf("certificates/%d.txt", r.calls), nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&course.Course{}, &course.Chapter{}, &course.ChapterCompletion{},
		&course.Quiz{}, &course.QuizAttempt{},
		&course.Enrollment{},
		&course.LearningPath{}, &course.LearningPathCourse{}, &course.LearningPathEnrollment{},
		&course.Certificate{},
	))
	require.NoError(t, db.Create(&models.User{Name: "Student", Email: "s@example.com", Role: models.RoleStudent}).Error)
	return db
}

// courseWithContent creates a course with the given chapter and quiz counts
// plus an enrollment for user 1
func courseWithContent(t *testing.T, db *gorm.DB, chapters, quizzes int) (*course.Course, []course.Chapter, []course.Quiz) {
	t.Helper()
	crs := course.Course{Title: "Go Basics", InstructorID: 1, Price: 100}
	require.NoError(t, db.Create(&crs).Error)

	chs := make([]course.Chapter, chapters)
	for i := range chs {
		chs[i] = course.Chapter{CourseID: crs.ID, Title: fmt.Sprintf("Chapter %d", i+1), OrderIndex: i, IsPublished: true}
		require.NoError(t, db.Create(&chs[i]).Error)
	}

	qs := make([]course.Quiz, quizzes)
	for i := range qs {
		qs[i] = course.Quiz{CourseID: crs.ID, Title: fmt.Sprintf("Quiz %d", i+1), Question: "?", Options: `["a","b"]`, AnswerIndex: 1, OrderIndex: i}
		require.NoError(t, db.Create(&qs[i]).Error)
	}

	enr := course.Enrollment{
		UserID: 1, CourseID: crs.ID, Status: course.EnrollmentNotStarted,
		TotalChapters: chapters, TotalQuizzes: quizzes,
	}
	require.NoError(t, db.Create(&enr).Error)

	return &crs, chs, qs
}

func TestCompleteChapter(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &fakeRenderer{}, nil)

	crs, chs, _ := courseWithContent(t, db, 2, 0)

	enr, err := svc.CompleteChapter(1, crs.ID, chs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, enr.CompletedChapters)
	assert.Equal(t, course.EnrollmentInProgress, enr.Status)
	assert.Nil(t, enr.CompletedAt)

	t.Run("idempotent", func(t *testing.T) {
		again, err := svc.CompleteChapter(1, crs.ID, chs[0].ID)
		require.NoError(t, err)
		assert.Equal(t, 1, again.CompletedChapters)

		var completions int64
		db.Model(&course.ChapterCompletion{}).Where("user_id = 1").Count(&completions)
		assert.Equal(t, int64(1), completions)
	})

	t.Run("unknown_chapter", func(t *testing.T) {
		_, err := svc.CompleteChapter(1, crs.ID, 9999)
		assert.ErrorIs(t, err, ErrChapterNotFound)
	})

	t.Run("not_enrolled", func(t *testing.T) {
		_, err := svc.CompleteChapter(42, crs.ID, chs[0].ID)
		assert.ErrorIs(t, err, ErrNotEnrolled)
	})
}

func TestSubmitQuiz(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &fakeRenderer{}, nil)

	crs, _, qs := courseWithContent(t, db, 0, 1)

	attempt, enr, err := svc.SubmitQuiz(1, crs.ID, qs[0].ID, 0)
	require.NoError(t, err)
	assert.False(t, attempt.IsCorrect)
	assert.Equal(t, 1, attempt.AttemptNumber)
	assert.Equal(t, 0, enr.CompletedQuizzes)

	attempt, enr, err = svc.SubmitQuiz(1, crs.ID, qs[0].ID, 1)
	require.NoError(t, err)
	assert.True(t, attempt.IsCorrect)
	assert.Equal(t, 2, attempt.AttemptNumber)
	assert.Equal(t, 1, enr.CompletedQuizzes)

	t.Run("unknown_quiz", func(t *testing.T) {
		_, _, err := svc.SubmitQuiz(1, crs.ID, 9999, 0)
		assert.ErrorIs(t, err, ErrQuizNotFound)
	})
}

func TestCourseCompletionIssuesCertificateOnce(t *testing.T) {
	db := newTestDB(t)
	renderer := &fakeRenderer{}
	var notices []string
	svc := NewService(db, renderer, func(student models.User, contentName, storageKey string) {
		notices = append(notices, fmt.Sprintf("%s|%s|%s", student.Email, contentName, storageKey))
	})

	crs, chs, qs := courseWithContent(t, db, 1, 1)

	_, err := svc.CompleteChapter(1, crs.ID, chs[0].ID)
	require.NoError(t, err)

	_, enr, err := svc.SubmitQuiz(1, crs.ID, qs[0].ID, 1)
	require.NoError(t, err)

	assert.Equal(t, course.EnrollmentCompleted, enr.Status)
	assert.NotNil(t, enr.CompletedAt)
	require.NotNil(t, enr.CertificateID)
	assert.Equal(t, 1, renderer.calls)

	// the student is told where to fetch the certificate
	require.Len(t, notices, 1)
	assert.Equal(t, "s@example.com|Go Basics|certificates/1.txt", notices[0])

	// another passing attempt must not mint a second certificate
	_, enr, err = svc.SubmitQuiz(1, crs.ID, qs[0].ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, renderer.calls)
	assert.Len(t, notices, 1)

	var certs int64
	db.Model(&course.Certificate{}).Count(&certs)
	assert.Equal(t, int64(1), certs)
}

func TestCertificateRenderFailureRetriedNextEvent(t *testing.T) {
	db := newTestDB(t)
	renderer := &fakeRenderer{fail: true}
	notified := 0
	svc := NewService(db, renderer, func(models.User, string, string) { notified++ })

	crs, chs, _ := courseWithContent(t, db, 1, 0)

	// completion succeeds even though the renderer is down; no email goes out
	enr, err := svc.CompleteChapter(1, crs.ID, chs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, course.EnrollmentCompleted, enr.Status)
	assert.Nil(t, enr.CertificateID)
	assert.Equal(t, 0, notified)

	// the next completion event picks the certificate up
	renderer.fail = false
	enr, err = svc.CompleteChapter(1, crs.ID, chs[0].ID)
	require.NoError(t, err)
	require.NotNil(t, enr.CertificateID)
	assert.Equal(t, 1, notified)
}

// pathFixture creates a 3-course path, full enrollments for user 1 and the
// seeded path enrollment with the first course unlocked
func pathFixture(t *testing.T, db *gorm.DB) (*course.LearningPath, []*course.Course, *course.LearningPathEnrollment) {
	t.Helper()

	courses := make([]*course.Course, 3)
	path := course.LearningPath{Title: "Backend Track", IsPublished: true}
	require.NoError(t, db.Create(&path).Error)

	for i := range courses {
		crs := course.Course{Title: fmt.Sprintf("Course %d", i+1), InstructorID: 1, Price: 100}
		require.NoError(t, db.Create(&crs).Error)
		courses[i] = &crs

		pc := course.LearningPathCourse{LearningPathID: path.ID, CourseID: crs.ID, OrderNumber: i + 1}
		require.NoError(t, db.Create(&pc).Error)

		pid := path.ID
		enr := course.Enrollment{
			UserID: 1, CourseID: crs.ID, LearningPathID: &pid,
			Status: course.EnrollmentNotStarted, TotalChapters: 1,
		}
		require.NoError(t, db.Create(&enr).Error)
	}

	pe := course.LearningPathEnrollment{
		UserID: 1, LearningPathID: path.ID,
		UnlockWatermark: 1, Status: course.EnrollmentNotStarted,
	}
	pe.SetUnlocked([]uint{courses[0].ID})
	require.NoError(t, db.Create(&pe).Error)

	return &path, courses, &pe
}

func finishCourse(t *testing.T, db *gorm.DB, courseID uint) {
	t.Helper()
	require.NoError(t, db.Model(&course.Enrollment{}).
		Where("user_id = 1 AND course_id = ?", courseID).
		Updates(map[string]interface{}{"completed_chapters": 1, "status": course.EnrollmentCompleted}).Error)
}

func TestMarkCourseCompleted(t *testing.T) {
	db := newTestDB(t)
	renderer := &fakeRenderer{}
	svc := NewService(db, renderer, nil)

	path, courses, pe := pathFixture(t, db)

	t.Run("gated_on_course_completion", func(t *testing.T) {
		_, err := svc.MarkCourseCompleted(pe.ID, courses[0].ID)
		assert.ErrorIs(t, err, ErrCourseNotFinished)
	})

	t.Run("course_not_in_path", func(t *testing.T) {
		stray := course.Course{Title: "Stray", InstructorID: 1, Price: 10}
		require.NoError(t, db.Create(&stray).Error)
		_, err := svc.MarkCourseCompleted(pe.ID, stray.ID)
		assert.ErrorIs(t, err, ErrCourseNotInPath)
	})

	t.Run("unlocks_next_course", func(t *testing.T) {
		finishCourse(t, db, courses[0].ID)

		updated, err := svc.MarkCourseCompleted(pe.ID, courses[0].ID)
		require.NoError(t, err)

		assert.Equal(t, 2, updated.UnlockWatermark)
		assert.Contains(t, updated.UnlockedSet(), courses[1].ID)
		assert.NotContains(t, updated.UnlockedSet(), courses[2].ID)
		assert.Contains(t, updated.CompletedSet(), courses[0].ID)
		assert.Equal(t, course.EnrollmentInProgress, updated.Status)
	})

	t.Run("watermark_never_regresses", func(t *testing.T) {
		// re-marking the first course must not move the watermark back down
		updated, err := svc.MarkCourseCompleted(pe.ID, courses[0].ID)
		require.NoError(t, err)
		assert.Equal(t, 2, updated.UnlockWatermark)
	})

	t.Run("full_path_completion_issues_certificate_once", func(t *testing.T) {
		finishCourse(t, db, courses[1].ID)
		_, err := svc.MarkCourseCompleted(pe.ID, courses[1].ID)
		require.NoError(t, err)

		finishCourse(t, db, courses[2].ID)
		updated, err := svc.MarkCourseCompleted(pe.ID, courses[2].ID)
		require.NoError(t, err)

		assert.Equal(t, course.EnrollmentCompleted, updated.Status)
		assert.NotNil(t, updated.CompletedAt)
		require.NotNil(t, updated.CertificateID)
		assert.Equal(t, 1, renderer.calls)

		// re-marking after completion keeps a single certificate
		updated, err = svc.MarkCourseCompleted(pe.ID, courses[2].ID)
		require.NoError(t, err)
		assert.Equal(t, 1, renderer.calls)

		var cert course.Certificate
		require.NoError(t, db.First(&cert, *updated.CertificateID).Error)
		require.NotNil(t, cert.LearningPathID)
		assert.Equal(t, path.ID, *cert.LearningPathID)
		assert.Nil(t, cert.CourseID)
	})
}

func TestPathDetailsReconciliation(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &fakeRenderer{}, nil)

	_, courses, pe := pathFixture(t, db)

	t.Run("initial_state", func(t *testing.T) {
		progress, err := svc.PathDetails(1, pe.LearningPathID)
		require.NoError(t, err)
		require.Len(t, progress.Courses, 3)

		assert.True(t, progress.Courses[0].Unlocked)
		assert.False(t, progress.Courses[1].Unlocked)
		assert.False(t, progress.Courses[2].Unlocked)
	})

	t.Run("out_of_band_completion_unlocks_next", func(t *testing.T) {
		// course 1 finished without MarkCourseCompleted ever being called
		finishCourse(t, db, courses[0].ID)

		progress, err := svc.PathDetails(1, pe.LearningPathID)
		require.NoError(t, err)

		assert.True(t, progress.Courses[0].Completed)
		assert.True(t, progress.Courses[1].Unlocked)
		assert.False(t, progress.Courses[2].Unlocked)
		assert.Equal(t, 2, progress.Enrollment.UnlockWatermark)
		assert.Equal(t, course.EnrollmentInProgress, progress.Enrollment.Status)
	})

	t.Run("not_enrolled", func(t *testing.T) {
		_, err := svc.PathDetails(42, pe.LearningPathID)
		assert.ErrorIs(t, err, ErrPathEnrollmentNotFound)
	})
}
