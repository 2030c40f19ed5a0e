package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/learnsphere/learnsphere/models"
)

func seedCourse(t *testing.T, db *gorm.DB, published bool, lessons int) *models.Course {
	t.Helper()
	course := models.Course{
		Title:       "Go Basics",
		Price:       499,
		Published:   published,
		LessonCount: lessons,
	}
	require.NoError(t, db.Create(&course).Error)
	return &course
}

func TestEnrollUserInCourseSeedsProgress(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db, true, 8)

	created, err := EnrollUserInCourse(db, 1, course.ID)
	require.NoError(t, err)
	assert.True(t, created)

	var progress models.Progress
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", 1, course.ID).First(&progress).Error)
	assert.Equal(t, 8, progress.TotalLessons)
	assert.Empty(t, progress.CompletedLessons)

	var updated models.Course
	require.NoError(t, db.First(&updated, course.ID).Error)
	assert.Equal(t, 1, updated.EnrolledCount)
}

func TestEnrollUserInCourseIdempotent(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db, true, 3)

	created, err := EnrollUserInCourse(db, 1, course.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = EnrollUserInCourse(db, 1, course.ID)
	require.NoError(t, err)
	assert.False(t, created)

	var enrollments int64
	require.NoError(t, db.Model(&models.Enrollment{}).Where("user_id = ? AND course_id = ?", 1, course.ID).Count(&enrollments).Error)
	assert.EqualValues(t, 1, enrollments)

	var updated models.Course
	require.NoError(t, db.First(&updated, course.ID).Error)
	assert.Equal(t, 1, updated.EnrolledCount)
}

func TestEnrollUserInCourseRejectsUnpublished(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db, false, 2)

	_, err := EnrollUserInCourse(db, 1, course.ID)
	assert.ErrorIs(t, err, models.ErrCourseNotFound)

	_, err = EnrollUserInCourse(db, 1, 9999)
	assert.ErrorIs(t, err, models.ErrCourseNotFound)
}

func TestCartCourses(t *testing.T) {
	db := newTestDB(t)
	_, err := CartCourses(db, 1)
	assert.ErrorIs(t, err, models.ErrEmptyCart)

	course := seedCourse(t, db, true, 1)
	require.NoError(t, db.Create(&models.Cart{UserID: 1, CourseID: course.ID}).Error)

	courses, err := CartCourses(db, 1)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, course.ID, courses[0].ID)

	require.NoError(t, ClearCart(db, 1))
	_, err = CartCourses(db, 1)
	assert.ErrorIs(t, err, models.ErrEmptyCart)
}
