package utils

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/learnsphere/learnsphere/models"
)

// EnrollUserInCourse idempotently grants a user access to a course.
// Returns created=false when the enrollment already existed. A missing
// or unpublished course fails with ErrCourseNotFound.
func EnrollUserInCourse(db *gorm.DB, userID, courseID uint) (bool, error) {
	var course models.Course
	if err := db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, models.ErrCourseNotFound
		}
		return false, err
	}
	if !course.Purchasable() {
		return false, models.ErrCourseNotFound
	}

	var existing models.Enrollment
	err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	created := false
	txErr := db.Transaction(func(tx *gorm.DB) error {
		enrollment := models.Enrollment{
			UserID:     userID,
			CourseID:   courseID,
			EnrolledAt: time.Now(),
		}
		if err := tx.Create(&enrollment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost the race to a concurrent settlement; still a success.
				return nil
			}
			return err
		}

		progress := models.Progress{
			EnrollmentID: enrollment.ID,
			UserID:       userID,
			CourseID:     courseID,
			TotalLessons: course.LessonCount,
		}
		if err := tx.Create(&progress).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Course{}).Where("id = ?", courseID).
			UpdateColumn("enrolled_count", gorm.Expr("enrolled_count + 1")).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if txErr != nil {
		return false, txErr
	}
	return created, nil
}

// CartCourses returns the purchasable courses currently in a user's cart.
func CartCourses(db *gorm.DB, userID uint) ([]models.Course, error) {
	var items []models.Cart
	if err := db.Preload("Course").Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, models.ErrEmptyCart
	}
	courses := make([]models.Course, 0, len(items))
	for _, item := range items {
		courses = append(courses, item.Course)
	}
	return courses, nil
}

// ClearCart removes every cart row for a user.
func ClearCart(db *gorm.DB, userID uint) error {
	return db.Where("user_id = ?", userID).Delete(&models.Cart{}).Error
}
