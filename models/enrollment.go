package models

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment grants a user access to a course. The (user, course) pair
// is unique; re-settling an already enrolled course is a no-op.
type Enrollment struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `json:"user_id" gorm:"uniqueIndex:idx_enrollment_user_course"`
	User           User           `json:"-" gorm:"foreignKey:UserID"`
	CourseID       uint           `json:"course_id" gorm:"uniqueIndex:idx_enrollment_user_course"`
	Course         Course         `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	EnrolledAt     time.Time      `json:"enrolled_at"`
	Completed      bool           `json:"completed" gorm:"default:false"`
	LastAccessedAt time.Time      `json:"last_accessed_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// Progress tracks lesson completion for one enrollment.
type Progress struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	EnrollmentID     uint      `json:"enrollment_id" gorm:"uniqueIndex"`
	UserID           uint      `json:"user_id"`
	CourseID         uint      `json:"course_id"`
	TotalLessons     int       `json:"total_lessons"`
	CompletedLessons string    `json:"completed_lessons" gorm:"type:text"` // comma separated lesson ids
	Percent          float64   `json:"percent" gorm:"default:0"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
