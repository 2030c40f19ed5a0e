package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered user of the platform
type User struct {
	gorm.Model
	Username    string    `gorm:"uniqueIndex;not null" json:"username"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	Password    string    `json:"-"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       string    `json:"phone"`
	IsBlocked   bool      `json:"is_blocked"`
	IsAdmin     bool      `json:"is_admin" gorm:"default:false"`
	LastLoginAt time.Time `json:"last_login_at"`
	Wallet      Wallet    `json:"wallet,omitempty" gorm:"foreignKey:UserID"`
}

// Category represents a course category
type Category struct {
	gorm.Model
	Name        string   `json:"name" gorm:"uniqueIndex"`
	Description string   `json:"description"`
	Courses     []Course `json:"courses,omitempty"`
}

// Course represents a purchasable course in the catalog
type Course struct {
	gorm.Model
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	CategoryID    uint     `json:"category_id"`
	Category      Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Instructor    string   `json:"instructor"`
	ImageURL      string   `json:"image_url"`
	Published     bool     `json:"published" gorm:"default:false"`
	LessonCount   int      `json:"lesson_count" gorm:"default:0"`
	EnrolledCount int      `json:"enrolled_count" gorm:"default:0"`
	Lessons       []Lesson `json:"lessons,omitempty" gorm:"foreignKey:CourseID"`
}

// Purchasable reports whether the course can currently be bought.
func (c *Course) Purchasable() bool {
	return c.Published && c.DeletedAt.Time.IsZero()
}

// Lesson represents a single lesson inside a course
type Lesson struct {
	gorm.Model
	CourseID uint   `json:"course_id"`
	Title    string `json:"title"`
	Position int    `json:"position"`
	VideoURL string `json:"video_url"`
}

// Cart holds a course a user intends to buy. One row per (user, course).
type Cart struct {
	gorm.Model
	UserID   uint   `json:"user_id" gorm:"uniqueIndex:idx_cart_user_course"`
	User     User   `gorm:"foreignKey:UserID" json:"-"`
	CourseID uint   `json:"course_id" gorm:"uniqueIndex:idx_cart_user_course"`
	Course   Course `gorm:"foreignKey:CourseID" json:"course"`
}
