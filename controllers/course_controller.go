package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/learnsphere/learnsphere/config"
	"github.com/learnsphere/learnsphere/models"
	"github.com/learnsphere/learnsphere/utils"
)

// GET /courses
// Public catalog listing. Only published courses are visible; supports
// search, category filter and pagination.
func ListCourses(c *gin.Context) {
	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.Course{}).Where("published = ?", true)

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		term := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", term, term)
	}
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count courses: %v", err)
		utils.InternalServerError(c, "Failed to fetch courses", nil)
		return
	}

	var courses []models.Course
	if err := query.Preload("Category").
		Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&courses).Error; err != nil {
		utils.LogError("Failed to fetch courses: %v", err)
		utils.InternalServerError(c, "Failed to fetch courses", nil)
		return
	}

	utils.SuccessWithPagination(c, "Courses fetched successfully", courses, total, pagination.Page, pagination.Limit)
}

// GET /courses/:id
func GetCourseDetails(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid course ID", nil)
		return
	}

	var course models.Course
	if err := config.DB.Preload("Category").Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&course, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Course not found")
			return
		}
		utils.LogError("Failed to fetch course %d: %v", id, err)
		utils.InternalServerError(c, "Failed to fetch course", nil)
		return
	}
	if !course.Published {
		utils.NotFound(c, "Course not found")
		return
	}

	utils.Success(c, "Course fetched successfully", course)
}

type createCourseRequest struct {
	Title       string  `json:"title" binding:"required,min=3"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gte=0"`
	CategoryID  uint    `json:"category_id" binding:"required"`
	Instructor  string  `json:"instructor"`
	ImageURL    string  `json:"image_url"`
}

// POST /admin/courses
func CreateCourse(c *gin.Context) {
	utils.LogInfo("CreateCourse called")

	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid course details", err.Error())
		return
	}

	var category models.Category
	if err := config.DB.First(&category, req.CategoryID).Error; err != nil {
		utils.BadRequest(c, "Category does not exist", nil)
		return
	}

	course := models.Course{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		Instructor:  req.Instructor,
		ImageURL:    req.ImageURL,
	}
	if err := config.DB.Create(&course).Error; err != nil {
		utils.LogError("Failed to create course: %v", err)
		utils.InternalServerError(c, "Failed to create course", nil)
		return
	}
	utils.LogInfo("Created course ID: %d", course.ID)

	utils.Created(c, "Course created successfully", course)
}

type addLessonRequest struct {
	Title    string `json:"title" binding:"required,min=1"`
	Position int    `json:"position" binding:"gte=0"`
	VideoURL string `json:"video_url"`
}

// POST /admin/courses/:id/lessons
// Appends a lesson and keeps the course's denormalized lesson count in
// step; new enrollments seed their progress from that count.
func AddLesson(c *gin.Context) {
	utils.LogInfo("AddLesson called")

	courseID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req addLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid lesson details", err.Error())
		return
	}

	var course models.Course
	if err := config.DB.First(&course, courseID).Error; err != nil {
		utils.NotFound(c, "Course not found")
		return
	}

	lesson := models.Lesson{
		CourseID: course.ID,
		Title:    req.Title,
		Position: req.Position,
		VideoURL: req.VideoURL,
	}
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&lesson).Error; err != nil {
			return err
		}
		return tx.Model(&models.Course{}).Where("id = ?", course.ID).
			UpdateColumn("lesson_count", gorm.Expr("lesson_count + 1")).Error
	})
	if err != nil {
		utils.LogError("Failed to add lesson to course %d: %v", course.ID, err)
		utils.InternalServerError(c, "Failed to add lesson", nil)
		return
	}
	utils.LogInfo("Added lesson ID: %d to course ID: %d", lesson.ID, course.ID)

	utils.Created(c, "Lesson added successfully", gin.H{
		"id":           lesson.ID,
		"course_id":    course.ID,
		"title":        lesson.Title,
		"position":     lesson.Position,
		"lesson_count": course.LessonCount + 1,
	})
}

// PUT /admin/courses/:id/publish
// Publishing makes the course purchasable; unpublishing hides it from
// the catalog and from settlement without touching existing enrollments.
func PublishCourse(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid course ID", nil)
		return
	}

	var req struct {
		Published *bool `json:"published" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "published flag is required", err.Error())
		return
	}

	var course models.Course
	if err := config.DB.First(&course, uint(id)).Error; err != nil {
		utils.NotFound(c, "Course not found")
		return
	}

	if err := config.DB.Model(&course).Update("published", *req.Published).Error; err != nil {
		utils.LogError("Failed to update course %d: %v", id, err)
		utils.InternalServerError(c, "Failed to update course", nil)
		return
	}
	utils.LogInfo("Course ID: %d published=%v", course.ID, *req.Published)

	utils.Success(c, "Course updated successfully", gin.H{
		"id":        course.ID,
		"published": *req.Published,
	})
}
