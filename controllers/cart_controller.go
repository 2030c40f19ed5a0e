package controllers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/learnsphere/learnsphere/config"
	"github.com/learnsphere/learnsphere/models"
	"github.com/learnsphere/learnsphere/utils"
)

// POST /user/cart
func AddToCart(c *gin.Context) {
	utils.LogInfo("AddToCart called")
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		CourseID uint `json:"course_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "course_id is required", err.Error())
		return
	}

	var course models.Course
	if err := config.DB.First(&course, req.CourseID).Error; err != nil {
		utils.NotFound(c, "Course not found")
		return
	}
	if !course.Purchasable() {
		utils.BadRequest(c, "Course is not available for purchase", nil)
		return
	}

	var enrolled models.Enrollment
	err := config.DB.Where("user_id = ? AND course_id = ?", user.ID, course.ID).First(&enrolled).Error
	if err == nil {
		utils.Conflict(c, "You are already enrolled in this course", nil)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.LogError("Failed to check enrollment for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to add course to cart", nil)
		return
	}

	item := models.Cart{UserID: user.ID, CourseID: course.ID}
	if err := config.DB.Create(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Conflict(c, "Course is already in your cart", nil)
			return
		}
		utils.LogError("Failed to add course %d to cart for user ID: %d: %v", course.ID, user.ID, err)
		utils.InternalServerError(c, "Failed to add course to cart", nil)
		return
	}
	utils.LogInfo("User ID: %d added course ID: %d to cart", user.ID, course.ID)

	utils.Created(c, "Course added to cart", gin.H{
		"course_id": course.ID,
		"title":     course.Title,
		"price":     fmt.Sprintf("%.2f", course.Price),
	})
}

// GET /user/cart
func GetCart(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var items []models.Cart
	if err := config.DB.Preload("Course").Preload("Course.Category").
		Where("user_id = ?", user.ID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		utils.LogError("Failed to fetch cart for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch cart", nil)
		return
	}

	var total float64
	courses := make([]gin.H, 0, len(items))
	for _, item := range items {
		total += item.Course.Price
		courses = append(courses, gin.H{
			"course_id":  item.CourseID,
			"title":      item.Course.Title,
			"price":      fmt.Sprintf("%.2f", item.Course.Price),
			"instructor": item.Course.Instructor,
			"image_url":  item.Course.ImageURL,
			"available":  item.Course.Purchasable(),
		})
	}

	utils.Success(c, "Cart fetched successfully", gin.H{
		"courses": courses,
		"count":   len(courses),
		"total":   fmt.Sprintf("%.2f", total),
	})
}

// DELETE /user/cart/:courseId
func RemoveFromCart(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	courseID, err := strconv.ParseUint(c.Param("courseId"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid course ID", nil)
		return
	}

	result := config.DB.Where("user_id = ? AND course_id = ?", user.ID, uint(courseID)).Delete(&models.Cart{})
	if result.Error != nil {
		utils.LogError("Failed to remove course %d from cart for user ID: %d: %v", courseID, user.ID, result.Error)
		utils.InternalServerError(c, "Failed to remove course from cart", nil)
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "Course is not in your cart")
		return
	}

	utils.Success(c, "Course removed from cart", nil)
}

// DELETE /user/cart
func ClearCart(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := utils.ClearCart(config.DB, user.ID); err != nil {
		utils.LogError("Failed to clear cart for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to clear cart", nil)
		return
	}

	utils.Success(c, "Cart cleared", nil)
}
