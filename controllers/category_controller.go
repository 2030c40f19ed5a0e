package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/learnsphere/learnsphere/config"
	"github.com/learnsphere/learnsphere/models"
	"github.com/learnsphere/learnsphere/utils"
)

// GET /categories
func ListCategories(c *gin.Context) {
	var categories []models.Category
	if err := config.DB.Order("name ASC").Find(&categories).Error; err != nil {
		utils.LogError("Failed to fetch categories: %v", err)
		utils.InternalServerError(c, "Failed to fetch categories", nil)
		return
	}
	utils.Success(c, "Categories fetched successfully", categories)
}

// POST /admin/categories
func CreateCategory(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required,min=2"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid category details", err.Error())
		return
	}

	category := models.Category{Name: req.Name, Description: req.Description}
	if err := config.DB.Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Conflict(c, "A category with this name already exists", nil)
			return
		}
		utils.LogError("Failed to create category: %v", err)
		utils.InternalServerError(c, "Failed to create category", nil)
		return
	}

	utils.Created(c, "Category created successfully", category)
}
