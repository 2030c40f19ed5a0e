package controllers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/learnsphere/learnsphere/config"
	"github.com/learnsphere/learnsphere/models"
	"github.com/learnsphere/learnsphere/utils"
)

// GET /user/enrollments
func ListEnrollments(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.Enrollment{}).Where("user_id = ?", user.ID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count enrollments for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch enrollments", nil)
		return
	}

	var enrollments []models.Enrollment
	if err := query.Preload("Course").Preload("Course.Category").
		Order("enrolled_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&enrollments).Error; err != nil {
		utils.LogError("Failed to fetch enrollments for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch enrollments", nil)
		return
	}

	enrollmentIDs := make([]uint, 0, len(enrollments))
	for _, e := range enrollments {
		enrollmentIDs = append(enrollmentIDs, e.ID)
	}
	progressByEnrollment := make(map[uint]models.Progress, len(enrollmentIDs))
	if len(enrollmentIDs) > 0 {
		var progresses []models.Progress
		if err := config.DB.Where("enrollment_id IN ?", enrollmentIDs).Find(&progresses).Error; err != nil {
			utils.LogError("Failed to fetch progress for user ID: %d: %v", user.ID, err)
			utils.InternalServerError(c, "Failed to fetch enrollments", nil)
			return
		}
		for _, p := range progresses {
			progressByEnrollment[p.EnrollmentID] = p
		}
	}

	entries := make([]gin.H, 0, len(enrollments))
	for _, e := range enrollments {
		progress := progressByEnrollment[e.ID]
		entries = append(entries, gin.H{
			"enrollment_id": e.ID,
			"course": gin.H{
				"id":         e.Course.ID,
				"title":      e.Course.Title,
				"instructor": e.Course.Instructor,
				"image_url":  e.Course.ImageURL,
				"category":   e.Course.Category.Name,
			},
			"enrolled_at": e.EnrolledAt,
			"completed":   e.Completed,
			"progress": gin.H{
				"total_lessons": progress.TotalLessons,
				"percent":       fmt.Sprintf("%.1f", progress.Percent),
			},
		})
	}

	utils.SuccessWithPagination(c, "Enrollments fetched successfully", entries, total, pagination.Page, pagination.Limit)
}

// POST /user/enrollments/:courseId/access
// Records a study session so "continue learning" ordering stays fresh.
func TouchEnrollment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	courseID, ok := paramUint(c, "courseId")
	if !ok {
		return
	}

	result := config.DB.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", user.ID, courseID).
		Update("last_accessed_at", time.Now())
	if result.Error != nil {
		utils.LogError("Failed to touch enrollment for user ID: %d: %v", user.ID, result.Error)
		utils.InternalServerError(c, "Failed to update enrollment", nil)
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "You are not enrolled in this course")
		return
	}

	utils.Success(c, "Enrollment updated", nil)
}
