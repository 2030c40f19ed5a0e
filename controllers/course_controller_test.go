package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/learnsphere/learnsphere/config"
	"github.com/learnsphere/learnsphere/models"
)

func newControllerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Course{},
		&models.Lesson{},
	))
	return db
}

func postJSON(t *testing.T, path, body string, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params
	return c, w
}

func TestAddLessonIncrementsLessonCount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newControllerDB(t)
	config.DB = db

	course := models.Course{Title: "Go Basics", Price: 499, Published: true}
	require.NoError(t, db.Create(&course).Error)

	idParam := gin.Params{{Key: "id", Value: strconv.Itoa(int(course.ID))}}
	c, w := postJSON(t, "/v1/admin/courses/1/lessons",
		`{"title":"Introduction","position":1,"video_url":"https://cdn.example.com/intro.mp4"}`, idParam)
	AddLesson(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var lessons []models.Lesson
	require.NoError(t, db.Where("course_id = ?", course.ID).Find(&lessons).Error)
	require.Len(t, lessons, 1)
	assert.Equal(t, "Introduction", lessons[0].Title)
	assert.Equal(t, 1, lessons[0].Position)

	var updated models.Course
	require.NoError(t, db.First(&updated, course.ID).Error)
	assert.Equal(t, 1, updated.LessonCount)

	// A second lesson keeps the counter in step with the rows.
	c, w = postJSON(t, "/v1/admin/courses/1/lessons",
		`{"title":"Variables","position":2}`, idParam)
	AddLesson(c)
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, db.First(&updated, course.ID).Error)
	assert.Equal(t, 2, updated.LessonCount)
}

func TestAddLessonRejectsBadInput(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newControllerDB(t)
	config.DB = db

	c, w := postJSON(t, "/v1/admin/courses/abc/lessons",
		`{"title":"Introduction","position":1}`, gin.Params{{Key: "id", Value: "abc"}})
	AddLesson(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = postJSON(t, "/v1/admin/courses/999/lessons",
		`{"title":"Introduction","position":1}`, gin.Params{{Key: "id", Value: "999"}})
	AddLesson(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	c, w = postJSON(t, "/v1/admin/courses/1/lessons",
		`{"position":1}`, gin.Params{{Key: "id", Value: "1"}})
	AddLesson(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Lesson{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
