package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nexuslearn/nexus/internal/helpers"
	"github.com/nexuslearn/nexus/internal/models"
)

type CourseRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Price       float64 `json:"price" binding:"gte=0"`
}

func CreateCourse(c *gin.Context) {
	var req CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	userID, role, ok := caller(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}
	if role != models.RoleTeacher {
		helpers.RespondWithError(c, http.StatusForbidden, "Only teachers can create courses.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	course := models.Course{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		TeacherID:   userID,
	}

	if err := gormDB.Create(&course).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create course.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Course created successfully.",
		"course_id": course.ID,
	})
}

func GetCourse(c *gin.Context) {
	courseID := c.Param("id")

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var course models.Course
	query := visibleCourses(gormDB.Where("id = ?", courseID), c)
	err := query.Preload("Teacher").Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("position, created_at")
	}).First(&course).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Course not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving course.")
		return
	}

	c.JSON(http.StatusOK, course)
}

func ListCourses(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	page := c.DefaultQuery("page", "1")
	limit := c.DefaultQuery("limit", "10")

	pageNum, err := helpers.StringToInt(page)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid page number.")
		return
	}

	limitNum, err := helpers.StringToInt(limit)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid limit.")
		return
	}

	query := visibleCourses(gormDB.Model(&models.Course{}), c)
	if teacherID := c.Query("teacher"); teacherID != "" {
		query = query.Where("teacher_id = ?", teacherID)
	}

	var totalCount int64
	query.Count(&totalCount)

	var courses []models.Course
	offset := (pageNum - 1) * limitNum
	err = query.Preload("Teacher").Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("position, created_at")
	}).Offset(offset).Limit(limitNum).Order("created_at DESC").Find(&courses).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving courses.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"courses":     courses,
		"total":       totalCount,
		"page":        pageNum,
		"limit":       limitNum,
		"total_pages": (totalCount + int64(limitNum) - 1) / int64(limitNum),
	})
}

func UpdateCourse(c *gin.Context) {
	courseID := c.Param("id")

	var req CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	userID, role, ok := caller(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}
	if role != models.RoleTeacher {
		helpers.RespondWithError(c, http.StatusForbidden, "Only teachers can update courses.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var course models.Course
	if err := gormDB.Where("id = ? AND teacher_id = ?", courseID, userID).First(&course).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusForbidden, "Course not found or you don't have permission to update.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error finding course.")
		return
	}

	course.Title = req.Title
	course.Description = req.Description
	course.Price = req.Price

	if err := gormDB.Save(&course).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update course.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Course updated successfully.",
		"course":  course,
	})
}

func DeleteCourse(c *gin.Context) {
	courseID := c.Param("id")

	userID, role, ok := caller(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}
	if role != models.RoleTeacher {
		helpers.RespondWithError(c, http.StatusForbidden, "Only teachers can delete courses.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	result := gormDB.Where("id = ? AND teacher_id = ?", courseID, userID).Delete(&models.Course{})
	if result.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete course.")
		return
	}

	if result.RowsAffected == 0 {
		helpers.RespondWithError(c, http.StatusForbidden, "Course not found or you don't have permission to delete.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Course deleted successfully.",
	})
}

func setPublished(c *gin.Context, published bool) {
	courseID := c.Param("id")

	userID, role, ok := caller(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}
	if role != models.RoleTeacher {
		helpers.RespondWithError(c, http.StatusForbidden, "Only teachers can publish courses.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	result := gormDB.Model(&models.Course{}).
		Where("id = ? AND teacher_id = ?", courseID, userID).
		Update("is_published", published)
	if result.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update course.")
		return
	}

	if result.RowsAffected == 0 {
		helpers.RespondWithError(c, http.StatusForbidden, "Course not found or you don't have permission to modify it.")
		return
	}

	message := "Course published."
	if !published {
		message = "Course unpublished."
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func PublishCourse(c *gin.Context) {
	setPublished(c, true)
}

func UnpublishCourse(c *gin.Context) {
	setPublished(c, false)
}
