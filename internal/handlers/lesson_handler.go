package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nexuslearn/nexus/internal/helpers"
	"github.com/nexuslearn/nexus/internal/models"
)

type LessonRequest struct {
	Title    string    `json:"title" binding:"required"`
	VideoURL string    `json:"video_url" binding:"required,url"`
	Position int       `json:"position" binding:"omitempty,min=1"`
	CourseID uuid.UUID `json:"course_id" binding:"required"`
}

func CreateLesson(c *gin.Context) {
	var req LessonRequest
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
		helpers.RespondWithError(c, http.StatusForbidden, "Only teachers can create lessons.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var course models.Course
	if err := gormDB.Where("id = ? AND teacher_id = ?", req.CourseID, userID).First(&course).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusForbidden, "Course not found or you don't have permission to modify it.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error verifying course ownership.")
		return
	}

	position := req.Position
	if position == 0 {
		position = 1
	}

	lesson := models.Lesson{
		ID:       uuid.New(),
		Title:    req.Title,
		VideoURL: req.VideoURL,
		Position: position,
		CourseID: req.CourseID,
	}

	if err := gormDB.Create(&lesson).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create lesson.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Lesson created successfully.",
		"lesson_id": lesson.ID,
	})
}

func GetLesson(c *gin.Context) {
	lessonID := c.Param("id")

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var lesson models.Lesson
	if err := gormDB.Preload("Course").Where("id = ?", lessonID).First(&lesson).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Lesson not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving lesson.")
		return
	}

	// A lesson is visible iff its parent course is. A soft-deleted parent
	// is not preloaded, which hides the lesson as well.
	if lesson.Course == nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Lesson not found.")
		return
	}
	if !lesson.Course.IsPublished {
		userID, role, ok := caller(c)
		if !ok || role != models.RoleTeacher || lesson.Course.TeacherID != userID {
			helpers.RespondWithError(c, http.StatusNotFound, "Lesson not found.")
			return
		}
	}

	c.JSON(http.StatusOK, lesson)
}

func ListLessons(c *gin.Context) {
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

	query := gormDB.Model(&models.Lesson{}).
		Joins("JOIN courses ON courses.id = lessons.course_id AND courses.deleted_at IS NULL")
	if userID, role, ok := caller(c); ok && role == models.RoleTeacher {
		query = query.Where("courses.is_published = ? OR courses.teacher_id = ?", true, userID)
	} else {
		query = query.Where("courses.is_published = ?", true)
	}
	if courseID := c.Query("course"); courseID != "" {
		query = query.Where("lessons.course_id = ?", courseID)
	}

	var totalCount int64
	query.Count(&totalCount)

	var lessons []models.Lesson
	offset := (pageNum - 1) * limitNum
	err = query.Offset(offset).Limit(limitNum).Order("lessons.position, lessons.created_at").Find(&lessons).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving lessons.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lessons":     lessons,
		"total":       totalCount,
		"page":        pageNum,
		"limit":       limitNum,
		"total_pages": (totalCount + int64(limitNum) - 1) / int64(limitNum),
	})
}

func UpdateLesson(c *gin.Context) {
	lessonID := c.Param("id")

	var req LessonRequest
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
		helpers.RespondWithError(c, http.StatusForbidden, "Only teachers can update lessons.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var lesson models.Lesson
	if err := gormDB.Where("id = ?", lessonID).First(&lesson).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Lesson not found.")
		return
	}

	var course models.Course
	if err := gormDB.Where("id = ? AND teacher_id = ?", lesson.CourseID, userID).First(&course).Error; err != nil {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to modify this lesson.")
		return
	}

	// Moving a lesson to another course requires owning that course too.
	if req.CourseID != lesson.CourseID {
		var targetCourse models.Course
		if err := gormDB.Where("id = ? AND teacher_id = ?", req.CourseID, userID).First(&targetCourse).Error; err != nil {
			helpers.RespondWithError(c, http.StatusForbidden, "Course not found or you don't have permission to modify it.")
			return
		}
	}

	lesson.Title = req.Title
	lesson.VideoURL = req.VideoURL
	if req.Position != 0 {
		lesson.Position = req.Position
	}
	lesson.CourseID = req.CourseID

	if err := gormDB.Save(&lesson).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update lesson.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Lesson updated successfully.",
		"lesson":  lesson,
	})
}

func DeleteLesson(c *gin.Context) {
	lessonID := c.Param("id")

	userID, role, ok := caller(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}
	if role != models.RoleTeacher {
		helpers.RespondWithError(c, http.StatusForbidden, "Only teachers can delete lessons.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var lesson models.Lesson
	if err := gormDB.Where("id = ?", lessonID).First(&lesson).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Lesson not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving lesson.")
		return
	}

	var course models.Course
	if err := gormDB.Where("id = ? AND teacher_id = ?", lesson.CourseID, userID).First(&course).Error; err != nil {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to delete this lesson.")
		return
	}

	if err := gormDB.Delete(&lesson).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete lesson.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Lesson deleted successfully.",
	})
}
