package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nexuslearn/nexus/internal/helpers"
	"github.com/nexuslearn/nexus/internal/middleware"
	"github.com/nexuslearn/nexus/internal/models"
)

type EnrollmentRequest struct {
	CourseID uuid.UUID `json:"course_id" binding:"required"`
}

// CreateEnrollment has get-or-create semantics: a repeat request for the
// same (learner, course) pair returns the existing row instead of a
// conflict, and a lost race on the unique index is retried as a lookup.
func CreateEnrollment(c *gin.Context) {
	var req EnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	userID, role, ok := caller(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}
	if role != models.RoleLearner {
		helpers.RespondWithError(c, http.StatusForbidden, "Only learners can enroll in courses.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var course models.Course
	if err := gormDB.Where("id = ? AND is_published = ?", req.CourseID, true).First(&course).Error; err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Course not found or not published.")
		return
	}

	var enrollment models.Enrollment
	err := gormDB.Where("learner_id = ? AND course_id = ?", userID, course.ID).First(&enrollment).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{
			"message":    "Already enrolled.",
			"enrollment": enrollment,
		})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error checking enrollment.")
		return
	}

	enrollment = models.Enrollment{
		ID:        uuid.New(),
		LearnerID: userID,
		CourseID:  course.ID,
		Status:    models.EnrollmentPending,
	}

	if err := gormDB.Create(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := gormDB.Where("learner_id = ? AND course_id = ?", userID, course.ID).First(&enrollment).Error; err != nil {
				helpers.RespondWithError(c, http.StatusInternalServerError, "Error checking enrollment.")
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"message":    "Already enrolled.",
				"enrollment": enrollment,
			})
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create enrollment.")
		return
	}

	if n := middleware.GetNotifier(c); n != nil {
		n.EnrollmentChanged(enrollment.ID)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Enrolled successfully.",
		"enrollment": enrollment,
	})
}

func GetEnrollment(c *gin.Context) {
	enrollmentID := c.Param("id")

	userID, role, ok := caller(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var enrollment models.Enrollment
	if err := gormDB.Preload("Course").Where("id = ?", enrollmentID).First(&enrollment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Enrollment not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving enrollment.")
		return
	}

	isLearner := enrollment.LearnerID == userID
	isCourseTeacher := role == models.RoleTeacher && enrollment.Course != nil && enrollment.Course.TeacherID == userID
	if !isLearner && !isCourseTeacher {
		helpers.RespondWithError(c, http.StatusNotFound, "Enrollment not found.")
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

func ListEnrollments(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

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

	query := gormDB.Model(&models.Enrollment{})
	if role == models.RoleTeacher {
		query = query.Joins("JOIN courses ON courses.id = enrollments.course_id AND courses.deleted_at IS NULL").
			Where("courses.teacher_id = ?", userID)
	} else {
		query = query.Where("learner_id = ?", userID)
	}

	var totalCount int64
	query.Count(&totalCount)

	var enrollments []models.Enrollment
	offset := (pageNum - 1) * limitNum
	err = query.Preload("Course").Offset(offset).Limit(limitNum).Order("enrollments.created_at DESC").Find(&enrollments).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving enrollments.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"enrollments": enrollments,
		"total":       totalCount,
		"page":        pageNum,
		"limit":       limitNum,
		"total_pages": (totalCount + int64(limitNum) - 1) / int64(limitNum),
	})
}

// UpdateEnrollment returns a fresh representation of the row. Status,
// progress and course are server-managed, so no request field is writable;
// status transitions go through the cancel and payment paths.
func UpdateEnrollment(c *gin.Context) {
	enrollmentID := c.Param("id")

	userID, role, ok := caller(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var enrollment models.Enrollment
	if err := gormDB.Preload("Course").Where("id = ?", enrollmentID).First(&enrollment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Enrollment not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving enrollment.")
		return
	}

	isLearner := enrollment.LearnerID == userID
	isCourseTeacher := role == models.RoleTeacher && enrollment.Course != nil && enrollment.Course.TeacherID == userID
	if !isLearner && !isCourseTeacher {
		helpers.RespondWithError(c, http.StatusNotFound, "Enrollment not found.")
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// CancelEnrollment may be called by the enrolled learner or by the teacher
// owning the course. The status change is committed before the notification
// is enqueued; a notifier failure never reverts it.
func CancelEnrollment(c *gin.Context) {
	enrollmentID := c.Param("id")

	userID, role, ok := caller(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var enrollment models.Enrollment
	if err := gormDB.Preload("Course").Where("id = ?", enrollmentID).First(&enrollment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Enrollment not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving enrollment.")
		return
	}

	isLearner := enrollment.LearnerID == userID
	isCourseTeacher := role == models.RoleTeacher && enrollment.Course != nil && enrollment.Course.TeacherID == userID
	if !isLearner && !isCourseTeacher {
		helpers.RespondWithError(c, http.StatusForbidden, "You cannot cancel this enrollment.")
		return
	}

	enrollment.Status = models.EnrollmentCancelled
	if err := gormDB.Model(&enrollment).Update("status", models.EnrollmentCancelled).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to cancel enrollment.")
		return
	}

	if n := middleware.GetNotifier(c); n != nil {
		n.EnrollmentChanged(enrollment.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Enrollment cancelled.",
		"enrollment": enrollment,
	})
}
