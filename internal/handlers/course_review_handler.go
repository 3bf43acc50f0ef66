package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nexuslearn/nexus/internal/helpers"
	"github.com/nexuslearn/nexus/internal/models"
)

type CourseReviewRequest struct {
	CourseID uuid.UUID `json:"course_id" binding:"required"`
	Rating   int       `json:"rating" binding:"required,min=1,max=5"`
	Comment  string    `json:"comment"`
}

type ReviewUpdateRequest struct {
	Rating  *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Comment *string `json:"comment"`
}

func CreateCourseReview(c *gin.Context) {
	var req CourseReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Rating must be between 1 and 5.")
		return
	}

	userID, role, ok := caller(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}
	if role != models.RoleLearner {
		helpers.RespondWithError(c, http.StatusForbidden, "Only learners can review courses.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var course models.Course
	if err := gormDB.Where("id = ?", req.CourseID).First(&course).Error; err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Course not found.")
		return
	}

	var activeCount int64
	gormDB.Model(&models.Enrollment{}).
		Where("learner_id = ? AND course_id = ? AND status = ?", userID, course.ID, models.EnrollmentActive).
		Count(&activeCount)
	if activeCount == 0 {
		helpers.RespondWithError(c, http.StatusBadRequest, "You can only review courses you are actively enrolled in.")
		return
	}

	var existingReview models.CourseReview
	if err := gormDB.Where("learner_id = ? AND course_id = ?", userID, course.ID).First(&existingReview).Error; err == nil {
		helpers.RespondWithError(c, http.StatusConflict, "You have already reviewed this course.")
		return
	}

	review := models.CourseReview{
		ID:        uuid.New(),
		Rating:    req.Rating,
		Comment:   req.Comment,
		LearnerID: userID,
		CourseID:  course.ID,
	}

	if err := gormDB.Create(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			helpers.RespondWithError(c, http.StatusConflict, "You have already reviewed this course.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create review.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Review submitted successfully.",
		"review":  review,
	})
}

func GetCourseReview(c *gin.Context) {
	reviewID := c.Param("id")

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var review models.CourseReview
	if err := gormDB.Preload("Learner").Preload("Course").Where("id = ?", reviewID).First(&review).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Review not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving review.")
		return
	}

	c.JSON(http.StatusOK, review)
}

func ListCourseReviews(c *gin.Context) {
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

	query := gormDB.Model(&models.CourseReview{})
	if courseID := c.Query("course"); courseID != "" {
		query = query.Where("course_reviews.course_id = ?", courseID)
	}
	if teacherID := c.Query("teacher"); teacherID != "" {
		query = query.Joins("JOIN courses ON courses.id = course_reviews.course_id").
			Where("courses.teacher_id = ?", teacherID)
	}

	var totalCount int64
	query.Count(&totalCount)

	var reviews []models.CourseReview
	offset := (pageNum - 1) * limitNum
	err = query.Preload("Learner").Offset(offset).Limit(limitNum).Order("course_reviews.created_at DESC").Find(&reviews).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving reviews.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews":     reviews,
		"total":       totalCount,
		"page":        pageNum,
		"limit":       limitNum,
		"total_pages": (totalCount + int64(limitNum) - 1) / int64(limitNum),
	})
}

// UpdateCourseReview is restricted to the authoring learner. Enrollment
// status is not re-checked after creation.
func UpdateCourseReview(c *gin.Context) {
	reviewID := c.Param("id")

	var req ReviewUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Rating must be between 1 and 5.")
		return
	}

	userID, _, ok := caller(c)
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

	var review models.CourseReview
	if err := gormDB.Where("id = ?", reviewID).First(&review).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Review not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving review.")
		return
	}

	if review.LearnerID != userID {
		helpers.RespondWithError(c, http.StatusForbidden, "You can only edit your own review.")
		return
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = *req.Comment
	}

	if err := gormDB.Save(&review).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update review.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Review updated successfully.",
		"review":  review,
	})
}

func DeleteCourseReview(c *gin.Context) {
	reviewID := c.Param("id")

	userID, _, ok := caller(c)
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

	var review models.CourseReview
	if err := gormDB.Where("id = ?", reviewID).First(&review).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Review not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving review.")
		return
	}

	if review.LearnerID != userID {
		helpers.RespondWithError(c, http.StatusForbidden, "You can only delete your own review.")
		return
	}

	if err := gormDB.Delete(&review).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete review.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Review deleted successfully.",
	})
}
