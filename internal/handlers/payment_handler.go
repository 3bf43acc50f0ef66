package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nexuslearn/nexus/internal/helpers"
	"github.com/nexuslearn/nexus/internal/middleware"
	"github.com/nexuslearn/nexus/internal/models"
)

type PaymentRequest struct {
	CourseID uuid.UUID `json:"course_id" binding:"required"`
	Amount   *float64  `json:"amount" binding:"omitempty,gt=0"`
	Provider string    `json:"provider"`
}

// CreatePayment simulates the provider round-trip: every payment is written
// SUCCESS with a fresh reference token, and the (learner, course) enrollment
// is get-or-created and forced ACTIVE in the same transaction. This is the
// only path that reactivates a cancelled enrollment.
func CreatePayment(c *gin.Context) {
	var req PaymentRequest
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
		helpers.RespondWithError(c, http.StatusForbidden, "Only learners can initiate payments.")
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

	amount := course.Price
	if req.Amount != nil {
		amount = *req.Amount
	}
	provider := req.Provider
	if provider == "" {
		provider = "mock"
	}

	payment := models.Payment{
		ID:        uuid.New(),
		Amount:    amount,
		Provider:  provider,
		Status:    models.PaymentSuccess,
		Reference: uuid.New().String(),
		Metadata:  datatypes.JSON([]byte(`{"note": "Simulated payment success"}`)),
		LearnerID: userID,
		CourseID:  course.ID,
	}

	var enrollment models.Enrollment
	err := gormDB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		// Upsert on the unique (learner_id, course_id) index. A plain
		// create-then-lookup cannot recover from a lost race here: on
		// Postgres the constraint violation aborts the whole transaction.
		enrollment = models.Enrollment{
			ID:        uuid.New(),
			LearnerID: userID,
			CourseID:  course.ID,
			Status:    models.EnrollmentActive,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "learner_id"}, {Name: "course_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"status":     models.EnrollmentActive,
				"updated_at": time.Now(),
			}),
		}).Create(&enrollment).Error; err != nil {
			return err
		}

		// On conflict the existing row was kept; reload it for the response.
		return tx.Where("learner_id = ? AND course_id = ?", userID, course.ID).First(&enrollment).Error
	})
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to process payment.")
		return
	}

	if n := middleware.GetNotifier(c); n != nil {
		n.PaymentReceipt(payment.ID)
		n.EnrollmentChanged(enrollment.ID)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Payment successful.",
		"payment":    payment,
		"enrollment": enrollment,
	})
}

func GetPayment(c *gin.Context) {
	paymentID := c.Param("id")

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

	var payment models.Payment
	if err := gormDB.Preload("Course").Where("id = ?", paymentID).First(&payment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Payment not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving payment.")
		return
	}

	isLearner := payment.LearnerID == userID
	isCourseTeacher := role == models.RoleTeacher && payment.Course != nil && payment.Course.TeacherID == userID
	if !isLearner && !isCourseTeacher {
		helpers.RespondWithError(c, http.StatusNotFound, "Payment not found.")
		return
	}

	c.JSON(http.StatusOK, payment)
}

func ListPayments(c *gin.Context) {
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

	query := gormDB.Model(&models.Payment{})
	if role == models.RoleTeacher {
		query = query.Joins("JOIN courses ON courses.id = payments.course_id AND courses.deleted_at IS NULL").
			Where("courses.teacher_id = ?", userID)
	} else {
		query = query.Where("learner_id = ?", userID)
	}

	var totalCount int64
	query.Count(&totalCount)

	var payments []models.Payment
	offset := (pageNum - 1) * limitNum
	err = query.Preload("Course").Offset(offset).Limit(limitNum).Order("payments.created_at DESC").Find(&payments).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving payments.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payments":    payments,
		"total":       totalCount,
		"page":        pageNum,
		"limit":       limitNum,
		"total_pages": (totalCount + int64(limitNum) - 1) / int64(limitNum),
	})
}
