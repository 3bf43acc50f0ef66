package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nexuslearn/nexus/internal/models"
)

// caller returns the authenticated user's id and role, or ok=false for
// anonymous requests.
func caller(c *gin.Context) (uuid.UUID, models.Role, bool) {
	rawID, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, "", false
	}
	rawRole, exists := c.Get("role")
	if !exists {
		return uuid.Nil, "", false
	}
	return rawID.(uuid.UUID), rawRole.(models.Role), true
}

// visibleCourses narrows a course query to what the caller may see:
// published courses for everyone, plus the caller's own for teachers.
func visibleCourses(query *gorm.DB, c *gin.Context) *gorm.DB {
	if userID, role, ok := caller(c); ok && role == models.RoleTeacher {
		return query.Where("is_published = ? OR teacher_id = ?", true, userID)
	}
	return query.Where("is_published = ?", true)
}
