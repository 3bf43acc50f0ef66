package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeacherReviewRequiresActiveEnrollmentWithTeacher(t *testing.T) {
	r, _ := setupRouter(t)
	_, teacherID := registerUser(t, r, "teacher@example.com", "TEACHER")
	learnerToken, _ := registerUser(t, r, "learner@example.com", "LEARNER")

	w := doRequest(t, r, http.MethodPost, "/v1/teacher-reviews", learnerToken, gin.H{
		"teacher_id": teacherID,
		"rating":     5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTeacherReviewAcceptsAnyCourseOfTeacher(t *testing.T) {
	r, _ := setupRouter(t)
	teacherToken, teacherID := registerUser(t, r, "teacher@example.com", "TEACHER")
	learnerToken, _ := registerUser(t, r, "learner@example.com", "LEARNER")

	// Two courses; the learner is active in only one of them.
	createCourse(t, r, teacherToken, "Course A", 50, true)
	courseB := createCourse(t, r, teacherToken, "Course B", 50, true)
	payForCourse(t, r, learnerToken, courseB)

	w := doRequest(t, r, http.MethodPost, "/v1/teacher-reviews", learnerToken, gin.H{
		"teacher_id": teacherID,
		"rating":     5,
		"comment":    "Great explanations.",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestTeacherReviewRejectsNonTeacherTarget(t *testing.T) {
	r, _ := setupRouter(t)
	learnerToken, _ := registerUser(t, r, "learner@example.com", "LEARNER")
	_, otherLearnerID := registerUser(t, r, "other@example.com", "LEARNER")

	w := doRequest(t, r, http.MethodPost, "/v1/teacher-reviews", learnerToken, gin.H{
		"teacher_id": otherLearnerID,
		"rating":     5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDuplicateTeacherReviewConflicts(t *testing.T) {
	r, _ := setupRouter(t)
	teacherToken, teacherID := registerUser(t, r, "teacher@example.com", "TEACHER")
	learnerToken, _ := registerUser(t, r, "learner@example.com", "LEARNER")
	courseID := createCourse(t, r, teacherToken, "Course", 50, true)
	payForCourse(t, r, learnerToken, courseID)

	w := doRequest(t, r, http.MethodPost, "/v1/teacher-reviews", learnerToken, gin.H{
		"teacher_id": teacherID,
		"rating":     4,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doRequest(t, r, http.MethodPost, "/v1/teacher-reviews", learnerToken, gin.H{
		"teacher_id": teacherID,
		"rating":     5,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTeacherReviewListFilterAndMutation(t *testing.T) {
	r, _ := setupRouter(t)
	teacherToken, teacherID := registerUser(t, r, "teacher@example.com", "TEACHER")
	learnerToken, _ := registerUser(t, r, "learner@example.com", "LEARNER")
	otherToken, _ := registerUser(t, r, "other@example.com", "LEARNER")
	courseID := createCourse(t, r, teacherToken, "Course", 50, true)
	payForCourse(t, r, learnerToken, courseID)

	w := doRequest(t, r, http.MethodPost, "/v1/teacher-reviews", learnerToken, gin.H{
		"teacher_id": teacherID,
		"rating":     4,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reviewID := decodeBody(t, w)["review"].(map[string]interface{})["id"].(string)

	// Public, filterable by teacher.
	w = doRequest(t, r, http.MethodGet, "/v1/teacher-reviews?teacher="+teacherID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), reviewID)

	w = doRequest(t, r, http.MethodPatch, "/v1/teacher-reviews/"+reviewID, otherToken, gin.H{
		"rating": 1,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, r, http.MethodPatch, "/v1/teacher-reviews/"+reviewID, learnerToken, gin.H{
		"rating": 5,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(t, r, http.MethodDelete, "/v1/teacher-reviews/"+reviewID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, r, http.MethodDelete, "/v1/teacher-reviews/"+reviewID, learnerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
