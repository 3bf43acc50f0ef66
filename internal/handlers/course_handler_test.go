package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCourseRequiresTeacherRole(t *testing.T) {
	r, _ := setupRouter(t)
	learnerToken, _ := registerUser(t, r, "learner@example.com", "LEARNER")

	w := doRequest(t, r, http.MethodPost, "/v1/courses", learnerToken, gin.H{
		"title":       "Go Basics",
		"description": "Learn Go",
		"price":       50,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, r, http.MethodPost, "/v1/courses", "", gin.H{
		"title":       "Go Basics",
		"description": "Learn Go",
		"price":       50,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCourseListVisibility(t *testing.T) {
	r, _ := setupRouter(t)
	teacherToken, _ := registerUser(t, r, "teacher@example.com", "TEACHER")
	otherToken, _ := registerUser(t, r, "other@example.com", "TEACHER")

	publishedID := createCourse(t, r, teacherToken, "Published Course", 50, true)
	draftID := createCourse(t, r, teacherToken, "Draft Course", 50, false)

	// Anonymous callers see only published courses.
	w := doRequest(t, r, http.MethodGet, "/v1/courses", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), publishedID)
	assert.NotContains(t, w.Body.String(), draftID)

	// The owner additionally sees their own drafts.
	w = doRequest(t, r, http.MethodGet, "/v1/courses", teacherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), publishedID)
	assert.Contains(t, w.Body.String(), draftID)

	// Another teacher does not see someone else's drafts.
	w = doRequest(t, r, http.MethodGet, "/v1/courses", otherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), draftID)
}

func TestGetUnpublishedCourse(t *testing.T) {
	r, _ := setupRouter(t)
	teacherToken, _ := registerUser(t, r, "teacher@example.com", "TEACHER")
	learnerToken, _ := registerUser(t, r, "learner@example.com", "LEARNER")

	draftID := createCourse(t, r, teacherToken, "Draft Course", 50, false)

	w := doRequest(t, r, http.MethodGet, "/v1/courses/"+draftID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, r, http.MethodGet, "/v1/courses/"+draftID, learnerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, r, http.MethodGet, "/v1/courses/"+draftID, teacherToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPublishRequiresOwnership(t *testing.T) {
	r, _ := setupRouter(t)
	ownerToken, _ := registerUser(t, r, "owner@example.com", "TEACHER")
	otherToken, _ := registerUser(t, r, "other@example.com", "TEACHER")
	learnerToken, _ := registerUser(t, r, "learner@example.com", "LEARNER")

	courseID := createCourse(t, r, ownerToken, "Course", 50, false)

	w := doRequest(t, r, http.MethodPost, fmt.Sprintf("/v1/courses/%s/publish", courseID), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, r, http.MethodPost, fmt.Sprintf("/v1/courses/%s/publish", courseID), learnerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, r, http.MethodPost, fmt.Sprintf("/v1/courses/%s/publish", courseID), ownerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Idempotent: a second publish succeeds too.
	w = doRequest(t, r, http.MethodPost, fmt.Sprintf("/v1/courses/%s/publish", courseID), ownerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodPost, fmt.Sprintf("/v1/courses/%s/unpublish", courseID), ownerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodGet, "/v1/courses/"+courseID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateCourseRequiresOwnership(t *testing.T) {
	r, _ := setupRouter(t)
	ownerToken, _ := registerUser(t, r, "owner@example.com", "TEACHER")
	otherToken, _ := registerUser(t, r, "other@example.com", "TEACHER")

	courseID := createCourse(t, r, ownerToken, "Course", 50, true)

	w := doRequest(t, r, http.MethodPut, "/v1/courses/"+courseID, otherToken, gin.H{
		"title":       "Hijacked",
		"description": "Hijacked",
		"price":       1,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, r, http.MethodPut, "/v1/courses/"+courseID, ownerToken, gin.H{
		"title":       "Renamed",
		"description": "Updated description",
		"price":       75,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(t, r, http.MethodGet, "/v1/courses/"+courseID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Renamed")
}

func TestDeleteCourseRequiresOwnership(t *testing.T) {
	r, _ := setupRouter(t)
	ownerToken, _ := registerUser(t, r, "owner@example.com", "TEACHER")
	otherToken, _ := registerUser(t, r, "other@example.com", "TEACHER")

	courseID := createCourse(t, r, ownerToken, "Course", 50, true)

	w := doRequest(t, r, http.MethodDelete, "/v1/courses/"+courseID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, r, http.MethodDelete, "/v1/courses/"+courseID, ownerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodGet, "/v1/courses/"+courseID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateCourseRejectsNegativePrice(t *testing.T) {
	r, _ := setupRouter(t)
	teacherToken, _ := registerUser(t, r, "teacher@example.com", "TEACHER")

	w := doRequest(t, r, http.MethodPost, "/v1/courses", teacherToken, gin.H{
		"title":       "Bad Price",
		"description": "Negative",
		"price":       -10,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
