package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nexuslearn/nexus/config"
	"github.com/nexuslearn/nexus/internal/notifier"
	"github.com/nexuslearn/nexus/internal/server"
)

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// A pooled second connection would get its own empty in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.MigrateModels(db))

	n := notifier.New(db, &notifier.LogMailer{Logger: zap.NewNop()}, zap.NewNop())
	t.Cleanup(n.Close)

	r := gin.New()
	server.SetupRoutes(r, db, n)
	return r, db
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func registerUser(t *testing.T, r *gin.Engine, email, role string) (token, userID string) {
	t.Helper()
	w := doRequest(t, r, http.MethodPost, "/v1/register", "", gin.H{
		"email":    email,
		"password": "password123",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	token = body["token"].(string)
	user := body["user"].(map[string]interface{})
	return token, user["id"].(string)
}

func createCourse(t *testing.T, r *gin.Engine, token, title string, price float64, publish bool) string {
	t.Helper()
	w := doRequest(t, r, http.MethodPost, "/v1/courses", token, gin.H{
		"title":       title,
		"description": "A course about " + title,
		"price":       price,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	courseID := decodeBody(t, w)["course_id"].(string)

	if publish {
		w = doRequest(t, r, http.MethodPost, fmt.Sprintf("/v1/courses/%s/publish", courseID), token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	return courseID
}

// payForCourse runs the simulated payment flow, which activates the
// learner's enrollment.
func payForCourse(t *testing.T, r *gin.Engine, token, courseID string) map[string]interface{} {
	t.Helper()
	w := doRequest(t, r, http.MethodPost, "/v1/payments", token, gin.H{
		"course_id": courseID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody(t, w)
}
