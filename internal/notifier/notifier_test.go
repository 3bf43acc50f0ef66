package notifier

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nexuslearn/nexus/internal/models"
)

type capturedMail struct {
	to      string
	subject string
	body    string
}

type captureMailer struct {
	sent chan capturedMail
	err  error
}

func (m *captureMailer) Send(to, subject, body string) error {
	m.sent <- capturedMail{to: to, subject: subject, body: body}
	return m.err
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Course{}, &models.Enrollment{}, &models.Payment{}))
	return db
}

func seedEnrollment(t *testing.T, db *gorm.DB) (models.Enrollment, models.Payment) {
	t.Helper()

	teacher := models.User{Email: "teacher@example.com", Password: "x", Role: models.RoleTeacher}
	require.NoError(t, db.Create(&teacher).Error)
	learner := models.User{Email: "learner@example.com", Password: "x", Role: models.RoleLearner}
	require.NoError(t, db.Create(&learner).Error)

	course := models.Course{Title: "Go in Depth", Description: "d", Price: 50, IsPublished: true, TeacherID: teacher.ID}
	require.NoError(t, db.Create(&course).Error)

	enrollment := models.Enrollment{LearnerID: learner.ID, CourseID: course.ID, Status: models.EnrollmentActive}
	require.NoError(t, db.Create(&enrollment).Error)

	payment := models.Payment{
		Amount:    50,
		Provider:  "mock",
		Status:    models.PaymentSuccess,
		Reference: "ref-123",
		LearnerID: learner.ID,
		CourseID:  course.ID,
	}
	require.NoError(t, db.Create(&payment).Error)

	return enrollment, payment
}

func waitForMail(t *testing.T, sent chan capturedMail) capturedMail {
	t.Helper()
	select {
	case mail := <-sent:
		return mail
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return capturedMail{}
	}
}

func TestEnrollmentNotification(t *testing.T) {
	db := setupDB(t)
	enrollment, _ := seedEnrollment(t, db)

	mailer := &captureMailer{sent: make(chan capturedMail, 1)}
	n := New(db, mailer, zap.NewNop())
	defer n.Close()

	n.EnrollmentChanged(enrollment.ID)

	mail := waitForMail(t, mailer.sent)
	assert.Equal(t, "learner@example.com", mail.to)
	assert.Contains(t, mail.subject, "Go in Depth")
	assert.Contains(t, mail.body, "ACTIVE")
}

func TestPaymentReceiptNotification(t *testing.T) {
	db := setupDB(t)
	_, payment := seedEnrollment(t, db)

	mailer := &captureMailer{sent: make(chan capturedMail, 1)}
	n := New(db, mailer, zap.NewNop())
	defer n.Close()

	n.PaymentReceipt(payment.ID)

	mail := waitForMail(t, mailer.sent)
	assert.Equal(t, "learner@example.com", mail.to)
	assert.Contains(t, mail.subject, "Payment receipt")
	assert.Contains(t, mail.body, "ref-123")
	assert.Contains(t, mail.body, "$50.00")
}

// A failing mailer must not stop the worker or surface anywhere.
func TestMailerFailureIsSwallowed(t *testing.T) {
	db := setupDB(t)
	enrollment, payment := seedEnrollment(t, db)

	mailer := &captureMailer{sent: make(chan capturedMail, 2), err: errors.New("smtp down")}
	n := New(db, mailer, zap.NewNop())
	defer n.Close()

	n.EnrollmentChanged(enrollment.ID)
	waitForMail(t, mailer.sent)

	// Worker is still alive and processing.
	n.PaymentReceipt(payment.ID)
	waitForMail(t, mailer.sent)
}

func TestUnknownRowIsIgnored(t *testing.T) {
	db := setupDB(t)
	enrollment, payment := seedEnrollment(t, db)

	mailer := &captureMailer{sent: make(chan capturedMail, 2)}
	n := New(db, mailer, zap.NewNop())
	defer n.Close()

	// Missing enrollment: logged and skipped, the next job still runs.
	require.NoError(t, db.Delete(&models.Enrollment{}, "id = ?", enrollment.ID).Error)
	n.EnrollmentChanged(enrollment.ID)
	n.PaymentReceipt(payment.ID)

	mail := waitForMail(t, mailer.sent)
	assert.Contains(t, mail.subject, "Payment receipt")
}

func TestCloseDrainsQueue(t *testing.T) {
	db := setupDB(t)
	enrollment, _ := seedEnrollment(t, db)

	mailer := &captureMailer{sent: make(chan capturedMail, 8)}
	n := New(db, mailer, zap.NewNop())

	for i := 0; i < 3; i++ {
		n.EnrollmentChanged(enrollment.ID)
	}
	n.Close()

	assert.Len(t, mailer.sent, 3)
}
