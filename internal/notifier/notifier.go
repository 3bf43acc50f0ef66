// Package notifier is the asynchronous notification port. Requests enqueue
// a job and move on; a single worker loads the row, renders the email and
// hands it to a Mailer. Nothing here ever propagates back to a request.
package notifier

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nexuslearn/nexus/internal/models"
)

const defaultQueueSize = 128

type jobKind int

const (
	jobEnrollmentChanged jobKind = iota
	jobPaymentReceipt
)

type job struct {
	kind jobKind
	id   uuid.UUID
}

type Notifier struct {
	db     *gorm.DB
	mailer Mailer
	logger *zap.Logger

	jobs      chan job
	done      chan struct{}
	closeOnce sync.Once
}

func New(db *gorm.DB, mailer Mailer, logger *zap.Logger) *Notifier {
	n := &Notifier{
		db:     db,
		mailer: mailer,
		logger: logger,
		jobs:   make(chan job, defaultQueueSize),
		done:   make(chan struct{}),
	}
	go n.run()
	return n
}

// EnrollmentChanged enqueues a status email for the enrollment. Never blocks;
// if the queue is full the notification is dropped.
func (n *Notifier) EnrollmentChanged(enrollmentID uuid.UUID) {
	n.enqueue(job{kind: jobEnrollmentChanged, id: enrollmentID})
}

// PaymentReceipt enqueues a receipt email for the payment. Never blocks.
func (n *Notifier) PaymentReceipt(paymentID uuid.UUID) {
	n.enqueue(job{kind: jobPaymentReceipt, id: paymentID})
}

func (n *Notifier) enqueue(j job) {
	select {
	case n.jobs <- j:
	default:
		n.logger.Warn("notification queue full, dropping job",
			zap.Int("kind", int(j.kind)),
			zap.String("id", j.id.String()))
	}
}

// Close drains pending jobs and stops the worker.
func (n *Notifier) Close() {
	n.closeOnce.Do(func() {
		close(n.jobs)
	})
	<-n.done
}

func (n *Notifier) run() {
	defer close(n.done)
	for j := range n.jobs {
		if err := n.process(j); err != nil {
			n.logger.Warn("notification failed",
				zap.Int("kind", int(j.kind)),
				zap.String("id", j.id.String()),
				zap.Error(err))
		}
	}
}

func (n *Notifier) process(j job) error {
	switch j.kind {
	case jobEnrollmentChanged:
		return n.sendEnrollmentNotification(j.id)
	case jobPaymentReceipt:
		return n.sendPaymentReceipt(j.id)
	}
	return fmt.Errorf("unknown job kind %d", j.kind)
}

func (n *Notifier) sendEnrollmentNotification(enrollmentID uuid.UUID) error {
	var enrollment models.Enrollment
	if err := n.db.Preload("Learner").Preload("Course").First(&enrollment, "id = ?", enrollmentID).Error; err != nil {
		return err
	}

	if enrollment.Learner == nil || enrollment.Course == nil {
		return fmt.Errorf("enrollment %s is missing its learner or course", enrollmentID)
	}

	subject := fmt.Sprintf("Enrollment update for %s", enrollment.Course.Title)
	body := fmt.Sprintf(
		"Hi %s,\n\nYour enrollment status for %s is now %s.\n",
		enrollment.Learner.Email, enrollment.Course.Title, enrollment.Status,
	)
	return n.mailer.Send(enrollment.Learner.Email, subject, body)
}

func (n *Notifier) sendPaymentReceipt(paymentID uuid.UUID) error {
	var payment models.Payment
	if err := n.db.Preload("Learner").Preload("Course").First(&payment, "id = ?", paymentID).Error; err != nil {
		return err
	}

	if payment.Learner == nil || payment.Course == nil {
		return fmt.Errorf("payment %s is missing its learner or course", paymentID)
	}

	subject := fmt.Sprintf("Payment receipt for %s", payment.Course.Title)
	body := fmt.Sprintf(
		"Hi %s,\n\nWe received your payment of $%.2f for %s.\nReference: %s\n\nThank you for learning with Nexus!",
		payment.Learner.Email, payment.Amount, payment.Course.Title, payment.Reference,
	)
	return n.mailer.Send(payment.Learner.Email, subject, body)
}
