package services

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"contact-relay/internal/logger"
	"contact-relay/internal/models"
)

type mockSender struct {
	mock.Mock
	name       string
	configured bool
}

func newMockSender(name string, configured bool) *mockSender {
	return &mockSender{name: name, configured: configured}
}

func (m *mockSender) SendMail(ctx context.Context, job *models.ContactMail) (string, error) {
	args := m.Called(ctx, job)
	return args.String(0), args.Error(1)
}

func (m *mockSender) Name() string       { return m.name }
func (m *mockSender) IsConfigured() bool { return m.configured }

// classifyingSender 模擬 SMTP 的錯誤分類
type classifyingSender struct {
	*mockSender
}

func (c classifyingSender) Classify(err error) models.FailureClass {
	return ClassifySMTPError(err)
}

func testJob() *models.ContactMail {
	return &models.ContactMail{
		From:    "owner@example.com",
		To:      "owner@example.com",
		ReplyTo: "jane@example.com",
		Subject: "New portfolio message from Jane",
		Text:    "Name: Jane\nEmail: jane@example.com\n\nMessage:\nHello there, friend\n",
	}
}

func TestDeliverStopsAtFirstSuccess(t *testing.T) {
	mailAPI := newMockSender("SendGrid", true)
	emailJS := newMockSender("EmailJS", true)
	smtp := newMockSender("SMTP", true)
	mailAPI.On("SendMail", mock.Anything, mock.Anything).Return("msg-1", nil).Once()

	router := NewMailRouter(logger.Nop(), time.Second, mailAPI, emailJS, smtp)
	report := router.Deliver(testJob())

	assert.Equal(t, models.DeliverySent, report.Outcome.Status)
	assert.Equal(t, "SendGrid", report.Outcome.Provider)
	assert.Equal(t, "msg-1", report.Outcome.Reference)
	assert.Len(t, report.Attempts, 1)
	mailAPI.AssertExpectations(t)
	emailJS.AssertNotCalled(t, "SendMail", mock.Anything, mock.Anything)
	smtp.AssertNotCalled(t, "SendMail", mock.Anything, mock.Anything)
}

func TestDeliverSkipsUnconfiguredAndFallsThrough(t *testing.T) {
	mailAPI := newMockSender("SendGrid", false)
	emailJS := newMockSender("EmailJS", true)
	smtp := newMockSender("SMTP", true)
	emailJS.On("SendMail", mock.Anything, mock.Anything).Return("", errors.New("EmailJS API error (status 400)")).Once()
	smtp.On("SendMail", mock.Anything, mock.Anything).Return("ref-1", nil).Once()

	router := NewMailRouter(logger.Nop(), time.Second, mailAPI, emailJS, smtp)
	report := router.Deliver(testJob())

	require.True(t, report.Outcome.Sent())
	assert.Equal(t, "SMTP", report.Outcome.Provider)
	require.Len(t, report.Attempts, 3)
	assert.Equal(t, models.DeliveryNotConfigured, report.Attempts[0].Status)
	assert.Equal(t, models.DeliveryFailed, report.Attempts[1].Status)
	assert.Equal(t, models.DeliverySent, report.Attempts[2].Status)
	mailAPI.AssertNotCalled(t, "SendMail", mock.Anything, mock.Anything)
}

func TestDeliverNothingConfigured(t *testing.T) {
	senders := []MailSender{
		newMockSender("SendGrid", false),
		newMockSender("EmailJS", false),
		newMockSender("SMTP", false),
	}

	report := NewMailRouter(logger.Nop(), time.Second, senders...).Deliver(testJob())

	assert.Equal(t, models.DeliveryNotConfigured, report.Outcome.Status)
	assert.False(t, report.AnyAttempted())
	for _, s := range senders {
		s.(*mockSender).AssertNotCalled(t, "SendMail", mock.Anything, mock.Anything)
	}
}

func TestDeliverAllFailedKeepsLastFailure(t *testing.T) {
	mailAPI := newMockSender("Resend", true)
	smtp := classifyingSender{newMockSender("SMTP", true)}
	mailAPI.On("SendMail", mock.Anything, mock.Anything).Return("", errors.New("422 invalid from")).Once()
	smtp.On("SendMail", mock.Anything, mock.Anything).
		Return("", &wrappedErr{msg: "write tcp", err: syscall.ECONNRESET}).Once()

	report := NewMailRouter(logger.Nop(), time.Second, mailAPI, newMockSender("EmailJS", false), smtp).Deliver(testJob())

	assert.Equal(t, models.DeliveryFailed, report.Outcome.Status)
	assert.Equal(t, "SMTP", report.Outcome.Provider)
	assert.Equal(t, models.FailureConnectivity, report.Outcome.Class)
	assert.True(t, report.AnyAttempted())
	assert.Equal(t, models.FailureGeneric, report.Attempts[0].Class)
}

func TestAttemptUsesDetachedContextWithTimeout(t *testing.T) {
	sender := newMockSender("EmailJS", true)
	sender.On("SendMail", mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()
		return ok && time.Until(deadline) <= 2*time.Second && ctx.Err() == nil
	}), mock.Anything).Return("", nil).Once()

	outcome := NewMailRouter(logger.Nop(), 2*time.Second).Attempt(sender, testJob())

	assert.True(t, outcome.Sent())
	sender.AssertExpectations(t)
}

type wrappedErr struct {
	msg string
	err error
}

func (e *wrappedErr) Error() string { return e.msg + ": " + e.err.Error() }
func (e *wrappedErr) Unwrap() error { return e.err }
