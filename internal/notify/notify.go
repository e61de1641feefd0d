// Package notify delivers user-facing notifications to the in-app feed,
// WhatsApp and the activity log.
package notify

import (
	"context"
	"errors"

	"github.com/mamadbah2/hatchlog/internal/domain/models"
)

// Notifier delivers one notification.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n models.Notification) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, n models.Notification) error {
	return f(ctx, n)
}

// Multi fans a notification out to every notifier and joins their errors.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, n models.Notification) error {
	var errs []error
	for _, target := range m {
		if target == nil {
			continue
		}
		if err := target.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ActivityRecorder appends audit entries.
type ActivityRecorder interface {
	LogActivity(ctx context.Context, userID, action, deviceInfo string) error
}

// Audit records each notification message as an activity log entry.
type Audit struct {
	Recorder ActivityRecorder
}

// Notify implements Notifier.
func (a Audit) Notify(ctx context.Context, n models.Notification) error {
	if n.UserID == "" {
		return nil
	}
	return a.Recorder.LogActivity(ctx, n.UserID, n.Message, "")
}
