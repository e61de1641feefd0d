package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/hatchlog/internal/domain/models"
	client "github.com/mamadbah2/hatchlog/pkg/clients/whatsapp"
)

// UserDirectory resolves a user's contact details.
type UserDirectory interface {
	User(ctx context.Context, userID string) (models.User, error)
}

// WhatsApp forwards alert notifications to the user's phone.
type WhatsApp struct {
	client client.Client
	users  UserDirectory
	logger *zap.Logger
}

// NewWhatsApp builds a WhatsApp notifier.
func NewWhatsApp(c client.Client, users UserDirectory, logger *zap.Logger) *WhatsApp {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WhatsApp{client: c, users: users, logger: logger}
}

// Notify sends alerts only; confirmations and errors stay in the app.
func (w *WhatsApp) Notify(ctx context.Context, n models.Notification) error {
	if n.Kind != models.NotificationAlert {
		return nil
	}

	user, err := w.users.User(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient %s: %w", n.UserID, err)
	}
	phone := strings.TrimPrefix(strings.TrimSpace(user.Phone), "+")
	if phone == "" {
		w.logger.Debug("user has no phone, skipping whatsapp", zap.String("user_id", n.UserID))
		return nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := w.client.SendTextMessage(sendCtx, client.SendTextMessageRequest{To: phone, Body: n.Message}); err != nil {
		return fmt.Errorf("whatsapp notify %s: %w", n.UserID, err)
	}
	return nil
}
