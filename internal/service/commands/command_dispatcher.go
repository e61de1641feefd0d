package commands

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/hatchlog/internal/domain/models"
	"github.com/mamadbah2/hatchlog/internal/repository/store"
	"github.com/mamadbah2/hatchlog/internal/service/reporting"
)

// ErrUnsupportedCommand indicates we do not support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

// ErrUnknownSender is returned when no account carries the sender's phone.
var ErrUnknownSender = errors.New("unknown sender")

// UnknownSenderReply is sent back to phones that are not linked to an account.
const UnknownSenderReply = "This number is not linked to a Hatchlog account. Add it to your profile to use commands."

// UserLookup resolves a WhatsApp sender to an account.
type UserLookup interface {
	UserByPhone(ctx context.Context, phone string) (models.User, error)
}

// ViewSource opens the read views of a user's tracker session.
type ViewSource func(ctx context.Context, userID string) (reporting.Views, error)

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	TasksSummary(v reporting.Views) (string, error)
	FeedReport(v reporting.Views) (string, error)
	HatchReport(v reporting.Views) (string, error)
	MedsReport(v reporting.Views) (string, error)
}

// Dispatcher executes parsed commands and returns the reply text.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	users     UserLookup
	views     ViewSource
	reporting ReportingAdapter
	logger    *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(users UserLookup, views ViewSource, reporting ReportingAdapter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:     users,
		views:     views,
		reporting: reporting,
		logger:    logger,
	}
}

// HandleCommand answers a status command for the account owning sender.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Any("args", cmd.Args))

	var render func(reporting.Views) (string, error)
	switch cmd.Type {
	case models.CommandHelp:
		return reporting.HelpText, nil
	case models.CommandUnknown:
		return "Unknown command.\n" + reporting.HelpText, nil
	case models.CommandTasks:
		render = s.reporting.TasksSummary
	case models.CommandFeed:
		render = s.reporting.FeedReport
	case models.CommandHatch:
		render = s.reporting.HatchReport
	case models.CommandMeds:
		render = s.reporting.MedsReport
	default:
		return "", ErrUnsupportedCommand
	}

	user, err := s.users.UserByPhone(ctx, sender)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", sender, ErrUnknownSender)
		}
		return "", fmt.Errorf("resolve sender: %w", err)
	}

	views, err := s.views(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("open session for %s: %w", user.ID, err)
	}
	return render(views)
}
