// Package accounts handles registration, login, device tracking and the
// activity audit trail.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mamadbah2/hatchlog/internal/auth"
	"github.com/mamadbah2/hatchlog/internal/dates"
	"github.com/mamadbah2/hatchlog/internal/domain/models"
	"github.com/mamadbah2/hatchlog/internal/repository/store"
)

var (
	ErrEmailTaken            = errors.New("email already registered")
	ErrInvalidActivationCode = errors.New("invalid activation code")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrForbidden             = errors.New("admin rights required")
	ErrValidation            = errors.New("validation error")
)

// Audit actions.
const (
	ActionLogin          = "User logged in"
	ActionRegister       = "New user registered"
	ActionRestore        = "User session restored"
	ActionCodeIssued     = "Activation code generated"
	unknownDeviceInfo    = "Unknown device"
	activationCodeLength = 8
)

// RegisterRequest is the payload for Register.
type RegisterRequest struct {
	Name           string `json:"name" validate:"required,max=100"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6,max=72"`
	ActivationCode string `json:"activationCode" validate:"required"`
	Phone          string `json:"phone" validate:"omitempty,e164"`
	UserAgent      string `json:"-"`
}

// LoginRequest is the payload for Login.
type LoginRequest struct {
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required"`
	UserAgent string `json:"-"`
}

// Session is a signed-in user and its bearer token.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Service implements account operations over the record store.
type Service struct {
	store    store.Store
	tokens   *auth.TokenService
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires an account service.
func NewService(st store.Store, tokens *auth.TokenService, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    st,
		tokens:   tokens,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates a user when the activation code matches the email and is
// still unused. The code is consumed on success.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (models.User, error) {
	req.Email = normalizeEmail(req.Email)
	req.ActivationCode = strings.ToUpper(strings.TrimSpace(req.ActivationCode))
	if err := s.check(req); err != nil {
		return models.User{}, err
	}

	if _, err := s.userByEmail(ctx, req.Email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.User{}, err
	}

	codes, err := s.store.ActivationCodes().List(ctx, store.Filter{
		"code":  req.ActivationCode,
		"email": req.Email,
		"used":  false,
	})
	if err != nil {
		return models.User{}, fmt.Errorf("find activation code: %w", err)
	}
	if len(codes) == 0 {
		return models.User{}, ErrInvalidActivationCode
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return models.User{}, err
	}

	now := dates.At(s.now())
	user, err := s.store.Users().Create(ctx, models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		RegisterDate: now,
		LastLogin:    now,
	})
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	if _, err := s.store.ActivationCodes().Update(ctx, codes[0].ID, store.Patch{
		"used":   true,
		"usedAt": now,
	}); err != nil {
		return models.User{}, fmt.Errorf("mark activation code used: %w", err)
	}

	device := s.touchDevice(ctx, user.ID, req.UserAgent)
	s.record(ctx, user.ID, ActionRegister, device)
	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login verifies credentials, stamps lastLogin, registers the device and
// issues a token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (Session, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.check(req); err != nil {
		return Session{}, err
	}

	user, err := s.userByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	user, err = s.store.Users().Update(ctx, user.ID, store.Patch{"lastLogin": dates.At(s.now())})
	if err != nil {
		return Session{}, fmt.Errorf("update last login: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return Session{}, err
	}

	device := s.touchDevice(ctx, user.ID, req.UserAgent)
	s.record(ctx, user.ID, ActionLogin, device)
	return Session{Token: token, User: user}, nil
}

// Restore confirms a token's user still exists and refreshes its device.
func (s *Service) Restore(ctx context.Context, userID, userAgent string) (models.User, error) {
	user, err := s.store.Users().Get(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	device := s.touchDevice(ctx, user.ID, userAgent)
	s.record(ctx, user.ID, ActionRestore, device)
	return user, nil
}

// User returns a user by id.
func (s *Service) User(ctx context.Context, userID string) (models.User, error) {
	return s.store.Users().Get(ctx, userID)
}

// UserByPhone finds the user whose phone matches, ignoring a leading '+'.
func (s *Service) UserByPhone(ctx context.Context, phone string) (models.User, error) {
	users, err := s.store.Users().List(ctx, nil)
	if err != nil {
		return models.User{}, fmt.Errorf("list users: %w", err)
	}
	want := strings.TrimPrefix(strings.TrimSpace(phone), "+")
	for _, u := range users {
		if u.Phone != "" && strings.TrimPrefix(u.Phone, "+") == want {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("user with phone %s: %w", phone, store.ErrNotFound)
}

// Users lists every account.
func (s *Service) Users(ctx context.Context) ([]models.User, error) {
	return s.store.Users().List(ctx, nil)
}

// GenerateActivationCode issues a single-use code bound to email. Only admins
// may call it.
func (s *Service) GenerateActivationCode(ctx context.Context, adminID, email string) (models.ActivationCode, error) {
	admin, err := s.store.Users().Get(ctx, adminID)
	if err != nil {
		return models.ActivationCode{}, err
	}
	if !admin.IsAdmin {
		return models.ActivationCode{}, ErrForbidden
	}

	email = normalizeEmail(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return models.ActivationCode{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	code, err := s.store.ActivationCodes().Create(ctx, models.ActivationCode{
		Code:      newActivationCode(),
		Email:     email,
		CreatedBy: admin.ID,
		CreatedAt: dates.At(s.now()),
	})
	if err != nil {
		return models.ActivationCode{}, fmt.Errorf("create activation code: %w", err)
	}

	s.record(ctx, admin.ID, ActionCodeIssued+" for "+email, unknownDeviceInfo)
	return code, nil
}

// EnsureDefaultAdmin creates the bootstrap admin when the store has no users.
// It reports whether an account was created.
func (s *Service) EnsureDefaultAdmin(ctx context.Context, name, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	users, err := s.store.Users().List(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("list users: %w", err)
	}
	if len(users) > 0 {
		return false, nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}
	now := dates.At(s.now())
	if _, err := s.store.Users().Create(ctx, models.User{
		Name:         name,
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		IsAdmin:      true,
		RegisterDate: now,
		LastLogin:    now,
	}); err != nil {
		return false, fmt.Errorf("create default admin: %w", err)
	}
	s.logger.Info("default admin created", zap.String("email", email))
	return true, nil
}

// LogActivity appends an audit entry.
func (s *Service) LogActivity(ctx context.Context, userID, action, deviceInfo string) error {
	if deviceInfo == "" {
		deviceInfo = unknownDeviceInfo
	}
	_, err := s.store.ActivityLogs().Create(ctx, models.ActivityLog{
		UserID:     userID,
		Action:     action,
		DeviceInfo: deviceInfo,
		Timestamp:  dates.At(s.now()),
	})
	if err != nil {
		return fmt.Errorf("create activity log: %w", err)
	}
	return nil
}

// HashPassword bcrypt-hashes a password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *Service) check(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		joined := ErrValidation
		for _, fieldErr := range fieldErrs {
			joined = errors.Join(joined, fieldErr)
		}
		return joined
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

func (s *Service) userByEmail(ctx context.Context, email string) (models.User, error) {
	users, err := s.store.Users().List(ctx, store.Filter{"email": email})
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	if len(users) == 0 {
		return models.User{}, store.ErrNotFound
	}
	return users[0], nil
}

// touchDevice records the user agent and returns the device name. Failures are
// logged and never block sign-in.
func (s *Service) touchDevice(ctx context.Context, userID, userAgent string) string {
	name := DeviceName(userAgent)
	now := dates.At(s.now())

	devices, err := s.store.Devices().List(ctx, store.Filter{"userId": userID, "userAgent": userAgent})
	if err != nil {
		s.logger.Warn("device lookup failed", zap.String("user_id", userID), zap.Error(err))
		return name
	}
	if len(devices) > 0 {
		if _, err := s.store.Devices().Update(ctx, devices[0].ID, store.Patch{"lastSeen": now}); err != nil {
			s.logger.Warn("device update failed", zap.String("user_id", userID), zap.Error(err))
		}
		return name
	}

	if _, err := s.store.Devices().Create(ctx, models.Device{
		UserID:       userID,
		UserAgent:    userAgent,
		DeviceName:   name,
		RegisteredAt: now,
		LastSeen:     now,
	}); err != nil {
		s.logger.Warn("device registration failed", zap.String("user_id", userID), zap.Error(err))
	}
	return name
}

func (s *Service) record(ctx context.Context, userID, action, device string) {
	if err := s.LogActivity(ctx, userID, action, device); err != nil {
		s.logger.Warn("activity log failed", zap.String("action", action), zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newActivationCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:activationCodeLength])
}
