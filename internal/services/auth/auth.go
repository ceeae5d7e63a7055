// Package auth содержит регистрацию, вход, проверку сессий и сброс пароля.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/natours/internal/apperr"
	"github.com/magabrotheeeer/natours/internal/lib/jwt"
	"github.com/magabrotheeeer/natours/internal/lib/resettoken"
	"github.com/magabrotheeeer/natours/internal/lib/sl"
	"github.com/magabrotheeeer/natours/internal/models"
	"github.com/magabrotheeeer/natours/internal/storage"
)

// Сообщения для клиента.
const (
	msgMissingCredentials = "Provide the email and password fields"
	msgBadCredentials     = "Email or password is incorrect"
	msgNotLoggedIn        = "You're not logged in, login to get access."
	msgInvalidToken       = "Token is not valid, Login again"
	msgExpiredToken       = "Token is expired, login again"
	msgPrincipalGone      = "The owner of this token does not exist"
	msgStaleCredential    = "User's password is changed, login again"
	msgResetSent          = "Reset password URL was sent to your email address"
	msgResetFailed        = "The operation of sending reset password link was failed"
	msgResetInvalid       = "Token is either invalid or expired"
	msgWrongPassword      = "The password is incorrect, operation failed"

	// ResetSubject тема письма со ссылкой сброса.
	ResetSubject = "Your password reset token (valid for 10 minutes)"
	// ResetPath путь обмена токена сброса, к нему добавляется сам токен.
	ResetPath = "/api/v1/users/resetPassword/"

	defaultSendTimeout = 10 * time.Second
)

// UserRepository операции хранилища пользователей для аутентификации.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	Save(ctx context.Context, u *models.User, opts models.SaveOptions) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByResetToken(ctx context.Context, hash string, now time.Time) (*models.User, error)
}

// TokenMaker выпускает и проверяет JWT.
type TokenMaker interface {
	GenerateToken(userID string) (string, error)
	ParseToken(token string) (*jwt.Claims, error)
}

// PasswordVerifier сравнивает пароль с bcrypt-хешем.
type PasswordVerifier interface {
	Verify(plain, digest string) bool
}

// Mailer отправляет письмо одному получателю.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Session результат успешного входа: токен и пользователь.
type Session struct {
	Token string
	User  *models.User
}

// SignupInput данные регистрации.
type SignupInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// Service сервис аутентификации.
type Service struct {
	users       UserRepository
	tokens      TokenMaker
	passwords   PasswordVerifier
	mailer      Mailer
	log         *slog.Logger
	now         func() time.Time
	sendTimeout time.Duration
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет часы, используемые для сроков токенов сброса.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSendTimeout ограничивает время отправки письма.
func WithSendTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sendTimeout = d
		}
	}
}

// NewService создаёт сервис аутентификации.
func NewService(users UserRepository, tokens TokenMaker, passwords PasswordVerifier, mailer Mailer, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		users:       users,
		tokens:      tokens,
		passwords:   passwords,
		mailer:      mailer,
		log:         log,
		now:         time.Now,
		sendTimeout: defaultSendTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup создаёт пользователя с ролью user и сразу выдаёт токен.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	const op = "services.auth.Signup"

	u := models.NewUser(in.Name, in.Email, in.Password, in.PasswordConfirm)
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.session(op, u)
}

// Login проверяет email и пароль.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	const op = "services.auth.Login"

	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperr.Validation(msgMissingCredentials)
	}
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Unauthenticated(msgBadCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !s.passwords.Verify(password, u.PasswordHash) {
		return nil, apperr.Unauthenticated(msgBadCredentials)
	}
	return s.session(op, u)
}

// Authenticate проверяет токен сессии и возвращает его владельца.
//
// Владелец должен существовать и быть активным, а пароль не должен
// меняться после выпуска токена.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	const op = "services.auth.Authenticate"

	if token == "" {
		return nil, apperr.Unauthenticated(msgNotLoggedIn)
	}
	claims, err := s.tokens.ParseToken(token)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, apperr.Wrap(err, apperr.CodeTokenExpired, msgExpiredToken)
	case err != nil:
		return nil, apperr.Wrap(err, apperr.CodeInvalidToken, msgInvalidToken)
	}

	u, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.New(apperr.CodePrincipalGone, msgPrincipalGone)
	}
	if err != nil {
		if apperr.Is(err, apperr.CodeValidation) {
			// id в подписанном токене не является ObjectID
			return nil, apperr.New(apperr.CodeInvalidToken, msgInvalidToken)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if u.PasswordChangedAfter(claims.IssuedAtTime()) {
		return nil, apperr.New(apperr.CodeStaleCredential, msgStaleCredential)
	}
	return u, nil
}

// ForgotPassword выдаёт одноразовый токен сброса и отправляет ссылку на email.
//
// Для неизвестного email ответ такой же, как для известного. Если письмо не
// ушло, токен стирается и возвращается EMAIL_DELIVERY_FAILED.
func (s *Service) ForgotPassword(ctx context.Context, email, baseURL string) (string, error) {
	const op = "services.auth.ForgotPassword"
	log := s.log.With(slog.String("op", op))

	if strings.TrimSpace(email) == "" {
		return "", apperr.Validation("Please provide your email")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		log.Info("password reset requested for unknown email")
		return msgResetSent, nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	token, hash, err := resettoken.Generate()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	u.SetResetToken(hash, s.now().Add(resettoken.TTL).UTC())
	if err := s.users.Save(ctx, u, models.SaveOptions{SkipValidation: true}); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	resetURL := strings.TrimRight(baseURL, "/") + ResetPath + token
	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()
	if err := s.mailer.Send(sendCtx, u.Email, ResetSubject, resetBody(resetURL)); err != nil {
		log.Error("failed to send reset email", slog.String("user_id", u.ID.Hex()), sl.Err(err))

		u.ClearResetToken()
		if saveErr := s.users.Save(ctx, u, models.SaveOptions{SkipValidation: true}); saveErr != nil {
			log.Error("failed to clear reset token", slog.String("user_id", u.ID.Hex()), sl.Err(saveErr))
		}
		return "", apperr.Wrap(err, apperr.CodeEmailDeliveryFailed, msgResetFailed)
	}

	log.Info("reset email sent", slog.String("user_id", u.ID.Hex()))
	return msgResetSent, nil
}

// ResetPassword меняет пароль по токену сброса. Токен действует один раз.
func (s *Service) ResetPassword(ctx context.Context, token, password, confirm string) (*Session, error) {
	const op = "services.auth.ResetPassword"

	u, err := s.users.FindByResetToken(ctx, resettoken.Hash(token), s.now())
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.New(apperr.CodeInvalidOrExpiredToken, msgResetInvalid)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u.SetPassword(password, confirm)
	u.ClearResetToken()
	if err := s.users.Save(ctx, u, models.SaveOptions{}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.session(op, u)
}

// UpdatePassword меняет пароль вошедшего пользователя после проверки текущего.
func (s *Service) UpdatePassword(ctx context.Context, userID, current, password, confirm string) (*Session, error) {
	const op = "services.auth.UpdatePassword"

	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.New(apperr.CodePrincipalGone, msgPrincipalGone)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if current == "" || !s.passwords.Verify(current, u.PasswordHash) {
		return nil, apperr.Unauthenticated(msgWrongPassword)
	}

	u.SetPassword(password, confirm)
	if err := s.users.Save(ctx, u, models.SaveOptions{}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.session(op, u)
}

func (s *Service) session(op string, u *models.User) (*Session, error) {
	token, err := s.tokens.GenerateToken(u.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Session{Token: token, User: u}, nil
}

func resetBody(resetURL string) string {
	return "Forgot your password? Submit a PATCH request with your new password and passwordConfirm to:\n" +
		resetURL + "\n" +
		"If you didn't forget your password, please ignore this email."
}
