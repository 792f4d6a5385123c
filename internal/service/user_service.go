package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/board-service/internal/auth"
	"github.com/spec-kit/board-service/internal/domain"
	"github.com/spec-kit/board-service/internal/events"
	"github.com/spec-kit/board-service/internal/observability"
	"github.com/spec-kit/board-service/internal/repository"
	"github.com/spec-kit/board-service/internal/session"
	apperrors "github.com/spec-kit/board-service/pkg/util"
)

// Session attribute keys written on session login.
const (
	SessionKeyEmail  = "userEmail"
	SessionKeyUserID = "userId"
)

// TokenIssuer mints a token pair for an identity.
type TokenIssuer interface {
	Issue(id domain.Identity) (domain.TokenPair, error)
}

// SessionHandle is the server-side session a session login writes to.
// *session.Session from fiber's session middleware satisfies it.
type SessionHandle interface {
	ID() string
	Fresh() bool
	Set(key string, val interface{})
	SetExpiry(exp time.Duration)
	Save() error
	Destroy() error
}

// SignUpInput carries registration fields.
type SignUpInput struct {
	Name     string
	Age      int
	Email    string
	Password string
}

// LoginResult is returned by a successful token login.
type LoginResult struct {
	UserID int64
	Tokens domain.TokenPair
}

// UserService coordinates registration, lookups and both login flows.
type UserService struct {
	users       repository.UserRepository
	tokens      TokenIssuer
	sessions    *session.Registry
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	bcryptCost  int
	maxInactive time.Duration
}

// UserDependencies encapsulates collaborators of the user service.
type UserDependencies struct {
	Users       repository.UserRepository
	Tokens      TokenIssuer
	Sessions    *session.Registry
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	BcryptCost  int
	MaxInactive time.Duration
}

// NewUserService builds the service.
func NewUserService(deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sessions := deps.Sessions
	if sessions == nil {
		sessions = session.NewRegistry()
	}
	return &UserService{
		users:       deps.Users,
		tokens:      deps.Tokens,
		sessions:    sessions,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      logger,
		bcryptCost:  deps.BcryptCost,
		maxInactive: deps.MaxInactive,
	}
}

// CreateUser registers a new account with the default role.
func (s *UserService) CreateUser(ctx context.Context, in SignUpInput) (*domain.User, error) {
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperrors.New(apperrors.ExistEmail)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Wrap(apperrors.DatabaseSelectError, err)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         in.Name,
		Age:          in.Age,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		State:        domain.StateActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.Wrap(apperrors.DatabaseInsertError, err)
	}

	s.publish(ctx, events.NewEvent(events.EventUserSignedUp, user.ID, nil))
	return user, nil
}

// GetUsers lists every account.
func (s *UserService) GetUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.DatabaseSelectError, err)
	}
	return users, nil
}

// GetUserByID fetches one account.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.lookup(s.users.GetByID(ctx, id))
}

// Login verifies credentials and issues a token pair.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.Issue(domain.Identity{UserID: user.ID, Role: user.Role})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.EventUserLoggedIn, user.ID, events.LoginPayload{
		Email:            user.Email,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}))
	return &LoginResult{UserID: user.ID, Tokens: pair}, nil
}

// SessionLogin verifies credentials, stamps the handle with the caller's
// identity and registers it. Logging in again on the same handle replaces
// its registry entry.
func (s *UserService) SessionLogin(ctx context.Context, email, password string, handle SessionHandle) (*domain.Session, error) {
	s.logger.Info("session login", zap.String("email", email))

	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	handle.Set(SessionKeyEmail, user.Email)
	handle.Set(SessionKeyUserID, user.ID)
	handle.SetExpiry(s.maxInactive)

	sess := &domain.Session{
		ID:          handle.ID(),
		UserID:      user.ID,
		UserEmail:   user.Email,
		MaxInactive: s.maxInactive,
		CreatedAt:   time.Now().UTC(),
	}
	if err := handle.Save(); err != nil {
		return nil, apperrors.Wrap(apperrors.DatabaseInsertError, err)
	}
	s.sessions.DeleteBySessionID(sess.ID)
	s.sessions.Save(sess)
	s.metrics.SetActiveSessions(s.sessions.Len())

	s.publish(ctx, events.NewEvent(events.EventSessionCreated, user.ID, events.SessionPayload{
		SessionID: sess.ID,
		Email:     user.Email,
	}))
	return sess, nil
}

// SessionLogout invalidates the handle, then drops it from the registry.
func (s *UserService) SessionLogout(ctx context.Context, handle SessionHandle) error {
	if handle == nil || handle.Fresh() {
		return apperrors.New(apperrors.NoSessionID)
	}

	id := handle.ID()
	payload := events.SessionPayload{SessionID: id}
	var userID int64
	if sess, ok := s.sessions.FindBySessionID(id); ok {
		userID = sess.UserID
		payload.Email = sess.UserEmail
	}

	if err := handle.Destroy(); err != nil {
		return apperrors.Wrap(apperrors.DatabaseDeleteError, err)
	}

	s.sessions.DeleteBySessionID(id)
	s.metrics.SetActiveSessions(s.sessions.Len())

	s.publish(ctx, events.NewEvent(events.EventSessionDestroyed, userID, payload))
	return nil
}

// Sessions exposes the registry backing session logins.
func (s *UserService) Sessions() *session.Registry {
	return s.sessions
}

func (s *UserService) authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.lookup(s.users.GetByEmail(ctx, email))
	if err != nil {
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) lookup(user *domain.User, err error) (*domain.User, error) {
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Wrap(apperrors.NonExistUser, err)
		}
		return nil, apperrors.Wrap(apperrors.DatabaseSelectError, err)
	}
	return user, nil
}

func (s *UserService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("audit publish failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}
