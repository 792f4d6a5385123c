package service

import (
	"context"
	"encoding/base64"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/board-service/internal/auth"
	"github.com/spec-kit/board-service/internal/config"
	"github.com/spec-kit/board-service/internal/events"
	"github.com/spec-kit/board-service/internal/persistence"
	"github.com/spec-kit/board-service/internal/repository"
	"github.com/spec-kit/board-service/internal/session"
)

type fixture struct {
	users    repository.UserRepository
	boards   repository.BoardRepository
	tokens   *auth.TokenManager
	registry *session.Registry
	events   []events.Event
	userSvc  *UserService
	boardSvc *BoardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := persistence.NewSQLite(context.Background(), config.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "svc.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tokens, err := auth.NewTokenManager(config.AuthConfig{
		JWTSecret:             base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef")),
		AccessTokenTTLMinutes: 30,
		RefreshTokenTTLHours:  24,
	})
	require.NoError(t, err)

	f := &fixture{
		users:    repository.NewSQLiteUserRepository(db.DB),
		boards:   repository.NewSQLiteBoardRepository(db.DB),
		tokens:   tokens,
		registry: session.NewRegistry(),
	}

	dispatcher := events.NewInMemoryDispatcher()
	for _, et := range []events.EventType{
		events.EventUserSignedUp, events.EventUserLoggedIn,
		events.EventSessionCreated, events.EventSessionDestroyed,
	} {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			f.events = append(f.events, e)
			return nil
		})
	}

	f.userSvc = NewUserService(UserDependencies{
		Users:       f.users,
		Tokens:      tokens,
		Sessions:    f.registry,
		Dispatcher:  dispatcher,
		BcryptCost:  bcrypt.MinCost,
		MaxInactive: 30 * time.Minute,
	})
	f.boardSvc = NewBoardService(f.boards, f.users, nil)
	return f
}

func (f *fixture) eventTypes() []events.EventType {
	out := make([]events.EventType, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

// fakeHandle records what a session login writes to the handle.
type fakeHandle struct {
	id         string
	fresh      bool
	values     map[string]interface{}
	expiry     time.Duration
	saved      bool
	destroyed  bool
	saveErr    error
	destroyErr error
}

func newFakeHandle(id string, fresh bool) *fakeHandle {
	return &fakeHandle{id: id, fresh: fresh, values: map[string]interface{}{}}
}

func (h *fakeHandle) ID() string                      { return h.id }
func (h *fakeHandle) Fresh() bool                     { return h.fresh }
func (h *fakeHandle) Set(key string, val interface{}) { h.values[key] = val }
func (h *fakeHandle) SetExpiry(exp time.Duration)     { h.expiry = exp }

func (h *fakeHandle) Save() error {
	if h.saveErr != nil {
		return h.saveErr
	}
	h.saved = true
	h.fresh = false
	return nil
}

func (h *fakeHandle) Destroy() error {
	if h.destroyErr != nil {
		return h.destroyErr
	}
	h.destroyed = true
	return nil
}

var errStore = errors.New("store unavailable")
