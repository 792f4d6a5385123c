package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/board-service/internal/domain"
	"github.com/spec-kit/board-service/internal/events"
	apperrors "github.com/spec-kit/board-service/pkg/util"
)

func signUp(t *testing.T, f *fixture, email string) *domain.User {
	t.Helper()
	u, err := f.userSvc.CreateUser(context.Background(), SignUpInput{
		Name: "minjeong", Age: 24, Email: email, Password: "ldc1104",
	})
	require.NoError(t, err)
	return u
}

func TestCreateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := signUp(t, f, "a@example.com")
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.Equal(t, domain.StateActive, u.State)
	assert.NotEqual(t, "ldc1104", u.PasswordHash)

	_, err := f.userSvc.CreateUser(ctx, SignUpInput{Name: "x", Email: "a@example.com", Password: "p"})
	assert.True(t, apperrors.Is(err, apperrors.ExistEmail))

	assert.Equal(t, []events.EventType{events.EventUserSignedUp}, f.eventTypes())
}

func TestGetUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := signUp(t, f, "a@example.com")
	signUp(t, f, "b@example.com")

	all, err := f.userSvc.GetUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := f.userSvc.GetUserByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)

	_, err = f.userSvc.GetUserByID(ctx, 999)
	assert.True(t, apperrors.Is(err, apperrors.NonExistUser))
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := signUp(t, f, "a@example.com")

	res, err := f.userSvc.Login(ctx, "a@example.com", "ldc1104")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.UserID)

	subject, err := f.tokens.Verify(res.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, subject)

	_, err = f.userSvc.Login(ctx, "a@example.com", "wrong")
	assert.True(t, apperrors.Is(err, apperrors.NotMatchPassword))

	_, err = f.userSvc.Login(ctx, "nobody@example.com", "ldc1104")
	assert.True(t, apperrors.Is(err, apperrors.NonExistUser))

	assert.Equal(t, []events.EventType{events.EventUserSignedUp, events.EventUserLoggedIn}, f.eventTypes())
}

func TestSessionLogin_RegistersHandle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := signUp(t, f, "a@example.com")
	handle := newFakeHandle("sid-1", true)

	sess, err := f.userSvc.SessionLogin(ctx, "a@example.com", "ldc1104", handle)
	require.NoError(t, err)

	assert.True(t, handle.saved)
	assert.Equal(t, "a@example.com", handle.values[SessionKeyEmail])
	assert.Equal(t, u.ID, handle.values[SessionKeyUserID])
	assert.Equal(t, 30*time.Minute, handle.expiry)
	assert.Equal(t, "sid-1", sess.ID)

	got, ok := f.registry.FindByUserID(u.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)
	assert.Equal(t, 1, f.registry.Len())
}

func TestSessionLogin_SameHandleReplacesEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	signUp(t, f, "a@example.com")
	handle := newFakeHandle("sid-1", true)

	_, err := f.userSvc.SessionLogin(ctx, "a@example.com", "ldc1104", handle)
	require.NoError(t, err)
	_, err = f.userSvc.SessionLogin(ctx, "a@example.com", "ldc1104", handle)
	require.NoError(t, err)

	assert.Equal(t, 1, f.registry.Len())
}

func TestSessionLogin_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	signUp(t, f, "a@example.com")

	_, err := f.userSvc.SessionLogin(ctx, "nobody@example.com", "x", newFakeHandle("s", true))
	assert.True(t, apperrors.Is(err, apperrors.NonExistUser))

	handle := newFakeHandle("s", true)
	_, err = f.userSvc.SessionLogin(ctx, "a@example.com", "wrong", handle)
	assert.True(t, apperrors.Is(err, apperrors.NotMatchPassword))
	assert.False(t, handle.saved)

	broken := newFakeHandle("s2", true)
	broken.saveErr = errStore
	_, err = f.userSvc.SessionLogin(ctx, "a@example.com", "ldc1104", broken)
	assert.True(t, apperrors.Is(err, apperrors.DatabaseInsertError))

	assert.Zero(t, f.registry.Len())
}

func TestSessionLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	signUp(t, f, "a@example.com")
	handle := newFakeHandle("sid-1", true)
	sess, err := f.userSvc.SessionLogin(ctx, "a@example.com", "ldc1104", handle)
	require.NoError(t, err)
	require.NotZero(t, sess.UserID)

	require.NoError(t, f.userSvc.SessionLogout(ctx, handle))
	assert.True(t, handle.destroyed)
	assert.Zero(t, f.registry.Len())

	assert.Equal(t, []events.EventType{
		events.EventUserSignedUp, events.EventSessionCreated, events.EventSessionDestroyed,
	}, f.eventTypes())

	destroyed := f.events[len(f.events)-1]
	assert.Equal(t, sess.UserID, destroyed.UserID)
	assert.Equal(t, events.SessionPayload{SessionID: "sid-1", Email: "a@example.com"}, destroyed.Payload)
}

func TestSessionLogout_WithoutSession(t *testing.T) {
	f := newFixture(t)

	err := f.userSvc.SessionLogout(context.Background(), newFakeHandle("new", true))
	assert.True(t, apperrors.Is(err, apperrors.NoSessionID))

	err = f.userSvc.SessionLogout(context.Background(), nil)
	assert.True(t, apperrors.Is(err, apperrors.NoSessionID))
}

func TestSessionLogout_DestroyFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	signUp(t, f, "a@example.com")
	handle := newFakeHandle("sid", true)
	_, err := f.userSvc.SessionLogin(ctx, "a@example.com", "ldc1104", handle)
	require.NoError(t, err)
	handle.destroyErr = errStore

	err = f.userSvc.SessionLogout(ctx, handle)
	assert.True(t, apperrors.Is(err, apperrors.DatabaseDeleteError))

	_, ok := f.registry.FindBySessionID("sid")
	assert.True(t, ok)
	assert.Equal(t, 1, f.registry.Len())
	assert.NotContains(t, f.eventTypes(), events.EventSessionDestroyed)
}
