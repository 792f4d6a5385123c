package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/board-service/internal/api/http/handlers"
	"github.com/spec-kit/board-service/internal/auth"
	"github.com/spec-kit/board-service/internal/config"
	"github.com/spec-kit/board-service/internal/domain"
	"github.com/spec-kit/board-service/internal/events"
	"github.com/spec-kit/board-service/internal/observability"
	"github.com/spec-kit/board-service/internal/persistence"
	"github.com/spec-kit/board-service/internal/repository"
	"github.com/spec-kit/board-service/internal/service"
	sessionregistry "github.com/spec-kit/board-service/internal/session"
)

type envelope struct {
	IsSuccess bool            `json:"isSuccess"`
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	Result    json.RawMessage `json:"result"`
}

type testServer struct {
	app   *fiber.App
	users repository.UserRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	ctx := context.Background()

	db, err := persistence.NewSQLite(ctx, config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "http.db")}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	authCfg := config.AuthConfig{
		JWTSecret:             base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef")),
		AccessTokenTTLMinutes: 30,
		RefreshTokenTTLHours:  24,
		BcryptCost:            bcrypt.MinCost,
		TokenHeader:           "X-ACCESS-TOKEN",
		BypassPaths: []string{
			"/user/login", "/user/signup", "/user/session-login", "/user/session-logout",
			"/health/live", "/health/ready", "/metrics",
		},
	}
	tokens, err := auth.NewTokenManager(authCfg)
	require.NoError(t, err)

	users := repository.NewSQLiteUserRepository(db.DB)
	boards := repository.NewSQLiteBoardRepository(db.DB)
	metrics := observability.NewMetrics("test")

	userService := service.NewUserService(service.UserDependencies{
		Users:       users,
		Tokens:      tokens,
		Sessions:    sessionregistry.NewRegistry(),
		Dispatcher:  events.NewInMemoryDispatcher(),
		Metrics:     metrics,
		Logger:      logger,
		BcryptCost:  bcrypt.MinCost,
		MaxInactive: 30 * time.Minute,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:  handlers.NewHealthHandler("board-service", "test", map[string]handlers.Pinger{"sqlite": db}),
		Users:   handlers.NewUsersHandler(userService, session.New(session.Config{KeyLookup: "cookie:session_id"})),
		Boards:  handlers.NewBoardsHandler(service.NewBoardService(boards, users, logger)),
		Gate:    auth.NewGate(tokens, users, authCfg, logger, metrics),
		Metrics: metrics.Handler(),
	})
	return &testServer{app: app, users: users}
}

type call struct {
	method string
	target string
	body   string
	token  string
	cookie *http.Cookie
}

func (s *testServer) do(t *testing.T, c call) (*http.Response, envelope) {
	t.Helper()
	var body io.Reader
	if c.body != "" {
		body = strings.NewReader(c.body)
	}
	req := httptest.NewRequest(c.method, c.target, body)
	if c.body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if c.token != "" {
		req.Header.Set("X-ACCESS-TOKEN", c.token)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var env envelope
	if strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func (s *testServer) signUpAndLogin(t *testing.T, email string) (int64, string) {
	t.Helper()
	resp, env := s.do(t, call{method: http.MethodPost, target: "/user/signup",
		body: `{"name":"minjeong","age":24,"email":"` + email + `","password":"ldc1104"}`})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)

	resp, env = s.do(t, call{method: http.MethodPost, target: "/user/login",
		body: `{"email":"` + email + `","password":"ldc1104"}`})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)

	var jwtRes struct {
		UserID       int64  `json:"userId"`
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(env.Result, &jwtRes))
	require.NotEmpty(t, jwtRes.RefreshToken)
	return jwtRes.UserID, jwtRes.AccessToken
}

func TestScenario_BoardLifecycle(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signUpAndLogin(t, "a@example.com")

	resp, env := s.do(t, call{method: http.MethodPost, target: "/board/add", token: token,
		body: `{"title":"hello","content":"first post"}`})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	assert.True(t, env.IsSuccess)

	resp, env = s.do(t, call{method: http.MethodGet, target: "/?page=0&size=10", token: token})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []struct {
		Writer struct {
			Email string `json:"email"`
		} `json:"writer"`
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(env.Result, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "hello", list[0].Title)
	assert.Equal(t, "a@example.com", list[0].Writer.Email)

	resp, env = s.do(t, call{method: http.MethodPost, target: "/board/add", token: token,
		body: `{"title":"empty","content":""}`})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "내용은 0자 이상 500자 이하까지 입력할 수 있습니다", env.Message)
}

func TestScenario_OwnerChecks(t *testing.T) {
	s := newTestServer(t)
	_, owner := s.signUpAndLogin(t, "owner@example.com")
	_, other := s.signUpAndLogin(t, "other@example.com")

	resp, _ := s.do(t, call{method: http.MethodPost, target: "/board/add", token: owner,
		body: `{"title":"mine","content":"c"}`})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := s.do(t, call{method: http.MethodDelete, target: "/board?boardId=1", token: other})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 401, env.Code)

	resp, _ = s.do(t, call{method: http.MethodPatch, target: "/board?boardId=1", token: owner,
		body: `{"title":"mine","content":"edited"}`})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = s.do(t, call{method: http.MethodGet, target: "/board?boardId=1", token: other})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Result), `"content":"edited"`)

	resp, _ = s.do(t, call{method: http.MethodDelete, target: "/board?boardId=1", token: owner})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = s.do(t, call{method: http.MethodGet, target: "/board?boardId=1", token: owner})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "존재하지 않는 게시글입니다.", env.Message)
}

func TestScenario_GateOnProtectedRoutes(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.do(t, call{method: http.MethodPost, target: "/board/add", body: `{"title":"t","content":"c"}`})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, envelope{IsSuccess: false, Code: 400, Message: "JWT 토큰이 존재하지 않습니다."}, env)

	resp, env = s.do(t, call{method: http.MethodGet, target: "/user/", token: "bogus"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "유효하지 않은 토큰입니다", env.Message)
}

func TestScenario_Users(t *testing.T) {
	s := newTestServer(t)
	id, token := s.signUpAndLogin(t, "a@example.com")

	resp, env := s.do(t, call{method: http.MethodPost, target: "/user/signup",
		body: `{"name":"dup","age":1,"email":"a@example.com","password":"x"}`})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "이미 존재하는 회원입니다.", env.Message)

	resp, env = s.do(t, call{method: http.MethodPost, target: "/user/login",
		body: `{"email":"a@example.com","password":"nope"}`})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "비밀번호가 일치하지 않습니다.", env.Message)

	resp, env = s.do(t, call{method: http.MethodGet, target: "/user/", token: token})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Result), `"email":"a@example.com"`)
	assert.NotContains(t, string(env.Result), "password")

	resp, env = s.do(t, call{method: http.MethodGet, target: "/user/?userId=" + itoa(id), token: token})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"email":"a@example.com","name":"minjeong","age":24}`, string(env.Result))

	resp, _ = s.do(t, call{method: http.MethodGet, target: "/user/?userId=999", token: token})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, call{method: http.MethodPost, target: "/user/signup", body: `{"name":"","email":"","password":""}`})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestScenario_SessionLoginLogout(t *testing.T) {
	s := newTestServer(t)
	s.signUpAndLogin(t, "a@example.com")

	resp, env := s.do(t, call{method: http.MethodPost, target: "/user/session-login",
		body: `{"email":"a@example.com","password":"ldc1104"}`})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "session_id" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	resp, env = s.do(t, call{method: http.MethodPost, target: "/user/session-logout", body: `{}`, cookie: cookie})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	assert.Equal(t, `"성공적으로 로그아웃되었습니다."`, string(env.Result))

	resp, env = s.do(t, call{method: http.MethodPost, target: "/user/session-logout", body: `{}`})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "세션아이디가 존재하지 않습니다.", env.Message)
}

func TestScenario_AdminRouteUsesStoredRole(t *testing.T) {
	s := newTestServer(t)
	id, token := s.signUpAndLogin(t, "a@example.com")

	resp, _ := s.do(t, call{method: http.MethodGet, target: "/admin/sessions", token: token})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Promotion applies to the token already in hand.
	u, err := s.users.GetByID(context.Background(), id)
	require.NoError(t, err)
	u.Role = domain.RoleAdmin
	require.NoError(t, s.users.Update(context.Background(), u))

	resp, env := s.do(t, call{method: http.MethodGet, target: "/admin/sessions", token: token})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"active":0}`, string(env.Result))
}

func TestScenario_OperationalEndpointsBypassGate(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{"/health/live", "/health/ready", "/metrics"} {
		resp, _ := s.do(t, call{method: http.MethodGet, target: target})
		assert.Equal(t, http.StatusOK, resp.StatusCode, target)
	}
}

func TestScenario_UnknownRouteWithToken(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signUpAndLogin(t, "a@example.com")

	resp, env := s.do(t, call{method: http.MethodGet, target: "/nowhere", token: token})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, env.IsSuccess)
	assert.Equal(t, 404, env.Code)
}

func TestScenario_ErrorMetricsUseRoutePattern(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signUpAndLogin(t, "a@example.com")

	for _, target := range []string{"/nowhere/1", "/nowhere/2", "/nowhere/3"} {
		resp, _ := s.do(t, call{method: http.MethodGet, target: target, token: token})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	}

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	body := string(raw)
	assert.Contains(t, body, `code="HTTP_404"`)
	assert.NotContains(t, body, "/nowhere")
}

func itoa(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
