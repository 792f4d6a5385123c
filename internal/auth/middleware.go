package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/board-service/internal/config"
	"github.com/spec-kit/board-service/internal/domain"
	"github.com/spec-kit/board-service/internal/observability"
	"github.com/spec-kit/board-service/internal/repository"
	apperrors "github.com/spec-kit/board-service/pkg/util"
)

// IdentityStore is the part of the user store the gate depends on.
type IdentityStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Gate authenticates every request that is not on the bypass list.
//
// Authorities come from the stored user, not from the role claim inside the
// token, so a role change applies to tokens that were already issued.
type Gate struct {
	tokens  TokenVerifier
	users   IdentityStore
	header  string
	bypass  map[string]struct{}
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewGate constructs the gate. Bypass paths match exactly, ignoring case.
func NewGate(tokens TokenVerifier, users IdentityStore, cfg config.AuthConfig, logger *zap.Logger, metrics *observability.Metrics) *Gate {
	bypass := make(map[string]struct{}, len(cfg.BypassPaths))
	for _, p := range cfg.BypassPaths {
		bypass[strings.ToLower(p)] = struct{}{}
	}
	header := cfg.TokenHeader
	if header == "" {
		header = "X-ACCESS-TOKEN"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		tokens:  tokens,
		users:   users,
		header:  header,
		bypass:  bypass,
		logger:  logger,
		metrics: metrics,
	}
}

// Handle is the fiber middleware entry point.
func (g *Gate) Handle(c *fiber.Ctx) error {
	if g.bypassed(c) {
		g.metrics.RecordGateDecision(observability.GateBypassed, "")
		return c.Next()
	}

	principal, err := g.authenticate(c)
	if err != nil {
		domainErr := apperrors.ToDomainError(err)
		g.metrics.RecordGateDecision(observability.GateRejected, domainErr.Status.Name)
		if domainErr.Status.Code >= fiber.StatusInternalServerError {
			g.logger.Error("authentication failed", zap.String("path", c.Path()), zap.Error(domainErr))
		} else {
			g.logger.Debug("authentication rejected",
				zap.String("path", c.Path()),
				zap.String("status", domainErr.Status.Name))
		}
		return apperrors.WriteFailure(c, domainErr.Status)
	}

	g.metrics.RecordGateDecision(observability.GateAuthenticated, "")
	attachPrincipal(c, principal)
	return c.Next()
}

// bypassed reports whether the request skips token checking: pre-flight
// OPTIONS requests and exact bypass paths.
func (g *Gate) bypassed(c *fiber.Ctx) bool {
	if strings.EqualFold(c.Method(), fiber.MethodOptions) {
		return true
	}
	if _, ok := g.bypass[strings.ToLower(c.Path())]; ok {
		g.logger.Debug("no token required", zap.String("path", c.Path()))
		return true
	}
	return false
}

func (g *Gate) authenticate(c *fiber.Ctx) (*Principal, error) {
	token := c.Get(g.header)
	if token == "" {
		return nil, apperrors.New(apperrors.NoJWT)
	}

	userID, err := g.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := g.users.GetByID(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Wrap(apperrors.NonExistUser, err)
		}
		return nil, apperrors.Wrap(apperrors.DatabaseSelectError, err)
	}

	return &Principal{
		UserID:      user.ID,
		Authorities: []string{string(user.Role)},
	}, nil
}
