package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/board-service/internal/config"
	"github.com/spec-kit/board-service/internal/domain"
	apperrors "github.com/spec-kit/board-service/pkg/util"
)

// MinSecretLength is the smallest HS256 key accepted, in bytes.
const MinSecretLength = 32

// TokenVerifier resolves an access token to the user id it was issued for.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// TokenManager handles issuing and validating JWT tokens.
// The key is fixed at construction; rotating it invalidates every issued token.
type TokenManager struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Claims describes the access token payload.
type Claims struct {
	UserID *int64      `json:"uid,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// NewTokenManager decodes the base64 secret and builds a manager.
func NewTokenManager(cfg config.AuthConfig) (*TokenManager, error) {
	key, err := base64.StdEncoding.DecodeString(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("decode jwt secret: %w", err)
	}
	if len(key) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must decode to at least %d bytes, got %d", MinSecretLength, len(key))
	}
	return &TokenManager{
		key:        key,
		accessTTL:  cfg.AccessTTL(),
		refreshTTL: cfg.RefreshTTL(),
		now:        time.Now,
	}, nil
}

// Issue signs an access token carrying the user id and role, and a refresh
// token carrying only its expiry.
func (tm *TokenManager) Issue(id domain.Identity) (domain.TokenPair, error) {
	now := tm.now()
	accessExp := ceilSecond(now.Add(tm.accessTTL))
	refreshExp := ceilSecond(now.Add(tm.refreshTTL))

	uid := id.UserID
	access := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: &uid,
		Role:   id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(accessExp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	accessToken, err := access.SignedString(tm.key)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	// TODO: bind the refresh token to a subject once a refresh exchange endpoint exists.
	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(refreshExp),
		IssuedAt:  jwt.NewNumericDate(now),
	})
	refreshToken, err := refresh.SignedString(tm.key)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Verify validates an access token and returns its user id.
// Expiry yields EXPIRED_TOKEN; every other failure yields INVALID_TOKEN.
func (tm *TokenManager) Verify(tokenStr string) (int64, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, tm.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
		// Valid through exp itself; expired only once now is past it.
		jwt.WithLeeway(time.Nanosecond),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, apperrors.Wrap(apperrors.ExpiredToken, err)
		}
		return 0, apperrors.Wrap(apperrors.InvalidToken, err)
	}
	if !parsed.Valid || claims.UserID == nil {
		return 0, apperrors.New(apperrors.InvalidToken)
	}
	return *claims.UserID, nil
}

// GenerateSecret returns a random base64 key suitable for AUTH_JWT_SECRET.
func GenerateSecret() (string, error) {
	buf := make([]byte, MinSecretLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

func (tm *TokenManager) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method != jwt.SigningMethodHS256 {
		return nil, errors.New("unexpected signing method")
	}
	return tm.key, nil
}

// ceilSecond rounds up to the JWT NumericDate precision so a token is never
// rejected before its nominal lifetime has elapsed.
func ceilSecond(t time.Time) time.Time {
	truncated := t.Truncate(time.Second)
	if truncated.Equal(t) {
		return t
	}
	return truncated.Add(time.Second)
}
