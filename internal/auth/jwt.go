// Package auth turns bearer tokens into caller sessions.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Domenick1991/eventbooking/config"
	"github.com/Domenick1991/eventbooking/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrMissingToken = errors.New("missing bearer token")
)

type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(cfg config.AuthConfig) *Manager {
	return &Manager{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		ttl:    time.Duration(cfg.TokenTTL) * time.Minute,
		now:    time.Now,
	}
}

// Issue signs an HS256 token for session. Issuing is only used by tooling and tests; logins live
// elsewhere.
func (m *Manager) Issue(session domain.Session) (string, error) {
	now := m.now()
	claims := Claims{
		Role: session.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(session.UserID, 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *Manager) Parse(token string) (domain.Session, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Session{}, ErrTokenExpired
		}
		return domain.Session{}, ErrInvalidToken
	}
	if !parsed.Valid {
		return domain.Session{}, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return domain.Session{}, ErrInvalidToken
	}
	switch claims.Role {
	case domain.RoleUser, domain.RoleOrganizer, domain.RoleAdmin:
	default:
		return domain.Session{}, ErrInvalidToken
	}
	return domain.Session{UserID: userID, Role: claims.Role}, nil
}

// ParseBearer accepts an Authorization header value of the form "Bearer <token>".
func (m *Manager) ParseBearer(header string) (domain.Session, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return domain.Session{}, ErrMissingToken
	}
	return m.Parse(strings.TrimSpace(token))
}
