package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/konman95/mainst.ai/internal/rbac"
)

const issuer = "mainst-operator"

// DevTokenPrefix marks unsigned development tokens: "dev-<tenant>".
const DevTokenPrefix = "dev-"

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	TenantID string `json:"uid"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller a request acts for.
type Identity struct {
	TenantID string
	Role     string
}

// GenerateJWT signs a token for tenantID. expiration <= 0 means 24h.
func GenerateJWT(secret, tenantID, role string, expiration time.Duration) (string, error) {
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}

	claims := Claims{
		TenantID: tenantID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tenantID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseJWT(secret string, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TenantID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Resolver turns a bearer token into an Identity.
type Resolver struct {
	secret         string
	allowDevTokens bool
}

func NewResolver(secret string, allowDevTokens bool) *Resolver {
	return &Resolver{secret: secret, allowDevTokens: allowDevTokens}
}

func (r *Resolver) Resolve(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrInvalidToken
	}

	if tenant, ok := strings.CutPrefix(token, DevTokenPrefix); ok && r.allowDevTokens {
		if tenant == "" {
			return Identity{}, ErrInvalidToken
		}
		return Identity{TenantID: tenant, Role: rbac.RoleOwner}, nil
	}

	claims, err := ParseJWT(r.secret, token)
	if err != nil {
		return Identity{}, err
	}

	role := claims.Role
	if role == "" {
		role = rbac.RoleOwner
	}
	if !rbac.IsKnownRole(role) {
		return Identity{}, fmt.Errorf("unknown role %q: %w", role, ErrInvalidToken)
	}
	return Identity{TenantID: claims.TenantID, Role: role}, nil
}
