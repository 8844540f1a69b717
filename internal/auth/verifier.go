package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Suryanshu-Nabheet/Zenith/internal/apperr"
)

// Identity is the authenticated principal resolved from an access token.
type Identity struct {
	UserID string
	Email  string
}

// Verifier checks HS256 access tokens. It is consulted exactly once per
// realtime connection, before the handshake is upgraded, and per REST
// request by the auth middleware.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verify parses and validates token and returns the identity it carries.
// Any failure is an authentication error: the caller must refuse the
// connection or request.
func (v *Verifier) Verify(token string) (*Identity, error) {
	if token == "" {
		return nil, apperr.Authentication("no token provided")
	}

	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, apperr.Authentication("invalid token")
	}

	if claims.Subject == "" {
		return nil, apperr.Authentication("token has no subject")
	}

	return &Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

// TokenFromRequest extracts the access token from a request: the
// Authorization bearer header first, then the token query parameter used by
// the websocket handshake.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
