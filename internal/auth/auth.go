// Package auth decides whether a request may run an administrative
// operation: it verifies the caller's bearer token and checks their role.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/lukman83/autovit-sync/internal/apperr"
)

const (
	msgMissingToken = "Autentificare necesară"
	msgInvalidToken = "Autentificare invalidă"
	msgForbidden    = "Acces restricționat"
	msgNoVerifier   = "Autentificarea nu este configurată"
	msgRoleLookup   = "Nu am putut verifica rolul utilizatorului"

	// RoleAdmin may import, edit and delete listings.
	RoleAdmin = "admin"
)

// User is an authenticated caller.
type User struct {
	ID    string
	Email string
}

// Verifier resolves a bearer token to a user.
type Verifier interface {
	VerifyToken(ctx context.Context, token string) (User, error)
}

// RoleStore looks up a user's role. A user without a role yields an error of
// kind apperr.KindNotFound.
type RoleStore interface {
	LookupRole(ctx context.Context, userID string) (string, error)
}

// Gate authorizes administrative requests.
type Gate struct {
	verifier Verifier
	roles    RoleStore
}

// NewGate creates a gate. A nil verifier makes every request with a token
// fail with a configuration error.
func NewGate(verifier Verifier, roles RoleStore) *Gate {
	return &Gate{verifier: verifier, roles: roles}
}

// Authorize checks authorizationHeader and returns the admin user it
// belongs to. Nothing is looked up when the header carries no token.
func (g *Gate) Authorize(ctx context.Context, authorizationHeader string) (User, error) {
	token := BearerToken(authorizationHeader)
	if token == "" {
		return User{}, apperr.New(apperr.KindAuth, msgMissingToken)
	}
	if g == nil || g.verifier == nil || g.roles == nil {
		return User{}, apperr.New(apperr.KindConfiguration, msgNoVerifier)
	}

	user, err := g.verifier.VerifyToken(ctx, token)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindUnknown {
			err = apperr.Wrap(apperr.KindAuth, msgInvalidToken, err)
		}
		return User{}, err
	}

	role, err := g.roles.LookupRole(ctx, user.ID)
	switch {
	case apperr.Is(err, apperr.KindNotFound):
		return User{}, apperr.New(apperr.KindAuthorization, msgForbidden)
	case err != nil:
		return User{}, apperr.Wrap(apperr.KindStorage, msgRoleLookup, err)
	case role != RoleAdmin:
		return User{}, apperr.New(apperr.KindAuthorization, msgForbidden)
	}
	return user, nil
}

// BearerToken returns the token of a "Bearer <token>" header value, or "".
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// JWTVerifier validates HS256 tokens signed with the project's JWT secret.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (v *JWTVerifier) VerifyToken(_ context.Context, token string) (User, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return User{}, apperr.Wrap(apperr.KindAuth, msgInvalidToken, err)
	}
	if !parsed.Valid || c.Subject == "" {
		return User{}, apperr.Wrap(apperr.KindAuth, msgInvalidToken, errors.New("token has no subject"))
	}
	return User{ID: c.Subject, Email: c.Email}, nil
}

// RemoteVerifier asks the auth server who a token belongs to.
type RemoteVerifier struct {
	client *resty.Client
}

// NewRemoteVerifier targets {baseURL}/auth/v1/user. client may be nil.
func NewRemoteVerifier(baseURL, apiKey string, client *resty.Client) *RemoteVerifier {
	if client == nil {
		client = resty.New()
	}
	client.
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("apikey", apiKey).
		SetTimeout(10 * time.Second)
	return &RemoteVerifier{client: client}
}

type remoteUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (v *RemoteVerifier) VerifyToken(ctx context.Context, token string) (User, error) {
	var u remoteUser
	resp, err := v.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&u).
		Get("/auth/v1/user")
	if err != nil {
		return User{}, apperr.Wrap(apperr.KindUpstreamFetch, msgInvalidToken, err)
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return User{}, apperr.New(apperr.KindAuth, msgInvalidToken)
	case code < 200 || code > 299:
		return User{}, apperr.Wrap(apperr.KindUpstreamFetch, msgInvalidToken, fmt.Errorf("auth server status %d", code))
	}
	if u.ID == "" {
		return User{}, apperr.New(apperr.KindAuth, msgInvalidToken)
	}
	return User{ID: u.ID, Email: u.Email}, nil
}
