package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/basic"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"

	"github.com/linesmerrill/case-diary-api/config"
	"github.com/linesmerrill/case-diary-api/models"
)

// TokenTTL is how long an issued bearer token stays in the token cache
const TokenTTL = 30 * 24 * time.Hour

// Authenticator checks an email and password pair
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// Auth guards routes with HTTP basic credentials or cached bearer tokens
type Auth struct {
	Accounts      Authenticator
	authenticator auth.Authenticator
	cache         store.Cache
}

// NewAuth sets up go-guardian with a basic strategy backed by accounts and a bearer
// strategy reading tokens issued by CreateToken.
func NewAuth(ctx context.Context, accounts Authenticator) *Auth {
	a := &Auth{Accounts: accounts}
	a.authenticator = auth.New()
	a.cache = store.NewFIFO(ctx, TokenTTL)
	basicStrategy := basic.New(a.ValidateUser, a.cache)
	tokenStrategy := bearer.New(bearer.NoOpAuthenticate, a.cache)

	a.authenticator.EnableStrategy(basic.StrategyKey, basicStrategy)
	a.authenticator.EnableStrategy(bearer.CachedStrategyKey, tokenStrategy)
	return a
}

// Middleware rejects unauthenticated requests and stores the caller on the context
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, err := a.authenticator.Authenticate(r)
		if err != nil {
			zap.S().Warnw("unauthorized",
				"url", r.URL.Path,
				"error", err)
			config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, err)
			return
		}
		zap.S().Debugw("user authenticated", "userId", info.ID())
		ctx := WithUser(r.Context(), SessionUser{ID: info.ID(), Email: info.UserName()})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ValidateUser checks basic auth credentials against the users collection
func (a *Auth) ValidateUser(ctx context.Context, r *http.Request, email, password string) (auth.Info, error) {
	qctx, cancel := WithQueryTimeout(ctx)
	defer cancel()

	u, err := a.Accounts.Authenticate(qctx, email, password)
	if err != nil {
		return nil, err
	}
	return auth.NewDefaultUser(u.Details.Email, u.ID, nil, nil), nil
}

// CreateToken issues a bearer token for the caller authenticated with basic auth
func (a *Auth) CreateToken(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		config.ErrorStatus("basic auth failed", http.StatusUnauthorized, w, errors.New("no authenticated user"))
		return
	}

	token := uuid.New().String()
	info := auth.NewDefaultUser(user.Email, user.ID, nil, nil)
	tokenStrategy := a.authenticator.Strategy(bearer.CachedStrategyKey)
	if err := auth.Append(tokenStrategy, token, info, r); err != nil {
		config.ErrorStatus("failed to store token", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(map[string]string{
		"token": token,
		"_id":   user.ID,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// RevokeToken drops the bearer token used on the request
func (a *Auth) RevokeToken(w http.ResponseWriter, r *http.Request) {
	reqToken := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	if reqToken == "" || strings.HasPrefix(reqToken, "Basic ") {
		config.ErrorStatus("no bearer token to revoke", http.StatusBadRequest, w, errors.New("missing bearer token"))
		return
	}

	tokenStrategy := a.authenticator.Strategy(bearer.CachedStrategyKey)
	if err := auth.Revoke(tokenStrategy, reqToken, r); err != nil {
		config.ErrorStatus("failed to revoke token", http.StatusInternalServerError, w, err)
		return
	}

	b, _ := json.Marshal(map[string]string{"revoked": reqToken})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
