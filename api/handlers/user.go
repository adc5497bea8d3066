package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/case-diary-api/api"
	"github.com/linesmerrill/case-diary-api/config"
	"github.com/linesmerrill/case-diary-api/models"
	"github.com/linesmerrill/case-diary-api/notifications"
	templates "github.com/linesmerrill/case-diary-api/templates/html"
	"github.com/linesmerrill/case-diary-api/users"
	"github.com/linesmerrill/case-diary-api/validation"
)

const welcomeSubject = "Welcome to your case diary"

// User exported for testing purposes
type User struct {
	Accounts *users.Accounts
	Mailer   notifications.Mailer
}

// RegisterHandler creates an account and sends a welcome email when mail is configured
func (u User) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.Accounts.Register(ctx, req)
	var fieldErrs *validation.FieldErrors
	switch {
	case errors.Is(err, users.ErrEmailTaken):
		config.ErrorStatus("email already exists", http.StatusConflict, w, err)
		return
	case errors.As(err, &fieldErrs):
		config.ErrorStatus("invalid registration", http.StatusBadRequest, w, err)
		return
	case err != nil:
		config.ErrorStatus("failed to create user", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("user registered", "userId", user.ID)
	if u.Mailer != nil {
		go u.sendWelcome(*user)
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": user.ID})
}

// MeHandler returns the account of the caller
func (u User) MeHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := api.UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.Accounts.FindByEmail(ctx, session.Email)
	if errors.Is(err, users.ErrNotFound) {
		config.ErrorStatus("failed to get user", http.StatusNotFound, w, err)
		return
	}
	if err != nil {
		config.ErrorStatus("failed to get user", http.StatusInternalServerError, w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (u User) sendWelcome(user models.User) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	name := user.Details.Name
	if name == "" {
		name = "there"
	}
	body := fmt.Sprintf("Hi %s,\n\nYour case diary is ready. Add your cases and we will email you each morning about hearings coming up in the next week.", name)
	err := u.Mailer.Send(ctx, notifications.Message{
		ToEmail: user.Details.Email,
		ToName:  user.Details.Name,
		Subject: welcomeSubject,
		HTML:    templates.RenderGenericEmail(welcomeSubject, body),
		Plain:   body,
	})
	if err != nil {
		zap.S().Warnw("failed to send welcome email", "userId", user.ID, "error", err)
	}
}
