// Package users manages diary accounts: registration, password changes and
// credential checks for HTTP basic auth.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/case-diary-api/databases"
	"github.com/linesmerrill/case-diary-api/models"
	"github.com/linesmerrill/case-diary-api/validation"
)

var (
	// ErrEmailTaken is returned when registering an email that already has an account
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned when an email and password do not match an account
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotFound is returned when no account has the email
	ErrNotFound = errors.New("user not found")
)

// Accounts reads and writes the users collection
type Accounts struct {
	DB        databases.UserDatabase
	Validator *validation.Validator
}

// NewAccounts returns an Accounts over db
func NewAccounts(db databases.UserDatabase) *Accounts {
	return &Accounts{DB: db, Validator: validation.New()}
}

// Register creates an account. Emails are matched case-insensitively.
func (a *Accounts) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := a.Validator.Struct(req); err != nil {
		return nil, err
	}

	n, err := a.DB.CountDocuments(ctx, bson.M{"user.email": req.Email})
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if n > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	user := models.User{
		ID: uuid.New().String(),
		Details: models.UserDetails{
			Email:     req.Email,
			Name:      req.Name,
			Password:  string(hash),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	if _, err = a.DB.InsertOne(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return &user, nil
}

// SetPassword replaces the password of the account with email
func (a *Accounts) SetPassword(ctx context.Context, email, password string) error {
	if err := a.Validator.Var(password, "required,min=8"); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	matched, err := a.DB.UpdateOne(ctx, bson.M{"user.email": normalizeEmail(email)}, bson.M{"$set": bson.M{
		"user.password":  string(hash),
		"user.updatedAt": time.Now().UTC().Truncate(time.Millisecond),
	}})
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if matched == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByEmail returns the account with email
func (a *Accounts) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := a.DB.FindOne(ctx, bson.M{"user.email": normalizeEmail(email)})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// Authenticate returns the account when password matches the stored hash
func (a *Accounts) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := a.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err = bcrypt.CompareHashAndPassword([]byte(u.Details.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// All returns every account
func (a *Accounts) All(ctx context.Context) ([]models.User, error) {
	list, err := a.DB.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return list, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
