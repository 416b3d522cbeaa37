// Package core exposes the valuation and identity operations the HTTP layer
// binds. It is transport-neutral: inputs are plain values plus the
// authenticated principal's user id, outputs are records or typed errors.
package core

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"bangalorehomes/server/internal/auth"
	"bangalorehomes/server/internal/models"
	"bangalorehomes/server/internal/pricing"
	"bangalorehomes/server/internal/storage"
	"bangalorehomes/server/internal/validation"
)

// ErrInvalidCredentials is returned for every login failure: unknown email,
// provider-only account, or password mismatch. One message for all three
// keeps account existence private.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Core wires the validator, the price kernel and the stores together.
type Core struct {
	users       storage.UserStore
	predictions storage.PredictionStore
	engine      *pricing.Engine
	bcryptCost  int

	// usernameSuffix decouples username generation from the global random
	// source so tests can pin it.
	usernameSuffix func() int
}

// New builds a Core. A nil engine gets an entropy-seeded one.
func New(users storage.UserStore, predictions storage.PredictionStore, engine *pricing.Engine, bcryptCost int) *Core {
	if engine == nil {
		engine = pricing.NewEngine(nil)
	}
	return &Core{
		users:          users,
		predictions:    predictions,
		engine:         engine,
		bcryptCost:     bcryptCost,
		usernameSuffix: func() int { return rand.Intn(1000) },
	}
}

// Predict validates the request, prices it and appends the result to the
// caller's history. Nothing is stored when validation fails.
func (c *Core) Predict(userID int64, req models.PredictionRequest) (*models.Prediction, error) {
	if err := validation.ValidatePredictionRequest(req); err != nil {
		return nil, err
	}

	estimate := c.engine.Estimate(req)

	return c.predictions.CreatePrediction(models.NewPrediction{
		UserID:            userID,
		Region:            req.Region,
		Location:          req.PreciseLocation,
		BHK:               req.BHK,
		Bathrooms:         req.Bathrooms,
		SquareFeet:        req.SquareFeet,
		Parking:           req.Parking,
		Garden:            req.Garden,
		SwimmingPool:      req.SwimmingPool,
		Gym:               req.Gym,
		Security:          req.Security,
		PowerBackup:       req.PowerBackup,
		PredictedPrice:    estimate.PredictedPrice,
		PriceRangeMin:     estimate.PriceRangeMin,
		PriceRangeMax:     estimate.PriceRangeMax,
		SimilarProperties: estimate.SimilarProperties,
	})
}

// RecentPredictions lists the caller's history, newest first.
func (c *Core) RecentPredictions(userID int64, limit int) ([]*models.Prediction, error) {
	return c.predictions.GetRecentPredictions(userID, limit)
}

// Prediction fetches a single record by id. Ownership is the caller's
// concern; the record's UserID says who it belongs to.
func (c *Core) Prediction(id int64) (*models.Prediction, error) {
	return c.predictions.GetPredictionByID(id)
}

// CreateUser stores a new account as given.
func (c *Core) CreateUser(user models.NewUser) (*models.User, error) {
	return c.users.CreateUser(user)
}

// UserByEmail returns the user or nil when no account matches.
func (c *Core) UserByEmail(email string) (*models.User, error) {
	user, err := c.users.GetUserByEmail(email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return user, err
}

// UserByProviderID returns the user or nil when no account matches.
func (c *Core) UserByProviderID(providerID string) (*models.User, error) {
	user, err := c.users.GetUserByProviderID(providerID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return user, err
}

// UserByID returns the user or nil when no account matches.
func (c *Core) UserByID(id int64) (*models.User, error) {
	user, err := c.users.GetUserByID(id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return user, err
}

// VerifyPassword reports whether plaintext matches the stored hash for
// email. Unknown emails and provider-only accounts verify as false.
func (c *Core) VerifyPassword(email, plaintext string) (bool, error) {
	user, err := c.UserByEmail(email)
	if err != nil {
		return false, err
	}
	if user == nil || user.Password == nil {
		return false, nil
	}
	return auth.VerifyPassword(*user.Password, plaintext), nil
}

// SignUp registers a local account: the password is hashed, the username is
// synthesized from the email local-part, and the display name from the
// caller's first and last name.
func (c *Core) SignUp(email, password, firstName, lastName string) (*models.User, error) {
	hash, err := auth.HashPassword(password, c.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	displayName := strings.TrimSpace(firstName + " " + lastName)
	user := models.NewUser{
		Username: c.usernameFromEmail(email),
		Email:    email,
		Password: &hash,
	}
	if displayName != "" {
		user.DisplayName = &displayName
	}

	return c.users.CreateUser(user)
}

// Login verifies a local account's credentials and returns the user.
func (c *Core) Login(email, password string) (*models.User, error) {
	user, err := c.UserByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Password == nil {
		return nil, ErrInvalidCredentials
	}
	if !auth.VerifyPassword(*user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GoogleSignIn returns the account linked to the provider id, creating it on
// first sign-in. An existing unlinked account with the same email is a
// conflict; accounts are never linked implicitly.
func (c *Core) GoogleSignIn(providerID, email, displayName, photoURL string) (*models.User, error) {
	user, err := c.UserByProviderID(providerID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	existing, err := c.UserByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, storage.ErrEmailExists
	}

	username := c.usernameFromEmail(email)
	if displayName == "" {
		displayName = username
	}

	newUser := models.NewUser{
		Username:    username,
		Email:       email,
		ProviderID:  &providerID,
		DisplayName: &displayName,
	}
	if photoURL != "" {
		newUser.PhotoURL = &photoURL
	}

	return c.users.CreateUser(newUser)
}

// usernameFromEmail derives a username from the email local-part plus a
// random suffix to dodge collisions.
func (c *Core) usernameFromEmail(email string) string {
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}
	return fmt.Sprintf("%s%d", local, c.usernameSuffix())
}
