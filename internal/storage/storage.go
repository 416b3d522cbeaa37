// Package storage holds the user and prediction stores. The in-memory
// implementation is the canonical model; the SQLite implementation persists
// the same shape across restarts.
package storage

import (
	"errors"

	"bangalorehomes/server/internal/models"
)

var (
	// ErrNotFound signals a missed id or key lookup.
	ErrNotFound = errors.New("record not found")

	// ErrEmailExists signals a duplicate email on user creation.
	ErrEmailExists = errors.New("email already registered")

	// ErrProviderIDExists signals a duplicate provider id on user creation.
	ErrProviderIDExists = errors.New("provider id already registered")

	// ErrNoCredentials signals a user with neither a password nor a provider id.
	ErrNoCredentials = errors.New("user requires a password or a provider id")
)

// DefaultHistoryLimit is used when a caller asks for recent predictions
// without a usable limit.
const DefaultHistoryLimit = 10

// UserStore manages registered accounts. Records are append-only; there is
// no update operation.
type UserStore interface {
	CreateUser(user models.NewUser) (*models.User, error)
	GetUserByID(id int64) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByProviderID(providerID string) (*models.User, error)
}

// PredictionStore is an append-only log of valuations with a per-user index.
// Reads are ownership-blind: GetPredictionByID returns any record, and it is
// the transport's job to decide whether the requesting principal may see it.
type PredictionStore interface {
	CreatePrediction(prediction models.NewPrediction) (*models.Prediction, error)
	GetPredictionByID(id int64) (*models.Prediction, error)

	// GetRecentPredictions returns up to limit predictions for the user,
	// newest first, ties broken by descending id. A limit below 1 falls back
	// to DefaultHistoryLimit.
	GetRecentPredictions(userID int64, limit int) ([]*models.Prediction, error)
}

// Store combines both concerns behind one handle.
type Store interface {
	UserStore
	PredictionStore
	Close() error
}
