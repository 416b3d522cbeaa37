package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"bangalorehomes/server/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// timeLayout is fixed-width so stored timestamps sort lexicographically in
// ORDER BY clauses. RFC3339Nano trims trailing zeros and breaks that.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore is the durable backend: the same two logical tables as the
// memory model, with similar_properties serialized as a JSON column.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database file and applies migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.runMigrations(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) runMigrations() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password TEXT,
			provider_id TEXT UNIQUE,
			display_name TEXT,
			photo_url TEXT,
			created_at TIMESTAMP NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create users table: %v", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS predictions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id),
			region TEXT NOT NULL,
			location TEXT NOT NULL,
			bhk TEXT NOT NULL,
			bathrooms TEXT NOT NULL,
			square_feet INTEGER NOT NULL,
			parking BOOLEAN NOT NULL DEFAULT 0,
			garden BOOLEAN NOT NULL DEFAULT 0,
			swimming_pool BOOLEAN NOT NULL DEFAULT 0,
			gym BOOLEAN NOT NULL DEFAULT 0,
			security BOOLEAN NOT NULL DEFAULT 0,
			power_backup BOOLEAN NOT NULL DEFAULT 0,
			predicted_price INTEGER NOT NULL,
			price_range_min INTEGER NOT NULL,
			price_range_max INTEGER NOT NULL,
			similar_properties TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create predictions table: %v", err)
	}

	_, err = s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_predictions_user_created
		ON predictions(user_id, created_at DESC, id DESC);
	`)
	if err != nil {
		return fmt.Errorf("failed to create predictions index: %v", err)
	}

	return nil
}

func (s *SQLiteStore) CreateUser(user models.NewUser) (*models.User, error) {
	if user.Password == nil && user.ProviderID == nil {
		return nil, ErrNoCredentials
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Unique checks and the insert share the transaction so two concurrent
	// signups with the same email cannot both pass.
	var exists bool
	if err := tx.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)", user.Email).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailExists
	}
	if user.ProviderID != nil {
		if err := tx.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE provider_id = ?)", *user.ProviderID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to check provider id: %w", err)
		}
		if exists {
			return nil, ErrProviderIDExists
		}
	}

	createdAt := time.Now().UTC()
	result, err := tx.Exec(`
		INSERT INTO users (username, email, password, provider_id, display_name, photo_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, user.Username, user.Email, user.Password, user.ProviderID, user.DisplayName, user.PhotoURL, createdAt.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.User{
		ID:          id,
		Username:    user.Username,
		Email:       user.Email,
		Password:    user.Password,
		ProviderID:  user.ProviderID,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
		CreatedAt:   createdAt,
	}, nil
}

const userColumns = `id, username, email, password, provider_id, display_name, photo_url, created_at`

func (s *SQLiteStore) GetUserByID(id int64) (*models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

func (s *SQLiteStore) GetUserByEmail(email string) (*models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

func (s *SQLiteStore) GetUserByProviderID(providerID string) (*models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE provider_id = ?", providerID)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var password, providerID, displayName, photoURL sql.NullString
	var createdAt string

	err := row.Scan(&u.ID, &u.Username, &u.Email, &password, &providerID, &displayName, &photoURL, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if password.Valid {
		u.Password = &password.String
	}
	if providerID.Valid {
		u.ProviderID = &providerID.String
	}
	if displayName.Valid {
		u.DisplayName = &displayName.String
	}
	if photoURL.Valid {
		u.PhotoURL = &photoURL.String
	}
	if t, err := time.Parse(timeLayout, createdAt); err == nil {
		u.CreatedAt = t
	}

	return &u, nil
}

func (s *SQLiteStore) CreatePrediction(prediction models.NewPrediction) (*models.Prediction, error) {
	similar, err := json.Marshal(prediction.SimilarProperties)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal similar properties: %w", err)
	}

	createdAt := time.Now().UTC()
	result, err := s.db.Exec(`
		INSERT INTO predictions
		(user_id, region, location, bhk, bathrooms, square_feet,
		 parking, garden, swimming_pool, gym, security, power_backup,
		 predicted_price, price_range_min, price_range_max, similar_properties, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		prediction.UserID,
		prediction.Region,
		prediction.Location,
		prediction.BHK,
		prediction.Bathrooms,
		prediction.SquareFeet,
		prediction.Parking,
		prediction.Garden,
		prediction.SwimmingPool,
		prediction.Gym,
		prediction.Security,
		prediction.PowerBackup,
		prediction.PredictedPrice,
		prediction.PriceRangeMin,
		prediction.PriceRangeMax,
		string(similar),
		createdAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert prediction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction id: %w", err)
	}

	stored := predictionFromNew(prediction)
	stored.ID = id
	stored.CreatedAt = createdAt
	return stored, nil
}

const predictionColumns = `id, user_id, region, location, bhk, bathrooms, square_feet,
	parking, garden, swimming_pool, gym, security, power_backup,
	predicted_price, price_range_min, price_range_max, similar_properties, created_at`

func (s *SQLiteStore) GetPredictionByID(id int64) (*models.Prediction, error) {
	rows, err := s.db.Query("SELECT "+predictionColumns+" FROM predictions WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return scanPrediction(rows)
}

func (s *SQLiteStore) GetRecentPredictions(userID int64, limit int) ([]*models.Prediction, error) {
	if limit < 1 {
		limit = DefaultHistoryLimit
	}

	rows, err := s.db.Query(`
		SELECT `+predictionColumns+`
		FROM predictions
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var predictions []*models.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		predictions = append(predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return predictions, nil
}

func scanPrediction(rows *sql.Rows) (*models.Prediction, error) {
	var p models.Prediction
	var similar string
	var createdAt string

	err := rows.Scan(
		&p.ID,
		&p.UserID,
		&p.Region,
		&p.Location,
		&p.BHK,
		&p.Bathrooms,
		&p.SquareFeet,
		&p.Parking,
		&p.Garden,
		&p.SwimmingPool,
		&p.Gym,
		&p.Security,
		&p.PowerBackup,
		&p.PredictedPrice,
		&p.PriceRangeMin,
		&p.PriceRangeMax,
		&similar,
		&createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan prediction: %w", err)
	}

	if err := json.Unmarshal([]byte(similar), &p.SimilarProperties); err != nil {
		return nil, fmt.Errorf("failed to unmarshal similar properties: %w", err)
	}
	if t, err := time.Parse(timeLayout, createdAt); err == nil {
		p.CreatedAt = t
	}

	return &p, nil
}

func predictionFromNew(n models.NewPrediction) *models.Prediction {
	return &models.Prediction{
		UserID:            n.UserID,
		Region:            n.Region,
		Location:          n.Location,
		BHK:               n.BHK,
		Bathrooms:         n.Bathrooms,
		SquareFeet:        n.SquareFeet,
		Parking:           n.Parking,
		Garden:            n.Garden,
		SwimmingPool:      n.SwimmingPool,
		Gym:               n.Gym,
		Security:          n.Security,
		PowerBackup:       n.PowerBackup,
		PredictedPrice:    n.PredictedPrice,
		PriceRangeMin:     n.PriceRangeMin,
		PriceRangeMax:     n.PriceRangeMax,
		SimilarProperties: append([]models.SimilarProperty(nil), n.SimilarProperties...),
	}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
