package storage

import (
	"sort"
	"sync"
	"time"

	"bangalorehomes/server/internal/models"
)

// MemoryStore keeps users and predictions in process memory: a map per table
// plus secondary indices for email, provider id and per-user prediction ids.
// All operations take the one mutex, so id assignment and unique checks are
// atomic with respect to concurrent callers.
type MemoryStore struct {
	mu sync.RWMutex

	users           map[int64]*models.User
	userByEmail     map[string]int64
	userByProvider  map[string]int64
	predictions     map[int64]*models.Prediction
	userPredictions map[int64][]int64

	nextUserID       int64
	nextPredictionID int64
}

// NewMemoryStore returns an empty store with ids starting at 1.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:            make(map[int64]*models.User),
		userByEmail:      make(map[string]int64),
		userByProvider:   make(map[string]int64),
		predictions:      make(map[int64]*models.Prediction),
		userPredictions:  make(map[int64][]int64),
		nextUserID:       1,
		nextPredictionID: 1,
	}
}

func (s *MemoryStore) CreateUser(user models.NewUser) (*models.User, error) {
	if user.Password == nil && user.ProviderID == nil {
		return nil, ErrNoCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.userByEmail[user.Email]; exists {
		return nil, ErrEmailExists
	}
	if user.ProviderID != nil {
		if _, exists := s.userByProvider[*user.ProviderID]; exists {
			return nil, ErrProviderIDExists
		}
	}

	stored := &models.User{
		ID:          s.nextUserID,
		Username:    user.Username,
		Email:       user.Email,
		Password:    user.Password,
		ProviderID:  user.ProviderID,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
		CreatedAt:   time.Now().UTC(),
	}
	s.nextUserID++

	s.users[stored.ID] = stored
	s.userByEmail[stored.Email] = stored.ID
	if stored.ProviderID != nil {
		s.userByProvider[*stored.ProviderID] = stored.ID
	}

	return copyUser(stored), nil
}

func (s *MemoryStore) GetUserByID(id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(user), nil
}

func (s *MemoryStore) GetUserByEmail(email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.userByEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(s.users[id]), nil
}

func (s *MemoryStore) GetUserByProviderID(providerID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.userByProvider[providerID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(s.users[id]), nil
}

func (s *MemoryStore) CreatePrediction(prediction models.NewPrediction) (*models.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := &models.Prediction{
		ID:                s.nextPredictionID,
		UserID:            prediction.UserID,
		Region:            prediction.Region,
		Location:          prediction.Location,
		BHK:               prediction.BHK,
		Bathrooms:         prediction.Bathrooms,
		SquareFeet:        prediction.SquareFeet,
		Parking:           prediction.Parking,
		Garden:            prediction.Garden,
		SwimmingPool:      prediction.SwimmingPool,
		Gym:               prediction.Gym,
		Security:          prediction.Security,
		PowerBackup:       prediction.PowerBackup,
		PredictedPrice:    prediction.PredictedPrice,
		PriceRangeMin:     prediction.PriceRangeMin,
		PriceRangeMax:     prediction.PriceRangeMax,
		SimilarProperties: append([]models.SimilarProperty(nil), prediction.SimilarProperties...),
		CreatedAt:         time.Now().UTC(),
	}
	s.nextPredictionID++

	s.predictions[stored.ID] = stored
	s.userPredictions[stored.UserID] = append(s.userPredictions[stored.UserID], stored.ID)

	return copyPrediction(stored), nil
}

func (s *MemoryStore) GetPredictionByID(id int64) (*models.Prediction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prediction, ok := s.predictions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyPrediction(prediction), nil
}

func (s *MemoryStore) GetRecentPredictions(userID int64, limit int) ([]*models.Prediction, error) {
	if limit < 1 {
		limit = DefaultHistoryLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.userPredictions[userID]
	recent := make([]*models.Prediction, 0, len(ids))
	for _, id := range ids {
		recent = append(recent, s.predictions[id])
	}

	sort.Slice(recent, func(i, j int) bool {
		if !recent[i].CreatedAt.Equal(recent[j].CreatedAt) {
			return recent[i].CreatedAt.After(recent[j].CreatedAt)
		}
		return recent[i].ID > recent[j].ID
	})

	if len(recent) > limit {
		recent = recent[:limit]
	}

	out := make([]*models.Prediction, len(recent))
	for i, p := range recent {
		out[i] = copyPrediction(p)
	}
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// copyUser shields stored records from caller mutation.
func copyUser(u *models.User) *models.User {
	out := *u
	return &out
}

func copyPrediction(p *models.Prediction) *models.Prediction {
	out := *p
	out.SimilarProperties = append([]models.SimilarProperty(nil), p.SimilarProperties...)
	return &out
}
