package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bangalorehomes/server/internal/auth"
	"bangalorehomes/server/internal/core"
	"bangalorehomes/server/internal/geo"
	"bangalorehomes/server/internal/pricing"
	"bangalorehomes/server/internal/storage"
)

type testServer struct {
	router *gin.Engine
	tokens *auth.Tokens
	core   *core.Core
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemoryStore()
	engine := pricing.NewEngine(rand.New(rand.NewSource(1)))
	c := core.New(store, store, engine, 4)
	tokens := auth.NewTokens("test-secret", 1)

	logger := logrus.New()
	logger.SetOutput(bytes.NewBuffer(nil))

	handler := NewHandler(c, tokens, geo.NewLocator(), logger, 10, 50)
	router := gin.New()
	SetupRoutes(router, handler)

	return &testServer{router: router, tokens: tokens, core: c}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) signUp(t *testing.T, email string) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email":     email,
		"password":  "secret",
		"firstName": "Test",
		"lastName":  "User",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func predictBody() gin.H {
	return gin.H{
		"region":          "whitefield",
		"preciseLocation": "Near ITPL",
		"bhk":             "3",
		"bathrooms":       "2",
		"squareFeet":      1200,
		"parking":         true,
	}
}

func TestSignUp(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email":     "priya@example.com",
		"password":  "secret",
		"firstName": "Priya",
		"lastName":  "N",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		User  map[string]interface{} `json:"user"`
		Token string                 `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "priya@example.com", resp.User["email"])
	assert.Equal(t, "Priya N", resp.User["displayName"])
	assert.NotContains(t, resp.User, "password")
	assert.NotEmpty(t, resp.Token)
}

func TestSignUp_MissingFields(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{"email": "priya@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "priya@example.com")

	rec := s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email":    "priya@example.com",
		"password": "secret",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "priya@example.com")

	rec := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "priya@example.com",
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Token)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "priya@example.com")

	tests := []struct {
		name string
		body gin.H
		code int
	}{
		{"wrong password", gin.H{"email": "priya@example.com", "password": "wrong"}, http.StatusUnauthorized},
		{"unknown email", gin.H{"email": "ghost@example.com", "password": "secret"}, http.StatusUnauthorized},
		{"missing password", gin.H{"email": "priya@example.com"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/auth/login", "", tt.body)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestGoogleAuth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/auth/google", "", gin.H{
		"googleId":    "google-42",
		"email":       "maya@example.com",
		"displayName": "Maya",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Same provider id signs into the same account.
	again := s.do(t, http.MethodPost, "/api/auth/google", "", gin.H{
		"googleId": "google-42",
		"email":    "maya@example.com",
	})
	require.Equal(t, http.StatusOK, again.Code)

	var first, second struct {
		User struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	require.NoError(t, json.Unmarshal(again.Body.Bytes(), &second))
	assert.Equal(t, first.User.ID, second.User.ID)
}

func TestGoogleAuth_EmailConflict(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "maya@example.com")

	rec := s.do(t, http.MethodPost, "/api/auth/google", "", gin.H{
		"googleId": "google-42",
		"email":    "maya@example.com",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestVerifyToken(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "priya@example.com")

	rec := s.do(t, http.MethodPost, "/api/auth/verify", "", gin.H{"token": token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "uid")

	rec = s.do(t, http.MethodPost, "/api/auth/verify", "", gin.H{"token": "garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/verify", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredict(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "priya@example.com")

	rec := s.do(t, http.MethodPost, "/api/predict", token, predictBody())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp predictionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// 9000 * 1.75 * 1.30 * 1.05 * 1200
	assert.Equal(t, 25798500, resp.PredictedPrice)
	assert.Equal(t, 23218650, resp.PriceRange.Min)
	assert.Equal(t, 28378350, resp.PriceRange.Max)
	assert.Equal(t, "whitefield", resp.Region)
	assert.Equal(t, "Near ITPL", resp.Location)
	require.Len(t, resp.SimilarProperties, 3)
	assert.Equal(t, "Whitefield", resp.SimilarProperties[0].Location)

	_, err := time.Parse(time.RFC3339, resp.Date)
	assert.NoError(t, err)
}

func TestPredict_RequiresAuth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/predict", "", predictBody())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/predict", "bogus-token", predictBody())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPredict_ValidationErrors(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "priya@example.com")

	body := predictBody()
	body["squareFeet"] = 0
	rec := s.do(t, http.MethodPost, "/api/predict", token, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Message string `json:"message"`
		Errors  []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid request data", resp.Message)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "squareFeet", resp.Errors[0].Field)
	assert.Equal(t, "Area is required", resp.Errors[0].Message)

	// The rejected request must not have been stored.
	history := s.do(t, http.MethodGet, "/api/predictions", token, nil)
	require.Equal(t, http.StatusOK, history.Code)
	assert.Equal(t, "[]", history.Body.String())
}

func TestGetPredictions(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "priya@example.com")

	for i := 0; i < 3; i++ {
		rec := s.do(t, http.MethodPost, "/api/predict", token, predictBody())
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := s.do(t, http.MethodGet, "/api/predictions?limit=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var history []historyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 2)
	assert.Equal(t, int64(3), history[0].ID)
	assert.Equal(t, int64(2), history[1].ID)

	// Compact rows only; the full record shape is not repeated here.
	assert.NotContains(t, rec.Body.String(), "priceRange")
	assert.NotContains(t, rec.Body.String(), "similarProperties")
}

func TestGetPredictions_InvalidLimit(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "priya@example.com")

	for _, limit := range []string{"0", "-5", "abc"} {
		rec := s.do(t, http.MethodGet, "/api/predictions?limit="+limit, token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestGetPrediction(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "priya@example.com")

	created := s.do(t, http.MethodPost, "/api/predict", token, predictBody())
	require.Equal(t, http.StatusOK, created.Code)
	var stored predictionResponse
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &stored))

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/api/predictions/%d", stored.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched predictionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, stored.PredictedPrice, fetched.PredictedPrice)
	assert.Equal(t, stored.PriceRange, fetched.PriceRange)
}

func TestGetPrediction_NotFoundAndBadID(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "priya@example.com")

	rec := s.do(t, http.MethodGet, "/api/predictions/999", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/predictions/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPrediction_OtherUsersRecordReadsAsMissing(t *testing.T) {
	s := newTestServer(t)
	owner := s.signUp(t, "owner@example.com")
	other := s.signUp(t, "other@example.com")

	created := s.do(t, http.MethodPost, "/api/predict", owner, predictBody())
	require.Equal(t, http.StatusOK, created.Code)
	var stored predictionResponse
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &stored))

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/api/predictions/%d", stored.ID), other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRegions(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/regions", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var regions []regionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &regions))
	require.Len(t, regions, 7)
	assert.Equal(t, "indiranagar", regions[0].ID)
	assert.Equal(t, 15000, regions[0].BasePrice)
	assert.NotZero(t, regions[0].Latitude)
}

func TestLocateRegion(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/regions/locate", "", gin.H{"lat": 12.9719, "lng": 77.6412})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Region regionResponse `json:"region"`
		Inside bool           `json:"inside"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "indiranagar", resp.Region.ID)
	assert.True(t, resp.Inside)

	rec = s.do(t, http.MethodPost, "/api/regions/locate", "", gin.H{"lat": 12.9719})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRegionBoundaries(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/regions/boundaries", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "FeatureCollection")
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
