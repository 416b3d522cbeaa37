package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bangalorehomes/server/internal/auth"
	"bangalorehomes/server/internal/core"
	"bangalorehomes/server/internal/geo"
	"bangalorehomes/server/internal/models"
	"bangalorehomes/server/internal/storage"
	"bangalorehomes/server/internal/validation"
)

type Handler struct {
	core    *core.Core
	tokens  *auth.Tokens
	locator *geo.Locator
	logger  *logrus.Logger

	historyDefault int
	historyMax     int
}

func NewHandler(c *core.Core, tokens *auth.Tokens, locator *geo.Locator, logger *logrus.Logger, historyDefault, historyMax int) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if historyDefault < 1 {
		historyDefault = storage.DefaultHistoryLimit
	}
	if historyMax < historyDefault {
		historyMax = historyDefault
	}

	return &Handler{
		core:           c,
		tokens:         tokens,
		locator:        locator,
		logger:         logger,
		historyDefault: historyDefault,
		historyMax:     historyMax,
	}
}

// ----- request/response shapes -----

type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleRequest struct {
	GoogleID    string `json:"googleId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

type locateRequest struct {
	Latitude  *float64 `json:"lat"`
	Longitude *float64 `json:"lng"`
}

type priceRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type predictionResponse struct {
	ID                int64                    `json:"id"`
	UserID            int64                    `json:"userId"`
	Region            string                   `json:"region"`
	Location          string                   `json:"location"`
	BHK               string                   `json:"bhk"`
	Bathrooms         string                   `json:"bathrooms"`
	SquareFeet        int                      `json:"squareFeet"`
	PredictedPrice    int                      `json:"predictedPrice"`
	PriceRange        priceRange               `json:"priceRange"`
	SimilarProperties []models.SimilarProperty `json:"similarProperties"`
	Date              string                   `json:"date"`
}

type historyResponse struct {
	ID             int64  `json:"id"`
	Location       string `json:"location"`
	BHK            string `json:"bhk"`
	Bathrooms      string `json:"bathrooms"`
	SquareFeet     int    `json:"squareFeet"`
	PredictedPrice int    `json:"predictedPrice"`
	Date           string `json:"date"`
}

type regionResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	BasePrice int     `json:"basePrice"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

func formatPrediction(p *models.Prediction) predictionResponse {
	return predictionResponse{
		ID:                p.ID,
		UserID:            p.UserID,
		Region:            p.Region,
		Location:          p.Location,
		BHK:               p.BHK,
		Bathrooms:         p.Bathrooms,
		SquareFeet:        p.SquareFeet,
		PredictedPrice:    p.PredictedPrice,
		PriceRange:        priceRange{Min: p.PriceRangeMin, Max: p.PriceRangeMax},
		SimilarProperties: p.SimilarProperties,
		Date:              p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ----- auth endpoints -----

func (h *Handler) SignUp(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields"})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields"})
		return
	}

	user, err := h.core.SignUp(req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, storage.ErrEmailExists) {
			c.JSON(http.StatusConflict, gin.H{"message": "User with this email already exists"})
			return
		}
		h.logger.WithError(err).Error("Signup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Signup failed"})
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		h.logger.WithError(err).Error("Failed to issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Signup failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Email and password are required",
		})
		return
	}

	user, err := h.core.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid email or password",
			})
			return
		}
		h.logger.WithError(err).Error("Login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Login failed"})
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		h.logger.WithError(err).Error("Failed to issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user, "token": token})
}

func (h *Handler) GoogleAuth(c *gin.Context) {
	var req googleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.GoogleID == "" || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields"})
		return
	}

	user, err := h.core.GoogleSignIn(req.GoogleID, req.Email, req.DisplayName, req.PhotoURL)
	if err != nil {
		if errors.Is(err, storage.ErrEmailExists) {
			c.JSON(http.StatusConflict, gin.H{"message": "Account with this email already exists"})
			return
		}
		h.logger.WithError(err).Error("Google auth failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Authentication failed"})
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		h.logger.WithError(err).Error("Failed to issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Authentication failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

func (h *Handler) VerifyToken(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No token provided"})
		return
	}

	userID, err := h.tokens.Verify(req.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"uid": userID})
}

// ----- prediction endpoints -----

func (h *Handler) Predict(c *gin.Context) {
	var req models.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request data"})
		return
	}

	prediction, err := h.core.Predict(principal(c), req)
	if err != nil {
		var vErr *validation.Error
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "Invalid request data",
				"errors":  vErr.Fields,
			})
			return
		}
		h.logger.WithError(err).Error("Failed to generate prediction")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate prediction"})
		return
	}

	c.JSON(http.StatusOK, formatPrediction(prediction))
}

func (h *Handler) GetPredictions(c *gin.Context) {
	limit := h.historyDefault
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid limit"})
			return
		}
		limit = parsed
	}
	if limit > h.historyMax {
		limit = h.historyMax
	}

	predictions, err := h.core.RecentPredictions(principal(c), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch predictions")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch predictions"})
		return
	}

	history := make([]historyResponse, 0, len(predictions))
	for _, p := range predictions {
		history = append(history, historyResponse{
			ID:             p.ID,
			Location:       p.Location,
			BHK:            p.BHK,
			Bathrooms:      p.Bathrooms,
			SquareFeet:     p.SquareFeet,
			PredictedPrice: p.PredictedPrice,
			Date:           p.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, history)
}

func (h *Handler) GetPrediction(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid prediction ID"})
		return
	}

	prediction, err := h.core.Prediction(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Prediction not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to fetch prediction")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch prediction"})
		return
	}

	// Another user's prediction reads as missing rather than forbidden, so
	// ids cannot be probed for existence.
	if prediction.UserID != principal(c) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Prediction not found"})
		return
	}

	c.JSON(http.StatusOK, formatPrediction(prediction))
}

// ----- region endpoints -----

func (h *Handler) GetRegions(c *gin.Context) {
	features := h.locator.Features()
	regions := make([]regionResponse, 0, len(features))
	for _, f := range features {
		regions = append(regions, regionResponse{
			ID:        f.Region.ID,
			Name:      f.Region.Name,
			BasePrice: f.Region.BasePrice,
			Latitude:  f.Center[1],
			Longitude: f.Center[0],
		})
	}
	c.JSON(http.StatusOK, regions)
}

func (h *Handler) GetRegionBoundaries(c *gin.Context) {
	c.JSON(http.StatusOK, h.locator.FeatureCollection())
}

func (h *Handler) LocateRegion(c *gin.Context) {
	var req locateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Latitude == nil || req.Longitude == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Latitude and longitude are required"})
		return
	}

	region, inside := h.locator.Locate(*req.Latitude, *req.Longitude)
	c.JSON(http.StatusOK, gin.H{
		"region": regionResponse{
			ID:        region.ID,
			Name:      region.Name,
			BasePrice: region.BasePrice,
		},
		"inside": inside,
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
