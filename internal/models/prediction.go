package models

import "time"

// PredictionRequest is the validated input to the price kernel. BHK and
// Bathrooms stay strings because the client sends open-ended counts such as
// "6+" and "5+"; the kernel parses the leading integer.
type PredictionRequest struct {
	Region          string `json:"region"`
	PreciseLocation string `json:"preciseLocation"`
	BHK             string `json:"bhk"`
	Bathrooms       string `json:"bathrooms"`
	SquareFeet      int    `json:"squareFeet"`
	Parking         bool   `json:"parking"`
	Garden          bool   `json:"garden"`
	SwimmingPool    bool   `json:"swimmingPool"`
	Gym             bool   `json:"gym"`
	Security        bool   `json:"security"`
	PowerBackup     bool   `json:"powerBackup"`
}

// SimilarProperty is one synthetic comparable offered alongside a prediction.
type SimilarProperty struct {
	Location   string `json:"location"`
	BHK        int    `json:"bhk"`
	Bathrooms  int    `json:"bathrooms"`
	SquareFeet int    `json:"squareFeet"`
	Price      int    `json:"price"`
}

// PriceEstimate is the kernel's output for a single request.
type PriceEstimate struct {
	PredictedPrice    int
	PriceRangeMin     int
	PriceRangeMax     int
	SimilarProperties []SimilarProperty
}

// Prediction is a stored valuation. All money amounts are whole rupees.
type Prediction struct {
	ID                int64             `json:"id"`
	UserID            int64             `json:"userId"`
	Region            string            `json:"region"`
	Location          string            `json:"location"`
	BHK               string            `json:"bhk"`
	Bathrooms         string            `json:"bathrooms"`
	SquareFeet        int               `json:"squareFeet"`
	Parking           bool              `json:"parking"`
	Garden            bool              `json:"garden"`
	SwimmingPool      bool              `json:"swimmingPool"`
	Gym               bool              `json:"gym"`
	Security          bool              `json:"security"`
	PowerBackup       bool              `json:"powerBackup"`
	PredictedPrice    int               `json:"predictedPrice"`
	PriceRangeMin     int               `json:"priceRangeMin"`
	PriceRangeMax     int               `json:"priceRangeMax"`
	SimilarProperties []SimilarProperty `json:"similarProperties"`
	CreatedAt         time.Time         `json:"createdAt"`
}

// NewPrediction carries the fields for appending a prediction. ID and
// CreatedAt are assigned by the store.
type NewPrediction struct {
	UserID            int64
	Region            string
	Location          string
	BHK               string
	Bathrooms         string
	SquareFeet        int
	Parking           bool
	Garden            bool
	SwimmingPool      bool
	Gym               bool
	Security          bool
	PowerBackup       bool
	PredictedPrice    int
	PriceRangeMin     int
	PriceRangeMax     int
	SimilarProperties []SimilarProperty
}
