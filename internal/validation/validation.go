// Package validation checks incoming prediction requests field by field and
// reports every failing field at once rather than stopping at the first.
package validation

import (
	"bangalorehomes/server/internal/models"
)

// FieldError names one offending field and why it was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the structured validation failure returned to callers.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	return "invalid request data"
}

// ValidatePredictionRequest applies the request rules. Region membership is
// deliberately not checked here; the kernel prices unknown regions at a
// fallback rate.
func ValidatePredictionRequest(req models.PredictionRequest) error {
	var fields []FieldError

	if req.Region == "" {
		fields = append(fields, FieldError{Field: "region", Message: "Region is required"})
	}
	if req.PreciseLocation == "" {
		fields = append(fields, FieldError{Field: "preciseLocation", Message: "Precise location is required"})
	}
	if req.BHK == "" {
		fields = append(fields, FieldError{Field: "bhk", Message: "BHK is required"})
	}
	if req.Bathrooms == "" {
		fields = append(fields, FieldError{Field: "bathrooms", Message: "Bathrooms are required"})
	}
	if req.SquareFeet < 1 {
		fields = append(fields, FieldError{Field: "squareFeet", Message: "Area is required"})
	}

	if len(fields) > 0 {
		return &Error{Fields: fields}
	}
	return nil
}
