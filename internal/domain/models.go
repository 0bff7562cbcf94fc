package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Estimate is the result of one successful pipeline run.
type Estimate struct {
	ID         *uuid.UUID      `json:"id,omitempty"`
	Price      float64         `json:"price"`
	PriceMin   float64         `json:"price_min"`
	PriceMax   float64         `json:"price_max"`
	Confidence float64         `json:"confidence"`
	Warnings   []string        `json:"warnings"`
	Narrative  string          `json:"narrative"`
	Features   json.RawMessage `json:"features"`
	Attempts   int             `json:"extraction_attempts"`
	ModelUsed  string          `json:"model_used,omitempty"`
}

// Prediction is a persisted estimate.
type Prediction struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Features    json.RawMessage `json:"features"`
	Warnings    []string        `json:"warnings"`
	Price       float64         `json:"price"`
	PriceMin    float64         `json:"price_min"`
	PriceMax    float64         `json:"price_max"`
	Confidence  float64         `json:"confidence"`
	Narrative   string          `json:"narrative"`
	ModelUsed   string          `json:"model_used"`
	Attempts    int             `json:"extraction_attempts"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// UsageStatus reports the daily request counter.
type UsageStatus struct {
	Limit     int    `json:"limit"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
	Date      string `json:"date"`
}
