package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Fund struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Balance       decimal.Decimal        `json:"balance"`
	CreatedAt     time.Time              `json:"created_at"`
	LastUpdatedAt *time.Time             `json:"last_updated_at,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}
