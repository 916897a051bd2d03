// Package models defines the data structures for the lifecycle intelligence engine.
package models

// RiskLevel categorizes a 0-100 risk score.
type RiskLevel string

const (
	RiskLevelLow     RiskLevel = "Low"
	RiskLevelMedium  RiskLevel = "Medium"
	RiskLevelHigh    RiskLevel = "High"
	RiskLevelUnknown RiskLevel = "Unknown"
)

// RiskSignals holds the three normalized [0,1] risk signals per customer.
type RiskSignals struct {
	CustomerID          string  `json:"customer_id" db:"customer_id"`
	RecencySignal       float64 `json:"recency_signal" db:"recency_signal"`
	FrequencyDropSignal float64 `json:"frequency_drop_signal" db:"frequency_drop_signal"`
	SpendDropSignal     float64 `json:"spend_drop_signal" db:"spend_drop_signal"`
}

// RiskScore is the weighted fusion of risk signals onto a 0-100 scale, with
// the derived risk level.
type RiskScore struct {
	CustomerID string    `json:"customer_id" db:"customer_id"`
	RiskScore  float64   `json:"risk_score" db:"risk_score"`
	RiskLevel  RiskLevel `json:"risk_level" db:"risk_level"`
}
