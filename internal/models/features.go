// Package models defines the data structures for the lifecycle intelligence engine.
package models

// RFMFeatures holds recency/frequency/monetary features for one customer.
// Recency is computed over full history; frequency and monetary are scoped to
// the RFM lookback window. LifetimeValue is all-time spend.
type RFMFeatures struct {
	CustomerID    string  `json:"customer_id" db:"customer_id"`
	RecencyDays   int     `json:"recency_days" db:"recency_days"`
	Frequency     int     `json:"frequency" db:"frequency"`
	Monetary      float64 `json:"monetary" db:"monetary"`
	LifetimeValue float64 `json:"lifetime_value" db:"lifetime_value"`
}

// BehavioralTrends holds period-over-period percentage changes for one
// customer. A trend is 0.0 whenever the prior-window value is zero.
type BehavioralTrends struct {
	CustomerID     string  `json:"customer_id" db:"customer_id"`
	SpendTrend     float64 `json:"spend_trend" db:"spend_trend"`
	FrequencyTrend float64 `json:"frequency_trend" db:"frequency_trend"`
}

// CustomerFeatures is the merged per-customer feature row consumed by the
// segmentation and risk engines.
type CustomerFeatures struct {
	CustomerID     string  `json:"customer_id" db:"customer_id"`
	RecencyDays    int     `json:"recency_days" db:"recency_days"`
	Frequency      int     `json:"frequency" db:"frequency"`
	Monetary       float64 `json:"monetary" db:"monetary"`
	LifetimeValue  float64 `json:"lifetime_value" db:"lifetime_value"`
	SpendTrend     float64 `json:"spend_trend" db:"spend_trend"`
	FrequencyTrend float64 `json:"frequency_trend" db:"frequency_trend"`
}
