package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"lifecycle-intelligence-engine/internal/models"
)

// ProfileRepository handles customer profile persistence.
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const upsertProfileSQL = `
	INSERT INTO customer_profiles (
		customer_id, recency_days, frequency, monetary, lifetime_value,
		spend_trend, frequency_trend,
		lifecycle_stage, value_segment, segment_label, segment_version,
		risk_score, risk_level,
		recommended_action, action_priority, action_rationale, rule_matched,
		action_cost, expected_benefit, estimated_roi, roi_feasible,
		decision_explanation, run_id, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	ON CONFLICT (customer_id) DO UPDATE SET
		recency_days = EXCLUDED.recency_days,
		frequency = EXCLUDED.frequency,
		monetary = EXCLUDED.monetary,
		lifetime_value = EXCLUDED.lifetime_value,
		spend_trend = EXCLUDED.spend_trend,
		frequency_trend = EXCLUDED.frequency_trend,
		lifecycle_stage = EXCLUDED.lifecycle_stage,
		value_segment = EXCLUDED.value_segment,
		segment_label = EXCLUDED.segment_label,
		segment_version = EXCLUDED.segment_version,
		risk_score = EXCLUDED.risk_score,
		risk_level = EXCLUDED.risk_level,
		recommended_action = EXCLUDED.recommended_action,
		action_priority = EXCLUDED.action_priority,
		action_rationale = EXCLUDED.action_rationale,
		rule_matched = EXCLUDED.rule_matched,
		action_cost = EXCLUDED.action_cost,
		expected_benefit = EXCLUDED.expected_benefit,
		estimated_roi = EXCLUDED.estimated_roi,
		roi_feasible = EXCLUDED.roi_feasible,
		decision_explanation = EXCLUDED.decision_explanation,
		run_id = EXCLUDED.run_id,
		updated_at = EXCLUDED.updated_at`

// BulkUpsert writes a batch of customer profiles, replacing any existing row
// per customer. Failures are counted per row; the batch itself is not rolled
// back for individual row errors.
func (r *ProfileRepository) BulkUpsert(ctx context.Context, profiles []models.CustomerProfile) (*models.BulkUpsertResult, error) {
	result := &models.BulkUpsertResult{}

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, p := range profiles {
			_, err := tx.Exec(ctx, upsertProfileSQL,
				p.CustomerID, p.RecencyDays, p.Frequency, p.Monetary, p.LifetimeValue,
				p.SpendTrend, p.FrequencyTrend,
				string(p.LifecycleStage), string(p.ValueSegment), p.SegmentLabel, p.SegmentVersion,
				p.RiskScore, string(p.RiskLevel),
				p.RecommendedAction, string(p.ActionPriority), p.ActionRationale, p.RuleMatched,
				p.ActionCost, p.ExpectedBenefit, p.EstimatedROI, p.ROIFeasible,
				p.Explanation, p.RunID, p.UpdatedAt,
			)
			if err != nil {
				result.FailedCount++
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", p.CustomerID, err))
			} else {
				result.UpsertedCount++
			}
		}
		return nil
	})

	return result, err
}

// scanProfile scans one customer_profiles row.
func scanProfile(row pgx.Row) (*models.CustomerProfile, error) {
	var p models.CustomerProfile
	err := row.Scan(
		&p.CustomerID, &p.RecencyDays, &p.Frequency, &p.Monetary, &p.LifetimeValue,
		&p.SpendTrend, &p.FrequencyTrend,
		&p.LifecycleStage, &p.ValueSegment, &p.SegmentLabel, &p.SegmentVersion,
		&p.RiskScore, &p.RiskLevel,
		&p.RecommendedAction, &p.ActionPriority, &p.ActionRationale, &p.RuleMatched,
		&p.ActionCost, &p.ExpectedBenefit, &p.EstimatedROI, &p.ROIFeasible,
		&p.Explanation, &p.RunID, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const selectProfileColumns = `
	customer_id, recency_days, frequency, monetary, lifetime_value,
	spend_trend, frequency_trend,
	lifecycle_stage, value_segment, segment_label, segment_version,
	risk_score, risk_level,
	recommended_action, action_priority, action_rationale, rule_matched,
	action_cost, expected_benefit, estimated_roi, roi_feasible,
	decision_explanation, run_id, updated_at`

// GetByCustomerID retrieves one customer profile.
func (r *ProfileRepository) GetByCustomerID(ctx context.Context, customerID string) (*models.CustomerProfile, error) {
	query := `SELECT` + selectProfileColumns + ` FROM customer_profiles WHERE customer_id = $1`

	profile, err := scanProfile(r.db.QueryRowContext(ctx, query, customerID))
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", customerID, err)
	}
	return profile, nil
}

// List retrieves customer profiles ordered by customer id, optionally
// filtered by risk level, with a row limit.
func (r *ProfileRepository) List(ctx context.Context, riskLevel string, limit int) ([]*models.CustomerProfile, error) {
	if limit <= 0 {
		limit = 500
	}

	query := `SELECT` + selectProfileColumns + ` FROM customer_profiles`
	args := []interface{}{}
	if riskLevel != "" {
		query += ` WHERE risk_level = $1`
		args = append(args, riskLevel)
	}
	query += fmt.Sprintf(` ORDER BY customer_id LIMIT %d`, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]*models.CustomerProfile, 0)
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, profile)
	}

	return profiles, rows.Err()
}

// CountByRiskLevel returns the number of stored profiles per risk level.
func (r *ProfileRepository) CountByRiskLevel(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT risk_level, COUNT(*) FROM customer_profiles GROUP BY risk_level`)
	if err != nil {
		return nil, fmt.Errorf("failed to count profiles: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var level string
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, err
		}
		counts[level] = count
	}

	return counts, rows.Err()
}

// RunRepository handles pipeline run metadata persistence.
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a new run repository.
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create records one pipeline run.
func (r *RunRepository) Create(ctx context.Context, run *models.PipelineRun) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pipeline_runs (
			run_id, snapshot_date, window_days, started_at, finished_at,
			duration_seconds, transaction_count, customer_count,
			actions_assigned, source_description
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		run.RunID, run.SnapshotDate, run.WindowDays, run.StartedAt, run.FinishedAt,
		run.DurationSeconds, run.TransactionCount, run.CustomerCount,
		run.ActionsAssigned, run.SourceDescription,
	)
	if err != nil {
		return fmt.Errorf("failed to record pipeline run: %w", err)
	}
	return nil
}

// Latest returns the most recent pipeline run, or nil when none exist.
func (r *RunRepository) Latest(ctx context.Context) (*models.PipelineRun, error) {
	var run models.PipelineRun
	err := r.db.QueryRowContext(ctx, `
		SELECT run_id, snapshot_date, window_days, started_at, finished_at,
			duration_seconds, transaction_count, customer_count,
			actions_assigned, source_description
		FROM pipeline_runs ORDER BY started_at DESC LIMIT 1`,
	).Scan(
		&run.RunID, &run.SnapshotDate, &run.WindowDays, &run.StartedAt, &run.FinishedAt,
		&run.DurationSeconds, &run.TransactionCount, &run.CustomerCount,
		&run.ActionsAssigned, &run.SourceDescription,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return &run, nil
}

// PruneRunsBefore deletes run records older than the cutoff.
func (r *RunRepository) PruneRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.db.ExecContext(ctx, `DELETE FROM pipeline_runs WHERE started_at < $1`, cutoff)
}
