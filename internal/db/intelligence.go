package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveIntelligence stores an AI analysis report for a company and returns
// the new row's ID.
func (db *DB) SaveIntelligence(ctx context.Context, rec *Intelligence) (uuid.UUID, error) {
	painPoints, err := json.Marshal(rec.PainPoints)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal pain points: %w", err)
	}
	priorities, err := json.Marshal(rec.Priorities)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal priorities: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO intelligence
		 (company_id, summary, pain_points, priorities, outreach, confidence)
		 VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)
		 RETURNING id`,
		rec.CompanyID, rec.Summary, painPoints, priorities, rec.Outreach, rec.Confidence,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save intelligence: %w", err)
	}
	return id, nil
}

// AttachOutreach stores generated outreach content on an existing report.
func (db *DB) AttachOutreach(ctx context.Context, id uuid.UUID, outreach []byte) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE intelligence SET outreach = $1 WHERE id = $2`,
		outreach, id,
	)
	if err != nil {
		return fmt.Errorf("failed to attach outreach: %w", err)
	}
	return nil
}

// LatestIntelligence retrieves the most recent report for a company.
// Returns (nil, nil) when the company has none.
func (db *DB) LatestIntelligence(ctx context.Context, companyID uuid.UUID) (*Intelligence, error) {
	var rec Intelligence
	var summary *string
	var painPoints, priorities []byte
	var confidence *float64

	err := db.pool.QueryRow(ctx,
		`SELECT id, company_id, summary, pain_points, priorities, outreach, confidence, created_at
		 FROM intelligence WHERE company_id = $1
		 ORDER BY created_at DESC LIMIT 1`,
		companyID,
	).Scan(&rec.ID, &rec.CompanyID, &summary, &painPoints, &priorities,
		&rec.Outreach, &confidence, &rec.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get intelligence: %w", err)
	}

	if summary != nil {
		rec.Summary = *summary
	}
	if confidence != nil {
		rec.Confidence = *confidence
	}
	if len(painPoints) > 0 {
		_ = json.Unmarshal(painPoints, &rec.PainPoints)
	}
	if len(priorities) > 0 {
		_ = json.Unmarshal(priorities, &rec.Priorities)
	}
	return &rec, nil
}
