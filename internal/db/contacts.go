package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/alexryan/leadscout/internal/types"
)

const contactColumns = `id, company_id, COALESCE(email, ''), COALESCE(first_name, ''),
	COALESCE(last_name, ''), COALESCE(full_name, ''), COALESCE(title, ''),
	COALESCE(department, ''), COALESCE(seniority_level, ''), is_decision_maker,
	COALESCE(confidence, 0), COALESCE(linkedin_url, ''), COALESCE(phone, ''),
	COALESCE(source, ''), created_at`

// ReplaceContacts deletes a company's contacts and inserts the given set in
// a single transaction. Empty emails are stored as NULL so the per-company
// unique constraint applies only to real addresses.
func (db *DB) ReplaceContacts(ctx context.Context, companyID uuid.UUID, contacts []types.Contact) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM contacts WHERE company_id = $1`, companyID); err != nil {
		return fmt.Errorf("failed to clear contacts: %w", err)
	}

	for _, c := range contacts {
		_, err := tx.Exec(ctx,
			`INSERT INTO contacts
			 (company_id, email, first_name, last_name, full_name, title,
			  department, seniority_level, is_decision_maker, confidence,
			  linkedin_url, phone, source)
			 VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''),
			         NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''),
			         NULLIF($8, ''), $9, $10, NULLIF($11, ''), NULLIF($12, ''),
			         NULLIF($13, ''))
			 ON CONFLICT (company_id, email) DO NOTHING`,
			companyID, c.Email, c.FirstName, c.LastName, c.FullName, c.Title,
			c.Department, c.SeniorityLevel, c.IsDecisionMaker, c.Confidence,
			c.LinkedInURL, c.Phone, c.Source,
		)
		if err != nil {
			return fmt.Errorf("failed to insert contact: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit contacts: %w", err)
	}
	return nil
}

// ListContacts retrieves a company's contacts, decision makers first.
func (db *DB) ListContacts(ctx context.Context, companyID uuid.UUID, decisionMakersOnly bool) ([]Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE company_id = $1`
	if decisionMakersOnly {
		query += ` AND is_decision_maker`
	}
	query += ` ORDER BY is_decision_maker DESC, confidence DESC, created_at ASC`

	rows, err := db.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		var c Contact
		err := rows.Scan(&c.ID, &c.CompanyID, &c.Email, &c.FirstName,
			&c.LastName, &c.FullName, &c.Title, &c.Department,
			&c.SeniorityLevel, &c.IsDecisionMaker, &c.Confidence,
			&c.LinkedInURL, &c.Phone, &c.Source, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}
