package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/alexryan/leadscout/internal/types"
)

const companyColumns = `id, name, COALESCE(domain, ''), COALESCE(industry, ''),
	COALESCE(sector, ''), employee_count, COALESCE(employee_range, ''),
	COALESCE(description, ''), COALESCE(website, ''), COALESCE(linkedin_url, ''),
	founded_year, location, tech_stack, funding, lead_score, status,
	sources_used, created_at, updated_at`

// CreateCompany inserts a company row and returns its ID. A NULL is stored
// for an empty domain so the unique constraint only applies to real domains.
func (db *DB) CreateCompany(ctx context.Context, c *Company) (uuid.UUID, error) {
	location, techStack, funding, sources, err := marshalCompanyJSON(c)
	if err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO companies
		 (name, domain, industry, sector, employee_count, employee_range,
		  description, website, linkedin_url, founded_year, location,
		  tech_stack, funding, lead_score, status, sources_used)
		 VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5,
		         NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''),
		         $10, $11, $12, $13, $14, $15, $16)
		 RETURNING id`,
		c.Name, c.Domain, c.Industry, c.Sector, c.EmployeeCount, c.EmployeeRange,
		c.Description, c.Website, c.LinkedInURL, c.FoundedYear, location,
		techStack, funding, c.LeadScore, defaultStatus(c.Status), sources,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create company: %w", err)
	}
	return id, nil
}

// GetCompany retrieves a company by ID. Returns (nil, nil) when not found.
func (db *DB) GetCompany(ctx context.Context, id uuid.UUID) (*Company, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
	c, err := scanCompany(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return c, nil
}

// GetCompanyByDomain retrieves a company by domain. Returns (nil, nil) when
// not found.
func (db *DB) GetCompanyByDomain(ctx context.Context, domain string) (*Company, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE domain = $1`, domain)
	c, err := scanCompany(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company by domain: %w", err)
	}
	return c, nil
}

// UpdateCompanyProfile writes the fields produced by a profile build onto an
// existing company row and advances its status.
func (db *DB) UpdateCompanyProfile(ctx context.Context, id uuid.UUID, c *Company) error {
	location, techStack, funding, sources, err := marshalCompanyJSON(c)
	if err != nil {
		return err
	}

	result, err := db.pool.Exec(ctx,
		`UPDATE companies SET
		   industry = COALESCE(NULLIF($2, ''), industry),
		   sector = COALESCE(NULLIF($3, ''), sector),
		   employee_count = COALESCE($4, employee_count),
		   employee_range = COALESCE(NULLIF($5, ''), employee_range),
		   description = COALESCE(NULLIF($6, ''), description),
		   website = COALESCE(NULLIF($7, ''), website),
		   linkedin_url = COALESCE(NULLIF($8, ''), linkedin_url),
		   founded_year = COALESCE($9, founded_year),
		   location = COALESCE($10, location),
		   tech_stack = COALESCE($11, tech_stack),
		   funding = COALESCE($12, funding),
		   lead_score = $13,
		   status = $14,
		   sources_used = COALESCE($15, sources_used),
		   updated_at = NOW()
		 WHERE id = $1`,
		id, c.Industry, c.Sector, c.EmployeeCount, c.EmployeeRange,
		c.Description, c.Website, c.LinkedInURL, c.FoundedYear, location,
		techStack, funding, c.LeadScore, defaultStatus(c.Status), sources,
	)
	if err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("company not found: %s", id)
	}
	return nil
}

// UpdateCompanyStatus advances a company's lifecycle status.
func (db *DB) UpdateCompanyStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE companies SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update company status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("company not found: %s", id)
	}
	return nil
}

// DeleteCompany deletes a company and its contacts and intelligence rows
// via cascade.
func (db *DB) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("company not found: %s", id)
	}
	return nil
}

// CompanyFilters holds optional filters for listing companies
type CompanyFilters struct {
	Status   string
	Industry string
	MinScore float64
	Limit    int
	Offset   int
}

// ListCompanies retrieves companies with optional filters
func (db *DB) ListCompanies(ctx context.Context, filters CompanyFilters) ([]Company, error) {
	if filters.Limit == 0 {
		filters.Limit = 50
	}

	query := `SELECT ` + companyColumns + ` FROM companies WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filters.Status)
		argNum++
	}
	if filters.Industry != "" {
		query += fmt.Sprintf(" AND industry ILIKE $%d", argNum)
		args = append(args, "%"+filters.Industry+"%")
		argNum++
	}
	if filters.MinScore > 0 {
		query += fmt.Sprintf(" AND lead_score >= $%d", argNum)
		args = append(args, filters.MinScore)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY lead_score DESC, created_at DESC LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filters.Limit, filters.Offset)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, *c)
	}
	return companies, nil
}

func defaultStatus(status string) string {
	if status == "" {
		return StatusDiscovered
	}
	return status
}

func marshalCompanyJSON(c *Company) (location, techStack, funding, sources []byte, err error) {
	if c.Location != nil {
		if location, err = json.Marshal(c.Location); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to marshal location: %w", err)
		}
	}
	if len(c.TechStack) > 0 {
		if techStack, err = json.Marshal(c.TechStack); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to marshal tech stack: %w", err)
		}
	}
	if c.Funding != nil {
		if funding, err = json.Marshal(c.Funding); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to marshal funding: %w", err)
		}
	}
	if len(c.SourcesUsed) > 0 {
		if sources, err = json.Marshal(c.SourcesUsed); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to marshal sources: %w", err)
		}
	}
	return location, techStack, funding, sources, nil
}

func scanCompany(row pgx.Row) (*Company, error) {
	var c Company
	var location, techStack, funding, sources []byte
	err := row.Scan(&c.ID, &c.Name, &c.Domain, &c.Industry, &c.Sector,
		&c.EmployeeCount, &c.EmployeeRange, &c.Description, &c.Website,
		&c.LinkedInURL, &c.FoundedYear, &location, &techStack, &funding,
		&c.LeadScore, &c.Status, &sources, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(location) > 0 {
		var loc types.Location
		if err := json.Unmarshal(location, &loc); err == nil {
			c.Location = &loc
		}
	}
	if len(techStack) > 0 {
		_ = json.Unmarshal(techStack, &c.TechStack)
	}
	if len(funding) > 0 {
		var f types.Funding
		if err := json.Unmarshal(funding, &f); err == nil {
			c.Funding = &f
		}
	}
	if len(sources) > 0 {
		_ = json.Unmarshal(sources, &c.SourcesUsed)
	}
	return &c, nil
}
