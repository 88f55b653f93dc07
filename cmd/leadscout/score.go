package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexryan/leadscout/internal/config"
	"github.com/alexryan/leadscout/internal/db"
	"github.com/alexryan/leadscout/internal/scoring"
	"github.com/alexryan/leadscout/internal/types"
)

var scoreDomain string

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Recompute the lead score for a stored company",
	RunE:  runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreDomain, "domain", "", "Company domain")
	_ = scoreCmd.MarkFlagRequired("domain")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("database url is required (LEADSCOUT_DATABASE_URL)")
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	company, err := database.GetCompanyByDomain(ctx, scoreDomain)
	if err != nil {
		return err
	}
	if company == nil {
		return fmt.Errorf("no company stored for domain %s", scoreDomain)
	}

	record := &types.CompanyRecord{
		Name:          company.Name,
		Domain:        company.Domain,
		Industry:      company.Industry,
		Sector:        company.Sector,
		EmployeeCount: company.EmployeeCount,
		EmployeeRange: company.EmployeeRange,
		Description:   company.Description,
		Website:       company.Website,
		LinkedInURL:   company.LinkedInURL,
		FoundedYear:   company.FoundedYear,
		Location:      company.Location,
		TechStack:     company.TechStack,
		Funding:       company.Funding,
	}
	score := scoring.LeadScore(record)

	if score != company.LeadScore {
		company.LeadScore = score
		if err := database.UpdateCompanyProfile(ctx, company.ID, company); err != nil {
			return err
		}
	}

	fmt.Printf("%s: %.1f\n", company.Name, score)
	return nil
}
