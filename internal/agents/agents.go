// Package agents builds LLM-backed analysis and outreach generation on top
// of collected company profiles. Model output is validated against embedded
// JSON schemas before it is trusted.
package agents

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// Analysis is the analyst agent's assessment of a company.
type Analysis struct {
	Summary    string   `json:"summary"`
	PainPoints []string `json:"pain_points"`
	Priorities []string `json:"priorities"`
	Confidence float64  `json:"confidence"`
}

// OutreachContent is the generator agent's email material.
type OutreachContent struct {
	SubjectLines         []string `json:"subject_lines"`
	EmailBody            string   `json:"email_body"`
	ConversationStarters []string `json:"conversation_starters"`
}

// validateAndDecode checks a model response against an embedded schema and
// decodes it into out.
func validateAndDecode(schemaName, response string, out any) error {
	schemaBytes, err := schemaFiles.ReadFile("schemas/" + schemaName)
	if err != nil {
		return fmt.Errorf("failed to read schema %s: %w", schemaName, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewStringLoader(response),
	)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		return fmt.Errorf("model response violates schema %s: %v", schemaName, result.Errors())
	}

	if err := json.Unmarshal([]byte(response), out); err != nil {
		return fmt.Errorf("failed to decode model response: %w", err)
	}
	return nil
}
