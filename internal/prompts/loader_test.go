package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetKnownPrompts(t *testing.T) {
	prompt, err := Get("analysis.json", "analyze_company")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.Profile}}")

	prompt, err = Get("outreach.json", "outreach_email")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.Contact}}")
}

func TestGetMissing(t *testing.T) {
	_, err := Get("analysis.json", "no_such_key")
	assert.Error(t, err)

	_, err = Get("missing.json", "system")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	out := Format("Hello {{.Name}}, welcome to {{.Company}}.", map[string]string{
		"Name":    "Jordan",
		"Company": "Acme",
	})
	assert.Equal(t, "Hello Jordan, welcome to Acme.", out)

	// Unknown placeholders are left intact.
	out = Format("Hello {{.Name}}", map[string]string{"Other": "x"})
	assert.Equal(t, "Hello {{.Name}}", out)
}
