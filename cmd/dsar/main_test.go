package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dsar/internal/detection/catalog"
	"dsar/internal/detection/masking"
)

// isolate clears the infrastructure settings so every command runs against
// in-memory stores.
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DSAR_POSTGRES_URL", "DSAR_KAFKA_BROKERS", "DSAR_REDIS_URL", "DSAR_OBJECTSTORE_ENDPOINT",
		"DSAR_OPS_ADDR", "DSAR_OPENAI_API_KEY", "DSAR_ENABLE_LLM", "DSAR_CATALOG_FILE",
	} {
		t.Setenv(key, "")
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	isolate(t)
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// =============================================================================
// mask
// =============================================================================

func TestMaskCommand(t *testing.T) {
	t.Run("masks arguments with the rule for the type", func(t *testing.T) {
		out, err := execute(t, "", "mask", "--type", "email", "jane.doe@example.com")
		require.NoError(t, err)
		assert.Equal(t, masking.Mask("jane.doe@example.com", masking.TypeEmail)+"\n", out)
		assert.NotContains(t, out, "jane.doe")
	})

	t.Run("reads stdin when no values are given", func(t *testing.T) {
		out, err := execute(t, "DE89370400440532013000\n\n", "--json", "mask", "-t", "IBAN")
		require.NoError(t, err)
		var masked []string
		require.NoError(t, json.Unmarshal([]byte(out), &masked))
		assert.Equal(t, []string{masking.Mask("DE89370400440532013000", masking.TypeIBAN)}, masked)
	})

	t.Run("rejects unknown types", func(t *testing.T) {
		_, err := execute(t, "", "mask", "--type", "shoe_size", "44")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown PII type")
	})
}

// =============================================================================
// patterns
// =============================================================================

func TestPatternsCommand(t *testing.T) {
	t.Run("lists the built-in catalog", func(t *testing.T) {
		out, err := execute(t, "", "--json", "patterns")
		require.NoError(t, err)
		var views []patternView
		require.NoError(t, json.Unmarshal([]byte(out), &views))

		byName := map[string]patternView{}
		for _, v := range views {
			byName[v.Name] = v
		}
		require.Contains(t, byName, "iban")
		assert.Equal(t, "iban", byName["iban"].Validator)
		require.Contains(t, byName, "health_terms")
		assert.True(t, byName["health_terms"].Special)
		assert.Contains(t, byName["health_terms"].Match, "diagnosis")
	})

	t.Run("filters by category", func(t *testing.T) {
		out, err := execute(t, "", "--json", "patterns", "--category", "health")
		require.NoError(t, err)
		var views []patternView
		require.NoError(t, json.Unmarshal([]byte(out), &views))
		require.NotEmpty(t, views)
		for _, v := range views {
			assert.Equal(t, "HEALTH", string(v.Category))
		}
	})

	t.Run("extra catalog file is merged", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		writeFile(t, path, `patterns:
  - name: badge_number
    kind: regex
    expression: '\bBDG-\d{6}\b'
    category: identification
    pii_type: NATIONAL_ID
`)
		out, err := execute(t, "", "--catalog", path, "patterns")
		require.NoError(t, err)
		assert.Contains(t, out, "badge_number")
		assert.Contains(t, out, "NATIONAL_ID")
	})

	t.Run("unknown category is an error", func(t *testing.T) {
		_, err := execute(t, "", "patterns", "--category", "horoscope")
		require.Error(t, err)
	})
}

// =============================================================================
// scan
// =============================================================================

func TestScanCommand(t *testing.T) {
	const note = "Jane Doe was diagnosed with diabetes. Reach her at jane.doe@example.com."

	t.Run("stdin content is scanned and masked", func(t *testing.T) {
		out, err := execute(t, note, "--json", "scan", "-")
		require.NoError(t, err)
		var view scanView
		require.NoError(t, json.Unmarshal([]byte(out), &view))

		assert.Equal(t, "stdin", view.File)
		assert.True(t, view.ContainsSpecialCategory)
		assert.Contains(t, view.SpecialCategories, catalog.CategoryHealth)
		cats := map[string]bool{}
		for _, c := range view.Categories {
			cats[string(c.Category)] = true
		}
		assert.True(t, cats["CONTACT"])
		assert.NotContains(t, out, "jane.doe@example.com")
	})

	t.Run("metadata only mode does not read content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.txt")
		writeFile(t, path, note)
		out, err := execute(t, "", "--json", "scan", "--mode", "metadata_only", path)
		require.NoError(t, err)
		var view scanView
		require.NoError(t, json.Unmarshal([]byte(out), &view))
		for _, r := range view.Results {
			assert.NotEqual(t, "REGEX", string(r.DetectorType))
		}
		assert.NotContains(t, out, "example.com")
	})

	t.Run("table output", func(t *testing.T) {
		out, err := execute(t, note, "scan", "-")
		require.NoError(t, err)
		assert.Contains(t, out, "DETECTOR")
		assert.Contains(t, out, "special category data suspected: HEALTH")
	})

	t.Run("invalid mode", func(t *testing.T) {
		_, err := execute(t, note, "scan", "--mode", "everything", "-")
		require.Error(t, err)
	})

	t.Run("llm without api key", func(t *testing.T) {
		_, err := execute(t, note, "scan", "--llm", "-")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DSAR_OPENAI_API_KEY")
	})
}

func TestMIMEFor(t *testing.T) {
	assert.Equal(t, "application/pdf", mimeFor("payslip.PDF"))
	assert.Equal(t, "text/plain", mimeFor("notes"))
	assert.Equal(t, "text/html", mimeFor("mail.html"))
}
