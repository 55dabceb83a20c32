package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitYears(t *testing.T) {
	assert.Equal(t, []string{"2023", "2024"}, splitYears(" 2023, 2024 ,"))
	assert.Nil(t, splitYears(""))
}

func TestReadCSV(t *testing.T) {
	stream, err := readCSV(strings.NewReader("event_id,plan_price,coupon\nevt_1,29,\nevt_2,99,SAVE10\n"))
	require.NoError(t, err)
	require.Len(t, stream, 2)
	assert.Equal(t, "29", stream[0]["plan_price"])
	assert.Nil(t, stream[0]["coupon"])
	assert.Equal(t, "SAVE10", stream[1]["coupon"])
}

func TestGenerateCommand(t *testing.T) {
	out := t.TempDir()
	rootCmd.SetArgs([]string{"generate", "../../specs/healthcare.yaml",
		"--rows", "40", "--years", "2024", "--schema", "star", "--seed", "11", "--out", out, "--format", "csv"})
	require.NoError(t, rootCmd.Execute())

	for _, name := range []string{"claims_fact.csv", "patient_dim.csv", "provider_dim.csv"} {
		assert.FileExists(t, filepath.Join(out, name))
	}

	stream, err := readStream(filepath.Join(out, "claims_fact.csv"))
	require.NoError(t, err)
	assert.NotEmpty(t, stream)
	assert.LessOrEqual(t, len(stream), 40)

	data, err := os.ReadFile(filepath.Join(out, "claims_fact.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "claim_id,"))
}

func TestValidateCommand(t *testing.T) {
	rootCmd.SetArgs([]string{"validate", "../../specs/saas.json", "../../specs/healthcare.yaml"})
	assert.NoError(t, rootCmd.Execute())

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"entities": []}`), 0o644))
	rootCmd.SetArgs([]string{"validate", bad})
	assert.Error(t, rootCmd.Execute())
}
