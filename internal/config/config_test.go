package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "client_secret.json", cfg.Auth.CredentialsFile)
	assert.Equal(t, "token.json", cfg.Auth.TokenFile)
	assert.Equal(t, "docusign.net", cfg.Gmail.SenderDomain)
	assert.Equal(t, []string{"Завершен", "Завершён"}, cfg.Gmail.SubjectKeywords)
	assert.Equal(t, "Approved case", cfg.Gmail.Phrase)
	assert.Equal(t, 3, cfg.Gmail.LookbackDays)
	assert.Equal(t, "Help Global!A:L", cfg.Sheets.Range)
	assert.Equal(t, "seen_cases.json", cfg.State.File)
	assert.Equal(t, "cases_status.xlsx", cfg.State.StatusFile)
	assert.Equal(t, "caseflow.db", cfg.Store.DatabaseURL)
	assert.Equal(t, ".", cfg.Work.Dir)
	assert.Equal(t, "pdftotext", cfg.OCR.PdfToTextPath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CASEFLOW_GMAIL_LOOKBACK_DAYS", "14")
	t.Setenv("CASEFLOW_WORK_DIR", "/data/cases")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 14, cfg.Gmail.LookbackDays)
	assert.Equal(t, "/data/cases", cfg.Work.Dir)
}

func TestInitLogger_InvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "loud", Format: "json"})
	require.Error(t, err)
}
