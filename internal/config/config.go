package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Auth     AuthConfig     `yaml:"auth" mapstructure:"auth"`
	Gmail    GmailConfig    `yaml:"gmail" mapstructure:"gmail"`
	Drive    DriveConfig    `yaml:"drive" mapstructure:"drive"`
	Sheets   SheetsConfig   `yaml:"sheets" mapstructure:"sheets"`
	Telegram TelegramConfig `yaml:"telegram" mapstructure:"telegram"`
	State    StateConfig    `yaml:"state" mapstructure:"state"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Work     WorkConfig     `yaml:"work" mapstructure:"work"`
	OCR      OCRConfig      `yaml:"ocr" mapstructure:"ocr"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// AuthConfig points at the OAuth client secret and cached token files.
type AuthConfig struct {
	CredentialsFile string `yaml:"credentials_file" mapstructure:"credentials_file"`
	TokenFile       string `yaml:"token_file" mapstructure:"token_file"`
}

// GmailConfig configures approved-case discovery.
type GmailConfig struct {
	SenderDomain    string   `yaml:"sender_domain" mapstructure:"sender_domain"`
	SubjectKeywords []string `yaml:"subject_keywords" mapstructure:"subject_keywords"`
	Phrase          string   `yaml:"phrase" mapstructure:"phrase"`
	LookbackDays    int      `yaml:"lookback_days" mapstructure:"lookback_days"`
}

// DriveConfig configures the remote case-folder namespace.
type DriveConfig struct {
	RootFolderID string `yaml:"root_folder_id" mapstructure:"root_folder_id"`
}

// SheetsConfig configures the tracking spreadsheet.
type SheetsConfig struct {
	SpreadsheetID string `yaml:"spreadsheet_id" mapstructure:"spreadsheet_id"`
	Range         string `yaml:"range" mapstructure:"range"`
}

// TelegramConfig configures the digest notification channel.
type TelegramConfig struct {
	Token  string `yaml:"token" mapstructure:"token"`
	ChatID int64  `yaml:"chat_id" mapstructure:"chat_id"`
}

// StateConfig configures the durable local state files.
type StateConfig struct {
	File       string `yaml:"file" mapstructure:"file"`
	StatusFile string `yaml:"status_file" mapstructure:"status_file"`
}

// StoreConfig configures the run-history database.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// WorkConfig configures where documents are downloaded and filed.
type WorkConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// OCRConfig configures PDF text extraction.
type OCRConfig struct {
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CASEFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("auth.credentials_file", "client_secret.json")
	v.SetDefault("auth.token_file", "token.json")
	v.SetDefault("gmail.sender_domain", "docusign.net")
	v.SetDefault("gmail.subject_keywords", []string{"Завершен", "Завершён"})
	v.SetDefault("gmail.phrase", "Approved case")
	v.SetDefault("gmail.lookback_days", 3)
	v.SetDefault("sheets.range", "Help Global!A:L")
	v.SetDefault("state.file", "seen_cases.json")
	v.SetDefault("state.status_file", "cases_status.xlsx")
	v.SetDefault("store.database_url", "caseflow.db")
	v.SetDefault("work.dir", ".")
	v.SetDefault("ocr.pdftotext_path", "pdftotext")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
