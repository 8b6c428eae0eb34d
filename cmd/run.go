package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/help-global/caseflow/internal/invoice"
	"github.com/help-global/caseflow/internal/pipeline"
	"github.com/help-global/caseflow/internal/state"
	"github.com/help-global/caseflow/internal/store"
	"github.com/help-global/caseflow/pkg/gdrive"
	"github.com/help-global/caseflow/pkg/gmail"
	"github.com/help-global/caseflow/pkg/googleauth"
	"github.com/help-global/caseflow/pkg/gsheets"
	"github.com/help-global/caseflow/pkg/telegram"
)

// OAuth scopes for the three Google APIs the pipeline consumes.
var scopes = []string{
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/drive.readonly",
	"https://www.googleapis.com/auth/spreadsheets",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one full pipeline pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Setup failures (missing credentials, unreadable token) are the
		// only errors that reach the exit code.
		httpClient, err := googleauth.NewHTTPClient(ctx, cfg.Auth.CredentialsFile, cfg.Auth.TokenFile, scopes...)
		if err != nil {
			return err
		}

		runsStore, err := store.NewSQLite(cfg.Store.DatabaseURL)
		if err != nil {
			return eris.Wrap(err, "open run store")
		}
		defer runsStore.Close()
		if err := runsStore.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate run store")
		}

		stateStore := state.NewFileStore(cfg.State.File, cfg.State.StatusFile)

		p := pipeline.New(
			cfg,
			stateStore,
			runsStore,
			gmail.NewClient(httpClient),
			gdrive.NewClient(httpClient),
			gsheets.NewClient(httpClient),
			telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.ChatID),
			invoice.NewPdfToText(cfg.OCR.PdfToTextPath),
		)

		run, err := p.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("run finished",
			zap.String("run_id", run.ID),
			zap.Int("discovered", run.Discovered),
			zap.Int("done", run.Done),
			zap.Int("errored", run.Errored),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
