package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/contact-enricher/internal/config"
	"github.com/sells-group/contact-enricher/internal/model"
)

var (
	enrichContactID string
	enrichSave      bool
	enrichNotion    bool
	enrichOutput    string
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <email>",
	Short: "Enrich a single contact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnricher(ctx, cfg, config.ModeEnrich, enrichSave)
		if err != nil {
			return err
		}
		defer env.Close()

		contact, err := env.Enricher.Enrich(ctx, model.EnrichmentRequest{
			Email:     args[0],
			ContactID: enrichContactID,
		})
		if err != nil {
			return eris.Wrap(err, "enrich")
		}

		if enrichSave && env.Store != nil {
			id, err := env.Store.Save(ctx, contact)
			if err != nil {
				return eris.Wrap(err, "save contact")
			}
			zap.L().Info("contact saved", zap.String("contact_id", id))
		}

		if enrichNotion {
			if env.Notion == nil {
				return eris.New("notion export requested but notion.token or notion.contact_db is not set")
			}
			pageID, err := exportToNotion(ctx, env.Notion, cfg.Notion.ContactDB, contact)
			if err != nil {
				return err
			}
			zap.L().Info("contact exported to notion", zap.String("page_id", pageID))
		}

		return writeOutput(os.Stdout, enrichOutput, contact)
	},
}

func init() {
	enrichCmd.Flags().StringVar(&enrichContactID, "contact-id", "", "caller contact id echoed in the result")
	enrichCmd.Flags().BoolVar(&enrichSave, "save", false, "persist the result to the configured store")
	enrichCmd.Flags().BoolVar(&enrichNotion, "notion", false, "upsert the result into the Notion contact database")
	enrichCmd.Flags().StringVarP(&enrichOutput, "output", "o", "json", "output format: json or yaml")
	rootCmd.AddCommand(enrichCmd)
}
