package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/contact-enricher/internal/config"
	"github.com/sells-group/contact-enricher/internal/model"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Inspect stored contacts",
}

// -- contacts list --

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored contacts, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate(config.ModeStore); err != nil {
			return err
		}
		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		status, _ := cmd.Flags().GetString("status")
		domain, _ := cmd.Flags().GetString("domain")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		contacts, err := st.List(ctx, model.ContactFilter{
			Status: model.ContactStatus(status),
			Domain: domain,
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			return eris.Wrap(err, "contacts list")
		}

		if len(contacts) == 0 {
			fmt.Fprintln(os.Stderr, "No contacts found.")
			return nil
		}

		formatContactsList(os.Stdout, contacts)
		return nil
	},
}

// -- contacts get --

var contactsGetCmd = &cobra.Command{
	Use:   "get <contact-id>",
	Short: "Show a stored contact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate(config.ModeStore); err != nil {
			return err
		}
		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		c, err := st.Get(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "contacts get")
		}

		output, _ := cmd.Flags().GetString("output")
		return writeOutput(os.Stdout, output, c)
	},
}

func init() {
	contactsListCmd.Flags().String("status", "", "filter by status (enriched, failed)")
	contactsListCmd.Flags().String("domain", "", "filter by email domain")
	contactsListCmd.Flags().Int("limit", 20, "max number of contacts")
	contactsListCmd.Flags().Int("offset", 0, "number of contacts to skip")
	contactsGetCmd.Flags().StringP("output", "o", "json", "output format: json or yaml")

	contactsCmd.AddCommand(contactsListCmd, contactsGetCmd)
	rootCmd.AddCommand(contactsCmd)
}

func formatContactsList(w io.Writer, contacts []model.EnrichedContact) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tCOMPANY\tSTATUS\tENRICHED")
	for _, c := range contacts {
		enriched := "-"
		if !c.EnrichedAt.IsZero() {
			enriched = c.EnrichedAt.Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ContactID, c.Email, orDash(c.Name), orDash(c.Company.Name), c.Status, enriched)
	}
	_ = tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
