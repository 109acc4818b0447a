package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"safetyhub/internal/bootstrap/logging"
	"safetyhub/internal/errs"
	sqliterepo "safetyhub/internal/infrastructure/persistence/sqlite/repository"
	"safetyhub/internal/ports"
)

type rosterFile struct {
	Recipients []struct {
		Name  string `yaml:"name"`
		Email string `yaml:"email"`
		Phone string `yaml:"phone"`
		Group string `yaml:"group"`
	} `yaml:"recipients"`
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the recipient roster from a YAML file",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		rosterPath, _ := cmd.Flags().GetString("roster")
		raw, err := os.ReadFile(rosterPath)
		if err != nil {
			return errs.Wrapf(err, "read roster file %q", rosterPath)
		}

		var roster rosterFile
		if err := yaml.Unmarshal(raw, &roster); err != nil {
			return errs.Wrap(err, "parse roster yaml")
		}

		recipients := make([]ports.Recipient, 0, len(roster.Recipients))
		for _, r := range roster.Recipients {
			recipients = append(recipients, ports.Recipient{
				Name:  r.Name,
				Email: r.Email,
				Phone: r.Phone,
				Group: r.Group,
			})
		}

		directory := sqliterepo.NewRecipientDirectory(deps.App.DB)
		if err := directory.SeedRecipients(ctx, recipients); err != nil {
			return errs.Wrap(err, "seed recipients")
		}

		logging.Info(ctx, "roster seeded", slog.Int("count", len(recipients)))
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "seeded %d recipients from %s\n", len(recipients), rosterPath); err != nil {
			return errs.Wrap(err, "write seed output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().String("roster", "configs/roster.yaml", "Path to the recipient roster YAML")
}
