package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/AymanSha3ban/MUC-Library/internal/application/verification"
	"github.com/AymanSha3ban/MUC-Library/internal/config"
	transporthttp "github.com/AymanSha3ban/MUC-Library/internal/transport/http"
	"github.com/AymanSha3ban/MUC-Library/internal/wiring"
	"github.com/spf13/cobra"
)

// bootstrapCmd creates tables or applies migrations for STORE_DRIVER.
var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create the tables the configured store needs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		closeFn, err := wiring.OpenStores(cmd.Context(), cfg, &transporthttp.Deps{})
		if err != nil {
			return err
		}
		defer closeFn()
		fmt.Fprintf(cmd.OutOrStdout(), "store %q ready\n", cfg.StoreDriver)
		return nil
	},
}

var issueEmail string

// issueCmd sends a verification code the same way POST /v1/verifications does.
var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Email a verification code to an address",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		deps, closeFn, err := wiring.Build(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeFn()
		rec, err := deps.VerificationService(cfg).Issue(cmd.Context(), issueEmail)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sent record %s to %s (expires %s)\n", rec.ID, rec.Email, rec.ExpiresAt.Format("15:04:05 MST"))
		return nil
	},
}

func init() {
	issueCmd.Flags().StringVar(&issueEmail, "email", "", "recipient address")
	_ = issueCmd.MarkFlagRequired("email")
}

// roleCmd reports the role each address would receive on its next redemption.
var roleCmd = &cobra.Command{
	Use:   "role <email>...",
	Short: "Show the role assigned to each address",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		admins, err := cfg.AdminList()
		if err != nil {
			return err
		}
		deps := &transporthttp.Deps{Policy: verification.NewRolePolicy(admins)}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, a := range deps.RoleService().Resolve(cmd.Context(), args) {
			fmt.Fprintf(w, "%s\t%s\n", a.Email, a.Role)
		}
		return w.Flush()
	},
}
