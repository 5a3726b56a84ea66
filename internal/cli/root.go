// Package cli is the storefront command line: a customer's view of one
// store, backed by the same local storage the gateway uses.
package cli

import (
	"github.com/jrsteele09/go-storefront/internal/config"
	"github.com/jrsteele09/go-storefront/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "storefront",
		Short: "Multi-tenant storefront client",
		Long: `Storefront is the customer side of a multi-tenant course store.

It keeps sessions, carts and reading progress in local storage, talks to the
store backend, and can serve a local gateway for browsers.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			c, err := config.New()
			if err != nil {
				return err
			}
			logging.Setup(c.GetLogLevel(), c.GetEnv())

			a.cfg = c
			a.out = cmd.OutOrStdout()
			if a.profile == "" {
				a.profile = c.GetProfile()
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	cmd.PersistentFlags().StringVar(&a.profile, "profile", "", "Local storage profile (default $STOREFRONT_PROFILE)")
	cmd.PersistentFlags().StringVarP(&a.tenant, "tenant", "t", "", "Store subdomain (default: the store of the current session)")
	cmd.PersistentFlags().StringVarP(&a.output, "output", "o", outputText, "Output format: text, yaml or json")

	cmd.AddCommand(
		newServeCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newSignupCmd(a),
		newCartCmd(a),
		newReadCmd(a),
		newStoreCmd(a),
		newOrdersCmd(a),
		newInstructorCmd(a),
		newDevBackendCmd(a),
	)
	return cmd
}
