package cli

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/shopsearch/internal/config"
)

// NewRootCmd creates the shopctl root command with every subcommand attached.
func NewRootCmd(version string) *cobra.Command {
	var env string

	cmd := &cobra.Command{
		Use:   "shopctl",
		Short: "Operate the shopsearch product index",
		Long: `shopctl seeds and syncs the product index used by shopsearch,
and shows how a storefront search is composed and ranked.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&env, "env", "e", config.GetEnv(), "Configuration environment (config/<env>.yaml)")

	cmd.AddCommand(NewSeedCmd(&env))
	cmd.AddCommand(NewDrainCmd(&env))
	cmd.AddCommand(NewUpsertCmd(&env))
	cmd.AddCommand(NewEnqueueCmd(&env))
	cmd.AddCommand(NewSearchCmd(&env))
	cmd.AddCommand(NewComposeCmd())

	return cmd
}
