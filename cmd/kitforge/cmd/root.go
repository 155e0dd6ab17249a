// Package cmd contains the CLI commands for kitforge.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apperrors "github.com/good-yellow-bee/kitforge/pkg/errors"
)

var (
	// Used for flags
	configPath     string
	verbose        bool
	output         string
	testMode       bool
	nonInteractive bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kitforge",
	Short: "kitforge - project and workspace scaffolding",
	Long: `kitforge creates, tracks and destroys projects scaffolded from starter
templates, and groups them into workspaces.

Project types:
  - api       REST backend with dev/test/prod databases
  - admin-ui  admin panel
  - store     storefront
  - status    status page

Examples:
  # Create an API project in the current directory
  kitforge create my-shop --type api

  # Create a workspace with an API and an admin panel
  kitforge workspace create acme --with-api --with-admin-ui --skip-remote

  # List everything, including destroyed projects
  kitforge list --status all`,
	SilenceErrors: true,
	SilenceUsage:  true,
	Run: func(cmd *cobra.Command, args []string) {
		// Show help by default
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		PrintError(err)
	}
	return err
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/kitforge/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "output format (table, json, plain)")
	rootCmd.PersistentFlags().BoolVar(&testMode, "test-mode", false, "use the isolated test metadata store")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "never prompt; fail instead")
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

// GetOutput returns the output format.
func GetOutput() string {
	return output
}

// PrintError prints err and, when it carries one, the suggested remedy.
func PrintError(err error) {
	fmt.Fprintln(os.Stderr, styles.errorLabel.Render("Error:"), err.Error())
	if hint := apperrors.HintOf(err); hint != "" {
		fmt.Fprintln(os.Stderr, styles.hintLabel.Render("Hint:"), hint)
	}
}
