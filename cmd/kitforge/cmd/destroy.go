package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/kitforge/internal/lifecycle"
	"github.com/good-yellow-bee/kitforge/internal/models"
)

var (
	destroyType        string
	destroyDir         string
	destroyForce       bool
	destroySkipDBSetup bool
	destroyInteractive bool
)

var destroyCmd = &cobra.Command{
	Use:   "destroy <name>",
	Short: "Destroy a project and its databases",
	Long: `Destroy a project: remove its folder, drop its databases and mark its
record destroyed. With --force the record is deleted instead.

<name> may be the folder name (my-shop-api) or the logical name (my-shop).
A logical name matching several projects asks which one to destroy, or
fails when prompts are disabled.

Examples:
  kitforge destroy my-shop-api
  kitforge destroy my-shop --type api --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var kind models.ComponentKind
		if destroyType != "" {
			k, err := models.ParseComponentKind(destroyType)
			if err != nil {
				return err
			}
			kind = k
		}

		return withApp(func(ctx context.Context, a *app) error {
			interactive := destroyInteractive && a.interactive()
			engine, err := a.engine(interactive)
			if err != nil {
				return err
			}
			res, err := engine.Destroy(ctx, lifecycle.DestroyOptions{
				Name:        args[0],
				Kind:        kind,
				Dir:         a.targetDir(destroyDir),
				Force:       destroyForce,
				SkipDBSetup: destroySkipDBSetup,
				Interactive: interactive,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch GetOutput() {
			case "json":
				return printJSON(out, res)
			case "plain":
				fmt.Fprintln(out, res.FolderName)
				return nil
			}
			switch {
			case res.AlreadyDestroyed && !res.Purged:
				fmt.Fprintln(out, styles.muted.Render(fmt.Sprintf("%s was already destroyed", res.FolderName)))
			case res.Purged:
				fmt.Fprintln(out, styles.success.Render(fmt.Sprintf("Destroyed %s and removed its record", res.FolderName)))
			case !res.Tracked:
				fmt.Fprintln(out, styles.success.Render(fmt.Sprintf("Removed untracked folder %s", res.Path)))
			default:
				fmt.Fprintln(out, styles.success.Render(fmt.Sprintf("Destroyed %s", res.FolderName)))
			}
			printWarnings(out, res.Warnings)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(destroyCmd)

	destroyCmd.Flags().StringVarP(&destroyType, "type", "t", "", "project type, combined with <name> to form the folder name")
	destroyCmd.Flags().StringVarP(&destroyDir, "dir", "d", "", "directory searched for untracked folders")
	destroyCmd.Flags().BoolVarP(&destroyForce, "force", "f", false, "delete the record instead of marking it destroyed")
	destroyCmd.Flags().BoolVar(&destroySkipDBSetup, "skip-db-setup", false, "do not drop databases")
	destroyCmd.Flags().BoolVar(&destroyInteractive, "interactive", true, "ask which project to destroy when the name is ambiguous")
}
