package cmd

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/good-yellow-bee/kitforge/internal/lifecycle"
	"github.com/good-yellow-bee/kitforge/internal/models"
	apperrors "github.com/good-yellow-bee/kitforge/pkg/errors"
)

var (
	createType            string
	createDir             string
	createLatest          bool
	createSkipDBSetup     bool
	createForceOverwrite  bool
	createCopyCredentials bool
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project from a starter template",
	Long: `Create a project from a starter template and track it.

The folder is named <name>-<type>. API projects get dev, test and prod
databases named after the folder, plus a generated admin login.

Examples:
  kitforge create my-shop --type api
  kitforge create my-shop --type admin-ui --dir ~/src
  kitforge create my-shop --type api --skip-db-setup --latest`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := models.ParseComponentKind(createType)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeInvalidArgument, "invalid --type")
		}
		if kind == models.KindWorkspace {
			return apperrors.New(apperrors.CodeInvalidArgument, "workspaces are not projects").
				WithHint("use 'kitforge workspace create %s'", args[0])
		}

		return withApp(func(ctx context.Context, a *app) error {
			interactive := a.interactive()
			engine, err := a.engine(interactive)
			if err != nil {
				return err
			}
			res, err := engine.Create(ctx, lifecycle.CreateOptions{
				Name:           args[0],
				Kind:           kind,
				Dir:            a.targetDir(createDir),
				Latest:         createLatest,
				SkipDBSetup:    createSkipDBSetup,
				ForceOverwrite: createForceOverwrite,
				Interactive:    interactive,
			})
			if err != nil {
				return err
			}

			if createCopyCredentials && res.Summary.Credentials != nil {
				if err := copyCredentials(res.Summary.Credentials); err != nil {
					a.logger.Warn("could not copy credentials", zap.Error(err))
					res.Summary.Warnings = append(res.Summary.Warnings, fmt.Sprintf("credentials were not copied to the clipboard: %v", err))
				} else {
					res.Summary.NextSteps = append(res.Summary.NextSteps, "Admin credentials were copied to the clipboard")
				}
			}

			out := cmd.OutOrStdout()
			switch GetOutput() {
			case "json":
				return printJSON(out, struct {
					Project        *models.ProjectMetadata  `json:"project"`
					Reconciliation lifecycle.Reconciliation `json:"reconciliation"`
					Summary        lifecycle.Summary        `json:"summary"`
				}{res.Project, res.Reconciliation, res.Summary})
			case "plain":
				fmt.Fprintln(out, res.Project.Path)
			default:
				printSummary(out, res.Summary, res.Reconciliation)
			}
			return nil
		})
	},
}

func copyCredentials(c *lifecycle.Credentials) error {
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard utility available")
	}
	return clipboard.WriteAll(fmt.Sprintf("%s\n%s", c.Email, c.Password))
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVarP(&createType, "type", "t", string(models.KindAPI), "project type (api, admin-ui, store, status)")
	createCmd.Flags().StringVarP(&createDir, "dir", "d", "", "parent directory (default from config, else current directory)")
	createCmd.Flags().BoolVar(&createLatest, "latest", false, "resolve dependencies to the latest published versions")
	createCmd.Flags().BoolVar(&createSkipDBSetup, "skip-db-setup", false, "do not create databases")
	createCmd.Flags().BoolVar(&createForceOverwrite, "force-overwrite", false, "replace an existing project without asking")
	createCmd.Flags().BoolVar(&createCopyCredentials, "copy-credentials", false, "copy the generated admin login to the clipboard")
}
