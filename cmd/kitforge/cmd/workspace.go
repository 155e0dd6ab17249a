package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/kitforge/internal/models"
	"github.com/good-yellow-bee/kitforge/internal/query"
	"github.com/good-yellow-bee/kitforge/internal/remote"
	"github.com/good-yellow-bee/kitforge/internal/workspace"
	apperrors "github.com/good-yellow-bee/kitforge/pkg/errors"
)

var (
	wsWith        = map[models.ComponentKind]*bool{}
	wsSkip        = map[models.ComponentKind]*bool{}
	wsDir         string
	wsOrg         string
	wsSkipRemote  bool
	wsPrivate     bool
	wsLatest      bool
	wsSkipDBSetup bool

	wsForce        bool
	wsDeleteRemote bool

	wsListStatus string
)

var workspaceCmd = &cobra.Command{
	Use:     "workspace",
	Aliases: []string{"ws"},
	Short:   "Workspace management commands",
	Long: `Commands for managing workspaces.

A workspace is a directory holding one project per selected component,
a git repository per project, optional hosted repositories and generated
docker-compose and start/stop scripts.

Examples:
  # API and admin panel, no hosted repositories
  kitforge workspace create acme --with-api --with-admin-ui --skip-remote

  # Everything except the status page, repositories under an org
  kitforge workspace create acme --skip-status --github-org acme-inc --private

  # Tear it down, including the hosted repositories
  kitforge workspace destroy acme --delete-remote`,
}

var workspaceCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var with, skip []models.ComponentKind
		for _, kind := range models.ProjectKinds {
			if *wsWith[kind] {
				with = append(with, kind)
			}
			if *wsSkip[kind] {
				skip = append(skip, kind)
			}
		}
		components, err := workspace.SelectComponents(with, skip)
		if err != nil {
			return err
		}

		return withApp(func(ctx context.Context, a *app) error {
			org := wsOrg
			if org == "" {
				org = a.cfg.GitHub.Org
			}
			if wsSkipRemote {
				org = ""
			}
			var provider remote.Provider
			if org != "" {
				provider, err = a.remoteProvider()
				if err != nil {
					return err
				}
			}
			orch, err := a.orchestrator(provider)
			if err != nil {
				return err
			}
			res, err := orch.Create(ctx, workspace.CreateOptions{
				Name:        args[0],
				Dir:         a.targetDir(wsDir),
				Components:  components,
				Org:         org,
				Private:     wsPrivate,
				Latest:      wsLatest,
				SkipDBSetup: wsSkipDBSetup,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch GetOutput() {
			case "json":
				failures := make([]string, len(res.Failures))
				for i, f := range res.Failures {
					failures[i] = f.String()
				}
				return printJSON(out, struct {
					Workspace *models.WorkspaceMetadata `json:"workspace"`
					Files     []string                  `json:"files"`
					Failures  []string                  `json:"failures,omitempty"`
					Warnings  []string                  `json:"warnings,omitempty"`
				}{res.Workspace, res.Files, failures, res.Warnings})
			case "plain":
				fmt.Fprintln(out, res.Workspace.Path)
			default:
				printWorkspaceCreate(out, res)
			}
			return nil
		})
	},
}

var workspaceDestroyCmd = &cobra.Command{
	Use:   "destroy <name>",
	Short: "Destroy a workspace and its projects",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			if !wsForce && a.interactive() {
				ok, err := confirm(fmt.Sprintf("Destroy workspace %s and all of its projects?", args[0]))
				if err != nil {
					return err
				}
				if !ok {
					return apperrors.New(apperrors.CodeInvalidArgument, "destroy of %s was declined", args[0])
				}
			}

			provider, err := a.destroyProvider(ctx, args[0], wsDeleteRemote)
			if err != nil {
				return err
			}
			orch, err := a.orchestrator(provider)
			if err != nil {
				return err
			}
			res, err := orch.Destroy(ctx, workspace.DestroyOptions{
				Name:         args[0],
				Force:        wsForce,
				DeleteRemote: wsDeleteRemote,
				SkipDBSetup:  wsSkipDBSetup,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch GetOutput() {
			case "json":
				return printJSON(out, res)
			case "plain":
				fmt.Fprintln(out, res.Name)
				return nil
			}
			fmt.Fprintln(out, styles.success.Render(fmt.Sprintf("Destroyed workspace %s", res.Name)))
			fmt.Fprintln(out)
			field(out, "Path", res.Path)
			field(out, "Projects", fmt.Sprint(res.ProjectsDestroyed))
			if wsDeleteRemote {
				field(out, "Repos", fmt.Sprint(res.ReposDeleted))
			}
			printWarnings(out, res.Warnings)
			return nil
		})
	},
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked workspaces",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := query.ParseStatusFilter(wsListStatus)
		if err != nil {
			return err
		}
		return withApp(func(ctx context.Context, a *app) error {
			all, err := a.store.Workspaces().List(ctx)
			if err != nil {
				return fmt.Errorf("list workspaces: %w", err)
			}
			return printWorkspaces(cmd.OutOrStdout(), GetOutput(), query.Workspaces(all, status))
		})
	},
}

var workspaceShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one tracked workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			ws, err := a.store.Workspaces().Get(ctx, args[0])
			if err != nil {
				return err
			}
			if ws == nil {
				return notTracked("workspace", args[0], "kitforge workspace list --status all")
			}
			out := cmd.OutOrStdout()
			switch GetOutput() {
			case "json":
				return printJSON(out, ws)
			case "plain":
				fmt.Fprintln(out, ws.Path)
			default:
				printWorkspace(out, ws)
			}
			return nil
		})
	},
}

// destroyProvider selects the provider used to delete hosted repositories.
// A failed selection only matters when the workspace recorded repositories.
func (a *app) destroyProvider(ctx context.Context, name string, deleteRemote bool) (remote.Provider, error) {
	if !deleteRemote {
		return nil, nil
	}
	provider, selectErr := a.remoteProvider()
	if selectErr == nil {
		return provider, nil
	}
	ws, err := a.store.Workspaces().Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if ws != nil && len(ws.GitHubRepos) > 0 {
		return nil, selectErr
	}
	return nil, nil
}

func notTracked(what, name, listCmd string) error {
	return apperrors.New(apperrors.CodeNotFound, "%s %s is not tracked", what, name).
		WithHint("run '%s' to see tracked entries", listCmd)
}

func init() {
	rootCmd.AddCommand(workspaceCmd)
	workspaceCmd.AddCommand(workspaceCreateCmd)
	workspaceCmd.AddCommand(workspaceDestroyCmd)
	workspaceCmd.AddCommand(workspaceListCmd)
	workspaceCmd.AddCommand(workspaceShowCmd)

	f := workspaceCreateCmd.Flags()
	for _, kind := range models.ProjectKinds {
		wsWith[kind] = f.Bool("with-"+string(kind), false, fmt.Sprintf("include the %s component", kind))
		wsSkip[kind] = f.Bool("skip-"+string(kind), false, fmt.Sprintf("include every component except %s", kind))
	}
	f.StringVarP(&wsDir, "dir", "d", "", "parent directory (default from config, else current directory)")
	f.StringVar(&wsOrg, "github-org", "", "create hosted repositories under this owner (default from config)")
	f.BoolVar(&wsSkipRemote, "skip-remote", false, "do not create hosted repositories")
	f.BoolVar(&wsPrivate, "private", false, "make hosted repositories private")
	f.BoolVar(&wsLatest, "latest", false, "resolve dependencies to the latest published versions")
	f.BoolVar(&wsSkipDBSetup, "skip-db-setup", false, "do not create databases")

	d := workspaceDestroyCmd.Flags()
	d.BoolVarP(&wsForce, "force", "f", false, "do not ask, and delete project records instead of marking them destroyed")
	d.BoolVar(&wsDeleteRemote, "delete-remote", false, "also delete the hosted repositories")
	d.BoolVar(&wsSkipDBSetup, "skip-db-setup", false, "do not drop databases")

	workspaceListCmd.Flags().StringVar(&wsListStatus, "status", "active", "status filter (active, destroyed, all)")
}
