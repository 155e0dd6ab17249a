package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/kitforge/internal/models"
	"github.com/good-yellow-bee/kitforge/internal/query"
)

var (
	listStatus string
	listType   string
	listWhere  string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked projects",
	Long: `List tracked projects, most recently updated first.

--where takes an expression over the fields name, kind, folder, path,
status, created_at and updated_at.

Examples:
  kitforge list
  kitforge list --status all --type api
  kitforge list --where 'name startsWith "acme" and updated_at > now() - duration("24h")'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := query.ParseStatusFilter(listStatus)
		if err != nil {
			return err
		}
		filter := query.ProjectFilter{Status: status}
		if listType != "" {
			kind, err := models.ParseComponentKind(listType)
			if err != nil {
				return err
			}
			filter.Kind = kind
		}
		if listWhere != "" {
			pq, err := query.NewQueryDSL(query.ProjectFields).Parse(listWhere)
			if err != nil {
				return err
			}
			filter.Where = pq
		}

		return withApp(func(ctx context.Context, a *app) error {
			all, err := a.store.Projects().List(ctx)
			if err != nil {
				return fmt.Errorf("list projects: %w", err)
			}
			projects, err := query.Projects(all, filter)
			if err != nil {
				return err
			}
			return printProjects(cmd.OutOrStdout(), GetOutput(), projects)
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <folder-name>",
	Short: "Show one tracked project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			p, err := a.store.Projects().Get(ctx, args[0])
			if err != nil {
				return err
			}
			if p == nil {
				return notTracked("project", args[0], "kitforge list --status all")
			}
			out := cmd.OutOrStdout()
			switch GetOutput() {
			case "json":
				return printJSON(out, p)
			case "plain":
				fmt.Fprintln(out, p.Path)
			default:
				printProject(out, p)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)

	listCmd.Flags().StringVar(&listStatus, "status", "active", "status filter (active, destroyed, all)")
	listCmd.Flags().StringVarP(&listType, "type", "t", "", "only projects of this type")
	listCmd.Flags().StringVarP(&listWhere, "where", "w", "", "filter expression")
}
