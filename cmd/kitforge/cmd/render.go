package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/good-yellow-bee/kitforge/internal/lifecycle"
	"github.com/good-yellow-bee/kitforge/internal/models"
	"github.com/good-yellow-bee/kitforge/internal/workspace"
)

var styles = struct {
	title      lipgloss.Style
	success    lipgloss.Style
	warn       lipgloss.Style
	muted      lipgloss.Style
	label      lipgloss.Style
	errorLabel lipgloss.Style
	hintLabel  lipgloss.Style
}{
	title:      lipgloss.NewStyle().Bold(true),
	success:    lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80")),
	warn:       lipgloss.NewStyle().Foreground(lipgloss.Color("#D4A017")),
	muted:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	label:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12),
	errorLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true),
	hintLabel:  lipgloss.NewStyle().Foreground(lipgloss.Color("#D4A017")).Bold(true),
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func field(w io.Writer, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "  %s %s\n", styles.label.Render(name), value)
}

func printWarnings(w io.Writer, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.warn.Render("Warnings:"))
	for _, msg := range warnings {
		fmt.Fprintf(w, "  - %s\n", msg)
	}
}

func databaseList(dbs *models.Databases) string {
	return strings.Join(dbs.Names(), ", ")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func printSummary(w io.Writer, s lifecycle.Summary, reconciliation lifecycle.Reconciliation) {
	fmt.Fprintln(w, styles.success.Render(fmt.Sprintf("Created %s project %s", s.Kind, s.FolderName)))
	if reconciliation != "" && reconciliation != lifecycle.Fresh {
		fmt.Fprintln(w, styles.muted.Render("("+string(reconciliation)+")"))
	}
	fmt.Fprintln(w)
	field(w, "Path", s.Path)
	field(w, "Databases", databaseList(s.Databases))
	if s.Credentials != nil {
		field(w, "Admin", s.Credentials.Email)
		field(w, "Password", s.Credentials.Password)
	}
	if len(s.NextSteps) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, styles.title.Render("Next steps:"))
		for _, step := range s.NextSteps {
			fmt.Fprintf(w, "  %s\n", step)
		}
	}
	printWarnings(w, s.Warnings)
}

func printProjects(w io.Writer, format string, projects []*models.ProjectMetadata) error {
	switch format {
	case "json":
		if projects == nil {
			projects = []*models.ProjectMetadata{}
		}
		return printJSON(w, projects)
	case "plain":
		for _, p := range projects {
			fmt.Fprintln(w, p.FolderName)
		}
		return nil
	}

	if len(projects) == 0 {
		fmt.Fprintln(w, "No projects found.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FOLDER\tTYPE\tSTATUS\tUPDATED\tPATH")
	for _, p := range projects {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.FolderName, p.Type, p.Status, formatTime(p.UpdatedAt), p.Path)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nTotal: %d project(s)\n", len(projects))
	return nil
}

func printProject(w io.Writer, p *models.ProjectMetadata) {
	fmt.Fprintln(w, styles.title.Render(p.FolderName))
	field(w, "Name", p.Name)
	field(w, "Type", string(p.Type))
	field(w, "Status", string(p.Status))
	field(w, "Path", p.Path)
	field(w, "Databases", databaseList(p.Databases))
	field(w, "Created", formatTime(p.CreatedAt))
	field(w, "Updated", formatTime(p.UpdatedAt))
}

func printWorkspaces(w io.Writer, format string, list []*models.WorkspaceMetadata) error {
	switch format {
	case "json":
		if list == nil {
			list = []*models.WorkspaceMetadata{}
		}
		return printJSON(w, list)
	case "plain":
		for _, ws := range list {
			fmt.Fprintln(w, ws.Name)
		}
		return nil
	}

	if len(list) == 0 {
		fmt.Fprintln(w, "No workspaces found.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSTATUS\tCOMPONENTS\tREPOS\tUPDATED\tPATH")
	for _, ws := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			ws.Name, ws.Status, componentList(ws.Components), len(ws.GitHubRepos), formatTime(ws.UpdatedAt), ws.Path)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nTotal: %d workspace(s)\n", len(list))
	return nil
}

func componentList(c models.Components) string {
	kinds := c.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ",")
}

func printWorkspace(w io.Writer, ws *models.WorkspaceMetadata) {
	fmt.Fprintln(w, styles.title.Render(ws.Name))
	field(w, "ID", ws.ID)
	field(w, "Status", string(ws.Status))
	field(w, "Path", ws.Path)
	field(w, "Namespace", ws.Namespace)
	field(w, "Components", componentList(ws.Components))
	field(w, "Created", formatTime(ws.CreatedAt))
	field(w, "Updated", formatTime(ws.UpdatedAt))
	if len(ws.Projects) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, styles.title.Render("Projects:"))
		for _, p := range ws.Projects {
			fmt.Fprintf(w, "  %-10s %s\n", p.Type, p.Path)
		}
	}
	if len(ws.GitHubRepos) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, styles.title.Render("Repositories:"))
		for _, r := range ws.GitHubRepos {
			fmt.Fprintf(w, "  %-10s %s\n", r.Type, r.URL)
		}
	}
}

func printWorkspaceCreate(w io.Writer, res *workspace.CreateResult) {
	ws := res.Workspace
	if ws.Status == models.WorkspacePartial {
		fmt.Fprintln(w, styles.warn.Render(fmt.Sprintf("Workspace %s created with failures", ws.Name)))
	} else {
		fmt.Fprintln(w, styles.success.Render(fmt.Sprintf("Created workspace %s", ws.Name)))
	}
	fmt.Fprintln(w)
	field(w, "Path", ws.Path)
	for _, pr := range res.Projects {
		field(w, string(pr.Project.Type), pr.Project.FolderName)
		if c := pr.Summary.Credentials; c != nil {
			field(w, "Admin", c.Email+" / "+c.Password)
		}
	}
	for _, r := range ws.GitHubRepos {
		field(w, "Repo", r.URL)
	}
	if len(res.Files) > 0 {
		field(w, "Files", strings.Join(res.Files, ", "))
	}
	if len(res.Failures) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, styles.errorLabel.Render("Failed components:"))
		for _, f := range res.Failures {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}
	printWarnings(w, res.Warnings)
}
