package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/Nina181/kcat-flux-relationship/internal/infra/reportstore"
)

func reportsCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "reports",
		Short: "Browse saved resolution reports",
	}
	c.AddCommand(reportsListCmd(), reportsShowCmd())
	return c
}

func reportsListCmd() *cobra.Command {
	var workspace string

	c := &cobra.Command{
		Use:   "list",
		Short: "List saved reports, oldest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}
			entries, err := ws.reports.List()
			if err != nil {
				return err
			}
			printReportIndex(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	return c
}

func reportsShowCmd() *cobra.Command {
	var (
		workspace string
		format    string
	)

	c := &cobra.Command{
		Use:   "show ID",
		Short: "Show one saved report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}
			rep, err := ws.reports.LoadReport(args[0])
			if err != nil {
				return err
			}
			if format == "json" {
				return printReportJSON(cmd.OutOrStdout(), rep)
			}
			printReport(cmd.OutOrStdout(), rep, args[0])
			return nil
		},
	}
	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	return c
}

func printReportIndex(w io.Writer, entries []reportstore.IndexEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No reports yet.")
		return
	}
	th := defaultTheme()
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(th.Subtitle).
		Headers("ID", "STARTED", "TOTAL", "RESOLVED", "FAILED", "SOURCE").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return th.Title.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, e := range entries {
		tbl.Row(
			e.ID,
			e.StartedAt.Format("2006-01-02 15:04:05"),
			strconv.Itoa(e.Total),
			strconv.Itoa(e.Resolved),
			strconv.Itoa(e.Failed),
			e.Source,
		)
	}
	fmt.Fprintln(w, tbl.String())
}
