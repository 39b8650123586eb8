package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/rahmet/internal/health"
)

func newStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Проверить доступность API и хранилища",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := c.dependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			report := deps.Health.Report(cmd.Context())
			renderReport(c, report)
			if report.Status == health.StatusUnhealthy {
				return fmt.Errorf("status: %s", report.Status)
			}
			return nil
		},
	}
}

func renderReport(c *cli, report health.Response) {
	names := make([]string, 0, len(report.Checks))
	for name := range report.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	for _, name := range names {
		check := report.Checks[name]
		if check.Optional {
			name += " (optional)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%dms\t%s\n", name, check.Status, check.DurationMs, check.Message)
	}
	_ = tw.Flush()
	fmt.Fprintf(c.out, "api: %s\n", c.cfg.APIURL)
	fmt.Fprintf(c.out, "status: %s\n", report.Status)
}
