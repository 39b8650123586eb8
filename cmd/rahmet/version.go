package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/rahmet/internal/version"
)

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Версия клиента",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			v, commit, date := version.Info()
			fmt.Fprintf(c.out, "rahmet %s\n", v)
			fmt.Fprintf(c.out, "commit: %s\n", commit)
			fmt.Fprintf(c.out, "built:  %s\n", date)
		},
	}
}
