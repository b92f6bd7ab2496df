package main

import (
	"fmt"
	"os"

	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <paths...>",
		Short: "Stage files or directories for the next commit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range args {
				info, statErr := os.Stat(p)
				switch {
				case statErr == nil && info.IsDir():
					n, err := r.StageDirectory(p)
					if err != nil {
						return err
					}
					if n == 0 {
						fmt.Fprintf(out, "nothing to add in %s\n", p)
					} else {
						fmt.Fprintf(out, "added %d files from %s\n", n, p)
					}
				case statErr == nil && info.Mode().IsRegular():
					if _, err := r.StageFile(p); err != nil {
						return err
					}
					fmt.Fprintf(out, "added %s\n", p)
				default:
					// Missing paths and special files get the precise error
					// from the dispatching path stager.
					if err := r.StagePath(p); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
}
