package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/odvcencio/grit/pkg/object"
	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [ref-or-hash]",
		Short: "Show a stored object (commit, tree, or blob)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			target := "HEAD"
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				target = strings.TrimSpace(args[0])
			}

			h, err := resolveTarget(r, target)
			if err != nil {
				return err
			}

			objType, payload, err := r.Store.Read(h)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch objType {
			case object.TypeCommit:
				c, err := object.UnmarshalCommit(payload)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "commit %s\n", h)
				fmt.Fprintf(out, "tree %s\n", c.TreeHash)
				if c.Parent != "" {
					fmt.Fprintf(out, "parent %s\n", c.Parent)
				}
				fmt.Fprintf(out, "Author: %s\n", c.Author)
				fmt.Fprintf(out, "Date:   %s\n", time.Unix(c.Timestamp, 0).Format("2006-01-02 15:04:05"))
				if c.Signature != "" {
					fmt.Fprintf(out, "Signed: yes\n")
				}
				fmt.Fprintln(out)
				fmt.Fprintf(out, "    %s\n", c.Message)

				files, err := r.FlattenTree(c.TreeHash)
				if err != nil {
					return err
				}
				if len(files) > 0 {
					fmt.Fprintln(out)
					for _, f := range files {
						fmt.Fprintf(out, "  %s %s  %s\n", f.Mode, f.BlobHash, f.Path)
					}
				}

			case object.TypeTree:
				tr, err := object.UnmarshalTree(payload)
				if err != nil {
					return err
				}
				for _, e := range tr.Entries {
					kind := object.TypeBlob
					if e.IsDir() {
						kind = object.TypeTree
					}
					fmt.Fprintf(out, "%s %s %s\t%s\n", e.Mode, kind, e.Hash, e.Name)
				}

			case object.TypeBlob:
				out.Write(payload)

			default:
				return fmt.Errorf("show: unknown object type %q", objType)
			}
			return nil
		},
	}
}

// resolveTarget accepts HEAD, a branch name, or a full object hash.
func resolveTarget(r *repo.Repo, target string) (object.Hash, error) {
	if h, err := r.ResolveRef(target); err == nil {
		return h, nil
	}
	if len(target) == object.HexLen && r.Store.Has(object.Hash(target)) {
		return object.Hash(target), nil
	}
	return "", fmt.Errorf("show: cannot resolve %q", target)
}
