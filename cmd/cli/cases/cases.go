// Package cases holds the authoring tools for case documents.
package cases

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"slices"

	"github.com/myrjola/murderai/internal/casefile"
	"github.com/myrjola/murderai/internal/errors"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "cases",
	Title: "Case authoring",
}

var ErrInvalidCases = errors.NewSentinel("invalid case documents")

var Cases = &cobra.Command{
	Use:     "cases",
	GroupID: "cases",
	Short:   "Work with case documents",
}

func init() {
	Cases.AddCommand(Validate)
}

var Validate = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Validate case documents",
	Long:  "Parses and validates every *.yaml file in dir, or the built-in cases when dir is omitted.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fsys := casefile.EmbeddedFS()
		if len(args) == 1 {
			fsys = os.DirFS(args[0])
		}
		return ValidateFS(fsys, cmd.OutOrStdout())
	},
}

// ValidateFS reports every case document in fsys on out and fails if any of them is invalid.
func ValidateFS(fsys fs.FS, out io.Writer) error {
	failures, err := casefile.ValidateAll(fsys)
	if err != nil {
		return errors.Wrap(err, "validate cases")
	}
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return errors.Wrap(err, "glob case files")
	}
	if len(names) == 0 {
		_, _ = fmt.Fprintln(out, "no case documents found")
	}
	slices.Sort(names)
	for _, name := range names {
		if failure, ok := failures[name]; ok {
			_, _ = fmt.Fprintf(out, "FAIL %s\n  %v\n", name, failure)
			continue
		}
		_, _ = fmt.Fprintf(out, "ok   %s\n", name)
	}
	if len(failures) > 0 {
		return errors.Wrap(ErrInvalidCases, "validate cases", slog.Int("invalid", len(failures)))
	}
	return nil
}
