// Command geostore is the CLI surface spec §6 names: a single binary
// exposing the importer, explorer, and streaming-builder subcommands
// as cobra commands. Each exits 0 on success, nonzero with a
// human-readable message on failure, per spec §6/§7.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	gerrors "github.com/chlohal/geostore/pkg/errors"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printFailure(os.Stderr, err)
		os.Exit(1)
	}
}

// printFailure reports err the way an operator wants to see it: the
// message, then the error code and field-level context a ValidationError
// carries (a bad flag or option), then the path/offset a StorageError
// carries (an I/O failure against a specific file), then whatever other
// structured detail the error attached along the way.
func printFailure(w *os.File, err error) {
	fmt.Fprintln(w, err)
	fmt.Fprintf(w, "code: %s\n", gerrors.GetErrorCode(err))

	if ve, ok := gerrors.AsValidationError(err); ok {
		fmt.Fprintf(w, "field: %s (rule: %s)\n", ve.Field(), ve.Rule())
	}
	if se, ok := gerrors.AsStorageError(err); ok && se.Path() != "" {
		fmt.Fprintf(w, "path: %s\n", se.Path())
	}
	if ie, ok := gerrors.AsIndexError(err); ok && ie.Key() != "" {
		fmt.Fprintf(w, "key: %s\n", ie.Key())
	}

	details := gerrors.GetErrorDetails(err)
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %v\n", k, details[k])
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "geostore",
		Short: "Paged spatial storage engine for world map extracts",
	}

	root.AddCommand(newImportCmd())
	root.AddCommand(newExploreCmd())
	root.AddCommand(newStreamBuildCmd())
	return root
}
