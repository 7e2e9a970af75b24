package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/chlohal/geostore/internal/ingest"
	"github.com/chlohal/geostore/pkg/geostore"
)

func newStreamBuildCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "build <pbf-path> <data-dir>",
		Short: "Concurrently build the spatial tree only, from a PBF extract",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStreamBuild(cmd, args[1], nil, workers)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 4, "number of concurrent encode/insert workers")
	return cmd
}

// runStreamBuild opens dataDir as a store and drives
// ingest.StreamBuild over src with the given worker count. src is nil
// in this binary; see errNoPBFSource in import.go.
func runStreamBuild(cmd *cobra.Command, dataDir string, src ingest.Source, workers int) error {
	if src == nil {
		return errNoPBFSource
	}

	store, err := geostore.Open(cmd.Context(), "streambuild", geostore.WithDataDir(dataDir))
	if err != nil {
		return errors.Wrapf(err, "opening store at %s", dataDir)
	}
	defer store.Close()

	skipped, err := ingest.StreamBuild(cmd.Context(), store, src, workers)
	if err != nil {
		return errors.Wrap(err, "streaming build failed")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "built with %d skipped record(s)\n", skipped)
	return nil
}
