package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/chlohal/geostore/internal/ingest"
	"github.com/chlohal/geostore/pkg/geostore"
)

// errNoPBFSource is returned by both the importer and streaming-builder
// commands: decoding the actual PBF bytes is the OSM PBF reader's job,
// an explicit external collaborator per spec §1's scope boundary. This
// binary wires the cobra command, flag parsing, the store lifecycle,
// and the ingest.Import/ingest.StreamBuild call; an embedding
// application supplies a real ingest.Source by vendoring this command
// tree and passing it through where runImport/runStreamBuild accept nil
// today.
var errNoPBFSource = errors.New("no ingest.Source wired: PBF decoding is an external collaborator (spec §1); " +
	"provide a binary that implements ingest.Source over your PBF reader")

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <pbf-path> <data-dir>",
		Short: "Ingest a PBF extract into a new or existing store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[1], nil)
		},
	}
}

// runImport opens dataDir as a store and drives ingest.Import over
// src, reporting skipped records to cmd's stderr. src is nil in this
// binary, so the command always returns errNoPBFSource; the parameter
// is where a Source backed by a real PBF decoder is passed in.
func runImport(cmd *cobra.Command, dataDir string, src ingest.Source) error {
	if src == nil {
		return errNoPBFSource
	}

	store, err := geostore.Open(cmd.Context(), "importer", geostore.WithDataDir(dataDir))
	if err != nil {
		return errors.Wrapf(err, "opening store at %s", dataDir)
	}
	defer store.Close()

	skipped, err := ingest.Import(store, src, func(kind string, id uint64, cause error) {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s %d: %v\n", kind, id, cause)
	})
	if err != nil {
		return errors.Wrap(err, "import failed")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported with %d skipped record(s)\n", skipped)
	return nil
}
