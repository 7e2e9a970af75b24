package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/chlohal/geostore/internal/osmcodec"
	"github.com/chlohal/geostore/pkg/geostore"
	"github.com/chlohal/geostore/pkg/options"
)

func newExploreCmd() *cobra.Command {
	var (
		minX, minY, maxX, maxY int32
		limit                  int
	)

	cmd := &cobra.Command{
		Use:   "explore <data-dir>",
		Short: "Open an existing store and run a range query over it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir := args[0]

			store, err := geostore.Open(cmd.Context(), "explorer", geostore.WithDataDir(dataDir))
			if err != nil {
				return errors.Wrapf(err, "opening store at %s", dataDir)
			}
			defer store.Close()

			box := geostore.Box{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}

			count := 0
			queryErr := store.Query(box, func(obj geostore.Object) bool {
				count++
				if count <= limit {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %d box=%v\n", kindName(obj.Kind), obj.ID, obj.Box)
				}
				return true
			})
			if queryErr != nil {
				return errors.Wrap(queryErr, "query failed")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d result(s)\n", count)
			return nil
		},
	}

	defaultUniverse := options.DefaultUniverse
	cmd.Flags().Int32Var(&minX, "min-x", defaultUniverse.MinX, "query rectangle minimum x")
	cmd.Flags().Int32Var(&minY, "min-y", defaultUniverse.MinY, "query rectangle minimum y")
	cmd.Flags().Int32Var(&maxX, "max-x", defaultUniverse.MaxX, "query rectangle maximum x")
	cmd.Flags().Int32Var(&maxY, "max-y", defaultUniverse.MaxY, "query rectangle maximum y")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of results to print")
	return cmd
}

func kindName(kind osmcodec.ObjectKind) string {
	switch kind {
	case osmcodec.ObjectKindNode:
		return "node"
	case osmcodec.ObjectKindWay:
		return "way"
	default:
		return "relation"
	}
}
