package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mfleury/transplot/pkg/community"
	"github.com/mfleury/transplot/pkg/layout"
	"github.com/mfleury/transplot/pkg/netgraph"
	"github.com/mfleury/transplot/pkg/store"
)

// newLayoutCmd creates the layout command, which computes the layout matrix
// once and writes it to a file so later renders can skip the expensive
// community-detection and spring stages with --layout.
func newLayoutCmd() *cobra.Command {
	var (
		input  string
		output string
		seed   uint64
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute and persist a layout matrix",
		Long: `Compute the 2-D layout for a network and write it as a headerless
two-column CSV, one row per facility in network node order. The file can be
fed back to render --layout to reproduce the exact placement without
recomputation.`,
		Example: `  transplot layout -i network.json -o layout.csv --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			net, err := netgraph.ReadNetworkFile(input)
			if err != nil {
				return err
			}

			spin := newSpinner(ctx, "Computing layout...")
			spin.Start()

			p := newProgress(logger)
			part, err := community.Detect(net, netgraph.Transfer.Volume, seed)
			if err != nil {
				spin.Stop()
				return err
			}
			coords, err := layout.New(seed).Layout(net, part)
			if err != nil {
				spin.Stop()
				return err
			}
			spin.Stop()
			p.done(fmt.Sprintf("Laid out %d facilities", net.Len()))

			if err := store.WriteMatrix(output, coords); err != nil {
				return err
			}

			printSuccess("Layout written")
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "network JSON file (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "layout CSV file (required)")
	cmd.Flags().Uint64Var(&seed, "seed", layout.DefaultSeed, "random seed")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
