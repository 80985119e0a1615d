package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mfleury/transplot/pkg/community"
	"github.com/mfleury/transplot/pkg/layout"
	"github.com/mfleury/transplot/pkg/netgraph"
)

// newCommunitiesCmd creates the communities command, which prints the
// modularity partition without rendering anything. Useful for sanity-checking
// cluster coloring before a full render.
func newCommunitiesCmd() *cobra.Command {
	var (
		input string
		seed  uint64
	)

	cmd := &cobra.Command{
		Use:     "communities",
		Short:   "Print the community partition of a network",
		Example: `  transplot communities -i network.json --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			net, err := netgraph.ReadNetworkFile(input)
			if err != nil {
				return err
			}

			part, err := community.Detect(net, netgraph.Transfer.Volume, seed)
			if err != nil {
				return err
			}

			fmt.Println(StyleTitle.Render(fmt.Sprintf("%d communities across %d facilities", part.Count(), net.Len())))
			for id := 1; id <= part.Count(); id++ {
				members := part.Members(id)
				ids := make([]string, len(members))
				for i, m := range members {
					ids[i] = net.Facilities[m].ID
				}
				printKeyValue(
					fmt.Sprintf("community %s", StyleNumber.Render(fmt.Sprint(id))),
					fmt.Sprintf("%d: %s", len(members), StyleDim.Render(strings.Join(ids, ", "))),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "network JSON file (required)")
	cmd.Flags().Uint64Var(&seed, "seed", layout.DefaultSeed, "random seed")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
