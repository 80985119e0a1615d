package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mfleury/transplot/pkg/community"
	"github.com/mfleury/transplot/pkg/encode"
	"github.com/mfleury/transplot/pkg/errors"
	"github.com/mfleury/transplot/pkg/layout"
	"github.com/mfleury/transplot/pkg/netgraph"
	"github.com/mfleury/transplot/pkg/render"
	"github.com/mfleury/transplot/pkg/store"
)

const (
	defaultWidth  = 900
	defaultHeight = 700

	artifactTTL = 24 * time.Hour
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	input         string // network JSON path
	output        string // output file path
	configPath    string // TOML options file
	format        string // "png", "svg" or "dot"; inferred from output extension when empty
	nodeSizes     string // node size mode
	nodeColors    string // node color mode
	edges         string // edge visibility mode
	edgeColors    string // edge color mode
	edgeWidths    string // edge width mode
	highlight     string // facility id to highlight
	labelClusters bool   // overlay community labels
	seed          uint64 // random seed
	layoutPath    string // precomputed layout matrix
	width, height int    // frame size in pixels
	noCache       bool   // bypass the artifact cache
}

// newRenderCmd creates the render command.
//
// Flags override the TOML config, which overrides the defaults. The full
// pipeline runs in one pass: community detection, layout (or cached layout
// load), visual encoding, composition, output.
func newRenderCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a facility transfer network",
		Example: `  transplot render -i network.json -o network.png
  transplot render -i network.json -o network.svg --node-colors prevalence --edges ari
  transplot render -i network.json -o network.png -c options.toml --layout layout.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "network JSON file (required)")
	f.StringVarP(&opts.output, "output", "o", "", "output file (required)")
	f.StringVarP(&opts.configPath, "config", "c", "", "TOML options file")
	f.StringVar(&opts.format, "format", "", "output format: png, svg or dot (default: from output extension)")
	f.StringVar(&opts.nodeSizes, "node-sizes", "", "node size mode: uniform or stays")
	f.StringVar(&opts.nodeColors, "node-colors", "", "node color mode: cluster, cases or prevalence")
	f.StringVar(&opts.edges, "edges", "", "edge visibility mode: suppress, ari or all")
	f.StringVar(&opts.edgeColors, "edge-colors", "", "edge color mode: denominator, ari or percent_ari")
	f.StringVar(&opts.edgeWidths, "edge-widths", "", "edge width mode: uniform, transfers or ari")
	f.StringVar(&opts.highlight, "highlight", "", "facility id to highlight")
	f.BoolVar(&opts.labelClusters, "label-clusters", false, "overlay community labels at cluster centroids")
	f.Uint64Var(&opts.seed, "seed", layout.DefaultSeed, "random seed for community detection and layout")
	f.StringVar(&opts.layoutPath, "layout", "", "precomputed layout matrix (skips layout computation)")
	f.IntVar(&opts.width, "width", defaultWidth, "frame width in pixels")
	f.IntVar(&opts.height, "height", defaultHeight, "frame height in pixels")
	f.BoolVar(&opts.noCache, "no-cache", false, "bypass the render artifact cache")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runRender(cmd *cobra.Command, opts renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := mergeConfig(cmd, opts)
	if err != nil {
		return err
	}
	encOpts, err := resolveOptions(cfg)
	if err != nil {
		return err
	}

	format, err := resolveFormat(opts.format, opts.output)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(opts.input)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "read network %s", opts.input)
	}
	net, err := netgraph.UnmarshalNetwork(raw)
	if err != nil {
		return err
	}
	logger.Debug("network loaded", "facilities", net.Len(), "transfers", len(net.Transfers))

	cacheable := []any{cfg, opts.labelClusters, opts.width, opts.height}
	key := store.ArtifactKey(raw, cacheable, cfg.Seed, format)
	var cache *store.FileCache
	if !opts.noCache {
		if dir, err := cacheDir(); err == nil {
			if cache, err = store.NewFileCache(dir); err == nil {
				if data, hit, _ := cache.Get(ctx, key); hit {
					if err := os.WriteFile(opts.output, data, 0644); err != nil {
						return err
					}
					printSuccess("Rendered %s (cached)", StyleValue.Render(opts.output))
					return nil
				}
			}
		}
	}

	data, err := renderNetwork(cmd, net, cfg, encOpts, opts, format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(opts.output, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", opts.output)
	}
	if cache != nil {
		if err := cache.Set(ctx, key, data, artifactTTL); err != nil {
			logger.Debug("cache write failed", "err", err)
		}
	}

	printSuccess("Rendered %d facilities, %d transfers", net.Len(), len(net.Transfers))
	printFile(opts.output)
	return nil
}

// renderNetwork runs partition → layout → encode → compose and returns the
// output bytes for the requested format.
func renderNetwork(cmd *cobra.Command, net *netgraph.Network, cfg Config, encOpts encode.Options, opts renderOpts, format string) ([]byte, error) {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	spin := newSpinner(ctx, "Detecting communities and computing layout...")
	spin.Start()

	p := newProgress(logger)
	part, err := community.Detect(net, netgraph.Transfer.Volume, cfg.Seed)
	if err != nil {
		spin.Stop()
		return nil, err
	}
	logger.Debug("partition computed", "communities", part.Count())

	engine := layout.New(cfg.Seed)
	if cfg.Layout != "" {
		m, err := store.ReadMatrix(cfg.Layout, net.Len())
		if err != nil {
			spin.Stop()
			return nil, err
		}
		engine.SetCached(m)
		logger.Debug("using cached layout", "path", cfg.Layout)
	}
	coords, err := engine.Layout(net, part)
	if err != nil {
		spin.Stop()
		return nil, err
	}
	spin.Stop()
	p.done(fmt.Sprintf("Laid out %d facilities in %d communities", net.Len(), part.Count()))

	table, err := encode.Encode(net, part, encOpts)
	if err != nil {
		return nil, err
	}

	switch format {
	case "png":
		comp := render.NewCompositor(opts.width, opts.height, render.NewRegistry())
		comp.LabelClusters = cfg.LabelClusters
		dc, err := comp.Compose(net, coords, table, part, encOpts.EdgeStyles)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := dc.EncodePNG(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	case "svg":
		dot := render.ToDOT(net, coords, table, encOpts.EdgeStyles)
		return render.RenderSVG(dot)

	case "dot":
		return []byte(render.ToDOT(net, coords, table, encOpts.EdgeStyles)), nil
	}

	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format %q", format)
}

// mergeConfig layers flag values over the TOML config over the defaults.
// Only flags the user actually set override the file.
func mergeConfig(cmd *cobra.Command, opts renderOpts) (Config, error) {
	cfg := defaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = loadConfig(opts.configPath); err != nil {
			return Config{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("node-sizes") {
		cfg.Nodes.Sizes = opts.nodeSizes
	}
	if flags.Changed("node-colors") {
		cfg.Nodes.Colors = opts.nodeColors
	}
	if flags.Changed("edges") {
		cfg.Edges.Plot = opts.edges
	}
	if flags.Changed("edge-colors") {
		cfg.Edges.Colors = opts.edgeColors
	}
	if flags.Changed("edge-widths") {
		cfg.Edges.Widths = opts.edgeWidths
	}
	if flags.Changed("highlight") {
		cfg.Highlight = opts.highlight
	}
	if flags.Changed("label-clusters") {
		cfg.LabelClusters = opts.labelClusters
	}
	if flags.Changed("seed") {
		cfg.Seed = opts.seed
	}
	if flags.Changed("layout") {
		cfg.Layout = opts.layoutPath
	}

	return cfg, nil
}

// resolveFormat picks the output format from the flag or, when unset, the
// output file extension.
func resolveFormat(flag, output string) (string, error) {
	format := flag
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(output), ".")
	}
	switch format {
	case "png", "svg", "dot":
		return format, nil
	}
	return "", errors.New(errors.ErrCodeInvalidMode,
		"invalid format %q (allowed: png, svg, dot)", format)
}
