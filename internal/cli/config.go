package cli

import (
	"github.com/BurntSushi/toml"

	"github.com/mfleury/transplot/pkg/encode"
	"github.com/mfleury/transplot/pkg/errors"
	"github.com/mfleury/transplot/pkg/layout"
)

// Config is the TOML options file. Every channel carries its mode as a
// string; parsing into the closed mode enums happens in resolveOptions so
// invalid values fail fast with the allowed set in the message.
//
//	seed = 42
//	layout = "layout.csv"
//	highlight = "MEM-0042"
//	label_clusters = true
//
//	[nodes]
//	sizes = "stays"
//	colors = "cluster"
//
//	[edges]
//	plot = "all"
//	colors = "percent_ari"
//	widths = "transfers"
type Config struct {
	Seed          uint64 `toml:"seed"`
	Layout        string `toml:"layout"`
	Highlight     string `toml:"highlight"`
	LabelClusters bool   `toml:"label_clusters"`

	Nodes struct {
		Sizes  string `toml:"sizes"`
		Colors string `toml:"colors"`
	} `toml:"nodes"`

	Edges struct {
		Plot   string `toml:"plot"`
		Colors string `toml:"colors"`
		Widths string `toml:"widths"`
	} `toml:"edges"`
}

// defaultConfig returns the configuration used when no file or flags are
// given: uniform sizes, cluster colors, all edges, neutral edge color,
// uniform widths, fixed seed.
func defaultConfig() Config {
	var c Config
	c.Seed = layout.DefaultSeed
	c.Nodes.Sizes = "uniform"
	c.Nodes.Colors = "cluster"
	c.Edges.Plot = "all"
	c.Edges.Colors = "denominator"
	c.Edges.Widths = "uniform"
	return c
}

// loadConfig reads a TOML options file over the defaults.
func loadConfig(path string) (Config, error) {
	c := defaultConfig()
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load config %s", path)
	}
	return c, nil
}

// resolveOptions parses the config's mode strings into encoder options.
func resolveOptions(c Config) (encode.Options, error) {
	var opts encode.Options
	var err error

	if opts.NodeSizes, err = encode.ParseNodeSizeMode(c.Nodes.Sizes); err != nil {
		return opts, err
	}
	if opts.NodeColors, err = encode.ParseNodeColorMode(c.Nodes.Colors); err != nil {
		return opts, err
	}
	if opts.EdgeStyles, err = encode.ParseEdgeStyleMode(c.Edges.Plot); err != nil {
		return opts, err
	}
	if opts.EdgeColors, err = encode.ParseEdgeColorMode(c.Edges.Colors); err != nil {
		return opts, err
	}
	if opts.EdgeWidths, err = encode.ParseEdgeWidthMode(c.Edges.Widths); err != nil {
		return opts, err
	}
	opts.Highlight = c.Highlight

	return opts, nil
}
