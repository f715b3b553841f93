package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ziplock/pkg/manifest"
	"github.com/matzehuels/ziplock/pkg/tree"
)

// Output formats for the tree command.
const (
	formatJSON = "json"
	formatText = "text"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

var treeFormats = []string{formatJSON, formatText, formatDOT, formatSVG}

type treeOptions struct {
	resolveFlags
	format string
	output string
}

// treeCommand creates the tree command.
func (c *CLI) treeCommand() *cobra.Command {
	opts := treeOptions{format: formatJSON}

	cmd := &cobra.Command{
		Use:   "tree [package.json]",
		Short: "Resolve a manifest and print its dependency tree",
		Long: `Resolve every dependency of a package.json into a nested tree.

Registry ranges are matched against the npm registry, GitHub references are
pinned to a commit, and file: paths are read relative to the manifest.`,
		Example: `  ziplock tree
  ziplock tree ./app/package.json --format text --dev=false
  ziplock tree --format svg -o deps.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTree(cmd, manifestPath(args), &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatJSON, "output format: json, text, dot or svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to a file instead of stdout")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(treeFormats, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runTree(cmd *cobra.Command, path string, opts *treeOptions) error {
	if !slices.Contains(treeFormats, opts.format) {
		return fmt.Errorf("unknown format %q (want one of %v)", opts.format, treeFormats)
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts.apply(cmd, cfg)

	ctx := cmd.Context()
	m, t, err := c.build(ctx, cfg, path, opts.refresh)
	if err != nil {
		return err
	}

	data, err := encodeTree(ctx, t, m, opts.format)
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return err
	}
	printFile(opts.output)
	return nil
}

// encodeTree serializes t in the requested format.
func encodeTree(ctx context.Context, t tree.Tree, m *manifest.Manifest, format string) ([]byte, error) {
	switch format {
	case formatJSON:
		var buf bytes.Buffer
		if err := writeJSON(&buf, t); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case formatText:
		var buf bytes.Buffer
		if err := t.WriteText(&buf, rootLabel(m)); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case formatDOT:
		return []byte(t.ToDOT(rootLabel(m))), nil
	case formatSVG:
		return tree.RenderSVG(ctx, t.ToDOT(rootLabel(m)))
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func rootLabel(m *manifest.Manifest) string {
	switch {
	case m.Name != "" && m.Version != "":
		return m.Name + "@" + m.Version
	case m.Name != "":
		return m.Name
	default:
		return "."
	}
}
