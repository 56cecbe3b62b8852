// Package tree provides the tree command.
package tree

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/mdit/internal/cmd/cmdutil"
	"github.com/open-cli-collective/mdit/internal/view"
	"github.com/open-cli-collective/mdit/pkg/convert"
)

type treeOptions struct {
	cmdutil.GlobalOptions
	file string
}

// NewCmdTree creates the tree command.
func NewCmdTree() *cobra.Command {
	opts := &treeOptions{}

	cmd := &cobra.Command{
		Use:   "tree [file|-]",
		Short: "Print the syntax tree of a document",
		Long: `Parse a markdown document and print its syntax tree.

Each node shows its type, the source span it was parsed from and, for
leaves, its text. Use --output json for the full tree with attributes.`,
		Example: `  # Indented listing
  mdit tree README.md

  # Machine-readable tree
  echo '*hi*' | mdit tree -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.GlobalOptions = cmdutil.Global(cmd)
			opts.file = cmdutil.InputArg(args)
			return runTree(opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	return cmd
}

func runTree(opts *treeOptions, in io.Reader, out io.Writer) error {
	src, err := cmdutil.ReadInput(opts.file, in)
	if err != nil {
		return err
	}

	p, cfg, err := opts.Parser()
	if err != nil {
		return err
	}
	renderer, err := opts.Renderer(cfg, out)
	if err != nil {
		return err
	}

	root, err := p.Tree(src)
	if err != nil {
		return err
	}

	if renderer.Format() == view.FormatJSON {
		if err := renderer.RenderJSON(convert.Tree(root)); err != nil {
			return fmt.Errorf("failed to encode tree: %w", err)
		}
		return nil
	}

	rows := convert.Flatten(root)
	lines := make([]view.TreeLine, len(rows))
	for i, row := range rows {
		lines[i] = view.TreeLine{Depth: row.Depth, Type: row.Type, Span: row.Span, Text: row.Text}
	}
	renderer.RenderTree(lines)
	return nil
}
