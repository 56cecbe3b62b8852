// Package render provides the render command.
package render

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/mdit/internal/cmd/cmdutil"
	"github.com/open-cli-collective/mdit/internal/view"
	"github.com/open-cli-collective/mdit/pkg/markup"
	"github.com/open-cli-collective/mdit/pkg/mdit"
)

type renderOptions struct {
	cmdutil.GlobalOptions
	file     string
	xhtml    bool
	sanitize bool
	stats    bool
}

// NewCmdRender creates the render command.
func NewCmdRender() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render markdown to HTML",
		Long: `Parse a markdown document and write the rendered HTML to stdout.

The document is read from the named file, or from stdin when the file is
omitted or "-". Parse warnings such as unreferenced footnotes are printed
to stderr.`,
		Example: `  # Render a file with the default preset
  mdit render README.md

  # Render stdin as XHTML with footnotes enabled
  cat notes.md | mdit render --xhtml --plugin footnote

  # Sanitize raw HTML and show size statistics
  mdit render --preset gfm --sanitize --stats page.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.GlobalOptions = cmdutil.Global(cmd)
			opts.file = cmdutil.InputArg(args)
			return runRender(opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVar(&opts.xhtml, "xhtml", false, "Self-close void elements (<br />)")
	cmd.Flags().BoolVar(&opts.sanitize, "sanitize", false, "Strip unsafe HTML from the output")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "Print input and output sizes to stderr")

	return cmd
}

func runRender(opts *renderOptions, in io.Reader, out, errOut io.Writer) error {
	src, err := cmdutil.ReadInput(opts.file, in)
	if err != nil {
		return err
	}

	var extra []markup.Option
	if opts.sanitize {
		extra = append(extra, markup.WithSanitize(true))
	}
	p, cfg, err := opts.Parser(extra...)
	if err != nil {
		return err
	}

	res, err := p.Parse(src)
	if err != nil {
		return err
	}
	html, err := p.RenderTree(res.Root, opts.xhtml || cfg.XHTML)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(out, html); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	msgs := view.NewRenderer(view.FormatPlain, opts.NoColor)
	msgs.SetWriter(errOut)
	for _, w := range res.Warnings {
		msgs.Warning(w)
	}
	if opts.stats {
		nodes := 0
		res.Root.Walk(func(*mdit.Node, int) { nodes++ })
		msgs.RenderText(fmt.Sprintf("%s in, %s out, %s nodes",
			humanize.Bytes(uint64(len(src))), humanize.Bytes(uint64(len(html))), humanize.Comma(int64(nodes))))
	}
	return nil
}
