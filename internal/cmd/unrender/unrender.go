// Package unrender provides the unrender command.
package unrender

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/mdit/internal/cmd/cmdutil"
	"github.com/open-cli-collective/mdit/internal/view"
	"github.com/open-cli-collective/mdit/pkg/convert"
)

type unrenderOptions struct {
	cmdutil.GlobalOptions
	file      string
	domain    string
	roundTrip bool
}

// NewCmdUnrender creates the unrender command.
func NewCmdUnrender() *cobra.Command {
	opts := &unrenderOptions{}

	cmd := &cobra.Command{
		Use:   "unrender [file|-]",
		Short: "Convert HTML back to markdown",
		Long: `Convert an HTML document into markdown.

With --round-trip the markdown is rendered again with mdit and a diff
against the input HTML is printed after it.`,
		Example: `  # Convert a saved page
  mdit unrender page.html

  # Resolve relative links and check the round trip
  curl -s https://example.com | mdit unrender --domain https://example.com --round-trip`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.GlobalOptions = cmdutil.Global(cmd)
			opts.file = cmdutil.InputArg(args)
			return runUnrender(opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.domain, "domain", "", "Base URL for relative links and images")
	cmd.Flags().BoolVar(&opts.roundTrip, "round-trip", false, "Render the result again and diff it against the input")

	return cmd
}

func runUnrender(opts *unrenderOptions, in io.Reader, out io.Writer) error {
	src, err := cmdutil.ReadInput(opts.file, in)
	if err != nil {
		return err
	}

	markdown, err := convert.FromHTMLWithOptions(src, convert.HTMLOptions{Domain: opts.domain})
	if err != nil {
		return fmt.Errorf("failed to convert HTML: %w", err)
	}

	renderer := view.NewRenderer(view.FormatPlain, opts.NoColor)
	renderer.SetWriter(out)
	renderer.RenderText(markdown)

	if !opts.roundTrip {
		return nil
	}

	p, _, err := opts.Parser()
	if err != nil {
		return err
	}
	html, err := p.Render(markdown, false)
	if err != nil {
		return err
	}
	diff, err := convert.Diff(html, src, "mdit", "input")
	if err != nil {
		return err
	}
	renderer.RenderText("")
	if diff == "" {
		renderer.Success("round trip is lossless")
		return nil
	}
	renderer.Warning("round trip changed the HTML")
	renderer.RenderText(diff)
	return nil
}
