// Package compare provides the compare command.
package compare

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/mdit/internal/cmd/cmdutil"
	"github.com/open-cli-collective/mdit/internal/view"
	"github.com/open-cli-collective/mdit/pkg/convert"
	"github.com/open-cli-collective/mdit/pkg/markup"
)

// ErrOutputsDiffer is returned with --exit-code when the renderings differ.
var ErrOutputsDiffer = errors.New("mdit output differs from the reference")

type compareOptions struct {
	cmdutil.GlobalOptions
	file     string
	flavor   string
	exitCode bool
}

// NewCmdCompare creates the compare command.
func NewCmdCompare() *cobra.Command {
	opts := &compareOptions{}

	cmd := &cobra.Command{
		Use:   "compare [file|-]",
		Short: "Diff mdit output against a reference renderer",
		Long: `Render a document with mdit and with goldmark, then print a unified
diff of the two HTML outputs.

The reference flavor follows the preset: gfm compares against goldmark
with its GFM extensions, every other preset against plain CommonMark.`,
		Example: `  # Compare with the default preset
  mdit compare notes.md

  # Fail in CI when the outputs drift apart
  mdit compare --preset gfm --exit-code README.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.GlobalOptions = cmdutil.Global(cmd)
			opts.file = cmdutil.InputArg(args)
			return runCompare(opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.flavor, "flavor", "", "Reference flavor: commonmark or gfm (default: from preset)")
	cmd.Flags().BoolVar(&opts.exitCode, "exit-code", false, "Return an error when the outputs differ")

	return cmd
}

func runCompare(opts *compareOptions, in io.Reader, out io.Writer) error {
	src, err := cmdutil.ReadInput(opts.file, in)
	if err != nil {
		return err
	}

	p, cfg, err := opts.Parser()
	if err != nil {
		return err
	}

	flavor := convert.Flavor(opts.flavor)
	if flavor == "" {
		flavor = convert.FlavorCommonMark
		if cfg.PresetOrDefault() == markup.PresetGFM {
			flavor = convert.FlavorGFM
		}
	}

	got, err := p.Render(src, false)
	if err != nil {
		return err
	}
	want, err := convert.ReferenceHTML([]byte(src), flavor)
	if err != nil {
		return err
	}

	diff, err := convert.Diff(got, want, "mdit", "goldmark/"+string(flavor))
	if err != nil {
		return err
	}

	renderer := view.NewRenderer(view.FormatPlain, opts.NoColor)
	renderer.SetWriter(out)
	if diff == "" {
		renderer.Success(fmt.Sprintf("output matches goldmark (%s)", flavor))
		return nil
	}
	renderer.RenderText(diff)
	if opts.exitCode {
		return ErrOutputsDiffer
	}
	return nil
}
