// Package markup is the entry point for callers that want HTML out of
// markup text. It wires presets and plugins onto an mdit parser, runs the
// preprocessing hook, and turns aborted parses into errors.
package markup

import (
	"errors"
	"fmt"
	"slices"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/open-cli-collective/mdit/pkg/mdit"
	"github.com/open-cli-collective/mdit/pkg/mdit/plugins/cmark"
	"github.com/open-cli-collective/mdit/pkg/mdit/plugins/extra"
	"github.com/open-cli-collective/mdit/pkg/mdit/plugins/footnote"
	"github.com/open-cli-collective/mdit/pkg/mdit/plugins/highlight"
	"github.com/open-cli-collective/mdit/pkg/preprocess"
)

var (
	// ErrUnknownPlugin is returned when enabling a name no plugin answers to.
	ErrUnknownPlugin = errors.New("unknown plugin")
	// ErrUnknownPreset is returned by New for an unknown preset name.
	ErrUnknownPreset = errors.New("unknown preset")
)

// Parser is a configured markup parser. Enable plugins before the first
// Parse; after that, Parse, Tree and Render may be called concurrently.
type Parser struct {
	md        *mdit.MarkdownIt
	preset    string
	enabled   []string
	logger    zerolog.Logger
	policy    *bluemonday.Policy
	citations extra.CitationConfig
	highlight highlight.Config
	anchors   extra.AnchorConfig
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger for the parser and its engine.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// WithSanitize filters rendered HTML through a user-content policy.
func WithSanitize(enabled bool) Option {
	return func(p *Parser) {
		if !enabled {
			p.policy = nil
			return
		}
		p.policy = SanitizePolicy()
	}
}

// WithCitations sets the citations the "citation" plugin resolves.
func WithCitations(cfg extra.CitationConfig) Option {
	return func(p *Parser) {
		p.citations = cfg
	}
}

// WithHighlight configures the "highlight" plugin.
func WithHighlight(cfg highlight.Config) Option {
	return func(p *Parser) {
		p.highlight = cfg
	}
}

// WithAnchors configures the "heading_anchors" plugin.
func WithAnchors(cfg extra.AnchorConfig) Option {
	return func(p *Parser) {
		p.anchors = cfg
	}
}

// WithLangPrefix changes the class prefix of fenced code languages.
func WithLangPrefix(prefix string) Option {
	return func(p *Parser) {
		cmark.SetLangPrefix(p.md, prefix)
	}
}

// WithMaxNesting bounds how deeply blocks and inline constructs nest.
func WithMaxNesting(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.md.MaxNesting = n
		}
	}
}

// SanitizePolicy is the policy WithSanitize applies: user-generated content
// plus class names, so footnote and highlight markup survives.
func SanitizePolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowStyling()
	policy.AllowAttrs("data-sourcepos").Globally()
	return policy
}

// New returns a parser with the plugins of preset enabled.
func New(preset string, opts ...Option) (*Parser, error) {
	names, ok := presets[preset]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, preset)
	}
	p := &Parser{
		md:        mdit.New(),
		preset:    preset,
		logger:    zerolog.Nop(),
		highlight: highlight.DefaultConfig(),
		anchors:   extra.AnchorConfig{MinLevel: 1, MaxLevel: 6},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.md.Logger = p.logger
	if err := p.EnableMany(names...); err != nil {
		return nil, err
	}
	return p, nil
}

// Preset returns the preset the parser was created from.
func (p *Parser) Preset() string {
	return p.preset
}

// Engine exposes the underlying parser for registering custom rules.
func (p *Parser) Engine() *mdit.MarkdownIt {
	return p.md
}

// Enable turns on the plugin called name. Enabling a plugin twice has no
// further effect.
func (p *Parser) Enable(name string) error {
	install, ok := lookupPlugin(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPlugin, name)
	}
	if slices.Contains(p.enabled, name) {
		return nil
	}
	install(p)
	p.enabled = append(p.enabled, name)
	p.logger.Debug().Str("plugin", name).Msg("plugin enabled")
	return nil
}

// EnableMany enables each name in turn, stopping at the first unknown one.
func (p *Parser) EnableMany(names ...string) error {
	for _, name := range names {
		if err := p.Enable(name); err != nil {
			return err
		}
	}
	return nil
}

// Enabled lists enabled plugin names in the order they were enabled.
func (p *Parser) Enabled() []string {
	return slices.Clone(p.enabled)
}

// Result is a parsed document.
type Result struct {
	Root *mdit.Node
	// Warnings are non-fatal problems found in the document.
	Warnings []string
}

func (r *Result) addWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Parse preprocesses and parses src.
func (p *Parser) Parse(src string) (*Result, error) {
	src = preprocess.Run(src, p.enabled)

	var root *mdit.Node
	if err := mdit.Guard(func() { root = p.md.Parse(src) }); err != nil {
		p.logger.Error().Err(err).Msg("parse aborted")
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	res := &Result{Root: root}
	collectWarnings(res)
	for _, w := range res.Warnings {
		p.logger.Warn().Msg(w)
	}
	return res, nil
}

func collectWarnings(res *Result) {
	if fm, ok := footnoteMap(res.Root); ok {
		for _, label := range fm.Duplicates() {
			res.addWarning("duplicate footnote definition [^%s] ignored", label)
		}
		for _, label := range fm.Unreferenced() {
			res.addWarning("footnote [^%s] is never referenced and was dropped", label)
		}
	}
	res.Root.Walk(func(node *mdit.Node, _ int) {
		if fm, ok := mdit.Cast[*extra.FrontMatter](node); ok && fm.Err != nil {
			res.addWarning("invalid front matter: %v", fm.Err)
		}
	})
}

func footnoteMap(root *mdit.Node) (*footnote.FootnoteMap, bool) {
	ext := mdit.RootExt(root)
	if ext == nil {
		return nil, false
	}
	return mdit.Get[footnote.FootnoteMap](ext)
}

// Tree parses src and returns the syntax tree.
func (p *Parser) Tree(src string) (*mdit.Node, error) {
	res, err := p.Parse(src)
	if err != nil {
		return nil, err
	}
	return res.Root, nil
}

// Render converts src to HTML. With xhtml set, void elements self-close.
func (p *Parser) Render(src string, xhtml bool) (string, error) {
	res, err := p.Parse(src)
	if err != nil {
		return "", err
	}
	return p.RenderTree(res.Root, xhtml)
}

// RenderTree converts an already parsed tree to HTML.
func (p *Parser) RenderTree(root *mdit.Node, xhtml bool) (string, error) {
	var html string
	err := mdit.Guard(func() {
		if xhtml {
			html = root.XRender()
		} else {
			html = root.Render()
		}
	})
	if err != nil {
		p.logger.Error().Err(err).Msg("render aborted")
		return "", fmt.Errorf("failed to render document: %w", err)
	}
	if p.policy != nil {
		html = p.policy.Sanitize(html)
	}
	return html, nil
}
