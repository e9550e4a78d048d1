// Package databind is a declarative tree-binding engine: templates are
// plain HTML annotated with microdata attributes, records are canonical
// maps, and rendering fills binding points, expands arrays, descends into
// nested objects, gates nodes on declarative constraints, and cross-links
// records through #id references.
//
//	eng := databind.New()
//	_ = eng.RegisterTemplate("person", `<template>
//	  <div itemscope><span itemprop="name"></span></div>
//	</template>`)
//	result, _ := eng.Render("person", map[string]any{"name": "Jane"})
//	out, _ := result.HTML()
package databind

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/goliatone/go-databind/pkg/dom"
	"github.com/goliatone/go-databind/pkg/record"
	"github.com/goliatone/go-databind/pkg/render"
	"github.com/goliatone/go-databind/pkg/structure"
)

// Option customises the engine configuration.
type Option func(*Engine)

// WithSanitizer routes bound content values through a sanitizer, typically
// a *bluemonday.Policy.
func WithSanitizer(s render.Sanitizer) Option {
	return func(e *Engine) {
		e.sanitizer = s
	}
}

// WithMaxDepth overrides the render recursion guard.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// WithBase sets the base location of the documents the engine renders
// into; it is used for identifier references when records did not come
// from an external source.
func WithBase(base string) Option {
	return func(e *Engine) {
		e.base = base
	}
}

// WithValueAssigner registers an additional element kind in the leaf-value
// assignment table.
func WithValueAssigner(tag string, fn render.AssignFunc) Option {
	return func(e *Engine) {
		if err := e.assigners.Register(tag, fn); err != nil {
			e.initErr = err
		}
	}
}

// Engine owns registered templates and their cached structural analyses.
// Registration is write-locked; rendering takes fresh per-call state, so an
// Engine is safe for concurrent renders.
type Engine struct {
	mu        sync.RWMutex
	templates map[string]*templateEntry
	assigners *render.Assigners
	sanitizer render.Sanitizer
	maxDepth  int
	base      string
	initErr   error
}

// templateEntry keeps the raw candidate roots and memoises their one-time
// structural analysis. After the once fires the analysis is read-only.
type templateEntry struct {
	roots    []*html.Node
	base     string
	once     sync.Once
	analyzed []*structure.Node
}

// New constructs an Engine applying any provided options.
func New(options ...Option) *Engine {
	e := &Engine{
		templates: make(map[string]*templateEntry),
		assigners: render.NewAssigners(),
		maxDepth:  render.DefaultMaxDepth,
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// RegisterTemplate parses template markup and registers its candidate
// roots under a name. The markup must contain a <template> container with
// at least one element child; anything else is a configuration error.
func (e *Engine) RegisterTemplate(name, src string) error {
	if e.initErr != nil {
		return e.initErr
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("databind: template name is required")
	}

	nodes, err := dom.ParseFragment(src)
	if err != nil {
		return fmt.Errorf("databind: template %q: %w", name, err)
	}
	var container *html.Node
	for _, node := range nodes {
		if found := dom.FirstByTag(node, "template"); found != nil {
			container = found
			break
		}
	}
	if container == nil {
		return fmt.Errorf("databind: template %q: source is not a valid template container", name)
	}
	return e.RegisterTemplateNode(name, container, "")
}

// RegisterTemplateNode registers the element children of a container node
// as candidate roots, in document order. base is the location of the
// document the container came from; when set it takes the place of the
// engine-wide base for identifier stamping.
func (e *Engine) RegisterTemplateNode(name string, container *html.Node, base string) error {
	if container == nil {
		return fmt.Errorf("databind: template %q: container is required", name)
	}
	roots := dom.Elements(container)
	if len(roots) == 0 {
		return fmt.Errorf("databind: template %q: container has no element roots", name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.templates[name]; exists {
		return fmt.Errorf("databind: template %q already registered", name)
	}
	e.templates[name] = &templateEntry{roots: roots, base: base}
	return nil
}

// RenderResult is the outcome of one render call: the output nodes in
// input order (skipped records elided), whether the input was a batch, and
// every soft diagnostic emitted along the way.
type RenderResult struct {
	Nodes       []*html.Node
	Batch       bool
	Diagnostics []render.Diagnostic
}

// Node returns the first output node, or nil when every record was
// skipped.
func (r *RenderResult) Node() *html.Node {
	if r == nil || len(r.Nodes) == 0 {
		return nil
	}
	return r.Nodes[0]
}

// HTML serialises the output nodes, newline-separated.
func (r *RenderResult) HTML() (string, error) {
	if r == nil {
		return "", nil
	}
	parts := make([]string, 0, len(r.Nodes))
	for _, node := range r.Nodes {
		rendered, err := dom.Render(node)
		if err != nil {
			return "", err
		}
		parts = append(parts, rendered)
	}
	return strings.Join(parts, "\n"), nil
}

// Render normalises the input, selects a structural root per record, and
// renders each against the named template. Per-record conditions (no
// matching root, shape mismatches, failed constraints) never abort the
// call; they surface as diagnostics on the result.
func (e *Engine) Render(name string, input any) (*RenderResult, error) {
	entry, err := e.lookup(name)
	if err != nil {
		return nil, err
	}
	entry.once.Do(func() {
		entry.analyzed = structure.AnalyzeAll(entry.roots)
	})

	sourceBase := ""
	if doc, ok := input.(*dom.Document); ok {
		sourceBase = doc.Base
	}
	targetBase := entry.base
	if targetBase == "" {
		targetBase = e.base
	}
	records, batch := record.Normalize(input)

	collector := &render.Collector{}
	renderer := render.New(
		render.WithAssigners(e.assigners),
		render.WithSanitizer(e.sanitizer),
		render.WithMaxDepth(e.maxDepth),
		render.WithSink(collector),
	)
	ctx := render.Context{
		All:        records,
		SourceBase: sourceBase,
		TargetBase: targetBase,
	}

	nodes := renderer.RenderBatch(entry.analyzed, records, ctx)
	return &RenderResult{
		Nodes:       nodes,
		Batch:       batch,
		Diagnostics: collector.Diagnostics(),
	}, nil
}

// RenderHTML is a convenience wrapper returning serialised markup.
func (e *Engine) RenderHTML(name string, input any) (string, error) {
	result, err := e.Render(name, input)
	if err != nil {
		return "", err
	}
	return result.HTML()
}

func (e *Engine) lookup(name string) (*templateEntry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.templates[name]
	if !ok {
		return nil, fmt.Errorf("databind: template %q not registered", name)
	}
	return entry, nil
}
