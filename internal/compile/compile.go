// Package compile orchestrates one end-to-end compilation: parse (via
// the caller-supplied Parser) → evaluate module instantiations into
// an AbstractNode tree → render_csg_term → normalize → linearize into
// chains → optionally render_polyhedron against an exact backend.
// This is the `compile.Compile` entry point SPEC_FULL.md §1 describes;
// everything it touches (Parser, geom.Backend, PrimitiveFactory) is an
// external collaborator the core only consumes (spec.md §1, §6).
package compile

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"cadlang/internal/csg"
	"cadlang/internal/diag"
	"cadlang/internal/evalctx"
	"cadlang/internal/geom"
	"cadlang/internal/node"
	"cadlang/internal/value"
)

// Config holds the root context's configuration variables (spec.md §6
// defaults), overridable via functional Options.
type Config struct {
	FN, FS, FA, T float64
}

// Option configures a Compiler built by New.
type Option func(*Compiler)

func WithFn(n float64) Option { return func(c *Compiler) { c.cfg.FN = n } }
func WithFs(n float64) Option { return func(c *Compiler) { c.cfg.FS = n } }
func WithFa(n float64) Option { return func(c *Compiler) { c.cfg.FA = n } }
func WithT(t float64) Option  { return func(c *Compiler) { c.cfg.T = t } }

func WithParser(p Parser) Option               { return func(c *Compiler) { c.parser = p } }
func WithBackend(b geom.Backend) Option        { return func(c *Compiler) { c.backend = b } }
func WithPrimitives(f PrimitiveFactory) Option  { return func(c *Compiler) { c.primitives = f } }
func WithCache(cache *geom.Cache) Option        { return func(c *Compiler) { c.cache = cache } }
func WithSink(s diag.Sink) Option               { return func(c *Compiler) { c.sink = s } }
func WithLogger(l *slog.Logger) Option          { return func(c *Compiler) { c.logger = l } }
func WithProgress(cb node.ProgressCallback) Option {
	return func(c *Compiler) { c.progress = cb }
}

// Compiler holds the configuration and external collaborators shared
// across repeated Compile calls (spec.md §5: two compilations must
// not share Contexts, but may share a Cache/Backend/logger).
type Compiler struct {
	cfg Config

	parser     Parser
	backend    geom.Backend
	primitives PrimitiveFactory
	cache      *geom.Cache
	sink       diag.Sink
	logger     *slog.Logger
	progress   node.ProgressCallback
}

// New builds a Compiler with spec.md §6's default configuration
// variables, a fresh cost-weighted cache, and a collecting diagnostic
// sink, all overridable via opts.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		cfg:    Config{FN: 0, FS: 1.0, FA: 12.0, T: 0.0},
		cache:  geom.NewCache(geom.DefaultCacheCapacity),
		sink:   diag.NewCollectingSink(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompilationResult is everything one Compile call produces: the
// evaluated node tree, the raw and normalized CSGTerm DAGs, the
// linearized rendering chains (main/highlight/background), the exact
// polyhedral mesh if a backend was configured, and the diagnostics
// accumulated along the way.
//
// RawTerm and NormalizedTerm are owned by the caller: Unlink each
// exactly once when done with it (spec.md §8 invariant #2's
// refcount discipline applies across this package boundary too).
type CompilationResult struct {
	CompilationID uuid.UUID

	RootNode        *node.AbstractNode
	RawTerm         *csg.Term
	NormalizedTerm  *csg.Term
	Chain           *csg.Chain
	HighlightChain  *csg.Chain
	BackgroundChain *csg.Chain
	Mesh            geom.Polyhedron

	Diagnostics []diag.Diagnostic

	// RawDump/NormalizedDump/ChainDump are the Go-idiomatic equivalent
	// of original_source/mainwin.cc's "CSG Products Dump" dialog
	// (SPEC_FULL.md §3 supplement #1): the pre-normalization term, the
	// post-normalization term, and the linearized chain, each as text.
	RawDump        string
	NormalizedDump string
	ChainDump      string
}

// Compile runs one full pipeline pass over source (spec.md §1's
// overview, §4.3's module evaluation, §4.4's term construction, §4.5's
// normalization, §4.6's linearization, and, if a backend is
// configured, §4.7's cached exact rendering).
func (c *Compiler) Compile(ctx context.Context, source string) (*CompilationResult, error) {
	if c.parser == nil {
		return nil, errors.New("compile: no Parser configured (internal/compile.WithParser)")
	}

	id := uuid.New()
	log := c.logger.With("compilation_id", id)

	log.Debug("parse")
	roots, err := c.parser.Parse(source)
	if err != nil {
		return nil, errors.Wrap(err, "parse")
	}

	collector := diag.NewCollectingSink()
	sink := diag.Sink(collector)
	if c.sink != nil {
		sink = diag.TeeSink{Sinks: []diag.Sink{collector, c.sink}}
	}

	stack := evalctx.NewStack()
	root := evalctx.NewRoot(stack, sink)
	defer root.Release()
	root.Set("$fn", value.NewNumber(c.cfg.FN))
	root.Set("$fs", value.NewNumber(c.cfg.FS))
	root.Set("$fa", value.NewNumber(c.cfg.FA))
	root.Set("$t", value.NewNumber(c.cfg.T))
	registerBuiltins(root, c.primitives)

	log.Debug("evaluate", "root_instantiations", len(roots))
	rootNode := node.NewGroupNode(nil)
	for _, inst := range roots {
		if n := node.EvaluateInstanciation(root, inst); n != nil {
			rootNode.Children = append(rootNode.Children, n)
		}
	}
	total := node.ProgressPrepare(rootNode)

	log.Debug("render_csg_term", "node_count", total)
	var highlights, backgrounds []*csg.Term
	rawTerm := node.RenderCSGTerm(rootNode, geom.Identity(), &highlights, &backgrounds)

	log.Debug("normalize")
	normTerm := csg.Normalize(rawTerm)

	mainChain := &csg.Chain{}
	mainChain.Import(normTerm, csg.Union)
	if mainChain.Length() > csg.SafeChainLength {
		log.Warn("chain exceeds safe render length", "length", mainChain.Length())
	}

	highlightChain := linearizeAll(highlights)
	backgroundChain := linearizeAll(backgrounds)
	for _, t := range highlights {
		t.Unlink()
	}
	for _, t := range backgrounds {
		t.Unlink()
	}

	result := &CompilationResult{
		CompilationID:   id,
		RootNode:        rootNode,
		RawTerm:         rawTerm,
		NormalizedTerm:  normTerm,
		Chain:           mainChain,
		HighlightChain:  highlightChain,
		BackgroundChain: backgroundChain,
		Diagnostics:     collector.Items(),
		RawDump:         rawTerm.Dump(),
		NormalizedDump:  normTerm.Dump(),
		ChainDump:       mainChain.Dump(),
	}

	if c.backend != nil {
		log.Debug("render_polyhedron")
		mesh, err := node.RenderPolyhedron(ctx, rootNode, c.backend, c.cache, total, c.progress)
		if err != nil {
			diag.Errorf(sink, diag.KindBackend, err, "render_polyhedron failed")
			result.Diagnostics = collector.Items()
			return result, errors.Wrap(err, "render_polyhedron")
		}
		result.Mesh = mesh
	}

	return result, nil
}

// linearizeAll normalizes and imports each term independently into
// one combined Chain, used for the highlight/background side-channels
// which are a set of unrelated subtrees rather than a single DAG
// (spec.md §4.4's %/# tagging collects sibling terms, not one tree).
func linearizeAll(terms []*csg.Term) *csg.Chain {
	chain := &csg.Chain{}
	for _, t := range terms {
		norm := csg.Normalize(t)
		chain.Import(norm, csg.Union)
		norm.Unlink()
	}
	return chain
}
