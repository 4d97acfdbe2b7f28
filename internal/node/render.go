package node

import (
	"context"

	"golang.org/x/sync/errgroup"

	"cadlang/internal/csg"
	"cadlang/internal/geom"
)

// RenderCSGTerm implements AbstractNode.render_csg_term (spec.md
// §4.4): recurse over children under the accumulated transform, fold
// their terms together (Union by default, or n.FoldOp for CSG
// operator nodes), and route highlighted/backgrounded subtrees to the
// side-channels instead of (or in addition to) the returned term.
//
// highlights and backgrounds accumulate Terms across the whole walk;
// pass the same slices down through every call, as original_source's
// render_csg_term does via reference parameters.
func RenderCSGTerm(n *AbstractNode, transform geom.Mat4, highlights, backgrounds *[]*csg.Term) *csg.Term {
	if n == nil {
		return nil
	}
	accum := transform.Mul(n.LocalTransform)

	var result *csg.Term
	if n.Tessellator != nil {
		if ps, err := n.Tessellator.Tessellate(context.Background(), geom.Preview, n.FN, n.FS, n.FA); err == nil && ps != nil {
			result = csg.NewPrimitive(ps, accum, n.Label)
		}
	} else {
		op := csg.Union
		if n.FoldOp != nil {
			op = *n.FoldOp
		}
		terms := make([]*csg.Term, 0, len(n.Children))
		for _, c := range n.Children {
			terms = append(terms, RenderCSGTerm(c, accum, highlights, backgrounds))
		}
		result = csg.Fold(op, terms...)
	}

	if n.ModInst == nil {
		return result
	}
	switch {
	case n.ModInst.TagHighlight:
		if result != nil {
			*highlights = append(*highlights, result.Link())
		}
		return result
	case n.ModInst.TagBackground:
		if result != nil {
			*backgrounds = append(*backgrounds, result.Link())
		}
		return nil
	}
	return result
}

// RenderPolyhedron implements AbstractNode.render_polyhedron (spec.md
// §4.7): canonicalize this subtree's dump to a cache key, return a
// cached hit if present, else recursively Union children's exact
// polyhedra (skipping backgrounded ones), tessellate this node's own
// primitive contribution if any, cache the result at cost =
// vertex count, and return it.
func RenderPolyhedron(ctx context.Context, n *AbstractNode, backend geom.Backend, cache *geom.Cache, total int, cb ProgressCallback) (geom.Polyhedron, error) {
	if n == nil {
		return nil, nil
	}
	key := geom.CacheID(n.Dump(""))
	if p, ok := cache.Lookup(key); ok {
		if ProgressReport(n, total, cb) {
			return nil, context.Canceled
		}
		return p, nil
	}

	live := make([]*AbstractNode, 0, len(n.Children))
	for _, c := range n.Children {
		if c.ModInst != nil && c.ModInst.TagBackground {
			continue
		}
		live = append(live, c)
	}

	// Sibling subtrees are independent: each renders into its own
	// Polyset/Polyhedron (immutable once built, spec.md §5) and only
	// the cache and progress counters are shared, both of which are
	// already safe for concurrent use. Fan the children out and fold
	// in declared order so the result is identical to the sequential
	// walk.
	results := make([]geom.Polyhedron, len(live))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range live {
		i, c := i, c
		g.Go(func() error {
			p, err := RenderPolyhedron(gctx, c, backend, cache, total, cb)
			if err != nil {
				return err
			}
			results[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var acc geom.Polyhedron
	for _, p := range results {
		acc = unionInto(acc, p, backend)
	}

	if n.Tessellator != nil {
		ps, err := n.Tessellator.Tessellate(ctx, geom.Exact, n.FN, n.FS, n.FA)
		if err == nil && ps != nil {
			prim, err := backend.FromPolyset(ps)
			if err == nil {
				acc = unionInto(acc, prim, backend)
			}
		}
	}

	if ProgressReport(n, total, cb) {
		return nil, context.Canceled
	}
	if acc != nil {
		cache.Insert(key, acc, acc.VertexCount())
	}
	return acc, nil
}

func unionInto(acc, next geom.Polyhedron, backend geom.Backend) geom.Polyhedron {
	if next == nil {
		return acc
	}
	if acc == nil {
		return next
	}
	merged, err := backend.Union(acc, next)
	if err != nil {
		return acc
	}
	return merged
}
