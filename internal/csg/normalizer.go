package csg

// Normalize rewrites term into sum-of-products form: a right-leaning
// Union of products, each product a left-leaning chain of
// Intersection/Difference over Primitive leaves (spec.md §4.5).
//
// Open question resolution (spec.md §9 open question 1): the table in
// §4.5 lists `x − (y ∩ z) → (x−y) ∪ (x−z)` as a conditional rewrite,
// but the design notes say the original source never applies it and
// call preserving that limitation "conservative". This implementation
// follows the design notes: the rule is recognized but disabled,
// leaving `x − (y ∩ z)` as-is. Revisit together with open question 1
// if deep intersection-in-difference scripts need it.
func Normalize(term *Term) *Term {
	if term == nil {
		return nil
	}
	return normalizeRec(term)
}

func normalizeRec(t *Term) *Term {
	if t == nil || t.IsPrimitive {
		return t.Link()
	}

	left := normalizeRec(t.Left)
	right := normalizeRec(t.Right)

	cur := rebuild(t.Kind, left, right)
	if cur == nil {
		return nil
	}

	next, changed := rewriteTop(cur)
	if !changed {
		return cur
	}
	// A rewrite can introduce new compound children (e.g. the (x−z)
	// and (y−z) products of (x ∪ y) − z), which rewriteTop's own
	// single top-level check never sees. Recurse on the rewritten
	// root so its children are normalized to a fixed point before the
	// top is re-attempted, per spec.md §4.5's algorithm.
	cur.Unlink()
	result := normalizeRec(next)
	next.Unlink()
	return result
}

// rebuild constructs a BinaryOp over already-owned left/right
// references, consuming both (ownership transfers in; the result
// owns exactly one reference on whatever it returns).
//
// An operand of nil is treated as the empty term (spec.md §8
// invariants #8, #9): Union/Difference with a nil right operand
// collapses to the left operand unchanged; Intersection with either
// operand nil, or Difference with a nil left operand, collapses to
// nil, the other operand's ownership released.
func rebuild(kind Op, left, right *Term) *Term {
	if left == nil && right == nil {
		return nil
	}
	if right == nil {
		switch kind {
		case Union, Difference:
			return left
		case Intersection:
			left.Unlink()
			return nil
		}
	}
	if left == nil {
		switch kind {
		case Union:
			return right
		case Intersection, Difference:
			right.Unlink()
			return nil
		}
	}

	t := NewBinary(kind, left, right)
	left.Unlink()
	right.Unlink()
	return t
}

// rewriteTop applies at most one top-level rewrite rule and reports
// whether the root changed identity. When changed is false, result is
// cur itself (no new reference taken). When true, result is a freshly
// built term owning its own references; the caller is responsible for
// unlinking its prior cur.
func rewriteTop(cur *Term) (result *Term, changed bool) {
	if cur.IsPrimitive {
		return cur, false
	}

	switch cur.Kind {
	case Difference:
		// x − (y ∪ z)  →  (x − y) − z
		if cur.Right.Kind == Union && !cur.Right.IsPrimitive {
			x, y, z := cur.Left, cur.Right.Left, cur.Right.Right
			xy := rebuild(Difference, x.Link(), y.Link())
			return rebuild(Difference, xy, z.Link()), true
		}
		// (x ∪ y) − z  →  (x − z) ∪ (y − z)
		if cur.Left.Kind == Union && !cur.Left.IsPrimitive {
			x, y, z := cur.Left.Left, cur.Left.Right, cur.Right
			xz := rebuild(Difference, x.Link(), z.Link())
			yz := rebuild(Difference, y.Link(), z.Link())
			return rebuild(Union, xz, yz), true
		}

	case Intersection:
		// x ∩ (y ∪ z)  →  (x ∩ y) ∪ (x ∩ z)
		if cur.Right.Kind == Union && !cur.Right.IsPrimitive {
			x, y, z := cur.Left, cur.Right.Left, cur.Right.Right
			xy := rebuild(Intersection, x.Link(), y.Link())
			xz := rebuild(Intersection, x.Link(), z.Link())
			return rebuild(Union, xy, xz), true
		}
		// (x ∪ y) ∩ z  →  (x ∩ z) ∪ (y ∩ z)
		if cur.Left.Kind == Union && !cur.Left.IsPrimitive {
			x, y, z := cur.Left.Left, cur.Left.Right, cur.Right
			xz := rebuild(Intersection, x.Link(), z.Link())
			yz := rebuild(Intersection, y.Link(), z.Link())
			return rebuild(Union, xz, yz), true
		}

	case Union:
		// Right-associativity: left-leaning Union under Union
		// flattens to right-leaning: (x ∪ y) ∪ z → x ∪ (y ∪ z).
		if cur.Left.Kind == Union && !cur.Left.IsPrimitive {
			x, y, z := cur.Left.Left, cur.Left.Right, cur.Right
			yz := rebuild(Union, y.Link(), z.Link())
			return rebuild(Union, x.Link(), yz), true
		}
	}

	return cur, false
}

// Measure computes the lexicographic termination measure from
// spec.md §4.5: (unions under a non-union, intersections under a
// difference's right operand, differences over a union). Exposed for
// the termination property test.
type Measure struct {
	UnionUnderNonUnion           int
	IntersectionUnderDifference  int
	DifferenceOverUnion          int
}

func (m Measure) Zero() bool {
	return m.UnionUnderNonUnion == 0 && m.IntersectionUnderDifference == 0 && m.DifferenceOverUnion == 0
}

func ComputeMeasure(t *Term) Measure {
	var m Measure
	walkMeasure(t, &m)
	return m
}

func walkMeasure(t *Term, m *Measure) {
	if t == nil || t.IsPrimitive {
		return
	}
	if t.Kind != Union {
		if t.Left != nil && t.Left.Kind == Union && !t.Left.IsPrimitive {
			m.UnionUnderNonUnion++
		}
		if t.Right != nil && t.Right.Kind == Union && !t.Right.IsPrimitive {
			m.UnionUnderNonUnion++
		}
	}
	if t.Kind == Difference && t.Right != nil && t.Right.Kind == Intersection && !t.Right.IsPrimitive {
		m.IntersectionUnderDifference++
	}
	if t.Kind == Difference && t.Left != nil && t.Left.Kind == Union && !t.Left.IsPrimitive {
		m.DifferenceOverUnion++
	}
	walkMeasure(t.Left, m)
	walkMeasure(t.Right, m)
}
