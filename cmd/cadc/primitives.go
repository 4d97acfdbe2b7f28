package main

import (
	"context"
	"math"

	"cadlang/internal/geom"
)

// fragments mirrors original_source/openscad.h's declared
// get_fragments_from_r(r, fn, fs, fa): $fn, if 3 or more, wins
// outright; otherwise the smaller (coarser) of the $fs arc-length
// count and the $fa angular count is used, with a floor of 5 so
// degenerate radii still produce
// a renderable polygon.
func fragments(r, fn, fs, fa float64) int {
	if fn >= 3 {
		return int(fn)
	}
	if r <= 0 {
		return 5
	}
	fsFrag := math.Ceil(r * 2 * math.Pi / fs)
	faFrag := math.Ceil(360.0 / fa)
	f := math.Min(fsFrag, faFrag)
	if f < 5 {
		f = 5
	}
	return int(f)
}

// demoPrimitives is a minimal, honestly-watertight mesh generator for
// cube/sphere/cylinder. The exact-arithmetic primitive tessellator is
// an external collaborator out of scope for the core (spec.md §1,
// §6); this stands in for it so cmd/cadc has something concrete to
// drive the pipeline with, the same role a fake plays in tests.
type demoPrimitives struct{}

func (demoPrimitives) Cube(x, y, z float64, center bool) (geom.Tessellator, error) {
	return cubeTessellator{x: x, y: y, z: z, center: center}, nil
}

func (demoPrimitives) Sphere(r float64) (geom.Tessellator, error) {
	return sphereTessellator{r: r}, nil
}

func (demoPrimitives) Cylinder(h, r1, r2 float64, center bool) (geom.Tessellator, error) {
	return cylinderTessellator{h: h, r1: r1, r2: r2, center: center}, nil
}

type cubeTessellator struct {
	x, y, z float64
	center  bool
}

var cubeFaces = [6][4]int{
	{0, 1, 2, 3}, // bottom  z0
	{4, 5, 6, 7}, // top     z1
	{0, 1, 5, 4}, // y0
	{2, 3, 7, 6}, // y1
	{0, 3, 7, 4}, // x0
	{1, 2, 6, 5}, // x1
}

func (c cubeTessellator) Tessellate(_ context.Context, _ geom.TessellationMode, _, _, _ float64) (*geom.Polyset, error) {
	x0, y0, z0 := 0.0, 0.0, 0.0
	if c.center {
		x0, y0, z0 = -c.x/2, -c.y/2, -c.z/2
	}
	corners := [8][3]float64{
		{x0, y0, z0}, {x0 + c.x, y0, z0}, {x0 + c.x, y0 + c.y, z0}, {x0, y0 + c.y, z0},
		{x0, y0, z0 + c.z}, {x0 + c.x, y0, z0 + c.z}, {x0 + c.x, y0 + c.y, z0 + c.z}, {x0, y0 + c.y, z0 + c.z},
	}
	p := geom.NewPolyset()
	for _, f := range cubeFaces {
		p.AppendPoly()
		for _, idx := range f {
			v := corners[idx]
			p.AppendVertex(v[0], v[1], v[2])
		}
	}
	return p, nil
}

type sphereTessellator struct{ r float64 }

func (s sphereTessellator) Tessellate(_ context.Context, _ geom.TessellationMode, fn, fs, fa float64) (*geom.Polyset, error) {
	n := fragments(s.r, fn, fs, fa)
	slices, stacks := n, n/2
	if stacks < 2 {
		stacks = 2
	}
	p := geom.NewPolyset()
	for i := 0; i < stacks; i++ {
		phi0 := math.Pi * float64(i) / float64(stacks)
		phi1 := math.Pi * float64(i+1) / float64(stacks)
		for j := 0; j < slices; j++ {
			theta0 := 2 * math.Pi * float64(j) / float64(slices)
			theta1 := 2 * math.Pi * float64(j+1) / float64(slices)
			v00 := spherePoint(s.r, phi0, theta0)
			v01 := spherePoint(s.r, phi0, theta1)
			v10 := spherePoint(s.r, phi1, theta0)
			v11 := spherePoint(s.r, phi1, theta1)
			p.AppendPoly()
			p.AppendVertex(v00[0], v00[1], v00[2])
			p.AppendVertex(v10[0], v10[1], v10[2])
			p.AppendVertex(v11[0], v11[1], v11[2])
			p.AppendPoly()
			p.AppendVertex(v00[0], v00[1], v00[2])
			p.AppendVertex(v11[0], v11[1], v11[2])
			p.AppendVertex(v01[0], v01[1], v01[2])
		}
	}
	return p, nil
}

func spherePoint(r, phi, theta float64) [3]float64 {
	return [3]float64{
		r * math.Sin(phi) * math.Cos(theta),
		r * math.Sin(phi) * math.Sin(theta),
		r * math.Cos(phi),
	}
}

type cylinderTessellator struct {
	h, r1, r2 float64
	center    bool
}

func (c cylinderTessellator) Tessellate(_ context.Context, _ geom.TessellationMode, fn, fs, fa float64) (*geom.Polyset, error) {
	maxR := math.Max(c.r1, c.r2)
	n := fragments(maxR, fn, fs, fa)

	z0 := 0.0
	if c.center {
		z0 = -c.h / 2
	}
	z1 := z0 + c.h

	p := geom.NewPolyset()
	for j := 0; j < n; j++ {
		theta0 := 2 * math.Pi * float64(j) / float64(n)
		theta1 := 2 * math.Pi * float64(j+1) / float64(n)
		b0 := [3]float64{c.r1 * math.Cos(theta0), c.r1 * math.Sin(theta0), z0}
		b1 := [3]float64{c.r1 * math.Cos(theta1), c.r1 * math.Sin(theta1), z0}
		t0 := [3]float64{c.r2 * math.Cos(theta0), c.r2 * math.Sin(theta0), z1}
		t1 := [3]float64{c.r2 * math.Cos(theta1), c.r2 * math.Sin(theta1), z1}

		p.AppendPoly()
		p.AppendVertex(b0[0], b0[1], b0[2])
		p.AppendVertex(b1[0], b1[1], b1[2])
		p.AppendVertex(t1[0], t1[1], t1[2])
		p.AppendPoly()
		p.AppendVertex(b0[0], b0[1], b0[2])
		p.AppendVertex(t1[0], t1[1], t1[2])
		p.AppendVertex(t0[0], t0[1], t0[2])

		if c.r1 > 0 {
			p.AppendPoly()
			p.AppendVertex(0, 0, z0)
			p.AppendVertex(b1[0], b1[1], b1[2])
			p.AppendVertex(b0[0], b0[1], b0[2])
		}
		if c.r2 > 0 {
			p.AppendPoly()
			p.AppendVertex(0, 0, z1)
			p.AppendVertex(t0[0], t0[1], t0[2])
			p.AppendVertex(t1[0], t1[1], t1[2])
		}
	}
	return p, nil
}
