// Package stlexport writes a geom.Polyset (or anything that can
// convert to one) out as ASCII STL, matching
// original_source/mainwin.cc's actionExportSTL facet loop exactly:
// fan-triangulate each face from its first vertex, skip a triangle if
// any two of its vertices format identically to six decimal places,
// and emit a computed-cross-product unit normal per facet.
package stlexport

import (
	"fmt"
	"io"
	"math"

	"cadlang/internal/geom"
)

// Export writes solid to w in ASCII STL format (spec.md §6
// "export_stl"). The total passed to progress is the number of
// polygons, for progress reporting purposes only (the original drives
// a QProgressDialog off a facet count); progress, if non-nil, is
// called after each source polygon is processed, mirroring the
// original's per-facet
// pd->setValue.
func Export(w io.Writer, solid *geom.Polyset, progress func(done, total int)) error {
	if _, err := io.WriteString(w, "solid\n"); err != nil {
		return err
	}
	total := len(solid.Polygons)
	for i, poly := range solid.Polygons {
		if err := writeFan(w, poly); err != nil {
			return err
		}
		if progress != nil {
			progress(i+1, total)
		}
	}
	_, err := io.WriteString(w, "endsolid\n")
	return err
}

// writeFan triangulates poly as a fan from its first vertex
// (poly[0], poly[i], poly[i+1]) and writes one facet per non-
// degenerate triangle.
func writeFan(w io.Writer, poly geom.Polygon) error {
	if len(poly) < 3 {
		return nil
	}
	v1 := poly[0]
	v3 := poly[1]
	for i := 2; i < len(poly); i++ {
		v2 := v3
		v3 = poly[i]
		if err := writeTriangle(w, v1, v2, v3); err != nil {
			return err
		}
	}
	return nil
}

// writeTriangle emits one STL facet, skipping it if any pair of
// vertices is coincident after formatting to %f (original's exact
// degenerate-facet test: string equality of six-decimal formatted
// coordinates, not a geometric epsilon).
func writeTriangle(w io.Writer, v1, v2, v3 geom.Point3) error {
	s1, s2, s3 := formatVertex(v1), formatVertex(v2), formatVertex(v3)
	if s1 == s2 || s1 == s3 || s2 == s3 {
		return nil
	}

	nx := (v1.Y-v2.Y)*(v1.Z-v3.Z) - (v1.Z-v2.Z)*(v1.Y-v3.Y)
	ny := (v1.Z-v2.Z)*(v1.X-v3.X) - (v1.X-v2.X)*(v1.Z-v3.Z)
	nz := (v1.X-v2.X)*(v1.Y-v3.Y) - (v1.Y-v2.Y)*(v1.X-v3.X)
	scale := 1 / math.Sqrt(nx*nx+ny*ny+nz*nz)

	if _, err := fmt.Fprintf(w, "  facet normal %f %f %f\n", nx*scale, ny*scale, nz*scale); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "    outer loop\n"); err != nil {
		return err
	}
	for _, s := range [3]string{s1, s2, s3} {
		if _, err := fmt.Fprintf(w, "      vertex %s\n", s); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "    endloop\n"); err != nil {
		return err
	}
	_, err := io.WriteString(w, "  endfacet\n")
	return err
}

func formatVertex(p geom.Point3) string {
	return fmt.Sprintf("%f %f %f", p.X, p.Y, p.Z)
}
