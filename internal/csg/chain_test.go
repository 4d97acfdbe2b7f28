package csg

import (
	"testing"

	"cadlang/internal/geom"
)

func TestChainImportSingleCube(t *testing.T) {
	cube := NewPrimitive(geom.NewPolyset(), geom.Identity(), "cube")
	defer cube.Unlink()

	var chain Chain
	chain.Import(cube, Union)

	if chain.Length() != 1 {
		t.Fatalf("Length() = %d, want 1", chain.Length())
	}
	if chain.Entries[0].Op != Union {
		t.Fatalf("first entry op = %v, want Union", chain.Entries[0].Op)
	}
}

func TestChainImportDifferenceOfTwo(t *testing.T) {
	cube := NewPrimitive(geom.NewPolyset(), geom.Identity(), "cube")
	sphere := NewPrimitive(geom.NewPolyset(), geom.Identity(), "sphere")
	term := NewBinary(Difference, cube, sphere)
	cube.Unlink()
	sphere.Unlink()
	defer term.Unlink()

	var chain Chain
	chain.Import(term, Union)

	if chain.Length() != 2 {
		t.Fatalf("Length() = %d, want 2", chain.Length())
	}
	if chain.Entries[0].Label != "cube" || chain.Entries[0].Op != Union {
		t.Fatalf("entry 0 = %+v, want cube/Union", chain.Entries[0])
	}
	if chain.Entries[1].Label != "sphere" || chain.Entries[1].Op != Difference {
		t.Fatalf("entry 1 = %+v, want sphere/Difference", chain.Entries[1])
	}
}

func TestChainImportNilTermIsNoop(t *testing.T) {
	var chain Chain
	chain.Import(nil, Union)
	if chain.Length() != 0 {
		t.Fatalf("Length() = %d, want 0 for nil term (spec invariant #8)", chain.Length())
	}
}

func TestChainIntersectionDistributedLength(t *testing.T) {
	a := NewPrimitive(geom.NewPolyset(), geom.Identity(), "a")
	b := NewPrimitive(geom.NewPolyset(), geom.Identity(), "b")
	c := NewPrimitive(geom.NewPolyset(), geom.Identity(), "c")
	ab := NewBinary(Union, a, b)
	term := NewBinary(Intersection, ab, c)
	a.Unlink()
	b.Unlink()
	ab.Unlink()
	c.Unlink()

	norm := Normalize(term)
	defer norm.Unlink()
	defer term.Unlink()

	var chain Chain
	chain.Import(norm, Union)

	if chain.Length() != 4 {
		t.Fatalf("Length() = %d, want 4 entries for (a∩c)∪(b∩c)", chain.Length())
	}
	if chain.Entries[0].Op != Union {
		t.Fatalf("first entry must be Union, got %v", chain.Entries[0].Op)
	}
}

func TestChainDumpFormatsOnePerEntry(t *testing.T) {
	cube := NewPrimitive(geom.NewPolyset(), geom.Identity(), "cube")
	sphere := NewPrimitive(geom.NewPolyset(), geom.Identity(), "sphere")
	term := NewBinary(Difference, cube, sphere)
	cube.Unlink()
	sphere.Unlink()
	defer term.Unlink()

	var chain Chain
	chain.Import(term, Union)

	want := "union cube (0 verts)\ndifference sphere (0 verts)\n"
	if got := chain.Dump(); got != want {
		t.Fatalf("Dump() = %q, want %q", got, want)
	}
}

func TestChainDumpEmptyChainIsEmptyString(t *testing.T) {
	var chain Chain
	if got := chain.Dump(); got != "" {
		t.Fatalf("Dump() = %q, want empty string for an empty chain", got)
	}
}

func TestChainLengthExceedsSafetyCap(t *testing.T) {
	var chain Chain
	for i := 0; i < SafeChainLength+1; i++ {
		chain.Entries = append(chain.Entries, ChainEntry{Op: Union})
	}
	if chain.Length() <= SafeChainLength {
		t.Fatal("expected chain length to exceed the safety cap in this fixture")
	}
}
