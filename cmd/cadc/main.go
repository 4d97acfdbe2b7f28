// Command cadc compiles a cadlang instantiation tree (given as JSON,
// see parser.go) to an STL mesh, printing the CSG term/chain dumps and
// diagnostics along the way. A real cadlang lexer/parser is an
// external collaborator out of scope for the core module (spec.md §1,
// §6); this binary wires in jsonParser plus a minimal demo primitive
// tessellator and Boolean backend so the whole pipeline has something
// concrete to run end to end.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"cadlang/internal/compile"
	"cadlang/internal/diag"
	"cadlang/internal/geom"
	"cadlang/internal/stlexport"
)

func main() {
	fn := flag.Float64("fn", 0, "$fn: fixed fragment count (0 disables)")
	fs := flag.Float64("fs", 1.0, "$fs: minimum fragment size")
	fa := flag.Float64("fa", 12.0, "$fa: minimum fragment angle")
	t := flag.Float64("t", 0.0, "$t: animation fraction")
	stlPath := flag.String("stl", "", "write the exact mesh as STL to this path")
	cacheStats := flag.Bool("cache-stats", false, "print polyhedron cache statistics after compiling")
	dump := flag.Bool("dump", false, "print the raw/normalized CSG term and chain dumps")
	noColor := flag.Bool("no-color", false, "disable ANSI diagnostic coloring")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: cadc [flags] <instantiation-tree.json>")
		os.Exit(2)
	}

	source, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "cadc: %v\n", err)
		os.Exit(1)
	}

	color := !*noColor && isatty.IsTerminal(os.Stdout.Fd())

	cache := geom.NewCache(geom.DefaultCacheCapacity)
	c := compile.New(
		compile.WithFn(*fn),
		compile.WithFs(*fs),
		compile.WithFa(*fa),
		compile.WithT(*t),
		compile.WithParser(jsonParser{}),
		compile.WithPrimitives(demoPrimitives{}),
		compile.WithBackend(demoBackend{}),
		compile.WithCache(cache),
		compile.WithLogger(slog.Default()),
	)

	result, err := c.Compile(context.Background(), string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "cadc: compile: %v\n", err)
		os.Exit(1)
	}
	defer result.RawTerm.Unlink()
	defer result.NormalizedTerm.Unlink()

	for _, d := range result.Diagnostics {
		printDiagnostic(d, color)
	}

	if *dump {
		fmt.Println("--- raw term ---")
		fmt.Println(result.RawDump)
		fmt.Println("--- normalized term ---")
		fmt.Println(result.NormalizedDump)
		fmt.Println("--- chain ---")
		fmt.Print(result.ChainDump)
	}

	if *stlPath != "" {
		if result.Mesh == nil {
			fmt.Fprintln(os.Stderr, "cadc: no mesh was produced (empty model)")
			os.Exit(1)
		}
		f, err := os.Create(*stlPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cadc: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := stlexport.Export(f, result.Mesh.ConvertToMesh(), nil); err != nil {
			fmt.Fprintf(os.Stderr, "cadc: stl export: %v\n", err)
			os.Exit(1)
		}
	}

	if *cacheStats {
		fmt.Printf("compilation %s: %s\n", result.CompilationID, cache.Stats())
	}
}

func printDiagnostic(d diag.Diagnostic, color bool) {
	if !color {
		fmt.Fprintln(os.Stderr, d.String())
		return
	}
	code := "33" // yellow for warnings
	if d.Severity == diag.SeverityError {
		code = "31" // red for errors
	}
	fmt.Fprintf(os.Stderr, "\x1b[%sm%s\x1b[0m\n", code, d.String())
}
