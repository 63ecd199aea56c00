package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/antestudio/http-cgi-server/internal/lang/ast"
	"github.com/antestudio/http-cgi-server/internal/lang/scope"
	"github.com/antestudio/http-cgi-server/internal/lang/value"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := Parse(src, nil)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

func TestParseDeclarationsAndTypes(t *testing.T) {
	prog := mustParse(t, `program int x, y = 2; string s; boolean b;`)
	if len(prog.Declarations) != 4 {
		t.Fatalf("got %d declarations", len(prog.Declarations))
	}
	decl := prog.Declarations[1].(ast.VariableDecl)
	if decl.Name != "y" || decl.Type != value.Int {
		t.Fatalf("unexpected decl: %+v", decl)
	}
}

func TestParseWriteAndRun(t *testing.T) {
	prog := mustParse(t, `program write("hello", " ", "world");`)
	var out strings.Builder
	root := scope.New(func(s string) { out.WriteString(s) })
	if err := prog.Run(root); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestParseIfElse(t *testing.T) {
	prog := mustParse(t, `program int x = 1; if (x == 1) write("yes"); else write("no");`)
	var out strings.Builder
	root := scope.New(func(s string) { out.WriteString(s) })
	if err := prog.Run(root); err != nil {
		t.Fatal(err)
	}
	if out.String() != "yes" {
		t.Fatalf("got %q", out.String())
	}
}

func TestParseWhileLoop(t *testing.T) {
	prog := mustParse(t, `program int i = 0; while (i < 3) { write(i); i = i + 1; }`)
	var out strings.Builder
	root := scope.New(func(s string) { out.WriteString(s) })
	if err := prog.Run(root); err != nil {
		t.Fatal(err)
	}
	if out.String() != "012" {
		t.Fatalf("got %q", out.String())
	}
}

func TestParseForLoopWithPlainExpressions(t *testing.T) {
	prog := mustParse(t, `program int j; for (j = 0; j < 3; j = j + 1) write(j);`)
	var out strings.Builder
	root := scope.New(func(s string) { out.WriteString(s) })
	if err := prog.Run(root); err != nil {
		t.Fatal(err)
	}
	if out.String() != "012" {
		t.Fatalf("got %q", out.String())
	}
}

func TestParseAndOrShortCircuit(t *testing.T) {
	prog := mustParse(t, `program boolean t = true; boolean f = false; if (f and (1/0 == 0)) write("bad"); else write("ok");`)
	var out strings.Builder
	root := scope.New(func(s string) { out.WriteString(s) })
	if err := prog.Run(root); err != nil {
		t.Fatalf("unexpected error (and should short-circuit): %v", err)
	}
	if out.String() != "ok" {
		t.Fatalf("got %q", out.String())
	}
}

func TestParseEnvironmentVariable(t *testing.T) {
	prog := mustParse(t, `program write($FOO);`)
	var out strings.Builder
	root := scope.New(func(s string) { out.WriteString(s) })
	root.SetEnvGetter(func(name string) string {
		if name == "FOO" {
			return "bar"
		}
		return ""
	})
	if err := prog.Run(root); err != nil {
		t.Fatal(err)
	}
	if out.String() != "bar" {
		t.Fatalf("got %q", out.String())
	}
}

func TestParseLabeledStatementIsDiscarded(t *testing.T) {
	prog := mustParse(t, `program loop: write("x");`)
	var out strings.Builder
	root := scope.New(func(s string) { out.WriteString(s) })
	if err := prog.Run(root); err != nil {
		t.Fatal(err)
	}
	if out.String() != "x" {
		t.Fatalf("got %q", out.String())
	}
}

func TestParseMissingProgramKeywordFails(t *testing.T) {
	_, err := Parse(`write("x");`, nil)
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected ErrSyntax, got %v", err)
	}
}

func TestParseUnterminatedCompoundFails(t *testing.T) {
	_, err := Parse(`program { write("x");`, nil)
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected ErrSyntax, got %v", err)
	}
}

func TestParseAssignmentRequiresLvalue(t *testing.T) {
	_, err := Parse(`program 1 = 2;`, nil)
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected ErrSyntax, got %v", err)
	}
}
