package qb

import (
	"errors"
	"testing"
)

func noopRecipe(string, []string) error { return nil }

func TestResolveLinearChain(t *testing.T) {
	table := NewRuleTable()
	table.Add(`^default$`, Fixed("build/foo.o"), "default", noopRecipe)
	table.Add(`^build/foo\.o$`, Fixed("src/foo.c"), "compile", noopRecipe)
	table.Add(`^src/foo\.c$`, Fixed(), "source", noopRecipe)

	qbdict, err := Resolve(table)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []string{"default", "build/foo.o", "src/foo.c"}
	if got := qbdict.Keys(); !equalStrings(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestResolveUnknownTarget(t *testing.T) {
	table := NewRuleTable()
	table.Add(`^default$`, Fixed("nope"), "default", noopRecipe)

	_, err := Resolve(table)
	var ute *UnknownTargetError
	if !errors.As(err, &ute) {
		t.Fatalf("Resolve: err = %v, want UnknownTargetError", err)
	}
}

func TestResolveDropsCycle(t *testing.T) {
	table := NewRuleTable()
	table.Add(`^default$`, Fixed("a"), "default", noopRecipe)
	table.Add(`^a$`, Fixed("b"), "a", noopRecipe)
	table.Add(`^b$`, Fixed("a"), "b", noopRecipe)

	qbdict, err := Resolve(table)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if qbdict.Has("b") {
		t.Error("Has(b) = true, want the cycle-introducing qubit dropped")
	}
	if !qbdict.Has("default") || !qbdict.Has("a") {
		t.Errorf("Keys() = %v, want default and a retained", qbdict.Keys())
	}
}

func TestResolveDefaultTargetName(t *testing.T) {
	table := NewRuleTable()
	table.Add(`^default$`, Fixed(), "default", noopRecipe)

	qbdict, err := Resolve(table)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !qbdict.Has("default") {
		t.Error(`Resolve() with no targets should resolve "default"`)
	}
}
