package qb

import "regexp"

// Recipe is the action bound to a rule: it runs a target given its resolved
// dependency names.
type Recipe func(target string, deps []string) error

// DepsExpr is a dependency expression attached to a rule. It is either a
// fixed sequence of names or a function of the pattern's capture groups.
// Construct one with Fixed, Single, or FuncDeps.
type DepsExpr interface {
	expand(captures []string) []string
}

type fixedDeps []string

func (f fixedDeps) expand([]string) []string { return []string(f) }

// Fixed returns a DepsExpr that always yields the given names, regardless of
// capture groups.
func Fixed(names ...string) DepsExpr { return fixedDeps(names) }

// Single is sugar for Fixed(name): a DepsExpr wrapping one dependency name.
func Single(name string) DepsExpr { return fixedDeps{name} }

type funcDeps func(captures []string) []string

func (f funcDeps) expand(captures []string) []string { return f(captures) }

// FuncDeps returns a DepsExpr that is invoked with the target pattern's
// capture groups (regexp.FindStringSubmatch, minus the full match) and
// returns the dependency names.
func FuncDeps(fn func(captures []string) []string) DepsExpr { return funcDeps(fn) }

// Rule is a (pattern, deps-expr, recipe) triple.
// RecipeID is the stable symbolic name that survives round-tripping through
// a qubit manifest; re-binding on a remote node re-matches Target
// against that node's own RuleTable and ignores RecipeID except
// diagnostically.
type Rule struct {
	Pattern  *regexp.Regexp
	Deps     DepsExpr
	Recipe   Recipe
	RecipeID string
}

// RuleTable is an ordered registry of rules, matched first-match-wins in
// registration order. The zero value is ready to use.
type RuleTable struct {
	rules []Rule
}

// NewRuleTable returns an empty, ready-to-use rule table.
func NewRuleTable() *RuleTable {
	return &RuleTable{}
}

// Add registers a rule. pattern is compiled as a regular expression; recipeID
// must be unique and stable across processes that share a jobspace, since it
// is the only recipe identity that survives serialization.
func (t *RuleTable) Add(pattern string, deps DepsExpr, recipeID string, recipe Recipe) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	if deps == nil {
		deps = Fixed()
	}
	t.rules = append(t.rules, Rule{Pattern: re, Deps: deps, Recipe: recipe, RecipeID: recipeID})
	return nil
}

// Match finds the first rule whose pattern matches target and returns it
// along with the expanded dependency names. It returns *UnknownTargetError
// if no rule matches.
func (t *RuleTable) Match(target string) (Rule, []string, error) {
	for _, r := range t.rules {
		m := r.Pattern.FindStringSubmatch(target)
		if m == nil {
			continue
		}
		return r, r.Deps.expand(m[1:]), nil
	}
	return Rule{}, nil, &UnknownTargetError{Target: target}
}

// ByRecipeID finds a previously registered rule by its stable recipe
// identity. ParseQubit does not use it: manifest qubits are rebound by
// re-matching their target with Match.
func (t *RuleTable) ByRecipeID(id string) (Rule, bool) {
	for _, r := range t.rules {
		if r.RecipeID == id {
			return r, true
		}
	}
	return Rule{}, false
}
