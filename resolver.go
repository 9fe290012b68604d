package qb

import "log/slog"

// Resolve expands targets (default: the single name "default") into a qubit
// map via depth-first traversal. Cycles are dropped with a
// warning rather than failing the whole resolution: the cycle-introducing
// qubit is removed from the map and its branch is not recursed into further,
// leaving its ancestors pointing at a now-missing dependency.
func Resolve(table *RuleTable, targets ...string) (*QubitMap, error) {
	if len(targets) == 0 {
		targets = []string{"default"}
	}
	out := NewQubitMap()
	for _, t := range targets {
		if err := resolveInto(table, t, nil, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// resolveInto performs one DFS visit of target, accumulating into out.
// ancestors is the current path from a requested target down to target's
// parent, used for cycle detection.
func resolveInto(table *RuleTable, target string, ancestors []string, out *QubitMap) error {
	rule, deps, err := table.Match(target)
	if err != nil {
		return err
	}

	priors := append(append([]string(nil), ancestors...), target)
	out.Set(target, Qubit{Target: target, Deps: deps, RecipeID: rule.RecipeID, Recipe: rule.Recipe})

	for _, dep := range deps {
		if contains(priors, dep) {
			slog.Warn("dropping circular dependency", "path", priors, "dep", dep)
			out.Delete(target)
			return nil
		}
		if err := resolveInto(table, dep, priors, out); err != nil {
			return err
		}
	}
	return nil
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
