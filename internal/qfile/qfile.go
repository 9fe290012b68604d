// Package qfile provides a minimal Qfile loader: a YAML rule-definition
// file that populates a qb.RuleTable. Loading a rule-definition file is kept
// out of the core engine as an external collaborator; this package is that
// collaborator's simplest possible shape — declarative YAML, no code
// evaluation — so that cmd/qb is runnable without pulling rule-registration
// back into the core package.
package qfile

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"text/template"

	"github.com/goccy/go-yaml"

	"github.com/qubitbuild/qb"
)

// Doc is the on-disk Qfile shape.
type Doc struct {
	Rules []RuleDoc `yaml:"rules"`
}

// RuleDoc is one rule: a regex pattern, a dependency expression, and a
// recipe template. ID defaults to Pattern when absent; it must be unique
// since it is the stable recipe identity serialized into qubit manifests.
type RuleDoc struct {
	ID      string   `yaml:"id"`
	Pattern string   `yaml:"pattern"`
	Deps    []string `yaml:"deps"`
	DepsFn  string   `yaml:"depsTemplate"` // optional: space-separated template over capture groups
	Recipe  string   `yaml:"recipe"`       // shell command template, expanded with .Target/.Deps
}

// Load reads a Qfile from path and returns a populated RuleTable.
func Load(path string) (*qb.RuleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("qfile: reading %s: %w", path, err)
	}
	var doc Doc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("qfile: parsing %s: %w", path, err)
	}

	table := qb.NewRuleTable()
	for _, r := range doc.Rules {
		id := r.ID
		if id == "" {
			id = r.Pattern
		}
		deps, err := buildDepsExpr(r)
		if err != nil {
			return nil, fmt.Errorf("qfile: rule %q: %w", id, err)
		}
		recipe := buildRecipe(r.Recipe)
		if err := table.Add(r.Pattern, deps, id, recipe); err != nil {
			return nil, fmt.Errorf("qfile: rule %q: %w", id, err)
		}
	}
	return table, nil
}

func buildDepsExpr(r RuleDoc) (qb.DepsExpr, error) {
	if r.DepsFn == "" {
		return qb.Fixed(r.Deps...), nil
	}
	tmpl, err := template.New("deps").Parse(r.DepsFn)
	if err != nil {
		return nil, err
	}
	return qb.FuncDeps(func(captures []string) []string {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, captures); err != nil {
			return nil
		}
		return strings.Fields(buf.String())
	}), nil
}

type recipeVars struct {
	Target string
	Deps   []string
}

func buildRecipe(recipeTmpl string) qb.Recipe {
	return func(target string, deps []string) error {
		if recipeTmpl == "" {
			return nil
		}
		tmpl, err := template.New("recipe").Parse(recipeTmpl)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, recipeVars{Target: target, Deps: deps}); err != nil {
			return err
		}
		cmd := exec.Command("sh", "-c", buf.String())
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return cmd.Run()
	}
}
