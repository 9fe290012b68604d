package qb

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Qubit is a resolved build unit: a target, its dependency names, and the
// recipe bound to it.
type Qubit struct {
	Target   string
	Deps     []string
	RecipeID string
	Recipe   Recipe
}

// Dump serializes a qubit to its manifest line form:
// "recipe-id\ttarget\tspace-joined-deps\n". Empty deps yields a trailing
// empty field.
func (q Qubit) Dump() string {
	return fmt.Sprintf("%s\t%s\t%s\n", q.RecipeID, q.Target, strings.Join(q.Deps, " "))
}

// ParseQubit reverses Dump. The recipe is re-bound by
// re-matching the target against table; the recipe-id embedded in the line
// is consulted only diagnostically (a mismatch is logged, not an error),
// since a remote node's RuleTable is the authority on what "the" recipe for
// a target actually is.
func ParseQubit(line string, table *RuleTable) (Qubit, error) {
	line = strings.TrimSuffix(line, "\n")
	fields := strings.SplitN(line, "\t", 3)
	if len(fields) != 3 {
		return Qubit{}, fmt.Errorf("qb: malformed qubit line %q", line)
	}
	recipeID, target, depsField := fields[0], fields[1], fields[2]

	rule, _, err := table.Match(target)
	if err != nil {
		return Qubit{}, err
	}
	if rule.RecipeID != recipeID {
		slog.Warn("qubit recipe-id mismatch on rebind", "target", target, "manifest_id", recipeID, "local_id", rule.RecipeID)
	}

	var deps []string
	if depsField != "" {
		deps = strings.Fields(depsField)
	}
	return Qubit{Target: target, Deps: deps, RecipeID: rule.RecipeID, Recipe: rule.Recipe}, nil
}

// QubitMap is an insertion-ordered mapping from target name to qubit.
// The zero value is not ready to use; construct with NewQubitMap.
type QubitMap struct {
	order  []string
	qubits map[string]Qubit
}

// NewQubitMap returns an empty, ready-to-use qubit map.
func NewQubitMap() *QubitMap {
	return &QubitMap{qubits: make(map[string]Qubit)}
}

// Set inserts or overwrites the qubit for target, preserving original
// insertion order on overwrite (last write wins).
func (m *QubitMap) Set(target string, q Qubit) {
	if _, exists := m.qubits[target]; !exists {
		m.order = append(m.order, target)
	}
	m.qubits[target] = q
}

// Delete removes target from the map (used by cycle handling).
func (m *QubitMap) Delete(target string) {
	if _, exists := m.qubits[target]; !exists {
		return
	}
	delete(m.qubits, target)
	for i, t := range m.order {
		if t == target {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Get returns the qubit for target and whether it is present.
func (m *QubitMap) Get(target string) (Qubit, bool) {
	q, ok := m.qubits[target]
	return q, ok
}

// Has reports whether target is present in the map.
func (m *QubitMap) Has(target string) bool {
	_, ok := m.qubits[target]
	return ok
}

// Keys returns target names in insertion order.
func (m *QubitMap) Keys() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the number of qubits in the map.
func (m *QubitMap) Len() int {
	return len(m.order)
}

// Qubits returns the qubits in insertion order.
func (m *QubitMap) Qubits() []Qubit {
	out := make([]Qubit, 0, len(m.order))
	for _, t := range m.order {
		out = append(out, m.qubits[t])
	}
	return out
}

// Dump writes the manifest for this qubit map: the ordered concatenation of
// each qubit's Dump() line.
func (m *QubitMap) Dump() string {
	var b strings.Builder
	for _, t := range m.order {
		b.WriteString(m.qubits[t].Dump())
	}
	return b.String()
}

// ParseManifest reads a qubit manifest and rebinds each qubit's recipe
// against table, preserving line order.
func ParseManifest(r io.Reader, table *RuleTable) (*QubitMap, error) {
	m := NewQubitMap()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		q, err := ParseQubit(line, table)
		if err != nil {
			return nil, err
		}
		m.Set(q.Target, q)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}
