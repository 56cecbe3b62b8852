// ruler.go keeps an ordered list of named rules with placement directives.
package mdit

import (
	"fmt"
	"strings"
)

// Ruler holds the rules of one engine (block, inline or core) in the order
// they are attempted. Ordering directives are resolved when a rule is added
// or a directive changes, so a configured Ruler is read-only during parsing
// and can be shared by goroutines parsing independent documents.
type Ruler[R any] struct {
	entries  []*ruleEntry[R]
	names    []string
	rules    []R
	onChange func()
}

type ruleEntry[R any] struct {
	name      string
	rule      R
	beforeAll bool
	afterAll  bool
	before    []string
	after     []string
}

// RuleHandle adjusts the placement of a rule that was just added.
type RuleHandle[R any] struct {
	ruler *Ruler[R]
	entry *ruleEntry[R]
}

// Add registers rule under name. Adding an existing name replaces the rule
// and clears its directives.
func (r *Ruler[R]) Add(name string, rule R) *RuleHandle[R] {
	for _, e := range r.entries {
		if e.name == name {
			*e = ruleEntry[R]{name: name, rule: rule}
			r.compile()
			return &RuleHandle[R]{ruler: r, entry: e}
		}
	}
	e := &ruleEntry[R]{name: name, rule: rule}
	r.entries = append(r.entries, e)
	r.compile()
	return &RuleHandle[R]{ruler: r, entry: e}
}

// Remove deletes the rule registered under name.
func (r *Ruler[R]) Remove(name string) bool {
	for i, e := range r.entries {
		if e.name == name {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			r.compile()
			return true
		}
	}
	return false
}

// Has reports whether a rule named name is registered.
func (r *Ruler[R]) Has(name string) bool {
	for _, e := range r.entries {
		if e.name == name {
			return true
		}
	}
	return false
}

// Names returns rule names in resolved order.
func (r *Ruler[R]) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Rules returns rules in resolved order. The slice must not be modified.
func (r *Ruler[R]) Rules() []R {
	return r.rules
}

// Len returns the number of registered rules.
func (r *Ruler[R]) Len() int {
	return len(r.entries)
}

// BeforeAll places the rule ahead of every rule without this directive.
func (h *RuleHandle[R]) BeforeAll() *RuleHandle[R] {
	h.entry.beforeAll = true
	h.entry.afterAll = false
	h.ruler.compile()
	return h
}

// AfterAll places the rule behind every rule without this directive.
func (h *RuleHandle[R]) AfterAll() *RuleHandle[R] {
	h.entry.afterAll = true
	h.entry.beforeAll = false
	h.ruler.compile()
	return h
}

// Before places the rule ahead of the named rule. A directive naming a
// rule that is not registered has no effect until that rule is added.
func (h *RuleHandle[R]) Before(name string) *RuleHandle[R] {
	h.entry.before = append(h.entry.before, name)
	h.ruler.compile()
	return h
}

// After places the rule behind the named rule.
func (h *RuleHandle[R]) After(name string) *RuleHandle[R] {
	h.entry.after = append(h.entry.after, name)
	h.ruler.compile()
	return h
}

// compile resolves directives with a topological sort. Each rule gets a
// sort key: its group (before-all, normal, after-all) and registration
// index, or, when its first directive names a registered rule, that rule's
// key extended to sit just before or just after it. Among rules whose
// constraints are satisfied the smallest key goes next, so unrelated rules
// keep registration order.
func (r *Ruler[R]) compile() {
	n := len(r.entries)
	index := make(map[string]int, n)
	for i, e := range r.entries {
		index[e.name] = i
	}

	// edges[a] lists rules that must come after a
	edges := make([][]int, n)
	indegree := make([]int, n)
	addEdge := func(from, to int) {
		if from == to {
			return
		}
		edges[from] = append(edges[from], to)
		indegree[to]++
	}
	for i, e := range r.entries {
		for _, name := range e.before {
			if j, ok := index[name]; ok {
				addEdge(i, j)
			}
		}
		for _, name := range e.after {
			if j, ok := index[name]; ok {
				addEdge(j, i)
			}
		}
	}

	keys := make([][]int, n)
	visiting := make([]bool, n)
	var keyOf func(i int) []int
	keyOf = func(i int) []int {
		if keys[i] != nil {
			return keys[i]
		}
		visiting[i] = true
		defer func() { visiting[i] = false }()

		e := r.entries[i]
		if j, side, ok := r.anchor(e, index); ok && !visiting[j] {
			parent := keyOf(j)
			k := make([]int, 0, len(parent)+2)
			k = append(k, parent...)
			keys[i] = append(k, side, i)
			return keys[i]
		}
		group := 1
		if e.beforeAll {
			group = 0
		} else if e.afterAll {
			group = 2
		}
		keys[i] = []int{group, i}
		return keys[i]
	}
	for i := range r.entries {
		keyOf(i)
	}

	placed := make([]bool, n)
	names := make([]string, 0, n)
	rules := make([]R, 0, n)
	for len(names) < n {
		next := -1
		for i := range r.entries {
			if placed[i] || indegree[i] > 0 {
				continue
			}
			if next < 0 || keyLess(keys[i], keys[next]) {
				next = i
			}
		}
		if next < 0 {
			var stuck []string
			for i, e := range r.entries {
				if !placed[i] {
					stuck = append(stuck, e.name)
				}
			}
			panic(fmt.Sprintf("mdit: rule ordering cycle between %s", strings.Join(stuck, ", ")))
		}
		placed[next] = true
		for _, to := range edges[next] {
			indegree[to]--
		}
		names = append(names, r.entries[next].name)
		rules = append(rules, r.entries[next].rule)
	}

	r.names = names
	r.rules = rules
	if r.onChange != nil {
		r.onChange()
	}
}

// anchor returns the registered rule named by the first resolvable
// directive of e, with -1 for "before" and +1 for "after".
func (r *Ruler[R]) anchor(e *ruleEntry[R], index map[string]int) (int, int, bool) {
	for _, name := range e.before {
		if j, ok := index[name]; ok {
			return j, -1, true
		}
	}
	for _, name := range e.after {
		if j, ok := index[name]; ok {
			return j, 1, true
		}
	}
	return 0, 0, false
}

// keyLess orders sort keys element-wise. When one key extends the other,
// the extension sorts before its prefix if it continues with -1.
func keyLess(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	switch {
	case len(a) > len(b):
		return a[len(b)] < 0
	case len(b) > len(a):
		return b[len(a)] > 0
	}
	return false
}
