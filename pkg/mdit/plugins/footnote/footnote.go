// Package footnote parses pandoc-style footnotes:
//
//	Here is a reference,[^1] and an inline note.^[inline body]
//
//	[^1]: Here is the footnote.
//	    Indented blocks continue the definition.
//
// Definitions are parsed in the block pass and references in the inline pass.
// The collect pass then moves every referenced definition into one list at
// the end of the document, and the back-refs pass links each definition back
// to its references. The components can be installed separately.
package footnote

import (
	"sort"

	"github.com/open-cli-collective/mdit/pkg/mdit"
)

// Add installs the definitions, references, inline, collect and back-refs
// components.
func Add(md *mdit.MarkdownIt) {
	AddDefinitions(md)
	AddReferences(md)
	AddInline(md)
	AddCollect(md)
	AddBackRefs(md)
}

// FootnoteMap is the document-scoped registry of footnote labels and ids,
// stored in the root extension set. Definition and reference ids are
// allocated from separate counters that start at 1.
type FootnoteMap struct {
	defCounter int
	refCounter int
	labelToDef map[string]int
	defToRefs  map[int][]int
	duplicates []string
}

// AddDef allocates an id for the definition of label. It returns false when
// label already has a definition; the first definition wins.
func (m *FootnoteMap) AddDef(label string) (int, bool) {
	if _, exists := m.labelToDef[label]; exists {
		m.duplicates = append(m.duplicates, label)
		return 0, false
	}
	if m.labelToDef == nil {
		m.labelToDef = make(map[string]int)
	}
	m.defCounter++
	m.labelToDef[label] = m.defCounter
	return m.defCounter, true
}

// AddRef allocates a reference id for label and records it under the
// definition. It returns false when label has no definition.
func (m *FootnoteMap) AddRef(label string) (defID, refID int, ok bool) {
	defID, ok = m.labelToDef[label]
	if !ok {
		return 0, 0, false
	}
	m.refCounter++
	m.addRefTo(defID, m.refCounter)
	return defID, m.refCounter, true
}

// AddInlineDef allocates a definition id and a reference id for an anonymous
// inline footnote.
func (m *FootnoteMap) AddInlineDef() (defID, refID int) {
	m.defCounter++
	m.refCounter++
	m.addRefTo(m.defCounter, m.refCounter)
	return m.defCounter, m.refCounter
}

func (m *FootnoteMap) addRefTo(defID, refID int) {
	if m.defToRefs == nil {
		m.defToRefs = make(map[int][]int)
	}
	m.defToRefs[defID] = append(m.defToRefs[defID], refID)
}

// retainRefs drops every recorded reference id for which keep is false.
func (m *FootnoteMap) retainRefs(keep func(refID int) bool) {
	for defID, refs := range m.defToRefs {
		kept := refs[:0]
		for _, id := range refs {
			if keep(id) {
				kept = append(kept, id)
			}
		}
		m.defToRefs[defID] = kept
	}
}

// Lookup returns the definition id of label without allocating anything.
func (m *FootnoteMap) Lookup(label string) (int, bool) {
	id, ok := m.labelToDef[label]
	return id, ok
}

// ReferencedBy returns the ids of all references to the definition, in the
// order they were parsed.
func (m *FootnoteMap) ReferencedBy(defID int) []int {
	refs := m.defToRefs[defID]
	if len(refs) == 0 {
		return nil
	}
	return append([]int(nil), refs...)
}

// Duplicates returns the labels whose repeated definitions were rejected.
func (m *FootnoteMap) Duplicates() []string {
	return append([]string(nil), m.duplicates...)
}

// Unreferenced returns the labels of definitions that no reference points to.
func (m *FootnoteMap) Unreferenced() []string {
	var labels []string
	for label, id := range m.labelToDef {
		if len(m.defToRefs[id]) == 0 {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	return labels
}

// Len returns the number of definitions, including inline ones.
func (m *FootnoteMap) Len() int { return m.defCounter }
