// Package hierarchy decodes the HIER/HIER_LZ4/HIER_LZ4DUO block into a
// scope/variable tree, tracking alias relationships and assigning dense
// VarIds in declaration order (spec.md §4.5).
//
// Grounded on mebo's own nested-structure parsing style (section package
// readers built from small stateful cursor helpers); the tree shape
// itself follows the original tool's scope/variable tree (see
// original_source/gui/src/hierarchy.rs, SPEC_FULL.md §5) rather than
// anything in the teacher, since mebo's domain has no tree-shaped data.
package hierarchy

import "fmt"

// Attr is a hierarchy attribute record (spec.md §4.5 tag 252/253):
// auxiliary metadata attached to the scope it was declared in.
type Attr struct {
	Type    byte
	Subtype byte
	Name    string
	Arg     uint64
}

// Var is one variable declaration (spec.md §3 HierarchyVar).
type Var struct {
	Type      byte // the record's tag byte (0..251)
	Direction byte
	Name      string
	Bits      uint64
	VarID     int
	IsAlias   bool
}

// Scope is one node of the hierarchy tree (spec.md §3 HierarchyScope).
type Scope struct {
	Type      byte
	Name      string
	Component string
	Vars      []Var
	Attrs     []Attr
	Scopes    []*Scope
}

// Tree is the fully decoded hierarchy: a virtual root whose children are
// the file's top-level scopes.
type Tree struct {
	Root    *Scope
	NumVars int
}

// Scopes returns the file's top-level scopes (the virtual root's direct
// children). A SPEC_FULL.md supplemented accessor (§5), alongside Walk
// and Vars.
func (t *Tree) Scopes() []*Scope { return t.Root.Scopes }

// Vars returns every declared variable in the tree, depth-first in the
// same order Walk visits scopes. A SPEC_FULL.md supplemented accessor
// (§5) for callers that want a flat variable list without walking
// scopes themselves.
func (t *Tree) Vars() []Var {
	vars := append([]Var{}, t.Root.Vars...)
	t.Walk(func(path string, s *Scope) {
		vars = append(vars, s.Vars...)
	})

	return vars
}

// Walk visits every scope in the tree, depth-first, calling fn with each
// scope and its dot-separated path: the names of its ancestors and of
// the scope itself, not including the virtual root. This is a SPEC_FULL.md supplemented accessor
// (§5), grounded on original_source/gui/src/hierarchy.rs's tree walk
// used to populate the signal-selection panel.
func (t *Tree) Walk(fn func(path string, s *Scope)) {
	var visit func(prefix string, s *Scope)
	visit = func(prefix string, s *Scope) {
		path := prefix
		if s.Name != "" {
			if path != "" {
				path += "."
			}
			path += s.Name
		}
		fn(path, s)
		for _, child := range s.Scopes {
			visit(path, child)
		}
	}

	for _, child := range t.Root.Scopes {
		visit("", child)
	}
}

// Path returns the dotted scope path of the first variable declaration
// found with the given VarId (its own declaration, not an alias'), or
// an error if no such variable exists. A SPEC_FULL.md supplemented
// accessor (§5), grounded on the same hierarchy-panel "fully qualified
// signal name" lookup as Walk.
func (t *Tree) Path(varID int) (string, error) {
	var found string
	var ok bool

	var visit func(prefix string, s *Scope)
	visit = func(prefix string, s *Scope) {
		if ok {
			return
		}

		path := prefix
		if s.Name != "" {
			if path != "" {
				path += "."
			}
			path += s.Name
		}

		for _, v := range s.Vars {
			if v.VarID == varID && !v.IsAlias {
				found = path + "." + v.Name
				ok = true

				return
			}
		}

		for _, child := range s.Scopes {
			if ok {
				return
			}
			visit(path, child)
		}
	}

	for _, child := range t.Root.Scopes {
		if ok {
			break
		}
		visit("", child)
	}

	if !ok {
		return "", fmt.Errorf("hierarchy: no variable with VarId %d", varID)
	}

	return found, nil
}
