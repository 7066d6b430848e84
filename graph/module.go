package graph

import (
	"fmt"
	"path"
	"sort"
	"time"

	"chigraph/irsink"
	"chigraph/nodetype"
	"chigraph/result"
	"chigraph/typing"
)

// Resolver is the minimal view of a Context a Module needs to resolve its
// dependency names against (spec 3: "Dependencies resolved against the
// containing Context"). chictx.Context implements this; the interface
// breaks the import cycle chictx<->graph would otherwise form.
type Resolver interface {
	ModuleByFullName(name string) *Module
}

// Module is a GraphModule (spec section 3): a named collection of
// functions and structs plus a dependency set, resolved against the
// Context that owns it.
type Module struct {
	FullName string

	Functions map[string]*Function
	Structs   map[string]*Struct

	// dependencies is the set of other modules' full names this module
	// depends on.
	dependencies map[string]bool

	LastEditTime time.Time

	resolver Resolver
	sink     irsink.Sink
}

// NewModule creates an empty module with the given full, slash-separated
// path name.
func NewModule(fullName string, resolver Resolver, sink irsink.Sink) *Module {
	return &Module{
		FullName:     fullName,
		Functions:    map[string]*Function{},
		Structs:      map[string]*Struct{},
		dependencies: map[string]bool{},
		LastEditTime: time.Now(),
		resolver:     resolver,
		sink:         sink,
	}
}

// Sink returns the IR sink this module's functions compile into.
func (m *Module) Sink() irsink.Sink { return m.sink }

// ShortName returns the last path element of FullName.
func (m *Module) ShortName() string {
	return path.Base(m.FullName)
}

// Dependencies returns the set of module full-names this module depends on.
func (m *Module) Dependencies() []string {
	out := make([]string, 0, len(m.dependencies))
	for name := range m.dependencies {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// AddDependency resolves name against the owning Context and, if found,
// records the dependency. Fails without mutating state if name cannot be
// resolved.
func (m *Module) AddDependency(name string) *result.Result {
	res := &result.Result{}

	if m.resolver == nil || m.resolver.ModuleByFullName(name) == nil {
		res.AddEntry(result.CodeUnclassified, fmt.Sprintf("no such module %q", name), nil)
		return res
	}

	m.dependencies[name] = true
	m.LastEditTime = time.Now()
	return res
}

// RemoveDependency removes name from the dependency set. It does not
// unload the dependency module from the Context (spec section 8, S2:
// "unloading is not implicit").
func (m *Module) RemoveDependency(name string) *result.Result {
	res := &result.Result{}
	if !m.dependencies[name] {
		res.AddEntry(result.CodeUnclassified, fmt.Sprintf("module does not depend on %q", name), nil)
		return res
	}
	delete(m.dependencies, name)
	m.LastEditTime = time.Now()
	return res
}

// GetOrCreateFunction returns the function named name, creating it (with
// the given signature) if it did not already exist. inserted reports
// which happened.
func (m *Module) GetOrCreateFunction(name string, dataIn, dataOut []typing.NamedDataType, execIn, execOut []string) (*Function, bool) {
	if fn, ok := m.Functions[name]; ok {
		return fn, false
	}
	fn := NewFunction(m, name, dataIn, dataOut, execIn, execOut)
	m.Functions[name] = fn
	m.LastEditTime = time.Now()
	return fn, true
}

// RemoveFunction deletes a function by name, reporting whether it existed.
func (m *Module) RemoveFunction(name string) bool {
	if _, ok := m.Functions[name]; !ok {
		return false
	}
	delete(m.Functions, name)
	m.LastEditTime = time.Now()
	return true
}

// GetOrCreateStruct returns the struct named name, creating it if it did
// not already exist. inserted reports which happened.
func (m *Module) GetOrCreateStruct(name string) (*Struct, bool) {
	if s, ok := m.Structs[name]; ok {
		return s, false
	}
	s := &Struct{Name: name, mod: m}
	m.Structs[name] = s
	m.LastEditTime = time.Now()
	return s, true
}

// RemoveStruct deletes a struct by name, reporting whether it existed.
func (m *Module) RemoveStruct(name string) bool {
	if _, ok := m.Structs[name]; !ok {
		return false
	}
	delete(m.Structs, name)
	m.LastEditTime = time.Now()
	return true
}

// TypeNames returns the names of every user-defined struct type in the
// module, sorted.
func (m *Module) TypeNames() []string {
	out := make([]string, 0, len(m.Structs))
	for name := range m.Structs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// NodeTypeNames returns the local names of every node type the module
// contributes to the registry: one per function (named after the
// function), plus `_make_<s>`/`_break_<s>` for every struct s.
func (m *Module) NodeTypeNames() []string {
	out := make([]string, 0, len(m.Functions)+2*len(m.Structs))
	for name := range m.Functions {
		out = append(out, name)
	}
	for name := range m.Structs {
		out = append(out, MakeNodeTypeName(name), BreakNodeTypeName(name))
	}
	sort.Strings(out)
	return out
}

// MakeNodeType returns the synthesized constructor node type for the
// struct named name, or nil if no such struct exists.
func (m *Module) MakeNodeType(name string) nodetype.NodeType {
	s, ok := m.Structs[name]
	if !ok {
		return nil
	}
	return newMakeNodeType(s, m.sink)
}

// BreakNodeType returns the synthesized destructor node type for the
// struct named name, or nil if no such struct exists.
func (m *Module) BreakNodeType(name string) nodetype.NodeType {
	s, ok := m.Structs[name]
	if !ok {
		return nil
	}
	return newBreakNodeType(s)
}

// FindInstancesOfType returns every placed NodeInstance across every
// function of this module whose node type has the given qualified name.
func (m *Module) FindInstancesOfType(qualifiedName string) []*NodeInstance {
	var out []*NodeInstance
	for _, fn := range m.Functions {
		for _, n := range fn.nodes {
			if n.nodeType.Signature().QualifiedName == qualifiedName {
				out = append(out, n)
			}
		}
	}
	return out
}
