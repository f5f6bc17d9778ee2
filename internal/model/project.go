// Package model holds the vendor-neutral intermediate project tree
// assembled from decoded container records.
//
// This package contains type definitions and structural validation only.
// Decoding packages build the model; the serializer and the integrity
// scorer read it. After assembly the model is shared-read: no consumer
// mutates it, so concurrent serialization and scoring need no
// coordination.
//
// All child collections keep stable insertion order (required for
// deterministic serialization) and are additionally indexed by name for
// O(1) lookup.
package model

// Named is implemented by every component that lives in a Collection.
type Named interface {
	ComponentName() string
}

// Collection is an insertion-ordered set of named components with a name
// index. The zero value is ready to use.
type Collection[T Named] struct {
	items []T
	index map[string]int
}

// Add appends item, keeping insertion order. A duplicate name replaces the
// index entry but both items remain in order; callers that care about
// duplicates check ByName before adding.
func (c *Collection[T]) Add(item T) {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	c.index[item.ComponentName()] = len(c.items)
	c.items = append(c.items, item)
}

// ByName returns the most recently added item with the given name.
func (c *Collection[T]) ByName(name string) (T, bool) {
	if i, ok := c.index[name]; ok {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// All returns the items in insertion order. Callers must not mutate the
// returned slice.
func (c *Collection[T]) All() []T {
	return c.items
}

// Len returns the number of items.
func (c *Collection[T]) Len() int {
	return len(c.items)
}

// Project is the root of the intermediate model.
type Project struct {
	Controller *Controller
}

// Controller owns every top-level component collection.
type Controller struct {
	Name          string
	ProcessorType string
	MajorRev      int
	MinorRev      int
	Description   string

	DataTypes         Collection[*DataTypeDef]
	Modules           Collection[*Module]
	AddOnInstructions Collection[*AddOnInstruction]
	Tags              Collection[*Tag]
	Programs          Collection[*Program]
	Tasks             Collection[*Task]
}

// Program owns its routines and names its entry routine.
type Program struct {
	Name            string
	Class           string // Standard or Safety
	MainRoutineName string
	Routines        Collection[*Routine]
}

// Routine owns its rungs.
type Routine struct {
	Name  string
	Type  string // RLL, ST, FBD, SFC
	Rungs []Rung
}

// Rung is one unit of ladder logic. Partial marks a rung whose text still
// carries unresolved placeholder references.
type Rung struct {
	Number  uint32
	Text    string
	Comment string
	Partial bool
}

// Tag is a controller-scoped tag definition.
type Tag struct {
	Name           string
	DataType       string
	Radix          string
	TagType        string // Base, Alias, Produced, Consumed
	ExternalAccess string
	Constant       bool
	Safety         bool
	Description    string
}

// DataTypeDef is a user-defined data type.
type DataTypeDef struct {
	Name    string
	Family  string
	Class   string
	Members []Member
}

// Member is one member of a user-defined data type.
type Member struct {
	Name      string
	DataType  string
	Dimension int
	Radix     string
	Hidden    bool
}

// Module is one I/O or communication module.
type Module struct {
	Name          string
	CatalogNumber string
	Vendor        int
	ProductType   int
	ProductCode   int
	Major         int
	Minor         int
}

// AddOnInstruction is a reusable instruction definition.
type AddOnInstruction struct {
	Name       string
	Revision   string
	Parameters []Parameter
}

// Parameter is one AOI parameter.
type Parameter struct {
	Name     string
	DataType string
	Usage    string
	Required bool
}

// Task schedules programs for execution.
type Task struct {
	Name              string
	Type              string
	Priority          int
	RateMs            int
	ScheduledPrograms []string
}

func (c *Controller) ComponentName() string       { return c.Name }
func (p *Program) ComponentName() string          { return p.Name }
func (r *Routine) ComponentName() string          { return r.Name }
func (t *Tag) ComponentName() string              { return t.Name }
func (d *DataTypeDef) ComponentName() string      { return d.Name }
func (m *Module) ComponentName() string           { return m.Name }
func (a *AddOnInstruction) ComponentName() string { return a.Name }
func (t *Task) ComponentName() string             { return t.Name }

// NewProject returns a project with an empty controller of the given name.
func NewProject(controllerName string) *Project {
	return &Project{Controller: &Controller{Name: controllerName}}
}
