package propcache

import (
	"errors"
	"sort"
)

var (
	// ErrInvalidName is returned by Define when given an empty attribute name.
	ErrInvalidName = errors.New("an attribute name cannot be empty")

	// ErrNoCompute is returned by Define when given a nil compute function.
	ErrNoCompute = errors.New("a compute function is required")

	// ErrAlreadyDefined is returned by Define when an attribute with the same
	// name has already been defined.
	ErrAlreadyDefined = errors.New("attribute is already defined")

	// ErrNotDefined is returned by Cache operations that reference an
	// attribute name missing from the Definitions.
	ErrNotDefined = errors.New("no such attribute is defined")
)

// Compute produces the value of an attribute from its owning object.  A failed
// computation is never cached; the error is handed back to the reader unchanged.
type Compute func(owner interface{}) (interface{}, error)

// Attribute is the descriptor for a single defined attribute.  It is the
// introspection surface for an attribute: its name and declared dependencies.
type Attribute struct {
	name      string
	compute   Compute
	dependsOn map[string]bool
}

// Name returns the attribute name this descriptor was defined with.
func (a *Attribute) Name() string {
	return a.name
}

// DependsOn returns a sorted copy of this attribute's declared dependency names.
func (a *Attribute) DependsOn() []string {
	dependsOn := make([]string, 0, len(a.dependsOn))
	for name := range a.dependsOn {
		dependsOn = append(dependsOn, name)
	}

	sort.Strings(dependsOn)
	return dependsOn
}

// Definitions is a registry of attributes, normally shared by every Cache of a
// given owner type.  Attributes are defined up front, at construction time.
// Definitions is not safe for concurrent mutation: finish all Define calls
// before handing it to caches.
type Definitions struct {
	attributes map[string]*Attribute
}

// NewDefinitions creates an empty attribute registry.
func NewDefinitions() *Definitions {
	return &Definitions{
		attributes: make(map[string]*Attribute),
	}
}

// Define registers an attribute under the given name together with its compute
// function and the names of any attributes it depends on.  Dependency names
// are not validated against the registry: a name that never matches a defined
// attribute is simply inert during invalidation.
func (d *Definitions) Define(name string, compute Compute, dependsOn ...string) error {
	if len(name) == 0 {
		return ErrInvalidName
	}

	if compute == nil {
		return ErrNoCompute
	}

	if _, ok := d.attributes[name]; ok {
		return ErrAlreadyDefined
	}

	a := &Attribute{
		name:      name,
		compute:   compute,
		dependsOn: make(map[string]bool, len(dependsOn)),
	}

	for _, dependency := range dependsOn {
		a.dependsOn[dependency] = true
	}

	d.attributes[name] = a
	return nil
}

// Attribute returns the descriptor registered under the given name, or nil if
// no such attribute has been defined.
func (d *Definitions) Attribute(name string) *Attribute {
	return d.attributes[name]
}

// Names returns a sorted list of all defined attribute names.
func (d *Definitions) Names() []string {
	names := make([]string, 0, len(d.attributes))
	for name := range d.attributes {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// Dependencies returns the declared dependency names of the given attribute,
// or nil if the attribute is not defined.
func (d *Definitions) Dependencies(name string) []string {
	if a, ok := d.attributes[name]; ok {
		return a.DependsOn()
	}

	return nil
}
