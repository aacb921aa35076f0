package rbxdom

import "fmt"

// DOM owns a set of Instances keyed by Ref, plus a distinguished root. At
// most one mutator may act on a DOM at a time; read access (Get,
// Descendants) requires only that no mutation is concurrently in
// progress.
//
// Instances are never removed except through Destroy and Move, both of
// which hand the detached subtree back to the caller (as a new DOM, or
// grafted into an existing one) so that the caller decides when the
// memory is released.
type DOM struct {
	instances map[Ref]*Instance
	rootRef   Ref
}

// New creates a DOM whose root instance is built from root.
func New(root Builder) *DOM {
	dom := &DOM{instances: make(map[Ref]*Instance)}
	inst := dom.build(root, NoRef, false)
	dom.rootRef = inst.Ref
	return dom
}

// build instantiates a builder subtree in pre-order, inserting every
// instance into dom.instances, and returns the subtree's root Instance. It
// does not link the subtree into any parent's children list; callers do
// that themselves (New has no parent to link into; Insert appends to the
// parent after build returns).
func (dom *DOM) build(b Builder, parent Ref, hasParent bool) *Instance {
	ref := b.ref
	if ref.IsNone() {
		ref = NewRef()
	}
	props := make(map[string]Value, len(b.Properties))
	for k, v := range b.Properties {
		props[k] = v
	}
	inst := &Instance{
		Ref:        ref,
		ClassName:  b.ClassName,
		Name:       b.Name,
		Properties: props,
		parent:     parent,
		hasParent:  hasParent,
	}
	dom.instances[ref] = inst
	inst.children = make([]Ref, 0, len(b.Children))
	for _, cb := range b.Children {
		child := dom.build(cb, ref, true)
		inst.children = append(inst.children, child.Ref)
	}
	return inst
}

// RootRef returns the Ref of the DOM's root instance.
func (dom *DOM) RootRef() Ref {
	return dom.rootRef
}

// Root returns the DOM's root instance.
func (dom *DOM) Root() *Instance {
	return dom.instances[dom.rootRef]
}

// Get returns the instance with the given Ref, or nil if it is not
// present in this DOM.
func (dom *DOM) Get(ref Ref) *Instance {
	return dom.instances[ref]
}

// Len returns the number of instances in the DOM, including the root.
func (dom *DOM) Len() int {
	return len(dom.instances)
}

// Insert builds root under parentRef, appending it to parentRef's children,
// and returns the Ref assigned to its instance.
//
// Insert panics if parentRef does not name an instance in this DOM.
func (dom *DOM) Insert(parentRef Ref, root Builder) Ref {
	parent, ok := dom.instances[parentRef]
	if !ok {
		panic(fmt.Sprintf("rbxdom: Insert: parent %s not in DOM", parentRef))
	}
	inst := dom.build(root, parentRef, true)
	parent.children = append(parent.children, inst.Ref)
	return inst.Ref
}

// Destroy detaches the subtree rooted at ref and removes it, along with
// all of its descendants, from the DOM. It returns the detached subtree as
// a new DOM so the caller decides when to release it.
//
// Destroy panics if ref is the DOM's root, or if ref does not name an
// instance in this DOM.
func (dom *DOM) Destroy(ref Ref) *DOM {
	if ref == dom.rootRef {
		panic("rbxdom: Destroy: cannot destroy the root instance")
	}
	if _, ok := dom.instances[ref]; !ok {
		panic(fmt.Sprintf("rbxdom: Destroy: %s not in DOM", ref))
	}

	dom.orphan(ref)

	sub := &DOM{instances: make(map[Ref]*Instance), rootRef: ref}
	toVisit := []Ref{ref}
	for len(toVisit) > 0 {
		id := toVisit[len(toVisit)-1]
		toVisit = toVisit[:len(toVisit)-1]
		inst, ok := dom.instances[id]
		if !ok {
			continue
		}
		toVisit = append(toVisit, inst.children...)
		delete(dom.instances, id)
		sub.instances[id] = inst
	}
	sub.instances[ref].hasParent = false
	return sub
}

// Move detaches the subtree rooted at ref from dom and grafts it under
// destParentRef in dest. Refs are preserved across the move; dom no longer
// contains any instance from the subtree afterward.
//
// Move panics if ref does not name an instance in dom, or if
// destParentRef does not name an instance in dest.
func (dom *DOM) Move(ref Ref, dest *DOM, destParentRef Ref) {
	if _, ok := dest.instances[destParentRef]; !ok {
		panic(fmt.Sprintf("rbxdom: Move: destination parent %s not in DOM", destParentRef))
	}
	if ref == dom.rootRef {
		panic("rbxdom: Move: cannot move the root instance")
	}

	dom.orphan(ref)

	root, ok := dom.instances[ref]
	if !ok {
		panic(fmt.Sprintf("rbxdom: Move: %s not in DOM", ref))
	}
	delete(dom.instances, ref)

	root.parent = destParentRef
	root.hasParent = true
	dest.instances[ref] = root
	destParent := dest.instances[destParentRef]
	destParent.children = append(destParent.children, ref)

	toVisit := append([]Ref{}, root.children...)
	for len(toVisit) > 0 {
		id := toVisit[len(toVisit)-1]
		toVisit = toVisit[:len(toVisit)-1]
		inst := dom.instances[id]
		delete(dom.instances, id)
		toVisit = append(toVisit, inst.children...)
		dest.instances[id] = inst
	}
}

// SetParent reparents ref to destParentRef within the same DOM. It panics
// if either Ref is absent, if ref is the root, or if destParentRef is ref
// itself or a descendant of ref (which would create a cycle).
func (dom *DOM) SetParent(ref, destParentRef Ref) {
	if ref == dom.rootRef {
		panic("rbxdom: SetParent: cannot reparent the root instance")
	}
	if _, ok := dom.instances[ref]; !ok {
		panic(fmt.Sprintf("rbxdom: SetParent: %s not in DOM", ref))
	}
	if _, ok := dom.instances[destParentRef]; !ok {
		panic(fmt.Sprintf("rbxdom: SetParent: %s not in DOM", destParentRef))
	}
	if destParentRef == ref {
		panic("rbxdom: SetParent: cannot set an instance as its own parent")
	}
	it := dom.Descendants(ref)
	for d := it.Next(); d != nil; d = it.Next() {
		if d.Ref == destParentRef {
			panic("rbxdom: SetParent: would create a circular reference")
		}
	}

	dom.orphan(ref)
	inst := dom.instances[ref]
	inst.parent = destParentRef
	inst.hasParent = true
	destParent := dom.instances[destParentRef]
	destParent.children = append(destParent.children, ref)
}

// orphan removes ref from its current parent's children list. It does not
// touch ref's own parent field; callers finish the move by setting it (or
// by discarding the instance entirely, as Destroy does).
func (dom *DOM) orphan(ref Ref) {
	inst, ok := dom.instances[ref]
	if !ok {
		panic(fmt.Sprintf("rbxdom: %s not in DOM", ref))
	}
	if !inst.hasParent {
		panic("rbxdom: cannot orphan an instance without a parent")
	}
	parent := dom.instances[inst.parent]
	for i, c := range parent.children {
		if c == ref {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			break
		}
	}
}

// Descendants returns the descendants of ref in pre-order: each child,
// then that child's descendants, before moving to the next child. ref
// itself is never yielded.
//
// Descendants panics if ref does not name an instance in this DOM.
func (dom *DOM) Descendants(ref Ref) DescendantIter {
	root, ok := dom.instances[ref]
	if !ok {
		panic(fmt.Sprintf("rbxdom: Descendants: %s not in DOM", ref))
	}
	stack := make([]Ref, len(root.children))
	for i, c := range root.children {
		// Reverse so pre-order pops first-child-first.
		stack[len(root.children)-1-i] = c
	}
	return DescendantIter{dom: dom, stack: stack}
}

// DescendantIter iterates the descendants of a DOM.Descendants call in
// pre-order. The zero value is not usable; obtain one from DOM.Descendants.
type DescendantIter struct {
	dom   *DOM
	stack []Ref
}

// Next advances the iterator and returns the next instance, or nil when
// exhausted.
func (it *DescendantIter) Next() *Instance {
	if len(it.stack) == 0 {
		return nil
	}
	ref := it.stack[len(it.stack)-1]
	it.stack = it.stack[:len(it.stack)-1]
	inst := it.dom.instances[ref]
	for i := len(inst.children) - 1; i >= 0; i-- {
		it.stack = append(it.stack, inst.children[i])
	}
	return inst
}
