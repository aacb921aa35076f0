// Package rbxdom implements a weak-reference document object model for
// Roblox place and model files.
//
// A document is represented as a DOM: an arena of Instances keyed by a
// globally unique Ref, rooted at a single instance. Instances never hold
// direct pointers to their parent or children; all relationships are
// expressed as Refs resolved through the owning DOM. This makes it cheap to
// move or reparent whole subtrees and keeps the ownership graph acyclic even
// though the instance graph itself has parent/child edges running both
// ways.
//
// Each Instance carries a ClassName, a Name, and a set of properties. Every
// property has a value of a particular kind, called a Variant. Every
// Variant kind is prefixed with "Value" and implements the Value interface.
//
// The rbxdom/xml subpackage implements Roblox's XML place/model format
// (rbxmx/rbxlx) on top of this package; the binary rbxm/rbxl format is
// specified and implemented separately.
package rbxdom
