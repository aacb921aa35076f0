// Package reflection describes the external API surface a codec consults
// for knowledge the document itself does not carry: the kind a property
// is declared to hold (to validate the document's own tags against), a
// class's canonical property names when the document uses a serialized
// alias, and so on.
//
// A Database is supplied by the caller of the xml package; this package
// never constructs one from a data file itself.
package reflection

// Database answers the questions an XML codec needs to resolve a
// document unambiguously. Implementations are expected to be read-only
// and safe for concurrent use.
type Database interface {
	// IsKnownClass reports whether className is a recognized class.
	IsKnownClass(className string) bool

	// CanonicalName returns the canonical (non-deprecated) name for a
	// property, given its serialized name as it appears on the wire. It
	// returns ok == false if the database has no opinion, in which case
	// the serialized name should be used unchanged.
	CanonicalName(className, serializedName string) (name string, ok bool)

	// SerializedName returns the name a property should be written under,
	// given its canonical name. It returns ok == false if the database
	// has no opinion.
	SerializedName(className, canonicalName string) (name string, ok bool)

	// DataType returns the name of the Variant kind a property is
	// declared to hold (as Type.String() would render it, e.g.
	// "Vector3"), or, for an Enum-valued property, the more specific
	// "Enum.<name>" form naming which enum the bare Enum kind belongs
	// to. Used to validate a decoded property's kind against the
	// database's expectation, surfacing a mismatch as a warning under a
	// lenient policy rather than rejecting the document. It returns
	// ok == false if the property is unknown.
	DataType(className, propertyName string) (typeName string, ok bool)

	// IsKnownEnum reports whether enumName is a recognized enum type.
	// Consulted when DataType names a property as "Enum.<enumName>", to
	// validate that the specific enum the database expects is itself
	// recognized.
	IsKnownEnum(enumName string) bool
}

// None is a Database that knows nothing about any class, property, or
// enum. Every method reports the corresponding item as unknown. Codecs
// fall back to it when no Database is supplied, trusting the document's
// own tags for everything.
var None Database = none{}

type none struct{}

func (none) IsKnownClass(string) bool                     { return false }
func (none) CanonicalName(string, string) (string, bool)  { return "", false }
func (none) SerializedName(string, string) (string, bool) { return "", false }
func (none) DataType(string, string) (string, bool)       { return "", false }
func (none) IsKnownEnum(string) bool                      { return false }
