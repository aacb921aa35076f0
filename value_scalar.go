package rbxdom

import "strconv"

////////////////////////////////////////////////////////////////
// Strings and binary blobs

type ValueString []byte

func (ValueString) Type() Type        { return TypeString }
func (v ValueString) String() string  { return string(v) }
func (v ValueString) Copy() Value {
	c := make(ValueString, len(v))
	copy(c, v)
	return c
}

type ValueBinaryString []byte

func (ValueBinaryString) Type() Type       { return TypeBinaryString }
func (v ValueBinaryString) String() string { return string(v) }
func (v ValueBinaryString) Copy() Value {
	c := make(ValueBinaryString, len(v))
	copy(c, v)
	return c
}

type ValueProtectedString []byte

func (ValueProtectedString) Type() Type       { return TypeProtectedString }
func (v ValueProtectedString) String() string { return string(v) }
func (v ValueProtectedString) Copy() Value {
	c := make(ValueProtectedString, len(v))
	copy(c, v)
	return c
}

// ValueContent is a URL or asset reference. The empty value represents the
// XML <null/> form; any other value represents the <url>...</url> form.
type ValueContent []byte

func (ValueContent) Type() Type       { return TypeContent }
func (v ValueContent) String() string { return string(v) }
func (v ValueContent) Copy() Value {
	c := make(ValueContent, len(v))
	copy(c, v)
	return c
}

// ValueSharedString is a content-addressed binary blob. On the wire it is
// deduplicated into a document-level shared string table keyed by its
// blake2b-256 hash; see the xml package for the table itself.
type ValueSharedString []byte

func (ValueSharedString) Type() Type       { return TypeSharedString }
func (v ValueSharedString) String() string { return string(v) }
func (v ValueSharedString) Copy() Value {
	c := make(ValueSharedString, len(v))
	copy(c, v)
	return c
}

////////////////////////////////////////////////////////////////
// Scalars

type ValueBool bool

func (ValueBool) Type() Type { return TypeBool }
func (v ValueBool) String() string {
	if v {
		return "true"
	}
	return "false"
}
func (v ValueBool) Copy() Value { return v }

type ValueInt32 int32

func (ValueInt32) Type() Type       { return TypeInt32 }
func (v ValueInt32) String() string { return strconv.FormatInt(int64(v), 10) }
func (v ValueInt32) Copy() Value    { return v }

type ValueInt64 int64

func (ValueInt64) Type() Type       { return TypeInt64 }
func (v ValueInt64) String() string { return strconv.FormatInt(int64(v), 10) }
func (v ValueInt64) Copy() Value    { return v }

type ValueFloat32 float32

func (ValueFloat32) Type() Type       { return TypeFloat32 }
func (v ValueFloat32) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 32) }
func (v ValueFloat32) Copy() Value    { return v }

type ValueFloat64 float64

func (ValueFloat64) Type() Type       { return TypeFloat64 }
func (v ValueFloat64) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v ValueFloat64) Copy() Value    { return v }

// ValueEnum is the numeric value of an enum item. Interpreting it requires
// external knowledge of the enum type, which is determined by the owning
// class and property, not carried by the value itself.
type ValueEnum uint32

func (ValueEnum) Type() Type       { return TypeEnum }
func (v ValueEnum) String() string { return strconv.FormatUint(uint64(v), 10) }
func (v ValueEnum) Copy() Value    { return v }

// ValueBrickColor is a palette index into Roblox's BrickColor table. The
// palette itself is external to this package.
type ValueBrickColor uint32

func (ValueBrickColor) Type() Type       { return TypeBrickColor }
func (v ValueBrickColor) String() string { return strconv.FormatUint(uint64(v), 10) }
func (v ValueBrickColor) Copy() Value    { return v }

// ValueReference holds the Ref of another instance, or the null Ref.
type ValueReference struct {
	Ref Ref
}

func (ValueReference) Type() Type { return TypeRef }
func (v ValueReference) String() string {
	return v.Ref.String()
}
func (v ValueReference) Copy() Value { return v }
