package rbxdom

// Type identifies the kind of a Variant value.
type Type byte

const (
	TypeInvalid Type = iota
	TypeString
	TypeBinaryString
	TypeProtectedString
	TypeContent
	TypeBool
	TypeInt32
	TypeInt64
	TypeFloat32
	TypeFloat64
	TypeVector2
	TypeVector2int16
	TypeVector3
	TypeVector3int16
	TypeColor3
	TypeColor3uint8
	TypeUDim
	TypeUDim2
	TypeCFrame
	TypePhysicalProperties
	TypeEnum
	TypeRef
	TypeBrickColor
	TypeRay
	TypeFaces
	TypeAxes
	TypeNumberSequence
	TypeColorSequence
	TypeNumberRange
	TypeRect2D
	TypeSharedString
)

var typeStrings = map[Type]string{
	TypeString:             "String",
	TypeBinaryString:       "BinaryString",
	TypeProtectedString:    "ProtectedString",
	TypeContent:            "Content",
	TypeBool:               "Bool",
	TypeInt32:              "Int32",
	TypeInt64:              "Int64",
	TypeFloat32:            "Float32",
	TypeFloat64:            "Float64",
	TypeVector2:            "Vector2",
	TypeVector2int16:       "Vector2int16",
	TypeVector3:            "Vector3",
	TypeVector3int16:       "Vector3int16",
	TypeColor3:             "Color3",
	TypeColor3uint8:        "Color3uint8",
	TypeUDim:               "UDim",
	TypeUDim2:              "UDim2",
	TypeCFrame:             "CFrame",
	TypePhysicalProperties: "PhysicalProperties",
	TypeEnum:               "Enum",
	TypeRef:                "Ref",
	TypeBrickColor:         "BrickColor",
	TypeRay:                "Ray",
	TypeFaces:              "Faces",
	TypeAxes:               "Axes",
	TypeNumberSequence:     "NumberSequence",
	TypeColorSequence:      "ColorSequence",
	TypeNumberRange:        "NumberRange",
	TypeRect2D:             "Rect2D",
	TypeSharedString:       "SharedString",
}

// String returns a string representation of the type, or "Invalid" if t
// does not name a known kind.
func (t Type) String() string {
	if s, ok := typeStrings[t]; ok {
		return s
	}
	return "Invalid"
}

// TypeFromString returns the Type whose String method returns s, or
// TypeInvalid if no such type exists.
func TypeFromString(s string) Type {
	for typ, str := range typeStrings {
		if s == str {
			return typ
		}
	}
	return TypeInvalid
}

// Value holds a value of a particular Variant kind. Kinds are totally
// disjoint: there is no implicit coercion between, for example, Color3 and
// Color3uint8, or between Int32 and Int64.
type Value interface {
	// Type returns the kind of the value.
	Type() Type

	// String returns a human-readable representation of the value. It is
	// not used by any codec and is not guaranteed to round-trip.
	String() string

	// Copy returns a value that can be mutated without affecting the
	// receiver.
	Copy() Value
}

type valueGenerator func() Value

var valueGenerators = map[Type]valueGenerator{
	TypeString:             func() Value { return ValueString{} },
	TypeBinaryString:       func() Value { return ValueBinaryString{} },
	TypeProtectedString:    func() Value { return ValueProtectedString{} },
	TypeContent:            func() Value { return ValueContent{} },
	TypeBool:               func() Value { return ValueBool(false) },
	TypeInt32:              func() Value { return ValueInt32(0) },
	TypeInt64:              func() Value { return ValueInt64(0) },
	TypeFloat32:            func() Value { return ValueFloat32(0) },
	TypeFloat64:            func() Value { return ValueFloat64(0) },
	TypeVector2:            func() Value { return ValueVector2{} },
	TypeVector2int16:       func() Value { return ValueVector2int16{} },
	TypeVector3:            func() Value { return ValueVector3{} },
	TypeVector3int16:       func() Value { return ValueVector3int16{} },
	TypeColor3:             func() Value { return ValueColor3{} },
	TypeColor3uint8:        func() Value { return ValueColor3uint8{} },
	TypeUDim:               func() Value { return ValueUDim{} },
	TypeUDim2:              func() Value { return ValueUDim2{} },
	TypeCFrame:             newValueCFrame,
	TypePhysicalProperties: func() Value { return ValuePhysicalProperties{} },
	TypeEnum:               func() Value { return ValueEnum(0) },
	TypeRef:                func() Value { return ValueReference{} },
	TypeBrickColor:         func() Value { return ValueBrickColor(0) },
	TypeRay:                func() Value { return ValueRay{} },
	TypeFaces:              func() Value { return ValueFaces{} },
	TypeAxes:               func() Value { return ValueAxes{} },
	TypeNumberSequence:     func() Value { return ValueNumberSequence{} },
	TypeColorSequence:      func() Value { return ValueColorSequence{} },
	TypeNumberRange:        func() Value { return ValueNumberRange{} },
	TypeRect2D:             func() Value { return ValueRect2D{} },
	TypeSharedString:       func() Value { return ValueSharedString{} },
}

// NewValue returns a new Value of the given Type, set to a zero-ish value
// for the kind. It returns nil if typ is not a recognized kind.
func NewValue(typ Type) Value {
	gen, ok := valueGenerators[typ]
	if !ok {
		return nil
	}
	return gen()
}

// joinstr concatenates its arguments without the intermediate allocations
// of fmt.Sprint or strings.Join's separator handling.
func joinstr(a ...string) string {
	n := 0
	for _, s := range a {
		n += len(s)
	}
	b := make([]byte, 0, n)
	for _, s := range a {
		b = append(b, s...)
	}
	return string(b)
}
