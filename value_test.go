package rbxdom

import (
	"math"
	"reflect"
	"strings"
	"testing"
)

var testTypes = []Type{}

func init() {
	testTypes = make([]Type, 0, len(typeStrings))
	for typ := range typeStrings {
		testTypes = append(testTypes, typ)
	}
}

func TestType_String(t *testing.T) {
	if TypeString.String() != "String" {
		t.Error("unexpected result")
	}
	if Type(0).String() != "Invalid" {
		t.Error("expected Invalid string for the zero Type")
	}
}

func TestTypeFromString(t *testing.T) {
	for _, typ := range testTypes {
		if st := TypeFromString(typ.String()); st != typ {
			t.Errorf("expected type %s from TypeFromString (got %s)", typ, st)
		}
	}
	if TypeFromString("UnknownType") != TypeInvalid {
		t.Error("unexpected result from TypeFromString")
	}
}

func TestNewValue(t *testing.T) {
	for _, typ := range testTypes {
		name := reflect.ValueOf(NewValue(typ)).Type().Name()
		if strings.TrimPrefix(name, "Value") != typ.String() {
			t.Errorf("type %s does not match Type%s", name, typ)
		}
	}
	if NewValue(TypeInvalid) != nil {
		t.Error("expected nil value for invalid type")
	}
}

func TestValueCopy(t *testing.T) {
	for _, typ := range testTypes {
		v := NewValue(typ)
		c := v.Copy()
		if !reflect.DeepEqual(v, c) {
			t.Errorf("copy of value %q is not equal to original", v.Type().String())
		}
	}
}

type testCompareString struct {
	v Value
	s string
}

func testCompareStrings(t *testing.T, vts []testCompareString) {
	for _, vt := range vts {
		if vt.v.String() != vt.s {
			t.Errorf("unexpected result from String method of value %q (%q expected, got %q)", vt.v.Type().String(), vt.s, vt.v.String())
		}
	}
}

func TestValueString(t *testing.T) {
	testCompareStrings(t, []testCompareString{
		{ValueString("test\000string"), "test\000string"},
		{ValueBinaryString("test\000string"), "test\000string"},
		{ValueProtectedString("test\000string"), "test\000string"},
		{ValueContent("test\000string"), "test\000string"},
		{ValueSharedString("blob"), "blob"},

		{ValueBool(true), "true"},
		{ValueBool(false), "false"},

		{ValueInt32(42), "42"},
		{ValueInt32(-42), "-42"},
		{ValueInt64(9000000000), "9000000000"},

		{ValueFloat32(math.Pi), "3.1415927"},
		{ValueFloat64(math.Pi), "3.141592653589793"},

		{ValueEnum(42), "42"},
		{ValueBrickColor(194), "194"},

		{ValueUDim{Scale: math.Pi, Offset: 12345}, "3.1415927, 12345"},
		{ValueUDim2{
			X: ValueUDim{Scale: 1, Offset: 2},
			Y: ValueUDim{Scale: 3, Offset: 4},
		}, "{1, 2}, {3, 4}"},

		{ValueRay{
			Origin:    ValueVector3{X: 1, Y: 2, Z: 3},
			Direction: ValueVector3{X: 4, Y: 5, Z: 6},
		}, "{1, 2, 3}, {4, 5, 6}"},

		{ValueFaces{
			Front: true, Bottom: true, Left: true,
			Back: true, Top: true, Right: true,
		}, "Front, Bottom, Left, Back, Top, Right"},
		{ValueFaces{Front: true, Left: true, Top: true}, "Front, Left, Top"},

		{ValueAxes{X: true, Y: true, Z: true}, "X, Y, Z"},
		{ValueAxes{X: true, Z: true}, "X, Z"},

		{ValueColor3{R: 0.5, G: 0.25, B: 0.75}, "0.5, 0.25, 0.75"},
		{ValueColor3uint8{R: 255, G: 128, B: 0}, "255, 128, 0"},

		{ValueVector2{X: 1, Y: 2}, "1, 2"},
		{ValueVector2int16{X: 1, Y: 2}, "1, 2"},
		{ValueVector3{X: 1, Y: 2, Z: 3}, "1, 2, 3"},
		{ValueVector3int16{X: 1, Y: 2, Z: 3}, "1, 2, 3"},

		{ValueCFrame{
			Position: ValueVector3{X: 1, Y: 2, Z: 3},
			Rotation: [9]float32{4, 5, 6, 7, 8, 9, 10, 11, 12},
		}, "1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12"},

		{ValuePhysicalProperties{}, "default"},
		{ValuePhysicalProperties{
			CustomPhysics: true,
			Density:       0.5, Friction: 0.3, Elasticity: 0.2,
			FrictionWeight: 1, ElasticityWeight: 1,
		}, "0.5, 0.3, 0.2, 1, 1"},

		{ValueNumberRange{Min: 1, Max: 2}, "1, 2"},
		{ValueRect2D{
			Min: ValueVector2{X: 0, Y: 0},
			Max: ValueVector2{X: 100, Y: 50},
		}, "{0, 0}, {100, 50}"},

		{ValueNumberSequence{
			{Time: 0, Value: 1, Envelope: 0},
			{Time: 1, Value: 0, Envelope: 0},
		}, "0 1 0 1 0 0"},
		{ValueColorSequence{
			{Time: 0, Value: ValueColor3{R: 1, G: 1, B: 1}, Envelope: 0},
		}, "0 1, 1, 1 0"},

		{ValueReference{}, "null"},
		{ValueReference{Ref: NoRef}, "null"},
	})
}

func TestValueReferenceNonNull(t *testing.T) {
	ref := NewRef()
	v := ValueReference{Ref: ref}
	if v.String() != ref.String() {
		t.Errorf("ValueReference.String() = %q, want %q", v.String(), ref.String())
	}
}

func TestRefRoundTrip(t *testing.T) {
	ref := NewRef()
	s := ref.String()
	parsed, ok := ParseRef(s)
	if !ok {
		t.Fatalf("ParseRef(%q) failed", s)
	}
	if parsed != ref {
		t.Fatalf("ParseRef(%q) = %v, want %v", s, parsed, ref)
	}
}

func TestParseRefRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "null", "RBX", "RBX" + strings.Repeat("z", 32), "notreallyaref"} {
		if _, ok := ParseRef(s); ok {
			t.Errorf("ParseRef(%q) unexpectedly succeeded", s)
		}
	}
}

func TestIsEmptyReferent(t *testing.T) {
	for _, s := range []string{"", "null", "nil"} {
		if !IsEmptyReferent(s) {
			t.Errorf("IsEmptyReferent(%q) = false, want true", s)
		}
	}
	if IsEmptyReferent("RBX00000000000000000000000000000000") {
		t.Error("IsEmptyReferent matched a real-looking referent")
	}
}
