package xml_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/robloxapi/rbxdom"
	"github.com/robloxapi/rbxdom/reflection"
	"github.com/robloxapi/rbxdom/xml"
)

func decodeString(t *testing.T, doc string) *rbxdom.DOM {
	t.Helper()
	dom, warnings, err := xml.Decode(strings.NewReader(doc), nil, xml.DefaultPolicy)
	if err != nil {
		t.Fatalf("Decode: %v (warnings: %v)", err, warnings)
	}
	return dom
}

func TestDecodeEmptyDocument(t *testing.T) {
	dom := decodeString(t, `<roblox version="4"></roblox>`)
	root := dom.Root()
	if root.ClassName != "DataModel" {
		t.Fatalf("root.ClassName = %q, want DataModel", root.ClassName)
	}
	if len(root.Children()) != 0 {
		t.Fatalf("root has %d children, want 0", len(root.Children()))
	}
}

func TestDecodeUnknownTopLevelElementsTolerated(t *testing.T) {
	dom := decodeString(t, `<roblox version="4"><Meta name="ExplicitAutoJoints">true</Meta></roblox>`)
	if len(dom.Root().Children()) != 0 {
		t.Fatal("unknown top-level element should not produce an Item")
	}
}

func TestDecodeNestedFolders(t *testing.T) {
	dom := decodeString(t, `<roblox version="4">`+
		`<Item class="Folder" referent="a"><Properties><string name="Name">Outer</string></Properties>`+
		`<Item class="Folder" referent="b"><Properties><string name="Name">Inner</string></Properties></Item>`+
		`</Item></roblox>`)

	root := dom.Root()
	if len(root.Children()) != 1 {
		t.Fatalf("root has %d children, want 1", len(root.Children()))
	}
	outer := dom.Get(root.Children()[0])
	if outer.Name != "Outer" || outer.ClassName != "Folder" {
		t.Fatalf("outer = %+v", outer)
	}
	if len(outer.Children()) != 1 {
		t.Fatalf("outer has %d children, want 1", len(outer.Children()))
	}
	inner := dom.Get(outer.Children()[0])
	if inner.Name != "Inner" || inner.ClassName != "Folder" {
		t.Fatalf("inner = %+v", inner)
	}
}

func TestDecodeBoolValue(t *testing.T) {
	dom := decodeString(t, `<roblox version="4">`+
		`<Item class="BoolValue" referent="h"><Properties>`+
		`<string name="Name">T</string><bool name="Value">true</bool>`+
		`</Properties></Item></roblox>`)

	inst := dom.Get(dom.Root().Children()[0])
	if inst.Name != "T" || inst.ClassName != "BoolValue" {
		t.Fatalf("inst = %+v", inst)
	}
	v, ok := inst.Properties["Value"].(rbxdom.ValueBool)
	if !ok || !bool(v) {
		t.Fatalf("Value = %#v, want Bool(true)", inst.Properties["Value"])
	}
}

func TestDecodeVector3Value(t *testing.T) {
	dom := decodeString(t, `<roblox version="4">`+
		`<Item class="Vector3Value" referent="h"><Properties>`+
		`<Vector3 name="Value"><X>0</X><Y>0.25</Y><Z>-123.23</Z></Vector3>`+
		`</Properties></Item></roblox>`)

	inst := dom.Get(dom.Root().Children()[0])
	v, ok := inst.Properties["Value"].(rbxdom.ValueVector3)
	if !ok {
		t.Fatalf("Value = %#v, want ValueVector3", inst.Properties["Value"])
	}
	want := rbxdom.ValueVector3{X: 0, Y: 0.25, Z: -123.23}
	if v.X != want.X || v.Y != want.Y || v.Z != want.Z {
		t.Fatalf("Value = %+v, want %+v", v, want)
	}
}

func TestDecodeColor3Packed(t *testing.T) {
	dom := decodeString(t, `<roblox version="4">`+
		`<Item class="Color3Value" referent="h"><Properties>`+
		`<Color3 name="Value">4294934592</Color3>`+
		`</Properties></Item></roblox>`)

	inst := dom.Get(dom.Root().Children()[0])
	v, ok := inst.Properties["Value"].(rbxdom.ValueColor3)
	if !ok {
		t.Fatalf("Value = %#v, want ValueColor3", inst.Properties["Value"])
	}
	want := rbxdom.ValueColor3{R: 1, G: float32(0x80) / 255, B: float32(0x40) / 255}
	if v.R != want.R || v.G != want.G || v.B != want.B {
		t.Fatalf("Value = %+v, want %+v", v, want)
	}
}

func TestDecodeColor3PackedAndExpandedAgree(t *testing.T) {
	expanded := decodeString(t, `<roblox version="4">`+
		`<Item class="Color3Value" referent="h"><Properties>`+
		`<Color3 name="Value"><R>1</R><G>0.5019608</G><B>0.2509804</B></Color3>`+
		`</Properties></Item></roblox>`)
	packed := decodeString(t, `<roblox version="4">`+
		`<Item class="Color3Value" referent="h"><Properties>`+
		`<Color3 name="Value">4294934592</Color3>`+
		`</Properties></Item></roblox>`)

	a := expanded.Get(expanded.Root().Children()[0]).Properties["Value"].(rbxdom.ValueColor3)
	b := packed.Get(packed.Root().Children()[0]).Properties["Value"].(rbxdom.ValueColor3)
	if a.R != b.R || a.G != b.G || a.B != b.B {
		t.Fatalf("expanded = %+v, packed = %+v", a, b)
	}
}

func TestDecodeSelfReferenceRoundTrips(t *testing.T) {
	doc := `<roblox version="4">` +
		`<Item class="ObjectValue" referent="RBX0000000000000000000000000000000A">` +
		`<Properties><string name="Name">Self</string><Ref name="Value">RBX0000000000000000000000000000000A</Ref></Properties>` +
		`</Item></roblox>`
	dom := decodeString(t, doc)
	inst := dom.Get(dom.Root().Children()[0])
	v, ok := inst.Properties["Value"].(rbxdom.ValueReference)
	if !ok {
		t.Fatalf("Value = %#v, want ValueReference", inst.Properties["Value"])
	}
	if v.Ref != inst.Ref {
		t.Fatalf("self-reference did not resolve to the same instance: %s != %s", v.Ref, inst.Ref)
	}

	var buf bytes.Buffer
	if _, err := xml.Encode(&buf, dom, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	rt, warnings, err := xml.Decode(&buf, nil, xml.DefaultPolicy)
	if err != nil {
		t.Fatalf("re-Decode: %v (warnings: %v)", err, warnings)
	}
	rtInst := rt.Get(rt.Root().Children()[0])
	rtV, ok := rtInst.Properties["Value"].(rbxdom.ValueReference)
	if !ok || rtV.Ref != rtInst.Ref {
		t.Fatalf("self-reference did not survive round-trip: %+v", rtInst)
	}
}

func TestDecodePropertyMissingNameAttrIsMalformed(t *testing.T) {
	doc := `<roblox version="4"><Item class="Folder" referent="a"><Properties>` +
		`<bool>true</bool></Properties></Item></roblox>`
	_, _, err := xml.Decode(strings.NewReader(doc), nil, xml.DefaultPolicy)
	if err == nil {
		t.Fatal("expected a MalformedDocument error")
	}
	derr, ok := err.(*xml.DecodeError)
	if !ok || derr.Kind != xml.KindMalformedDocument {
		t.Fatalf("err = %#v, want KindMalformedDocument", err)
	}
}

func TestDecodeUnresolvedReferentWarnsAndIsNull(t *testing.T) {
	doc := `<roblox version="4"><Item class="ObjectValue" referent="a">` +
		`<Properties><string name="Name">O</string><Ref name="Value">RBXdoesnotexist00000000000000000</Ref></Properties>` +
		`</Item></roblox>`
	dom, warnings, err := xml.Decode(strings.NewReader(doc), nil, xml.DefaultPolicy)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(warnings) == 0 {
		t.Fatal("expected a warning for an unresolved referent")
	}
	inst := dom.Get(dom.Root().Children()[0])
	v := inst.Properties["Value"].(rbxdom.ValueReference)
	if v.Ref.IsSome() {
		t.Fatalf("unresolved referent should decode to the null Ref, got %s", v.Ref)
	}
}

func TestUnsupportedVersionRejected(t *testing.T) {
	_, _, err := xml.Decode(strings.NewReader(`<roblox version="5"></roblox>`), nil, xml.DefaultPolicy)
	derr, ok := err.(*xml.DecodeError)
	if !ok || derr.Kind != xml.KindUnsupportedVersion {
		t.Fatalf("err = %#v, want KindUnsupportedVersion", err)
	}
}

func TestUnknownPropertyTagWarnsByDefault(t *testing.T) {
	doc := `<roblox version="4"><Item class="Folder" referent="a"><Properties>` +
		`<string name="Name">F</string><FutureType name="Mystery">??</FutureType>` +
		`</Properties></Item></roblox>`
	dom, warnings, err := xml.Decode(strings.NewReader(doc), nil, xml.DefaultPolicy)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(warnings) == 0 {
		t.Fatal("expected a warning for an unknown property tag")
	}
	inst := dom.Get(dom.Root().Children()[0])
	if _, ok := inst.Properties["Mystery"]; ok {
		t.Fatal("unrecognized property should not appear in Properties")
	}
}

func TestUnknownPropertyTagErrorsUnderStrictPolicy(t *testing.T) {
	doc := `<roblox version="4"><Item class="Folder" referent="a"><Properties>` +
		`<FutureType name="Mystery">??</FutureType>` +
		`</Properties></Item></roblox>`
	strict := xml.Policy{UnknownPropertyTags: xml.SeverityError, UnknownPropertyTypes: xml.SeverityError}
	_, _, err := xml.Decode(strings.NewReader(doc), nil, strict)
	derr, ok := err.(*xml.DecodeError)
	if !ok || derr.Kind != xml.KindUnknownType {
		t.Fatalf("err = %#v, want KindUnknownType", err)
	}
}

func TestEncodeUsesSerializedName(t *testing.T) {
	db := reflection.Static{
		Classes: map[string]reflection.StaticClass{
			"Part": {
				Properties: map[string]string{"Transparency": "float"},
				Aliases:    map[string]string{"transparency": "Transparency"},
			},
		},
	}
	dom := rbxdom.New(rbxdom.NewBuilder("Part").WithName("P").
		WithProperty("Transparency", rbxdom.ValueFloat32(0.5)))
	var buf bytes.Buffer
	if _, err := xml.Encode(&buf, dom, serializedNameDB{db}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(buf.String(), `name="transparency"`) {
		t.Fatalf("encoded document did not use the serialized name:\n%s", buf.String())
	}
}

// serializedNameDB wraps a reflection.Static to answer SerializedName with
// a lowercase legacy alias, exercising the write-side rename independently
// of Static's own identity SerializedName.
type serializedNameDB struct {
	reflection.Static
}

func (db serializedNameDB) SerializedName(className, canonicalName string) (string, bool) {
	if _, ok := db.Static.SerializedName(className, canonicalName); !ok {
		return "", false
	}
	return strings.ToLower(canonicalName), true
}

func TestDecodeWarnsOnDeclaredTypeMismatch(t *testing.T) {
	db := reflection.Static{
		Classes: map[string]reflection.StaticClass{
			"Part": {Properties: map[string]string{"Size": "Vector3"}},
		},
	}
	doc := `<roblox version="4"><Item class="Part" referent="a"><Properties>` +
		`<string name="Name">P</string><float name="Size">1</float>` +
		`</Properties></Item></roblox>`
	_, warnings, err := xml.Decode(strings.NewReader(doc), db, xml.DefaultPolicy)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(warnings) == 0 {
		t.Fatal("expected a warning for a property encoded with the wrong declared type")
	}
}

func TestDecodeAcceptsKnownEnumDeclaredType(t *testing.T) {
	db := reflection.Static{
		Classes: map[string]reflection.StaticClass{
			"Part": {Properties: map[string]string{"Shape": "Enum.PartType"}},
		},
		Enums: map[string]bool{"PartType": true},
	}
	doc := `<roblox version="4"><Item class="Part" referent="a"><Properties>` +
		`<string name="Name">P</string><token name="Shape">1</token>` +
		`</Properties></Item></roblox>`
	_, warnings, err := xml.Decode(strings.NewReader(doc), db, xml.DefaultPolicy)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings for a recognized enum property: %v", warnings)
	}
}

func TestDecodeWarnsOnUnknownEnumDeclaredType(t *testing.T) {
	db := reflection.Static{
		Classes: map[string]reflection.StaticClass{
			"Part": {Properties: map[string]string{"Shape": "Enum.PartType"}},
		},
	}
	doc := `<roblox version="4"><Item class="Part" referent="a"><Properties>` +
		`<string name="Name">P</string><token name="Shape">1</token>` +
		`</Properties></Item></roblox>`
	_, warnings, err := xml.Decode(strings.NewReader(doc), db, xml.DefaultPolicy)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(warnings) == 0 {
		t.Fatal("expected a warning: the declared enum is not registered as known")
	}
}

// roundTrip builds a single-instance DOM holding exactly one property,
// encodes it, decodes the result, and returns the decoded value so callers
// can compare it bitwise against the original.
func roundTrip(t *testing.T, value rbxdom.Value) rbxdom.Value {
	t.Helper()
	dom := rbxdom.New(rbxdom.NewBuilder("IntValue").WithName("V").WithProperty("Value", value))

	var buf bytes.Buffer
	if _, err := xml.Encode(&buf, dom, reflection.None); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	rt, warnings, err := xml.Decode(&buf, reflection.None, xml.DefaultPolicy)
	if err != nil {
		t.Fatalf("Decode: %v (warnings: %v, doc: %s)", err, warnings, buf.String())
	}
	inst := rt.Get(rt.Root().Children()[0])
	got, ok := inst.Properties["Value"]
	if !ok {
		t.Fatalf("Value property missing after round-trip (doc: %s)", buf.String())
	}
	return got
}

func TestRoundTripFloat32Special(t *testing.T) {
	cases := []float32{
		0, -0, 1, -1, 0.5, float32(math.Inf(1)), float32(math.Inf(-1)), float32(math.NaN()),
		math.SmallestNonzeroFloat32, math.MaxFloat32,
	}
	for _, f := range cases {
		got := roundTrip(t, rbxdom.ValueFloat32(f))
		gv, ok := got.(rbxdom.ValueFloat32)
		if !ok {
			t.Fatalf("round-tripped value is %T, want ValueFloat32", got)
		}
		if math.Float32bits(float32(gv)) != math.Float32bits(f) {
			t.Errorf("round-trip of %v produced %v (bits %x != %x)", f, gv, math.Float32bits(float32(gv)), math.Float32bits(f))
		}
	}
}

func TestRoundTripFloat64Special(t *testing.T) {
	cases := []float64{0, -0, 1, -1, math.Inf(1), math.Inf(-1), math.NaN(), math.MaxFloat64}
	for _, f := range cases {
		got := roundTrip(t, rbxdom.ValueFloat64(f))
		gv, ok := got.(rbxdom.ValueFloat64)
		if !ok {
			t.Fatalf("round-tripped value is %T, want ValueFloat64", got)
		}
		if math.Float64bits(float64(gv)) != math.Float64bits(f) {
			t.Errorf("round-trip of %v produced %v", f, gv)
		}
	}
}

func TestRoundTripEmptyAndZeroLength(t *testing.T) {
	cases := []rbxdom.Value{
		rbxdom.ValueString(""),
		rbxdom.ValueBinaryString(nil),
		rbxdom.ValueProtectedString(""),
		rbxdom.ValueContent(nil),
		rbxdom.ValueSharedString(nil),
	}
	for _, v := range cases {
		got := roundTrip(t, v)
		if got.Type() != v.Type() {
			t.Errorf("round-trip of %s changed type to %s", v.Type(), got.Type())
		}
		if got.String() != v.String() {
			t.Errorf("round-trip of %s: got %q, want %q", v.Type(), got.String(), v.String())
		}
	}
}

func TestRoundTripBinaryStringContent(t *testing.T) {
	payload := make([]byte, 300)
	for i := range payload {
		payload[i] = byte(i)
	}
	got := roundTrip(t, rbxdom.ValueBinaryString(payload))
	bs, ok := got.(rbxdom.ValueBinaryString)
	if !ok {
		t.Fatalf("round-tripped value is %T, want ValueBinaryString", got)
	}
	if !bytes.Equal([]byte(bs), payload) {
		t.Fatalf("round-trip of %d-byte BinaryString lost its content (got %d bytes)", len(payload), len(bs))
	}
}

func TestRoundTripSharedStringContent(t *testing.T) {
	payload := []byte("the quick brown fox jumps over the lazy dog, repeated for good measure")
	got := roundTrip(t, rbxdom.ValueSharedString(payload))
	ss, ok := got.(rbxdom.ValueSharedString)
	if !ok {
		t.Fatalf("round-tripped value is %T, want ValueSharedString", got)
	}
	if !bytes.Equal([]byte(ss), payload) {
		t.Fatalf("round-trip of SharedString lost its content (got %q)", string(ss))
	}
}

func TestRoundTripColor3uint8ByteExact(t *testing.T) {
	got := roundTrip(t, rbxdom.ValueColor3uint8{R: 0, G: 128, B: 255})
	v, ok := got.(rbxdom.ValueColor3uint8)
	if !ok || v.R != 0 || v.G != 128 || v.B != 255 {
		t.Fatalf("got %#v, want Color3uint8{0, 128, 255}", got)
	}
}

func TestRoundTripCFrameNoOrthonormalization(t *testing.T) {
	v := rbxdom.ValueCFrame{
		Position: rbxdom.ValueVector3{X: 1, Y: 2, Z: 3},
		Rotation: [9]float32{2, 0, 0, 0, 3, 0, 0, 0, 4}, // not orthonormal
	}
	got := roundTrip(t, v).(rbxdom.ValueCFrame)
	if got.Position != v.Position || got.Rotation != v.Rotation {
		t.Fatalf("got %+v, want %+v", got, v)
	}
}

func TestRoundTripPhysicalPropertiesDefault(t *testing.T) {
	got := roundTrip(t, rbxdom.ValuePhysicalProperties{}).(rbxdom.ValuePhysicalProperties)
	if got.CustomPhysics {
		t.Fatal("default PhysicalProperties should decode with CustomPhysics == false")
	}
}

func TestRoundTripPhysicalPropertiesCustom(t *testing.T) {
	v := rbxdom.ValuePhysicalProperties{
		CustomPhysics: true, Density: 0.7, Friction: 0.3, Elasticity: 0.5,
		FrictionWeight: 1, ElasticityWeight: 1,
	}
	got := roundTrip(t, v).(rbxdom.ValuePhysicalProperties)
	if got != v {
		t.Fatalf("got %+v, want %+v", got, v)
	}
}

func TestRoundTripTree(t *testing.T) {
	dom := rbxdom.New(rbxdom.NewBuilder("DataModel").
		WithChild(rbxdom.NewBuilder("Part").WithName("A").WithProperty("Transparency", rbxdom.ValueFloat32(0.5))).
		WithChild(rbxdom.NewBuilder("Folder").WithName("B").
			WithChild(rbxdom.NewBuilder("Part").WithName("C"))))

	var buf bytes.Buffer
	if _, err := xml.Encode(&buf, dom, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	rt, warnings, err := xml.Decode(&buf, nil, xml.DefaultPolicy)
	if err != nil {
		t.Fatalf("Decode: %v (warnings: %v)", err, warnings)
	}

	root := rt.Root()
	if len(root.Children()) != 2 {
		t.Fatalf("root has %d children, want 2", len(root.Children()))
	}
	a := rt.Get(root.Children()[0])
	if a.Name != "A" || a.ClassName != "Part" {
		t.Fatalf("a = %+v", a)
	}
	if tr, ok := a.Properties["Transparency"].(rbxdom.ValueFloat32); !ok || tr != 0.5 {
		t.Fatalf("a.Transparency = %#v, want Float32(0.5)", a.Properties["Transparency"])
	}
	b := rt.Get(root.Children()[1])
	if b.Name != "B" || len(b.Children()) != 1 {
		t.Fatalf("b = %+v", b)
	}
	c := rt.Get(b.Children()[0])
	if c.Name != "C" {
		t.Fatalf("c = %+v", c)
	}
}

func TestEncodeSingleSubtreeEmitsOneItem(t *testing.T) {
	dom := rbxdom.New(rbxdom.NewBuilder("Part").WithName("OnlyPart"))
	var buf bytes.Buffer
	if _, err := xml.Encode(&buf, dom, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.Count(buf.String(), "<Item ") != 1 {
		t.Fatalf("expected exactly one Item, document: %s", buf.String())
	}
	if !strings.Contains(buf.String(), `class="Part"`) {
		t.Fatalf("expected class=\"Part\" attribute, document: %s", buf.String())
	}
}
