package xml

import (
	"bytes"
	"encoding/base64"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/robloxapi/rbxdom"
)

// tagNames maps a Variant kind to the element name it is written as.
// Several kinds share Roblox's historical naming (lowercase scalars,
// "CoordinateFrame" instead of "CFrame", "Ref" instead of "Reference").
var tagNames = map[rbxdom.Type]string{
	rbxdom.TypeString:             "string",
	rbxdom.TypeBinaryString:       "BinaryString",
	rbxdom.TypeProtectedString:    "ProtectedString",
	rbxdom.TypeContent:            "Content",
	rbxdom.TypeBool:               "bool",
	rbxdom.TypeInt32:              "int",
	rbxdom.TypeInt64:              "int64",
	rbxdom.TypeFloat32:            "float",
	rbxdom.TypeFloat64:            "double",
	rbxdom.TypeVector2:            "Vector2",
	rbxdom.TypeVector2int16:       "Vector2int16",
	rbxdom.TypeVector3:            "Vector3",
	rbxdom.TypeVector3int16:       "Vector3int16",
	rbxdom.TypeColor3:             "Color3",
	rbxdom.TypeColor3uint8:        "Color3uint8",
	rbxdom.TypeUDim:               "UDim",
	rbxdom.TypeUDim2:              "UDim2",
	rbxdom.TypeCFrame:             "CoordinateFrame",
	rbxdom.TypePhysicalProperties: "PhysicalProperties",
	rbxdom.TypeEnum:               "token",
	rbxdom.TypeRef:                "Ref",
	rbxdom.TypeBrickColor:         "BrickColor",
	rbxdom.TypeRay:                "Ray",
	rbxdom.TypeFaces:              "Faces",
	rbxdom.TypeAxes:               "Axes",
	rbxdom.TypeNumberSequence:     "NumberSequence",
	rbxdom.TypeColorSequence:      "ColorSequence",
	rbxdom.TypeNumberRange:        "NumberRange",
	rbxdom.TypeRect2D:             "Rect2D",
	rbxdom.TypeSharedString:       "SharedString",
}

var typeFromTagName map[string]rbxdom.Type

func init() {
	typeFromTagName = make(map[string]rbxdom.Type, len(tagNames))
	for typ, name := range tagNames {
		typeFromTagName[name] = typ
	}
}

// sharedStringTable deduplicates ValueSharedString contents by their
// blake2b-256 hash, truncated to 16 bytes, matching Roblox's own codec.
// The zero value is ready to use.
type sharedStringTable struct {
	byHash map[string][]byte // 16-byte hash -> content
}

func (t *sharedStringTable) intern(value []byte) (hash [16]byte) {
	sum := blake2b.Sum256(value)
	copy(hash[:], sum[:16])
	if t.byHash == nil {
		t.byHash = make(map[string][]byte)
	}
	key := string(hash[:])
	if _, ok := t.byHash[key]; !ok {
		t.byHash[key] = append([]byte(nil), value...)
	}
	return hash
}

func (t *sharedStringTable) lookup(hash [16]byte) ([]byte, bool) {
	v, ok := t.byHash[string(hash[:])]
	return v, ok
}

// encodeHashAttr renders a 16-byte hash key as the base64 text used in a
// SharedStrings table entry's md5 attribute.
func encodeHashAttr(hash string) string {
	return base64.StdEncoding.EncodeToString([]byte(hash))
}

// decodeHashAttr parses a SharedStrings table entry's md5 attribute back
// into its 16-byte hash.
func decodeHashAttr(attr string) (hash [16]byte, ok bool) {
	raw, err := base64.StdEncoding.DecodeString(attr)
	if err != nil || len(raw) != 16 {
		return hash, false
	}
	copy(hash[:], raw)
	return hash, true
}

// sortedHashes returns the table's hash keys in a stable order, for
// deterministic output when writing the document-level SharedStrings
// table.
func (t *sharedStringTable) sortedHashes() []string {
	keys := make([]string, 0, len(t.byHash))
	for k := range t.byHash {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// readValue decodes a value of the given kind from er, which must be
// positioned just after the property's own EventStartElement. It consumes
// everything up to (but not including) the matching EventEndElement.
func readValue(er *EventReader, typ rbxdom.Type, shared *sharedStringTable) (rbxdom.Value, error) {
	switch typ {
	case rbxdom.TypeString:
		return rbxdom.ValueString(readText(er)), nil
	case rbxdom.TypeBinaryString:
		data, err := readBase64(er)
		return rbxdom.ValueBinaryString(data), err
	case rbxdom.TypeProtectedString:
		return rbxdom.ValueProtectedString(readText(er)), nil
	case rbxdom.TypeContent:
		return readContent(er)
	case rbxdom.TypeSharedString:
		return readSharedString(er, shared)
	case rbxdom.TypeBool:
		switch readText(er) {
		case "true", "True", "TRUE":
			return rbxdom.ValueBool(true), nil
		case "false", "False", "FALSE":
			return rbxdom.ValueBool(false), nil
		default:
			return nil, &DecodeError{Kind: KindInvalidScalar, Msg: "invalid bool text"}
		}
	case rbxdom.TypeInt32:
		n, err := strconv.ParseInt(readText(er), 10, 32)
		if err != nil {
			return nil, &DecodeError{Kind: KindInvalidScalar, Msg: err.Error()}
		}
		return rbxdom.ValueInt32(n), nil
	case rbxdom.TypeInt64:
		n, err := strconv.ParseInt(readText(er), 10, 64)
		if err != nil {
			return nil, &DecodeError{Kind: KindInvalidScalar, Msg: err.Error()}
		}
		return rbxdom.ValueInt64(n), nil
	case rbxdom.TypeFloat32:
		f, err := strconv.ParseFloat(readText(er), 32)
		if err != nil {
			return nil, &DecodeError{Kind: KindInvalidScalar, Msg: err.Error()}
		}
		return rbxdom.ValueFloat32(f), nil
	case rbxdom.TypeFloat64:
		f, err := strconv.ParseFloat(readText(er), 64)
		if err != nil {
			return nil, &DecodeError{Kind: KindInvalidScalar, Msg: err.Error()}
		}
		return rbxdom.ValueFloat64(f), nil
	case rbxdom.TypeEnum:
		n, err := strconv.ParseUint(readText(er), 10, 32)
		if err != nil {
			return nil, &DecodeError{Kind: KindInvalidScalar, Msg: err.Error()}
		}
		return rbxdom.ValueEnum(n), nil
	case rbxdom.TypeBrickColor:
		n, err := strconv.ParseUint(readText(er), 10, 32)
		if err != nil {
			return nil, &DecodeError{Kind: KindInvalidScalar, Msg: err.Error()}
		}
		return rbxdom.ValueBrickColor(n), nil
	case rbxdom.TypeRef:
		text := readText(er)
		if rbxdom.IsEmptyReferent(text) {
			return rbxdom.ValueReference{}, nil
		}
		// The Ref may not resolve until every Item has been seen; callers
		// resolve the raw token in a second pass (see Decode in codec.go) and
		// overwrite this placeholder.
		return rbxdom.ValueReference{}, nil
	case rbxdom.TypeColor3:
		return readColor3(er, false)
	case rbxdom.TypeColor3uint8:
		return readColor3(er, true)
	case rbxdom.TypeVector2:
		return readVector2(er)
	case rbxdom.TypeVector2int16:
		return readVector2int16(er)
	case rbxdom.TypeVector3:
		return readVector3(er)
	case rbxdom.TypeVector3int16:
		return readVector3int16(er)
	case rbxdom.TypeUDim:
		return nil, &DecodeError{Kind: KindUnknownType, Msg: "UDim cannot appear as a bare property type"}
	case rbxdom.TypeUDim2:
		return readUDim2(er)
	case rbxdom.TypeCFrame:
		return readCFrame(er)
	case rbxdom.TypeRay:
		return readRay(er)
	case rbxdom.TypeFaces:
		return readFaces(er)
	case rbxdom.TypeAxes:
		return readAxes(er)
	case rbxdom.TypeNumberSequence:
		return readNumberSequence(er)
	case rbxdom.TypeColorSequence:
		return readColorSequence(er)
	case rbxdom.TypeNumberRange:
		return readNumberRange(er)
	case rbxdom.TypeRect2D:
		return readRect2D(er)
	case rbxdom.TypePhysicalProperties:
		return readPhysicalProperties(er)
	default:
		return nil, &DecodeError{Kind: KindUnknownType, Msg: "unsupported type " + typ.String()}
	}
}

// readText reads the property's scalar text content, if any, and then
// consumes any unrecognized child elements up to the end tag boundary
// (there should be none for a well-formed scalar).
func readText(er *EventReader) string {
	text, _ := er.ReadCharacters()
	drainUnknown(er)
	return text
}

func drainUnknown(er *EventReader) {
	for er.Peek().Kind == EventStartElement {
		ev := er.Next()
		er.EatUnknownElement(ev.Name)
	}
}

func readBase64(er *EventReader) ([]byte, error) {
	text := readText(er)
	data, err := base64.StdEncoding.DecodeString(stripWhitespace(text))
	if err != nil {
		return nil, &DecodeError{Kind: KindInvalidScalar, Msg: "invalid base64: " + err.Error()}
	}
	return data, nil
}

func stripWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if !isSpace(s[i]) {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func readContent(er *EventReader) (rbxdom.Value, error) {
	if er.Peek().Kind == EventStartElement {
		ev := er.Next()
		switch ev.Name {
		case "null":
			er.EatUnknownElement("null")
			return rbxdom.ValueContent(nil), nil
		case "url":
			url := readText(er)
			if err := er.ExpectEnd("url"); err != nil {
				return nil, err
			}
			return rbxdom.ValueContent(url), nil
		default:
			er.EatUnknownElement(ev.Name)
			return rbxdom.ValueContent(nil), nil
		}
	}
	text := readText(er)
	return rbxdom.ValueContent(text), nil
}

func readSharedString(er *EventReader, shared *sharedStringTable) (rbxdom.Value, error) {
	hashText := readText(er)
	raw, err := base64.StdEncoding.DecodeString(stripWhitespace(hashText))
	if err != nil || len(raw) != 16 {
		return nil, &DecodeError{Kind: KindInvalidScalar, Msg: "malformed SharedString hash"}
	}
	var hash [16]byte
	copy(hash[:], raw)
	if shared == nil {
		return rbxdom.ValueSharedString(nil), nil
	}
	content, ok := shared.lookup(hash)
	if !ok {
		return rbxdom.ValueSharedString(nil), nil
	}
	return rbxdom.ValueSharedString(content), nil
}

// readFloatField consumes one child element expected to hold a float32,
// returning its name and value. It returns an empty name (without error) if
// the next event is not a start element, which callers treat as "field
// absent, leave default".
func readFloatField(er *EventReader) (name string, value float32, err error) {
	if er.Peek().Kind != EventStartElement {
		return "", 0, nil
	}
	ev := er.Next()
	text, _ := er.ReadCharacters()
	if cerr := er.ExpectEnd(ev.Name); cerr != nil {
		return ev.Name, 0, cerr
	}
	if text == "" {
		return ev.Name, 0, nil
	}
	f, perr := strconv.ParseFloat(text, 32)
	if perr != nil {
		return ev.Name, 0, &DecodeError{Kind: KindInvalidScalar, Msg: perr.Error()}
	}
	return ev.Name, float32(f), nil
}

func readIntField(er *EventReader) (name string, value int64, err error) {
	if er.Peek().Kind != EventStartElement {
		return "", 0, nil
	}
	ev := er.Next()
	text, _ := er.ReadCharacters()
	if cerr := er.ExpectEnd(ev.Name); cerr != nil {
		return ev.Name, 0, cerr
	}
	if text == "" {
		return ev.Name, 0, nil
	}
	n, perr := strconv.ParseInt(text, 10, 64)
	if perr != nil {
		return ev.Name, 0, &DecodeError{Kind: KindInvalidScalar, Msg: perr.Error()}
	}
	return ev.Name, n, nil
}

func readVector2(er *EventReader) (rbxdom.Value, error) {
	var v rbxdom.ValueVector2
	for er.Peek().Kind == EventStartElement {
		name, f, err := readFloatField(er)
		if err != nil {
			return nil, err
		}
		switch name {
		case "X":
			v.X = f
		case "Y":
			v.Y = f
		}
	}
	return v, nil
}

func readVector2int16(er *EventReader) (rbxdom.Value, error) {
	var v rbxdom.ValueVector2int16
	for er.Peek().Kind == EventStartElement {
		name, n, err := readIntField(er)
		if err != nil {
			return nil, err
		}
		switch name {
		case "X":
			v.X = int16(n)
		case "Y":
			v.Y = int16(n)
		}
	}
	return v, nil
}

func readVector3(er *EventReader) (rbxdom.Value, error) {
	var v rbxdom.ValueVector3
	for er.Peek().Kind == EventStartElement {
		name, f, err := readFloatField(er)
		if err != nil {
			return nil, err
		}
		switch name {
		case "X":
			v.X = f
		case "Y":
			v.Y = f
		case "Z":
			v.Z = f
		}
	}
	return v, nil
}

func readVector3int16(er *EventReader) (rbxdom.Value, error) {
	var v rbxdom.ValueVector3int16
	for er.Peek().Kind == EventStartElement {
		name, n, err := readIntField(er)
		if err != nil {
			return nil, err
		}
		switch name {
		case "X":
			v.X = int16(n)
		case "Y":
			v.Y = int16(n)
		case "Z":
			v.Z = int16(n)
		}
	}
	return v, nil
}

// readColor3 reads either the packed 0xAARRGGBB integer form (used when the
// property has no child elements) or the R/G/B sub-element form.
func readColor3(er *EventReader, uint8Form bool) (rbxdom.Value, error) {
	if er.Peek().Kind == EventCharacters {
		text, _ := er.ReadCharacters()
		drainUnknown(er)
		if text == "" {
			if uint8Form {
				return rbxdom.ValueColor3uint8{}, nil
			}
			return rbxdom.ValueColor3{}, nil
		}
		n, err := strconv.ParseUint(text, 10, 32)
		if err != nil {
			return nil, &DecodeError{Kind: KindInvalidScalar, Msg: err.Error()}
		}
		r := byte(n >> 16)
		g := byte(n >> 8)
		b := byte(n)
		if uint8Form {
			return rbxdom.ValueColor3uint8{R: r, G: g, B: b}, nil
		}
		return rbxdom.ValueColor3{
			R: float32(r) / 255,
			G: float32(g) / 255,
			B: float32(b) / 255,
		}, nil
	}

	var r, g, b float32
	for er.Peek().Kind == EventStartElement {
		name, f, err := readFloatField(er)
		if err != nil {
			return nil, err
		}
		switch name {
		case "R":
			r = f
		case "G":
			g = f
		case "B":
			b = f
		}
	}
	if uint8Form {
		return rbxdom.ValueColor3uint8{R: byte(r), G: byte(g), B: byte(b)}, nil
	}
	return rbxdom.ValueColor3{R: r, G: g, B: b}, nil
}

func readUDim2(er *EventReader) (rbxdom.Value, error) {
	var v rbxdom.ValueUDim2
	for er.Peek().Kind == EventStartElement {
		ev := er.Peek()
		switch ev.Name {
		case "XS":
			_, f, err := readFloatField(er)
			if err != nil {
				return nil, err
			}
			v.X.Scale = f
		case "XO":
			_, n, err := readIntField(er)
			if err != nil {
				return nil, err
			}
			v.X.Offset = int32(n)
		case "YS":
			_, f, err := readFloatField(er)
			if err != nil {
				return nil, err
			}
			v.Y.Scale = f
		case "YO":
			_, n, err := readIntField(er)
			if err != nil {
				return nil, err
			}
			v.Y.Offset = int32(n)
		default:
			start := er.Next()
			er.EatUnknownElement(start.Name)
		}
	}
	return v, nil
}

func readCFrame(er *EventReader) (rbxdom.Value, error) {
	v := rbxdom.ValueCFrame{}
	rotIndex := map[string]int{
		"R00": 0, "R01": 1, "R02": 2,
		"R10": 3, "R11": 4, "R12": 5,
		"R20": 6, "R21": 7, "R22": 8,
	}
	for er.Peek().Kind == EventStartElement {
		name, f, err := readFloatField(er)
		if err != nil {
			return nil, err
		}
		switch name {
		case "X":
			v.Position.X = f
		case "Y":
			v.Position.Y = f
		case "Z":
			v.Position.Z = f
		default:
			if i, ok := rotIndex[name]; ok {
				v.Rotation[i] = f
			}
		}
	}
	return v, nil
}

func readRay(er *EventReader) (rbxdom.Value, error) {
	var v rbxdom.ValueRay
	for er.Peek().Kind == EventStartElement {
		ev := er.Next()
		switch ev.Name {
		case "origin":
			sub, err := readVector3(er)
			if err != nil {
				return nil, err
			}
			v.Origin = sub.(rbxdom.ValueVector3)
			if err := er.ExpectEnd("origin"); err != nil {
				return nil, err
			}
		case "direction":
			sub, err := readVector3(er)
			if err != nil {
				return nil, err
			}
			v.Direction = sub.(rbxdom.ValueVector3)
			if err := er.ExpectEnd("direction"); err != nil {
				return nil, err
			}
		default:
			er.EatUnknownElement(ev.Name)
		}
	}
	return v, nil
}

func readFaces(er *EventReader) (rbxdom.Value, error) {
	_, n, err := readIntFieldNamed(er, "faces")
	if err != nil {
		return nil, err
	}
	return rbxdom.ValueFaces{
		Right:  n&(1<<0) != 0,
		Top:    n&(1<<1) != 0,
		Back:   n&(1<<2) != 0,
		Left:   n&(1<<3) != 0,
		Bottom: n&(1<<4) != 0,
		Front:  n&(1<<5) != 0,
	}, nil
}

func readAxes(er *EventReader) (rbxdom.Value, error) {
	_, n, err := readIntFieldNamed(er, "axes")
	if err != nil {
		return nil, err
	}
	return rbxdom.ValueAxes{
		X: n&(1<<0) != 0,
		Y: n&(1<<1) != 0,
		Z: n&(1<<2) != 0,
	}, nil
}

// readIntFieldNamed reads every child element, keeping only the value of
// the one named field, and draining the rest unrecognized.
func readIntFieldNamed(er *EventReader, field string) (name string, value int64, err error) {
	found := false
	for er.Peek().Kind == EventStartElement {
		n, v, ferr := readIntField(er)
		if ferr != nil {
			return n, 0, ferr
		}
		if n == field {
			name, value, found = n, v, true
		}
	}
	if !found {
		return "", 0, nil
	}
	return name, value, nil
}

func readNumberSequence(er *EventReader) (rbxdom.Value, error) {
	text := readText(er)
	fields, err := scanFloats(text)
	if err != nil {
		return nil, err
	}
	if len(fields)%3 != 0 {
		return nil, &DecodeError{Kind: KindInvalidScalar, Msg: "NumberSequence field count not a multiple of 3"}
	}
	seq := make(rbxdom.ValueNumberSequence, 0, len(fields)/3)
	for i := 0; i < len(fields); i += 3 {
		seq = append(seq, rbxdom.ValueNumberSequenceKeypoint{
			Time: fields[i], Value: fields[i+1], Envelope: fields[i+2],
		})
	}
	return seq, nil
}

func readColorSequence(er *EventReader) (rbxdom.Value, error) {
	text := readText(er)
	fields, err := scanFloats(text)
	if err != nil {
		return nil, err
	}
	if len(fields)%5 != 0 {
		return nil, &DecodeError{Kind: KindInvalidScalar, Msg: "ColorSequence field count not a multiple of 5"}
	}
	seq := make(rbxdom.ValueColorSequence, 0, len(fields)/5)
	for i := 0; i < len(fields); i += 5 {
		seq = append(seq, rbxdom.ValueColorSequenceKeypoint{
			Time:     fields[i],
			Value:    rbxdom.ValueColor3{R: fields[i+1], G: fields[i+2], B: fields[i+3]},
			Envelope: fields[i+4],
		})
	}
	return seq, nil
}

func readNumberRange(er *EventReader) (rbxdom.Value, error) {
	text := readText(er)
	fields, err := scanFloats(text)
	if err != nil {
		return nil, err
	}
	if len(fields) < 2 {
		return nil, &DecodeError{Kind: KindInvalidScalar, Msg: "NumberRange needs two fields"}
	}
	return rbxdom.ValueNumberRange{Min: fields[0], Max: fields[1]}, nil
}

func readRect2D(er *EventReader) (rbxdom.Value, error) {
	var v rbxdom.ValueRect2D
	for er.Peek().Kind == EventStartElement {
		ev := er.Next()
		switch ev.Name {
		case "min":
			sub, err := readVector2(er)
			if err != nil {
				return nil, err
			}
			v.Min = sub.(rbxdom.ValueVector2)
			if err := er.ExpectEnd("min"); err != nil {
				return nil, err
			}
		case "max":
			sub, err := readVector2(er)
			if err != nil {
				return nil, err
			}
			v.Max = sub.(rbxdom.ValueVector2)
			if err := er.ExpectEnd("max"); err != nil {
				return nil, err
			}
		default:
			er.EatUnknownElement(ev.Name)
		}
	}
	return v, nil
}

func readPhysicalProperties(er *EventReader) (rbxdom.Value, error) {
	var v rbxdom.ValuePhysicalProperties
	for er.Peek().Kind == EventStartElement {
		ev := er.Peek()
		switch ev.Name {
		case "CustomPhysics":
			er.Next()
			text, _ := er.ReadCharacters()
			er.ExpectEnd("CustomPhysics")
			v.CustomPhysics = text == "true" || text == "True" || text == "TRUE"
		case "Density":
			_, f, err := readFloatField(er)
			if err != nil {
				return nil, err
			}
			v.Density = f
		case "Friction":
			_, f, err := readFloatField(er)
			if err != nil {
				return nil, err
			}
			v.Friction = f
		case "Elasticity":
			_, f, err := readFloatField(er)
			if err != nil {
				return nil, err
			}
			v.Elasticity = f
		case "FrictionWeight":
			_, f, err := readFloatField(er)
			if err != nil {
				return nil, err
			}
			v.FrictionWeight = f
		case "ElasticityWeight":
			_, f, err := readFloatField(er)
			if err != nil {
				return nil, err
			}
			v.ElasticityWeight = f
		default:
			start := er.Next()
			er.EatUnknownElement(start.Name)
		}
	}
	return v, nil
}

// scanFloats splits a whitespace-separated list of float32 literals, in
// the manner of Roblox's own space-separated sequence encoding.
func scanFloats(s string) ([]float32, error) {
	fields := strings.Fields(s)
	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, &DecodeError{Kind: KindInvalidScalar, Msg: err.Error()}
		}
		out[i] = float32(v)
	}
	return out, nil
}

////////////////////////////////////////////////////////////////
// Writing

// writeValue appends the tag(s) encoding value under the given property
// name to parent.tags.
func writeValue(parent *tag, name string, value rbxdom.Value, shared *sharedStringTable) {
	attr := []Attr{{Name: "name", Value: name}}
	switch v := value.(type) {
	case rbxdom.ValueString:
		parent.tags = append(parent.tags, leafTag("string", attr, string(v)))
	case rbxdom.ValueBinaryString:
		parent.tags = append(parent.tags, base64Tag("BinaryString", attr, []byte(v)))
	case rbxdom.ValueProtectedString:
		parent.tags = append(parent.tags, leafTag("ProtectedString", attr, string(v)))
	case rbxdom.ValueContent:
		parent.tags = append(parent.tags, contentTag(attr, v))
	case rbxdom.ValueSharedString:
		parent.tags = append(parent.tags, sharedStringTag(attr, v, shared))
	case rbxdom.ValueBool:
		text := "false"
		if v {
			text = "true"
		}
		parent.tags = append(parent.tags, leafTag("bool", attr, text))
	case rbxdom.ValueInt32:
		parent.tags = append(parent.tags, leafTag("int", attr, strconv.FormatInt(int64(v), 10)))
	case rbxdom.ValueInt64:
		parent.tags = append(parent.tags, leafTag("int64", attr, strconv.FormatInt(int64(v), 10)))
	case rbxdom.ValueFloat32:
		parent.tags = append(parent.tags, leafTag("float", attr, encodeFloat(float32(v))))
	case rbxdom.ValueFloat64:
		parent.tags = append(parent.tags, leafTag("double", attr, encodeDouble(float64(v))))
	case rbxdom.ValueEnum:
		parent.tags = append(parent.tags, leafTag("token", attr, strconv.FormatUint(uint64(v), 10)))
	case rbxdom.ValueBrickColor:
		parent.tags = append(parent.tags, leafTag("BrickColor", attr, strconv.FormatUint(uint64(v), 10)))
	case rbxdom.ValueReference:
		text := "null"
		if v.Ref.IsSome() {
			text = v.Ref.String()
		}
		parent.tags = append(parent.tags, leafTag("Ref", attr, text))
	case rbxdom.ValueColor3:
		parent.tags = append(parent.tags, &tag{startName: "Color3", attr: attr, tags: []*tag{
			leafTag("R", nil, encodeFloat(v.R)),
			leafTag("G", nil, encodeFloat(v.G)),
			leafTag("B", nil, encodeFloat(v.B)),
		}})
	case rbxdom.ValueColor3uint8:
		r := uint64(v.R)
		g := uint64(v.G)
		b := uint64(v.B)
		parent.tags = append(parent.tags, leafTag("Color3uint8", attr, strconv.FormatUint(0xFF<<24|r<<16|g<<8|b, 10)))
	case rbxdom.ValueVector2:
		parent.tags = append(parent.tags, &tag{startName: "Vector2", attr: attr, tags: []*tag{
			leafTag("X", nil, encodeFloat(v.X)),
			leafTag("Y", nil, encodeFloat(v.Y)),
		}})
	case rbxdom.ValueVector2int16:
		parent.tags = append(parent.tags, &tag{startName: "Vector2int16", attr: attr, tags: []*tag{
			leafTag("X", nil, strconv.FormatInt(int64(v.X), 10)),
			leafTag("Y", nil, strconv.FormatInt(int64(v.Y), 10)),
		}})
	case rbxdom.ValueVector3:
		parent.tags = append(parent.tags, &tag{startName: "Vector3", attr: attr, tags: []*tag{
			leafTag("X", nil, encodeFloat(v.X)),
			leafTag("Y", nil, encodeFloat(v.Y)),
			leafTag("Z", nil, encodeFloat(v.Z)),
		}})
	case rbxdom.ValueVector3int16:
		parent.tags = append(parent.tags, &tag{startName: "Vector3int16", attr: attr, tags: []*tag{
			leafTag("X", nil, strconv.FormatInt(int64(v.X), 10)),
			leafTag("Y", nil, strconv.FormatInt(int64(v.Y), 10)),
			leafTag("Z", nil, strconv.FormatInt(int64(v.Z), 10)),
		}})
	case rbxdom.ValueUDim2:
		parent.tags = append(parent.tags, &tag{startName: "UDim2", attr: attr, tags: []*tag{
			leafTag("XS", nil, encodeFloat(v.X.Scale)),
			leafTag("XO", nil, strconv.FormatInt(int64(v.X.Offset), 10)),
			leafTag("YS", nil, encodeFloat(v.Y.Scale)),
			leafTag("YO", nil, strconv.FormatInt(int64(v.Y.Offset), 10)),
		}})
	case rbxdom.ValueCFrame:
		parent.tags = append(parent.tags, &tag{startName: "CoordinateFrame", attr: attr, tags: []*tag{
			leafTag("X", nil, encodeFloat(v.Position.X)),
			leafTag("Y", nil, encodeFloat(v.Position.Y)),
			leafTag("Z", nil, encodeFloat(v.Position.Z)),
			leafTag("R00", nil, encodeFloat(v.Rotation[0])),
			leafTag("R01", nil, encodeFloat(v.Rotation[1])),
			leafTag("R02", nil, encodeFloat(v.Rotation[2])),
			leafTag("R10", nil, encodeFloat(v.Rotation[3])),
			leafTag("R11", nil, encodeFloat(v.Rotation[4])),
			leafTag("R12", nil, encodeFloat(v.Rotation[5])),
			leafTag("R20", nil, encodeFloat(v.Rotation[6])),
			leafTag("R21", nil, encodeFloat(v.Rotation[7])),
			leafTag("R22", nil, encodeFloat(v.Rotation[8])),
		}})
	case rbxdom.ValueRay:
		parent.tags = append(parent.tags, &tag{startName: "Ray", attr: attr, tags: []*tag{
			{startName: "origin", tags: []*tag{
				leafTag("X", nil, encodeFloat(v.Origin.X)),
				leafTag("Y", nil, encodeFloat(v.Origin.Y)),
				leafTag("Z", nil, encodeFloat(v.Origin.Z)),
			}},
			{startName: "direction", tags: []*tag{
				leafTag("X", nil, encodeFloat(v.Direction.X)),
				leafTag("Y", nil, encodeFloat(v.Direction.Y)),
				leafTag("Z", nil, encodeFloat(v.Direction.Z)),
			}},
		}})
	case rbxdom.ValueFaces:
		var n uint64
		for i, b := range []bool{v.Right, v.Top, v.Back, v.Left, v.Bottom, v.Front} {
			if b {
				n |= 1 << uint(i)
			}
		}
		parent.tags = append(parent.tags, &tag{startName: "Faces", attr: attr, tags: []*tag{
			leafTag("faces", nil, strconv.FormatUint(n, 10)),
		}})
	case rbxdom.ValueAxes:
		var n uint64
		for i, b := range []bool{v.X, v.Y, v.Z} {
			if b {
				n |= 1 << uint(i)
			}
		}
		parent.tags = append(parent.tags, &tag{startName: "Axes", attr: attr, tags: []*tag{
			leafTag("axes", nil, strconv.FormatUint(n, 10)),
		}})
	case rbxdom.ValueNumberSequence:
		var b strings.Builder
		for _, k := range v {
			b.WriteString(encodeFloatPrec(k.Time, 6))
			b.WriteByte(' ')
			b.WriteString(encodeFloatPrec(k.Value, 6))
			b.WriteByte(' ')
			b.WriteString(encodeFloatPrec(k.Envelope, 6))
			b.WriteByte(' ')
		}
		parent.tags = append(parent.tags, &tag{startName: "NumberSequence", attr: attr, text: b.String()})
	case rbxdom.ValueColorSequence:
		var b strings.Builder
		for _, k := range v {
			b.WriteString(encodeFloatPrec(k.Time, 6))
			b.WriteByte(' ')
			b.WriteString(encodeFloatPrec(k.Value.R, 6))
			b.WriteByte(' ')
			b.WriteString(encodeFloatPrec(k.Value.G, 6))
			b.WriteByte(' ')
			b.WriteString(encodeFloatPrec(k.Value.B, 6))
			b.WriteByte(' ')
			b.WriteString(encodeFloatPrec(k.Envelope, 6))
			b.WriteByte(' ')
		}
		parent.tags = append(parent.tags, &tag{startName: "ColorSequence", attr: attr, text: b.String()})
	case rbxdom.ValueNumberRange:
		text := encodeFloatPrec(v.Min, 6) + " " + encodeFloatPrec(v.Max, 6) + " "
		parent.tags = append(parent.tags, &tag{startName: "NumberRange", attr: attr, text: text})
	case rbxdom.ValueRect2D:
		parent.tags = append(parent.tags, &tag{startName: "Rect2D", attr: attr, tags: []*tag{
			{startName: "min", tags: []*tag{
				leafTag("X", nil, encodeFloat(v.Min.X)),
				leafTag("Y", nil, encodeFloat(v.Min.Y)),
			}},
			{startName: "max", tags: []*tag{
				leafTag("X", nil, encodeFloat(v.Max.X)),
				leafTag("Y", nil, encodeFloat(v.Max.Y)),
			}},
		}})
	case rbxdom.ValuePhysicalProperties:
		if !v.CustomPhysics {
			parent.tags = append(parent.tags, &tag{startName: "PhysicalProperties", attr: attr, tags: []*tag{
				leafTag("CustomPhysics", nil, "false"),
			}})
			break
		}
		parent.tags = append(parent.tags, &tag{startName: "PhysicalProperties", attr: attr, tags: []*tag{
			leafTag("CustomPhysics", nil, "true"),
			leafTag("Density", nil, encodeFloat(v.Density)),
			leafTag("Friction", nil, encodeFloat(v.Friction)),
			leafTag("Elasticity", nil, encodeFloat(v.Elasticity)),
			leafTag("FrictionWeight", nil, encodeFloat(v.FrictionWeight)),
			leafTag("ElasticityWeight", nil, encodeFloat(v.ElasticityWeight)),
		}})
	}
}

func leafTag(name string, attr []Attr, text string) *tag {
	return &tag{startName: name, attr: attr, noIndent: true, text: text}
}

func base64Tag(name string, attr []Attr, data []byte) *tag {
	buf := new(bytes.Buffer)
	sw := &lineSplitter{w: buf, width: 72, remaining: 72}
	bw := base64.NewEncoder(base64.StdEncoding, sw)
	bw.Write(data)
	bw.Close()
	t := &tag{startName: name, attr: attr, noIndent: true}
	setContent(t, buf.String())
	return t
}

func contentTag(attr []Attr, v rbxdom.ValueContent) *tag {
	t := &tag{startName: "Content", attr: attr}
	if len(v) == 0 {
		t.tags = []*tag{{startName: "null", noIndent: true}}
		return t
	}
	t.tags = []*tag{{startName: "url", noIndent: true, text: string(v)}}
	return t
}

func sharedStringTag(attr []Attr, v rbxdom.ValueSharedString, shared *sharedStringTable) *tag {
	hash := shared.intern([]byte(v))
	buf := new(bytes.Buffer)
	sw := &lineSplitter{w: buf, width: 72, remaining: 72}
	bw := base64.NewEncoder(base64.StdEncoding, sw)
	bw.Write(hash[:])
	bw.Close()
	t := &tag{startName: "SharedString", attr: attr, noIndent: true}
	setContent(t, buf.String())
	return t
}

// setContent stores non-empty text as CDATA, matching Roblox's own
// preference for CDATA on base64 payloads. Empty text, and text containing
// the ]]> terminator (which a CDATA section cannot hold), is stored as
// plain text instead.
func setContent(t *tag, text string) {
	if len(text) > 0 && !strings.Contains(text, "]]>") {
		t.cdata = []byte(text)
		return
	}
	t.text = text
}

// lineSplitter wraps base64 output at a fixed column width, as Roblox's
// own encoder does for binary and shared-string payloads.
type lineSplitter struct {
	w         io.Writer
	width     int
	remaining int
}

func (l *lineSplitter) Write(p []byte) (n int, err error) {
	for len(p) > 0 {
		if l.remaining <= 0 {
			if _, err = l.w.Write([]byte{'\n'}); err != nil {
				return
			}
			l.remaining = l.width
		}
		chunk := l.remaining
		if chunk > len(p) {
			chunk = len(p)
		}
		var wn int
		wn, err = l.w.Write(p[:chunk])
		n += wn
		l.remaining -= wn
		if err != nil {
			return
		}
		p = p[chunk:]
	}
	return
}

// nonFiniteToken returns the wire token for a non-finite float, and
// whether f is non-finite at all.
func nonFiniteToken(f float64) (string, bool) {
	switch {
	case math.IsNaN(f):
		return "NAN", true
	case math.IsInf(f, 1):
		return "INF", true
	case math.IsInf(f, -1):
		return "-INF", true
	default:
		return "", false
	}
}

// encodeFloat renders f the way Roblox's own XML writer does: the special
// tokens INF/-INF/NAN for non-finite values, otherwise the shortest
// decimal that round-trips back to the same float32 bits.
func encodeFloat(f float32) string {
	if tok, ok := nonFiniteToken(float64(f)); ok {
		return tok
	}
	return fixFloatExp(strconv.FormatFloat(float64(f), 'g', -1, 32), 3)
}

// encodeFloatPrec is like encodeFloat but at a fixed precision, used by
// the space-separated sequence kinds which do not need round-trip
// fidelity to the bit.
func encodeFloatPrec(f float32, prec int) string {
	if tok, ok := nonFiniteToken(float64(f)); ok {
		return tok
	}
	return fixFloatExp(strconv.FormatFloat(float64(f), 'g', prec, 32), 3)
}

func fixFloatExp(s string, n int) string {
	if e := strings.Index(s, "e"); e >= 0 {
		exp := s[e+2:]
		if len(exp) < n {
			s = s[:e+2] + strings.Repeat("0", n-len(exp)) + exp
		}
	}
	return s
}

func encodeDouble(f float64) string {
	if tok, ok := nonFiniteToken(f); ok {
		return tok
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
