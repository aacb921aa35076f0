package xml

import (
	"io"
	"sort"
	"strings"

	"github.com/robloxapi/rbxdom"
	rerrors "github.com/robloxapi/rbxdom/errors"
	"github.com/robloxapi/rbxdom/reflection"
)

// Severity controls how a document codec reacts to a recognized but
// non-fatal problem.
type Severity byte

const (
	// SeverityWarn records the problem and continues.
	SeverityWarn Severity = iota
	// SeverityError aborts the current document.
	SeverityError
)

// Policy configures how lenient Decode is about a document that strays
// from what this package's own Encode would produce. Write is always
// strict: Encode never consults a Policy.
type Policy struct {
	// UnknownPropertyTags controls the response to a property element
	// whose tag name names no known Variant kind.
	UnknownPropertyTags Severity
	// UnknownPropertyTypes controls the response to a property whose class
	// is not recognized by the supplied reflection.Database, and to a
	// property whose tag names a different kind than the database declares
	// for it. A property the database does not know on a class it does
	// know is not reported. Has no effect when db is reflection.None.
	UnknownPropertyTypes Severity
}

// DefaultPolicy is lenient in both dimensions, matching Roblox's own
// tolerant reader.
var DefaultPolicy = Policy{UnknownPropertyTags: SeverityWarn, UnknownPropertyTypes: SeverityWarn}

// rootClassName is the synthetic class of the DOM root that represents the
// document itself; the document's own top-level Items become its children.
const rootClassName = "DataModel"

type pendingRef struct {
	inst rbxdom.Ref
	prop string
}

type rdecoder struct {
	er       *EventReader
	db       reflection.Database
	policy   Policy
	shared   *sharedStringTable
	warnings rerrors.Errors
	refs     map[string]rbxdom.Ref
	pending  map[pendingRef]string
}

// Decode reads a complete roblox XML document from r and returns the DOM
// it describes, rooted at a synthetic DataModel instance whose children
// are the document's top-level Items. Warnings collected under a lenient
// Policy are returned alongside a successfully built DOM; a nil DOM means
// decoding failed outright.
func Decode(r io.Reader, db reflection.Database, policy Policy) (dom *rbxdom.DOM, warnings rerrors.Errors, err error) {
	if db == nil {
		db = reflection.None
	}
	root, _, _, tokWarnings, err := decodeDocument(r)
	if err != nil {
		return nil, tokWarnings, err
	}

	dec := &rdecoder{
		er:      newEventReader(root),
		db:      db,
		policy:  policy,
		shared:  &sharedStringTable{},
		refs:    make(map[string]rbxdom.Ref),
		pending: make(map[pendingRef]string),
	}
	dec.warnings = append(dec.warnings, tokWarnings...)

	if _, err := dec.er.ExpectStart("roblox"); err != nil {
		return nil, dec.warnings, err
	}

	if err := dec.readSharedStrings(); err != nil {
		return nil, dec.warnings, err
	}

	var children []rbxdom.Builder
	for dec.er.Peek().Kind == EventStartElement {
		ev := dec.er.Peek()
		if ev.Name != "Item" {
			start := dec.er.Next()
			dec.er.EatUnknownElement(start.Name)
			continue
		}
		b, err := dec.decodeItem()
		if err != nil {
			return nil, dec.warnings, err
		}
		children = append(children, b)
	}
	if err := dec.er.ExpectEnd("roblox"); err != nil {
		return nil, dec.warnings, err
	}

	rootBuilder := rbxdom.Builder{ClassName: rootClassName, Children: children}
	dom = rbxdom.New(rootBuilder)

	for pr, token := range dec.pending {
		inst := dom.Get(pr.inst)
		if inst == nil {
			continue
		}
		ref, ok := dec.refs[token]
		if !ok {
			if !rbxdom.IsEmptyReferent(token) {
				dec.warnings = dec.warnings.Append(&DecodeError{Kind: KindMalformedDocument, Msg: "unresolved referent " + token})
			}
			ref = rbxdom.NoRef
		}
		inst.Properties[pr.prop] = rbxdom.ValueReference{Ref: ref}
	}

	return dom, dec.warnings, nil
}

// readSharedStrings consumes an optional <SharedStrings> table, populating
// the decoder's shared-string table before any property that might
// reference it is parsed.
func (dec *rdecoder) readSharedStrings() error {
	if dec.er.Peek().Kind != EventStartElement || dec.er.Peek().Name != "SharedStrings" {
		return nil
	}
	dec.er.Next()
	for dec.er.Peek().Kind == EventStartElement {
		ev := dec.er.Next()
		if ev.Name != "SharedString" {
			dec.er.EatUnknownElement(ev.Name)
			continue
		}
		md5, _ := attrValue(ev.Attr, "md5")
		data, err := readBase64(dec.er)
		if err != nil {
			return err
		}
		if hash, ok := decodeHashAttr(md5); ok {
			if dec.shared.byHash == nil {
				dec.shared.byHash = make(map[string][]byte)
			}
			dec.shared.byHash[string(hash[:])] = data
		}
		if err := dec.er.ExpectEnd("SharedString"); err != nil {
			return err
		}
	}
	return dec.er.ExpectEnd("SharedStrings")
}

func attrValue(attr []Attr, name string) (string, bool) {
	for _, a := range attr {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// decodeItem consumes one <Item> element, including its nested Properties
// and Item children, and returns the Builder describing it.
func (dec *rdecoder) decodeItem() (rbxdom.Builder, error) {
	ev, err := dec.er.ExpectStart("Item")
	if err != nil {
		return rbxdom.Builder{}, err
	}
	className, ok := attrValue(ev.Attr, "class")
	if !ok {
		return rbxdom.Builder{}, &DecodeError{Kind: KindMalformedDocument, Msg: "Item with no class attribute"}
	}

	instRef := rbxdom.NewRef()
	if token, ok := attrValue(ev.Attr, "referent"); ok && !rbxdom.IsEmptyReferent(token) {
		if existing, ok := dec.refs[token]; ok {
			instRef = existing
		} else {
			dec.refs[token] = instRef
		}
	}

	b := rbxdom.Builder{ClassName: className}
	b = b.WithRef(instRef)

	sawProperties := false
	for dec.er.Peek().Kind == EventStartElement {
		switch dec.er.Peek().Name {
		case "Properties":
			if sawProperties {
				start := dec.er.Next()
				dec.er.EatUnknownElement(start.Name)
				continue
			}
			sawProperties = true
			props, name, err := dec.decodeProperties(className, instRef)
			if err != nil {
				return rbxdom.Builder{}, err
			}
			b.Name = name
			b.Properties = props
		case "Item":
			child, err := dec.decodeItem()
			if err != nil {
				return rbxdom.Builder{}, err
			}
			b.Children = append(b.Children, child)
		default:
			start := dec.er.Next()
			dec.er.EatUnknownElement(start.Name)
		}
	}
	if err := dec.er.ExpectEnd("Item"); err != nil {
		return rbxdom.Builder{}, err
	}
	return b, nil
}

// decodeProperties consumes a <Properties> element and returns the
// resulting property map and the extracted Name, if any.
func (dec *rdecoder) decodeProperties(className string, instRef rbxdom.Ref) (map[string]rbxdom.Value, string, error) {
	if _, err := dec.er.ExpectStart("Properties"); err != nil {
		return nil, "", err
	}
	props := make(map[string]rbxdom.Value)
	name := ""
	for dec.er.Peek().Kind == EventStartElement {
		ev := dec.er.Peek()
		propName, ok := attrValue(ev.Attr, "name")
		if !ok {
			return nil, "", &DecodeError{Kind: KindMalformedDocument, Msg: "property element <" + ev.Name + "> has no name attribute"}
		}

		typ, recognized := dec.propertyType(ev.Name)
		if !recognized {
			dec.er.Next()
			dec.er.EatUnknownElement(ev.Name)
			if dec.policy.UnknownPropertyTags == SeverityError {
				return nil, "", &DecodeError{Kind: KindUnknownType, Msg: "unknown property tag <" + ev.Name + ">"}
			}
			dec.warnings = dec.warnings.Append(&DecodeError{Kind: KindUnknownType, Msg: "unknown property tag <" + ev.Name + ">"})
			continue
		}

		if canon, ok := dec.db.CanonicalName(className, propName); ok {
			propName = canon
		} else if dec.db != reflection.None && !dec.db.IsKnownClass(className) {
			if dec.policy.UnknownPropertyTypes == SeverityError {
				return nil, "", &DecodeError{Kind: KindUnknownProperty, Msg: "unknown class " + className}
			}
			dec.warnings = dec.warnings.Append(&DecodeError{Kind: KindUnknownProperty, Msg: "unknown class " + className})
		}

		if err := dec.checkDeclaredType(className, propName, typ); err != nil {
			return nil, "", err
		}

		dec.er.Next()

		if typ == rbxdom.TypeRef {
			token, _ := dec.er.ReadCharacters()
			drainUnknown(dec.er)
			dec.pending[pendingRef{inst: instRef, prop: propName}] = token
			if err := dec.er.ExpectEnd(ev.Name); err != nil {
				return nil, "", err
			}
			continue
		}

		value, err := readValue(dec.er, typ, dec.shared)
		if err != nil {
			return nil, "", err
		}
		if err := dec.er.ExpectEnd(ev.Name); err != nil {
			return nil, "", err
		}

		if propName == "Name" {
			if s, ok := value.(rbxdom.ValueString); ok {
				name = string(s)
				continue
			}
		}
		props[propName] = value
	}
	if err := dec.er.ExpectEnd("Properties"); err != nil {
		return nil, "", err
	}
	return props, name, nil
}

// propertyType resolves a property element's tag name to a Variant kind,
// treating "Object" as a historical alias for "Ref" the way Roblox's own
// reader does.
func (dec *rdecoder) propertyType(tagName string) (rbxdom.Type, bool) {
	if tagName == "Object" {
		return rbxdom.TypeRef, true
	}
	typ, ok := typeFromTagName[tagName]
	return typ, ok
}

// checkDeclaredType reports a mismatch between the Variant kind the
// document's own tag name names and the kind the reflection database
// declares for (className, propName), under UnknownPropertyTypes. A
// property the database has no opinion on is never flagged. An Enum
// property is accepted against any declared type of the form
// "Enum.<name>" as long as <name> itself is a known enum, since a bare
// Variant kind ("Enum") never carries the specific enum type.
func (dec *rdecoder) checkDeclaredType(className, propName string, typ rbxdom.Type) error {
	declared, ok := dec.db.DataType(className, propName)
	if !ok || declared == typ.String() {
		return nil
	}
	if typ == rbxdom.TypeEnum && strings.HasPrefix(declared, "Enum.") {
		if dec.db.IsKnownEnum(strings.TrimPrefix(declared, "Enum.")) {
			return nil
		}
	}
	msg := "property " + propName + " declared as " + declared + " but encoded as " + typ.String()
	if dec.policy.UnknownPropertyTypes == SeverityError {
		return &DecodeError{Kind: KindUnknownProperty, Msg: msg}
	}
	dec.warnings = dec.warnings.Append(&DecodeError{Kind: KindUnknownProperty, Msg: msg})
	return nil
}

// Encode writes dom as a complete roblox XML document to w, starting from
// dom's root. If the root's ClassName is the synthetic DataModel name
// Decode produces, only its children are emitted as top-level Items;
// otherwise the root itself is emitted as a single Item (the rbxmx case).
func Encode(w io.Writer, dom *rbxdom.DOM, db reflection.Database) (int64, error) {
	if db == nil {
		db = reflection.None
	}
	enc := &rencoder{dom: dom, db: db, shared: &sharedStringTable{}}

	root := &tag{startName: "roblox", attr: []Attr{
		{Name: "xmlns:xmime", Value: "http://www.w3.org/2005/05/xmlmime"},
		{Name: "version", Value: "4"},
	}}

	rootInst := dom.Root()
	var topLevel []rbxdom.Ref
	if rootInst.ClassName == rootClassName {
		topLevel = rootInst.Children()
	} else {
		topLevel = []rbxdom.Ref{dom.RootRef()}
	}
	for _, ref := range topLevel {
		root.tags = append(root.tags, enc.encodeItem(ref))
	}
	if sharedTag := enc.encodeSharedStrings(); sharedTag != nil {
		root.tags = append([]*tag{sharedTag}, root.tags...)
	}

	return encodeDocument(w, root)
}

type rencoder struct {
	dom    *rbxdom.DOM
	db     reflection.Database
	shared *sharedStringTable
}

func (enc *rencoder) encodeItem(ref rbxdom.Ref) *tag {
	inst := enc.dom.Get(ref)
	t := &tag{
		startName: "Item",
		attr: []Attr{
			{Name: "class", Value: inst.ClassName},
			{Name: "referent", Value: inst.Ref.String()},
		},
	}
	t.tags = append(t.tags, enc.encodeProperties(inst))
	for _, child := range inst.Children() {
		t.tags = append(t.tags, enc.encodeItem(child))
	}
	return t
}

func (enc *rencoder) encodeProperties(inst *rbxdom.Instance) *tag {
	props := &tag{startName: "Properties"}
	writeValue(props, "Name", rbxdom.ValueString(inst.Name), enc.shared)

	names := make([]string, 0, len(inst.Properties))
	for name := range inst.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		wireName := name
		if serialized, ok := enc.db.SerializedName(inst.ClassName, name); ok {
			wireName = serialized
		}
		writeValue(props, wireName, inst.Properties[name], enc.shared)
	}
	return props
}

func (enc *rencoder) encodeSharedStrings() *tag {
	hashes := enc.shared.sortedHashes()
	if len(hashes) == 0 {
		return nil
	}
	t := &tag{startName: "SharedStrings"}
	for _, hash := range hashes {
		content := enc.shared.byHash[hash]
		t.tags = append(t.tags, base64Tag("SharedString", []Attr{{Name: "md5", Value: encodeHashAttr(hash)}}, content))
	}
	return t
}
