// Package xml implements the roblox XML (rbxmx/rbxlx) place and model
// document format as a pull-based event stream over rbxdom Instances and
// Values.
//
// The tokenizer below is hand-rolled rather than built on encoding/xml,
// since the format has its own entity set, its own CDATA handling, and
// its own tolerance for malformed or unrecognized tags that a
// general-purpose XML reader does not share.
package xml

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	rerrors "github.com/robloxapi/rbxdom/errors"
)

// tag is a single element of a Roblox XML document, decoded eagerly by
// the low-level tokenizer below. The pull-based event API in event.go is
// built by walking a tag tree in pre-order; tag itself never escapes this
// package.
type tag struct {
	startName string
	endName   string
	attr      []Attr
	empty     bool
	cdata     []byte
	text      string
	noIndent  bool
	tags      []*tag
}

// Attr is a single name/value attribute of an XML start tag.
type Attr struct {
	Name  string
	Value string
}

func (t *tag) attrValue(name string) (value string, exists bool) {
	for _, a := range t.attr {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// content returns the tag's text content, whether it arrived as a CDATA
// section or as plain character data. A tag can carry both (CDATA followed
// by trailing characters before a child element or the end tag), in which
// case the two are concatenated in document order.
func (t *tag) content() string {
	if len(t.cdata) == 0 {
		return t.text
	}
	if t.text == "" {
		return string(t.cdata)
	}
	return string(t.cdata) + t.text
}

// DecodeError reports a problem encountered while decoding a document.
// Kind classifies the problem so callers can decide whether to treat it
// as fatal without parsing Msg.
type DecodeError struct {
	Kind Kind
	Msg  string
	Line int
}

func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return "line " + strconv.Itoa(e.Line) + ": " + e.Msg
	}
	return e.Msg
}

// Kind classifies a DecodeError.
type Kind byte

const (
	// KindMalformedDocument indicates the byte stream is not well-formed
	// XML, or does not have the expected roblox/Item/Properties shape.
	KindMalformedDocument Kind = iota
	// KindUnsupportedVersion indicates the root tag's version attribute
	// names a schema version this package cannot read.
	KindUnsupportedVersion
	// KindInvalidScalar indicates a scalar property's text content could
	// not be parsed as its declared type.
	KindInvalidScalar
	// KindUnknownType indicates a property tag's element name does not
	// name any recognized Variant kind.
	KindUnknownType
	// KindUnknownProperty indicates a property the supplied
	// reflection.Database does not accept: its class is unknown, or its
	// tag names a different kind than the one the database declares.
	KindUnknownProperty
	// KindIO indicates the underlying reader or writer failed.
	KindIO
)

type tokenizer struct {
	r        io.ByteReader
	buf      bytes.Buffer
	nextByte []byte
	warnings rerrors.Errors
	prefix   string
	indent   string
	n        int64
	err      error
	line     int
}

func (d *tokenizer) syntaxError(msg string) error {
	return &DecodeError{Kind: KindMalformedDocument, Msg: msg, Line: d.line}
}

func (d *tokenizer) ignoreStartTag(err error) int {
	d.warnings = d.warnings.Append(err)
	for {
		b, ok := d.mustgetc()
		if !ok {
			return -1
		}
		if b == '>' {
			break
		}
	}
	return 0
}

func (d *tokenizer) decodeStartTag(t *tag) int {
	b, ok := d.getc()
	if !ok {
		return -1
	}
	if b != '<' {
		d.err = d.syntaxError("expected start tag")
		return -1
	}
	if b, ok = d.mustgetc(); !ok {
		return -1
	}
	if b == '/' {
		d.err = d.syntaxError("unexpected end tag")
		return -1
	}
	d.ungetc(b)

	if t.startName, ok = d.name(nameTag); !ok {
		return d.ignoreStartTag(d.syntaxError("expected element name after <"))
	}

	t.attr = make([]Attr, 0, 4)
	for {
		d.space()
		if b, ok = d.mustgetc(); !ok {
			return -1
		}
		if b == '/' {
			t.empty = true
			if b, ok = d.mustgetc(); !ok {
				return -1
			}
			if b != '>' {
				return d.ignoreStartTag(d.syntaxError("expected /> in element"))
			}
			break
		}
		if b == '>' {
			break
		}
		d.ungetc(b)

		n := len(t.attr)
		if n >= cap(t.attr) {
			nattr := make([]Attr, n, 2*cap(t.attr))
			copy(nattr, t.attr)
			t.attr = nattr
		}
		t.attr = t.attr[0 : n+1]
		a := &t.attr[n]
		if a.Name, ok = d.name(nameAttr); !ok {
			return d.ignoreStartTag(d.syntaxError("expected attribute name in element"))
		}
		d.space()
		if b, ok = d.mustgetc(); !ok {
			return -1
		}
		if b != '=' {
			return d.ignoreStartTag(d.syntaxError("attribute name without = in element"))
		}
		d.space()
		data := d.attrval()
		if data == nil {
			return -1
		}
		a.Value = string(data)
	}
	return 1
}

func (d *tokenizer) decodeCData(t *tag) bool {
	t.cdata = nil
	const opener = "<![CDATA["
	for i := 0; i < len(opener); i++ {
		b, ok := d.getc()
		if !ok {
			return false
		}
		if b != opener[i] {
			d.ungetc(b)
			for j := i - 1; j >= 0; j-- {
				d.ungetc(opener[j])
			}
			return true
		}
	}
	t.cdata = d.text(-1, true)
	return t.cdata != nil
}

func (d *tokenizer) decodeText(t *tag) bool {
	text := d.text(-1, false)
	if text == nil {
		t.text = ""
		return false
	}
	t.text = string(text)
	return true
}

func (d *tokenizer) decodeEndTag(t *tag) bool {
	b, ok := d.getc()
	if !ok {
		return false
	}
	if b != '<' {
		d.err = d.syntaxError("expected start tag")
		return false
	}
	if b, ok = d.mustgetc(); !ok {
		return false
	}
	if b != '/' {
		d.err = d.syntaxError("expected end tag")
		return false
	}
	if t.endName, ok = d.name(nameTag); !ok {
		if d.err == nil {
			d.err = d.syntaxError("expected element name after </")
		}
		return false
	}
	d.space()
	if b, ok = d.mustgetc(); !ok {
		return false
	}
	if b != '>' {
		d.err = d.syntaxError("invalid characters between </" + t.endName + " and >")
		return false
	}
	return true
}

func (d *tokenizer) decodeTag(root bool) (t *tag, err error) {
	if d.err != nil {
		return nil, d.err
	}

	t = new(tag)
	noindent := false
	nocontent := true

	if root {
		p := d.readSpace()
		if len(p) > 0 {
			d.prefix = string(p)
		}
	}

	startState := d.decodeStartTag(t)
	if startState < 0 {
		return nil, d.err
	}

	if root {
		if t.startName != "roblox" {
			d.err = &DecodeError{Kind: KindMalformedDocument, Msg: "missing roblox root tag", Line: d.line}
			return nil, d.err
		}
		v, ok := t.attrValue("version")
		if !ok {
			d.err = &DecodeError{Kind: KindUnsupportedVersion, Msg: "version attribute not specified", Line: d.line}
			return nil, d.err
		}
		if v != "4" {
			d.err = &DecodeError{Kind: KindUnsupportedVersion, Msg: "unsupported schema version " + v, Line: d.line}
			return nil, d.err
		}
	}

	if t.empty {
		if startState == 0 {
			return nil, nil
		}
		return t, nil
	}

	if !d.decodeCData(t) {
		return nil, d.err
	}
	if len(t.cdata) > 0 {
		nocontent = false
	}

	if root {
		ind := d.readSpace()
		if i := bytes.IndexByte(ind, '\n'); i > -1 {
			if !bytes.HasPrefix(ind[i+1:], []byte(d.prefix)) {
				d.prefix = ""
			} else {
				d.indent = string(ind[i+1+len(d.prefix):])
			}
		}
	} else if d.prefix != "" || d.indent != "" {
		if len(d.readSpace()) == 0 {
			noindent = true
		}
	} else {
		d.space()
	}

	if !d.decodeText(t) {
		return nil, d.err
	}
	if len(t.text) > 0 {
		nocontent = false
	}

	for {
		d.space()
		b, ok := d.getc()
		if !ok {
			return nil, d.err
		}
		if b != '<' {
			d.err = d.syntaxError("expected tag")
			return nil, d.err
		}
		if b, ok = d.mustgetc(); !ok {
			return nil, d.err
		}
		if b == '/' {
			d.ungetc('/')
			d.ungetc('<')
			if !d.decodeEndTag(t) {
				return nil, d.err
			}
			break
		}
		d.ungetc(b)
		d.ungetc('<')
		sub, err := d.decodeTag(false)
		if err != nil {
			return nil, err
		}
		if sub != nil {
			t.tags = append(t.tags, sub)
		}
	}
	if len(t.tags) > 0 {
		nocontent = false
	}

	if !nocontent {
		t.noIndent = noindent
	}
	if startState == 0 {
		return nil, nil
	}
	return t, nil
}

func (d *tokenizer) attrval() []byte {
	b, ok := d.mustgetc()
	if !ok {
		return nil
	}
	if b == '"' {
		return d.text(int(b), false)
	}
	d.err = d.syntaxError("unquoted or missing attribute value in element")
	return nil
}

func (d *tokenizer) readSpace() []byte {
	d.buf.Reset()
	for {
		b, ok := d.getc()
		if !ok {
			return d.buf.Bytes()
		}
		if !isSpace(b) {
			d.ungetc(b)
			return d.buf.Bytes()
		}
		d.buf.WriteByte(b)
	}
}

func (d *tokenizer) space() {
	for {
		b, ok := d.getc()
		if !ok {
			return
		}
		if !isSpace(b) {
			d.ungetc(b)
			return
		}
	}
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\r', '\n', '\t', '\f':
		return true
	default:
		return false
	}
}

func (d *tokenizer) getc() (b byte, ok bool) {
	if d.err != nil {
		return 0, false
	}
	if len(d.nextByte) > 0 {
		b, d.nextByte = d.nextByte[len(d.nextByte)-1], d.nextByte[:len(d.nextByte)-1]
	} else {
		b, d.err = d.r.ReadByte()
		if d.err != nil {
			return 0, false
		}
		d.n++
	}
	if b == '\n' {
		d.line++
	}
	return b, true
}

func (d *tokenizer) mustgetc() (b byte, ok bool) {
	if b, ok = d.getc(); !ok {
		if d.err == io.EOF {
			d.err = d.syntaxError("unexpected EOF")
		}
	}
	return
}

func (d *tokenizer) ungetc(b byte) {
	if b == '\n' {
		d.line--
	}
	d.nextByte = append(d.nextByte, b)
}

var entity = map[string]int{
	"lt":   '<',
	"gt":   '>',
	"amp":  '&',
	"apos": '\'',
	"quot": '"',
}

// text reads a plain text section. If quote >= 0 it stops at the matching
// quote byte; if cdata is true it stops at "]]>" instead of "<".
func (d *tokenizer) text(quote int, cdata bool) []byte {
	var b0, b1 byte
	var trunc int
	d.buf.Reset()
Input:
	for {
		b, ok := d.getc()
		if !ok {
			if cdata {
				if d.err == io.EOF {
					d.err = d.syntaxError("unexpected EOF in CDATA section")
				}
				return nil
			}
			break Input
		}

		if b0 == ']' && b1 == ']' && b == '>' {
			if cdata {
				trunc = 2
				break Input
			}
			return nil
		}

		if b == '<' && !cdata {
			if quote >= 0 {
				return nil
			}
			d.ungetc('<')
			break Input
		}
		if quote >= 0 && b == byte(quote) {
			break Input
		}
		if b == '&' && !cdata {
			before := d.buf.Len()
			d.buf.WriteByte('&')
			var ok bool
			var text string
			var haveText bool
			if b, ok = d.mustgetc(); !ok {
				return nil
			}
			if b == '#' {
				d.buf.WriteByte(b)
				if b, ok = d.mustgetc(); !ok {
					return nil
				}
				base := 10
				if b == 'x' {
					base = 16
					d.buf.WriteByte(b)
					if b, ok = d.mustgetc(); !ok {
						return nil
					}
				}
				start := d.buf.Len()
				for '0' <= b && b <= '9' ||
					base == 16 && 'a' <= b && b <= 'f' ||
					base == 16 && 'A' <= b && b <= 'F' {
					d.buf.WriteByte(b)
					if b, ok = d.mustgetc(); !ok {
						return nil
					}
				}
				if b != ';' {
					d.ungetc(b)
				} else {
					s := string(d.buf.Bytes()[start:])
					d.buf.WriteByte(';')
					n, err := strconv.ParseUint(s, base, 64)
					if err == nil && n <= 255 {
						text = string([]byte{byte(n)})
						haveText = true
					}
				}
			} else {
				d.ungetc(b)
				if !d.readName(nameEntity) {
					if d.err != nil {
						return nil
					}
					ok = false
				}
				if b, ok = d.mustgetc(); !ok {
					return nil
				}
				if b != ';' {
					d.ungetc(b)
				} else {
					name := d.buf.Bytes()[before+1:]
					d.buf.WriteByte(';')
					if r, ok := entity[string(name)]; ok {
						text = string(r)
						haveText = true
					}
				}
			}

			if haveText {
				d.buf.Truncate(before)
				d.buf.Write([]byte(text))
			}
			b0, b1 = 0, 0
			continue Input
		}

		if b == '\r' {
			d.buf.WriteByte('\n')
		} else if b1 == '\r' && b == '\n' {
			// already wrote \n for the \r
		} else {
			d.buf.WriteByte(b)
		}

		b0, b1 = b1, b
	}
	buf := d.buf.Bytes()
	buf = buf[0 : len(buf)-trunc]
	data := make([]byte, len(buf))
	copy(data, buf)
	return data
}

func (d *tokenizer) name(typ int) (s string, ok bool) {
	d.buf.Reset()
	if !d.readName(typ) {
		return "", false
	}
	return d.buf.String(), true
}

func (d *tokenizer) readName(typ int) (ok bool) {
	var b byte
	if b, ok = d.mustgetc(); !ok {
		return
	}
	if !isNameByte(b, typ) {
		d.ungetc(b)
		return false
	}
	d.buf.WriteByte(b)
	for {
		if b, ok = d.mustgetc(); !ok {
			return
		}
		if !isNameByte(b, typ) {
			d.ungetc(b)
			break
		}
		d.buf.WriteByte(b)
	}
	return true
}

const (
	nameTag = iota
	nameAttr
	nameEntity
)

func isNameByte(c byte, t int) bool {
	if '!' <= c && c <= '~' && c != '>' {
		switch t {
		case nameAttr:
			return c != '='
		case nameEntity:
			return c != ';'
		}
		return true
	}
	return false
}

// decodeDocument reads one complete document from r, returning its root
// tag plus the prefix/indent strings detected for pretty-printing on
// write-back, and any non-fatal warnings collected along the way.
func decodeDocument(r io.Reader) (root *tag, prefix, indent string, warnings rerrors.Errors, err error) {
	d := &tokenizer{nextByte: make([]byte, 0, 9), line: 1}
	if rb, ok := r.(io.ByteReader); ok {
		d.r = rb
	} else {
		d.r = bufio.NewReader(r)
	}
	root, err = d.decodeTag(true)
	if err != nil {
		return nil, "", "", d.warnings, err
	}
	return root, d.prefix, d.indent, d.warnings, nil
}
