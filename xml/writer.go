package xml

import (
	"bufio"
	"io"
	"strconv"
)

// writer pretty-prints a tag tree, using a two-space indent per level.
// Attributes are written in the order they appear on each tag; the
// document codec builds Item tags with class before referent, the way
// Roblox Studio itself writes them.
type writer struct {
	*bufio.Writer
	prefix string
	indent string
	depth  int
	n      int64
	err    error
}

func newWriter(w io.Writer) *writer {
	return &writer{Writer: bufio.NewWriter(w), indent: "  "}
}

func (e *writer) encodeTag(t *tag, noTags, noindent bool) int {
	if e.err != nil {
		return -1
	}

	endName := t.endName
	if !noTags {
		if !checkName(t.startName, nameTag) {
			return 0
		}
		if endName != "" && !checkName(endName, nameTag) {
			endName = t.startName
		}

		e.writeByte('<')
		e.writeString(t.startName)
		for _, a := range t.attr {
			if !checkName(a.Name, nameAttr) {
				continue
			}
			e.writeByte(' ')
			e.writeString(a.Name)
			e.writeByte('=')
			e.writeByte('"')
			escapeString(e, a.Value, false)
			e.writeByte('"')
		}
		if t.empty {
			e.writeByte('/')
			e.writeByte('>')
			if !e.flush() {
				return -1
			}
			return 1
		}
		e.writeByte('>')
		if !e.flush() {
			return -1
		}
	}

	if t.cdata != nil {
		e.writeString("<![CDATA[")
		e.write(t.cdata)
		e.writeString("]]>")
		if !e.flush() {
			return -1
		}
	}

	if !noindent && !t.noIndent && len(t.tags) > 0 {
		if noTags {
			e.writeIndent(0, true)
		} else {
			e.writeIndent(1, false)
		}
	}

	escapeString(e, t.text, true)
	if !e.flush() {
		return -1
	}

	for i, sub := range t.tags {
		r := e.encodeTag(sub, false, noindent || t.noIndent)
		if r < 0 {
			return -1
		}
		if r == 0 {
			continue
		}
		if !noindent && !t.noIndent {
			if i == len(t.tags)-1 {
				if noTags {
					e.writeIndent(0, true)
				} else {
					e.writeIndent(-1, false)
				}
			} else {
				e.writeIndent(0, false)
			}
		}
	}

	if !noTags {
		e.writeByte('<')
		e.writeByte('/')
		if endName == "" {
			e.writeString(t.startName)
		} else {
			e.writeString(endName)
		}
		e.writeByte('>')
		if !e.flush() {
			return -1
		}
	}
	return 1
}

func (e *writer) write(p []byte) bool {
	if e.err != nil {
		return false
	}
	n, err := e.Write(p)
	e.n += int64(n)
	if err != nil {
		e.err = err
		return false
	}
	return true
}

func (e *writer) writeByte(b byte) bool {
	if e.err != nil {
		return false
	}
	if err := e.WriteByte(b); err != nil {
		e.err = err
		return false
	}
	e.n++
	return true
}

func (e *writer) writeString(s string) bool {
	if e.err != nil {
		return false
	}
	n, err := e.WriteString(s)
	e.n += int64(n)
	if err != nil {
		e.err = err
		return false
	}
	return true
}

func (e *writer) flush() bool {
	if e.err != nil {
		return false
	}
	if err := e.Flush(); err != nil {
		e.err = err
		return false
	}
	return true
}

func (e *writer) writeIndent(depthDelta int, notag bool) {
	if depthDelta < 0 {
		e.depth--
	} else if depthDelta > 0 {
		e.depth++
	}
	if notag {
		return
	}
	e.WriteByte('\n')
	if e.prefix != "" {
		e.WriteString(e.prefix)
	}
	for i := 0; i < e.depth; i++ {
		e.WriteString(e.indent)
	}
}

func checkName(name string, typ int) bool {
	if len(name) == 0 {
		return false
	}
	for _, c := range []byte(name) {
		if !isNameByte(c, typ) {
			return false
		}
	}
	return true
}

var (
	escQuot = []byte("&quot;")
	escApos = []byte("&apos;")
	escAmp  = []byte("&amp;")
	escLt   = []byte("&lt;")
	escGt   = []byte("&gt;")
)

// escapeString writes the properly escaped XML equivalent of s. If
// escapeLead is true, leading whitespace is escaped numerically so that
// Roblox's own reader (which otherwise trims leading text whitespace as
// prettifying indentation) preserves it.
func escapeString(e *writer, s string, escapeLead bool) {
	var esc []byte
	last := 0
	bs := []byte(s)
	for i := 0; i < len(bs); {
		esc = nil
		b := bs[i]
		i++

		if escapeLead {
			if isSpace(b) {
				goto numbered
			}
			escapeLead = false
		}

		switch b {
		case '"':
			esc = escQuot
		case '\'':
			esc = escApos
		case '&':
			esc = escAmp
		case '<':
			esc = escLt
		case '>':
			esc = escGt
		default:
			if ' ' <= b && b <= '~' || b == '\n' || b == '\r' {
				continue
			}
			goto numbered
		}

	numbered:
		if esc == nil {
			n := []byte(strconv.FormatInt(int64(b), 10))
			esc = make([]byte, len(n)+3)
			esc[0] = '&'
			esc[1] = '#'
			copy(esc[2:], n)
			esc[len(esc)-1] = ';'
		}
		e.writeString(s[last : i-1])
		e.write(esc)
		last = i
	}
	e.writeString(s[last:])
}

// encodeDocument writes root as a complete document to w, prefixed by the
// standard XML declaration-free roblox header attributes already present
// on root.
func encodeDocument(w io.Writer, root *tag) (int64, error) {
	e := newWriter(w)
	if r := e.encodeTag(root, false, root.noIndent); r < 0 {
		return e.n, e.err
	}
	e.writeByte('\n')
	e.flush()
	return e.n, e.err
}
