package xml

// EventKind identifies the kind of an Event produced by an EventReader.
type EventKind byte

const (
	// EventStartElement marks the opening of an element. Attr holds its
	// attributes; Name holds its tag name.
	EventStartElement EventKind = iota
	// EventEndElement marks the close of the most recently opened
	// element. Name matches the corresponding EventStartElement's Name.
	EventEndElement
	// EventCharacters carries an element's text content, emitted between
	// its EventStartElement and EventEndElement. At most one Characters
	// event is emitted per element; empty text is never emitted.
	EventCharacters
	// EventEOF marks the end of the stream. Once emitted, every
	// subsequent Next call returns the same EventEOF event.
	EventEOF
)

// Event is one token of the document's event stream.
type Event struct {
	Kind EventKind
	Name string
	Attr []Attr
	Text string
}

var eofEvent = Event{Kind: EventEOF}

// EventReader produces a pull-based stream of Events over a document tree,
// one element at a time, so that callers can decode a document without
// holding the whole tag tree in hand themselves.
//
// Although the underlying tokenizer in tag.go parses a document eagerly
// into a tree (matching Roblox's own tolerant, whole-document grammar),
// EventReader re-exposes that tree as a flat, forward-only stream: callers
// never see the tree structure, only Start/Characters/End events, and
// can't distinguish an EventReader backed by a tree from one backed by a
// true streaming tokenizer.
type EventReader struct {
	events []Event
	pos    int
}

func newEventReader(root *tag) *EventReader {
	er := &EventReader{}
	er.emit(root)
	return er
}

func (er *EventReader) emit(t *tag) {
	er.events = append(er.events, Event{Kind: EventStartElement, Name: t.startName, Attr: t.attr})
	if !t.empty {
		if text := t.content(); text != "" {
			er.events = append(er.events, Event{Kind: EventCharacters, Text: text})
		}
		for _, sub := range t.tags {
			er.emit(sub)
		}
	}
	endName := t.endName
	if endName == "" {
		endName = t.startName
	}
	er.events = append(er.events, Event{Kind: EventEndElement, Name: endName})
}

// Peek returns the next event without consuming it.
func (er *EventReader) Peek() Event {
	if er.pos >= len(er.events) {
		return eofEvent
	}
	return er.events[er.pos]
}

// Next consumes and returns the next event.
func (er *EventReader) Next() Event {
	ev := er.Peek()
	if er.pos < len(er.events) {
		er.pos++
	}
	return ev
}

// ExpectStart consumes the next event, which must be an EventStartElement
// named name, and returns it. It returns an error describing what was
// found instead otherwise.
func (er *EventReader) ExpectStart(name string) (Event, error) {
	ev := er.Peek()
	if ev.Kind != EventStartElement || ev.Name != name {
		return ev, &DecodeError{Kind: KindMalformedDocument, Msg: "expected <" + name + ">, found " + describeEvent(ev)}
	}
	return er.Next(), nil
}

// ExpectEnd consumes the next event, which must be an EventEndElement
// named name.
func (er *EventReader) ExpectEnd(name string) error {
	ev := er.Peek()
	if ev.Kind != EventEndElement || ev.Name != name {
		return &DecodeError{Kind: KindMalformedDocument, Msg: "expected </" + name + ">, found " + describeEvent(ev)}
	}
	er.Next()
	return nil
}

// ReadCharacters consumes a single EventCharacters event if one is next,
// and returns its text. If the next event is not EventCharacters, it
// returns ("", false) without consuming anything (this is the common case
// of an element with no text content).
func (er *EventReader) ReadCharacters() (string, bool) {
	if er.Peek().Kind != EventCharacters {
		return "", false
	}
	ev := er.Next()
	return ev.Text, true
}

// EatUnknownElement consumes a complete element the caller does not
// recognize, including its children, leaving the reader positioned just
// after the matching EventEndElement. The element's own EventStartElement
// must already have been consumed by the caller (e.g. via Next).
func (er *EventReader) EatUnknownElement(name string) error {
	depth := 1
	for depth > 0 {
		ev := er.Next()
		switch ev.Kind {
		case EventEOF:
			return &DecodeError{Kind: KindMalformedDocument, Msg: "unexpected EOF skipping <" + name + ">"}
		case EventStartElement:
			depth++
		case EventEndElement:
			depth--
		}
	}
	return nil
}

func describeEvent(ev Event) string {
	switch ev.Kind {
	case EventStartElement:
		return "<" + ev.Name + ">"
	case EventEndElement:
		return "</" + ev.Name + ">"
	case EventCharacters:
		return "text content"
	default:
		return "end of document"
	}
}
