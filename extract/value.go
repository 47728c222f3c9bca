// Package extract implements the composable extractor language that maps
// document content to typed values. Each Node evaluates a parsed document
// to exactly one Value kind; evaluation is pure and never fails, degrading
// to an empty value on any lookup problem.
package extract

// Kind identifies which member of the Value union is populated.
type Kind int

const (
	// KindEmpty is the zero value: no content was found.
	KindEmpty Kind = iota
	// KindText is a single scalar string.
	KindText
	// KindTextList is an ordered sequence of strings.
	KindTextList
	// KindNameList is an ordered sequence of name records.
	KindNameList
)

// Name is a single name record, as the catalog expects tags and similar
// name-keyed lists to be shaped.
type Name struct {
	Name string `json:"name"`
}

// Value is the tagged union produced by node evaluation. A given node type
// always produces the same kind.
type Value struct {
	kind  Kind
	text  string
	list  []string
	names []Name
}

// Empty returns the no-content value.
func Empty() Value {
	return Value{}
}

// Text wraps a scalar string.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// TextList wraps an ordered string sequence.
func TextList(ss []string) Value {
	return Value{kind: KindTextList, list: ss}
}

// NameList wraps an ordered sequence of name records.
func NameList(ns []Name) Value {
	return Value{kind: KindNameList, names: ns}
}

// Kind reports which union member is populated.
func (v Value) Kind() Kind {
	return v.kind
}

// IsEmpty reports whether the value carries no content: the empty kind, an
// empty scalar, or a zero-length list. FirstNonEmpty and Join both rely on
// empty text and Empty being indistinguishable here.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindText:
		return v.text == ""
	case KindTextList:
		return len(v.list) == 0
	case KindNameList:
		return len(v.names) == 0
	default:
		return true
	}
}

// Text returns the scalar string, or "" for any other kind.
func (v Value) Text() string {
	if v.kind == KindText {
		return v.text
	}
	return ""
}

// Strings returns the value's content as a string sequence: the list
// itself, a one-element sequence for non-empty text, the name strings for
// a name list, or nil.
func (v Value) Strings() []string {
	switch v.kind {
	case KindText:
		if v.text == "" {
			return nil
		}
		return []string{v.text}
	case KindTextList:
		return v.list
	case KindNameList:
		out := make([]string, 0, len(v.names))
		for _, n := range v.names {
			out = append(out, n.Name)
		}
		return out
	default:
		return nil
	}
}

// Names returns the name records, or nil for any other kind.
func (v Value) Names() []Name {
	if v.kind == KindNameList {
		return v.names
	}
	return nil
}
