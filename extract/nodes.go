package extract

import (
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/openstudydata/ddiwalk/ddixml"
	"github.com/openstudydata/ddiwalk/helpers"
)

// Node is a side-effect-free extractor. Extract must be total: a node
// never propagates a lookup failure, it returns an empty value instead.
// Nodes hold no mutable state, so independent fields can be evaluated in
// any order or concurrently.
type Node interface {
	Extract(ctx *ddixml.Context) Value
}

// Literal always produces its configured text.
type Literal struct {
	Value string
}

func (n Literal) Extract(_ *ddixml.Context) Value {
	return Text(n.Value)
}

// PathSingle produces the first match of a path query. Element matches are
// trimmed text content; attribute matches are the raw attribute value.
type PathSingle struct {
	Query string
}

func (n PathSingle) Extract(ctx *ddixml.Context) Value {
	m := ctx.QueryOne(n.Query)
	if m == nil {
		return Empty()
	}
	if m.Type == xmlquery.AttributeNode {
		return Text(m.InnerText())
	}
	return Text(strings.TrimSpace(m.InnerText()))
}

// PathMulti produces every non-empty match of a path query, trimmed, in
// document order.
type PathMulti struct {
	Query string
}

func (n PathMulti) Extract(ctx *ddixml.Context) Value {
	matches := ctx.QueryAll(n.Query)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		text := m.InnerText()
		if m.Type != xmlquery.AttributeNode {
			text = strings.TrimSpace(text)
		}
		if text != "" {
			out = append(out, text)
		}
	}
	return TextList(out)
}

// Join concatenates its children's non-empty scalar results. Empty
// children contribute nothing, not even a separator.
type Join struct {
	Children  []Node
	Separator string
}

func (n Join) Extract(ctx *ddixml.Context) Value {
	var parts []string
	for _, child := range n.Children {
		v := child.Extract(ctx)
		if v.IsEmpty() {
			continue
		}
		parts = append(parts, v.Text())
	}
	return Text(strings.Join(parts, separatorOr(n.Separator, " ")))
}

// FirstNonEmpty produces the first child result that carries content,
// short-circuiting the rest.
type FirstNonEmpty struct {
	Children []Node
}

func (n FirstNonEmpty) Extract(ctx *ddixml.Context) Value {
	for _, child := range n.Children {
		if v := child.Extract(ctx); !v.IsEmpty() {
			return v
		}
	}
	return Empty()
}

// JoinList collapses a list-producing child into one scalar.
type JoinList struct {
	Child     Node
	Separator string
}

func (n JoinList) Extract(ctx *ddixml.Context) Value {
	return Text(strings.Join(n.Child.Extract(ctx).Strings(), separatorOr(n.Separator, " ")))
}

// Wrap flattens its children's results into one string list.
type Wrap struct {
	Children []Node
}

func (n Wrap) Extract(ctx *ddixml.Context) Value {
	return TextList(flatten(n.Children, ctx))
}

// WrapAsNames flattens like Wrap, then slugs each string and wraps it in a
// name record. Both nodes share one flattening path so sibling fields
// reusing a child extractor agree on list length.
type WrapAsNames struct {
	Children []Node
}

func (n WrapAsNames) Extract(ctx *ddixml.Context) Value {
	flat := flatten(n.Children, ctx)
	names := make([]Name, 0, len(flat))
	for _, s := range flat {
		names = append(names, Name{Name: helpers.Slug(s)})
	}
	return NameList(names)
}

// DateRange pairs start dates with end dates (and optional cycle notes) by
// position, emitting "<start> - <end>[: <cycle>]" per index and joining
// the entries. An index with no end or cycle omits that part.
type DateRange struct {
	Starts    Node
	Ends      Node
	Cycles    Node
	Separator string
}

func (n DateRange) Extract(ctx *ddixml.Context) Value {
	starts := n.Starts.Extract(ctx).Strings()
	var ends, cycles []string
	if n.Ends != nil {
		ends = n.Ends.Extract(ctx).Strings()
	}
	if n.Cycles != nil {
		cycles = n.Cycles.Extract(ctx).Strings()
	}

	entries := make([]string, 0, len(starts))
	for i, start := range starts {
		entry := start
		if i < len(ends) && ends[i] != "" {
			entry += " - " + ends[i]
		}
		if i < len(cycles) && cycles[i] != "" {
			entry += ": " + cycles[i]
		}
		entries = append(entries, entry)
	}
	return Text(strings.Join(entries, separatorOr(n.Separator, " ")))
}

// flatten evaluates each child and collects every resulting string,
// dropping empties. Wrap and WrapAsNames both go through here; the
// filtering policy must stay identical between them.
func flatten(children []Node, ctx *ddixml.Context) []string {
	var out []string
	for _, child := range children {
		for _, s := range child.Extract(ctx).Strings() {
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func separatorOr(sep, fallback string) string {
	if sep == "" {
		return fallback
	}
	return sep
}
