// Package ddixml wraps a parsed DDI XML document for path-query evaluation.
package ddixml

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// ErrMetadataFormat indicates the input could not be parsed as XML.
var ErrMetadataFormat = errors.New("metadata is not well-formed XML")

// Namespaces is the prefix table used by every path query. The queries in
// the mapping profile are versioned configuration data written against
// these exact prefixes.
var Namespaces = map[string]string{
	"atom": "http://www.w3.org/2005/Atom",
	"che":  "http://www.geocat.ch/2008/che",
	"csw":  "http://www.opengis.net/cat/csw/2.0.2",
	"dc":   "http://purl.org/dc/elements/1.1/",
	"dct":  "http://purl.org/dc/terms/",
	"ddi":  "http://www.icpsr.umich.edu/DDI",
	"dif":  "http://gcmd.gsfc.nasa.gov/Aboutus/xml/dif/",
	"fgdc": "http://www.opengis.net/cat/csw/csdgm",
	"gco":  "http://www.isotc211.org/2005/gco",
	"gmd":  "http://www.isotc211.org/2005/gmd",
	"gml":  "http://www.opengis.net/gml",
	"ogc":  "http://www.opengis.net/ogc",
	"ows":  "http://www.opengis.net/ows",
	"rim":  "urn:oasis:names:tc:ebxml-regrep:xsd:rim:3.0",
	"rdf":  "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
	"srv":  "http://www.isotc211.org/2005/srv",
	"xs":   "http://www.w3.org/2001/XMLSchema",
	"xs2":  "http://www.w3.org/XML/Schema",
	"xsi":  "http://www.w3.org/2001/XMLSchema-instance",
}

// Context holds one parsed document for the duration of an extraction pass.
// It is immutable after construction.
type Context struct {
	doc       *xmlquery.Node
	sourceURL string
}

// Parse builds a Context from raw document bytes. Malformed input fails
// with ErrMetadataFormat before any field extraction can run.
func Parse(data []byte) (*Context, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataFormat, err)
	}
	if doc.SelectElement("*") == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMetadataFormat)
	}
	return &Context{doc: doc}, nil
}

// ParseFromURL is Parse plus a record of where the document was fetched
// from, which enables resource synthesis during normalization.
func ParseFromURL(data []byte, sourceURL string) (*Context, error) {
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	c.sourceURL = sourceURL
	return c, nil
}

// SourceURL returns the URL the document was fetched from, or "".
func (c *Context) SourceURL() string {
	return c.sourceURL
}

// QueryOne returns the first node matched by the path query, or nil when
// the query matches nothing or does not compile. Query failure never
// surfaces as an error; extraction is best-effort.
func (c *Context) QueryOne(query string) *xmlquery.Node {
	expr := compile(query)
	if expr == nil {
		return nil
	}
	return xmlquery.QuerySelector(c.doc, expr)
}

// QueryAll returns every node matched by the path query in document order,
// or nil on no match or compile failure.
func (c *Context) QueryAll(query string) []*xmlquery.Node {
	expr := compile(query)
	if expr == nil {
		return nil
	}
	return xmlquery.QuerySelectorAll(c.doc, expr)
}

// Compiled queries are keyed by their source text and shared across
// imports; a query that fails to compile is cached as nil so it is only
// reported once.
var exprCache sync.Map

func compile(query string) *xpath.Expr {
	if v, ok := exprCache.Load(query); ok {
		return v.(*xpath.Expr)
	}
	expr, err := xpath.CompileWithNS(query, Namespaces)
	if err != nil {
		exprCache.Store(query, (*xpath.Expr)(nil))
		return nil
	}
	exprCache.Store(query, expr)
	return expr
}
