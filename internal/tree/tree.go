// Package tree assembles the ordered document tree consumed by the output
// generators.
//
// A project is discovered in one of two ways. When the root directory holds
// an entry file (README.md, SUMMARY.md or index.md, checked in that order),
// its list-item links define the documents and their order. Otherwise the
// root is scanned recursively for Markdown files.
//
// Either way the result is flat: every document is a direct child of the
// Root node. A document that fails to load is logged and left out; the build
// carries on with the rest.
package tree

import (
	"github.com/alnah/bookforge/internal/document"
	"github.com/alnah/bookforge/internal/outline"
)

// RootTitle is the title of the synthetic root node.
const RootTitle = "Root"

// Node is one entry of the document tree. The root node has no Document;
// every other node references exactly one.
type Node struct {
	Title    string
	Document *document.Document
	Children []*Node
}

// newRoot returns an empty Root node.
func newRoot() *Node {
	return &Node{Title: RootTitle}
}

// newDocumentNode wraps a loaded document.
func newDocumentNode(doc *document.Document) *Node {
	return &Node{Title: doc.Title, Document: doc}
}

// IsRoot reports whether n is the synthetic root.
func (n *Node) IsRoot() bool {
	return n.Document == nil
}

// Path returns the source path, or "" for the root.
func (n *Node) Path() string {
	if n.Document == nil {
		return ""
	}
	return n.Document.Path
}

// Content returns the raw Markdown, or "" for the root.
func (n *Node) Content() string {
	if n.Document == nil {
		return ""
	}
	return n.Document.Content
}

// Headings returns the heading forest, or nil for the root.
func (n *Node) Headings() []outline.Heading {
	if n.Document == nil {
		return nil
	}
	return n.Document.Headings
}

// Documents returns the document nodes beneath n in depth-first order.
func (n *Node) Documents() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Document != nil {
			out = append(out, c)
		}
		out = append(out, c.Documents()...)
	}
	return out
}
