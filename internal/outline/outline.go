// Package outline extracts the nested heading structure of a Markdown
// document.
package outline

import (
	"regexp"
	"strings"

	"github.com/alnah/bookforge/internal/anchor"
)

// MaxLevel is the deepest ATX heading level.
const MaxLevel = 6

// Heading is one ATX heading and the headings nested under it.
// Children always have a strictly greater Level than their parent.
type Heading struct {
	Level    int
	Text     string
	ID       string
	Children []Heading
}

var (
	lineEnding = regexp.MustCompile(`\r\n?`)

	// atxHeading matches 1-6 '#' followed by whitespace and optional text.
	// A lone run of '#' is an empty heading.
	atxHeading = regexp.MustCompile(`^(#{1,6})(?:\s+(.*))?$`)

	// closingSequence is the optional trailing run of '#' in "## Title ##".
	closingSequence = regexp.MustCompile(`(?:^|\s+)#+$`)
)

// entry is an arena slot. Children are indices into the same arena.
type entry struct {
	level    int
	text     string
	children []int
}

// Extract returns the heading forest of content. It never fails: input
// without headings yields an empty forest.
//
// Every trimmed line is considered on its own, so heading-shaped lines in
// code blocks count and headings inside block quotes do not.
//
// Nesting uses a stack of open headings. A heading of level L first closes
// every open heading with level >= L, then becomes a child of the remaining
// top (or a new root). Level jumps nest directly without synthetic parents.
func Extract(content string) []Heading {
	content = lineEnding.ReplaceAllString(content, "\n")

	var (
		arena []entry
		roots []int
		stack []int
	)

	for _, line := range strings.Split(content, "\n") {
		m := atxHeading.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}

		level := len(m[1])
		text := strings.TrimSpace(closingSequence.ReplaceAllString(m[2], ""))

		for len(stack) > 0 && arena[stack[len(stack)-1]].level >= level {
			stack = stack[:len(stack)-1]
		}

		idx := len(arena)
		arena = append(arena, entry{level: level, text: text})

		if len(stack) == 0 {
			roots = append(roots, idx)
		} else {
			parent := stack[len(stack)-1]
			arena[parent].children = append(arena[parent].children, idx)
		}
		stack = append(stack, idx)
	}

	return materialize(arena, roots)
}

// materialize converts arena indices into value-owned headings.
func materialize(arena []entry, indices []int) []Heading {
	if len(indices) == 0 {
		return nil
	}
	out := make([]Heading, len(indices))
	for i, idx := range indices {
		e := arena[idx]
		out[i] = Heading{
			Level:    e.level,
			Text:     e.text,
			ID:       anchor.ID(e.text),
			Children: materialize(arena, e.children),
		}
	}
	return out
}

// Walk visits headings depth-first in document order. depth is 0 for roots.
// Returning false from fn skips the heading's children.
func Walk(headings []Heading, fn func(h Heading, depth int) bool) {
	walk(headings, 0, fn)
}

func walk(headings []Heading, depth int, fn func(h Heading, depth int) bool) {
	for _, h := range headings {
		if fn(h, depth) {
			walk(h.Children, depth+1, fn)
		}
	}
}

// Count returns the number of headings in the forest.
func Count(headings []Heading) int {
	n := 0
	Walk(headings, func(Heading, int) bool {
		n++
		return true
	})
	return n
}
