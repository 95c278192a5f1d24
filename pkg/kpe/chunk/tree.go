package chunk

import (
	"strconv"
	"strings"
)

// Token is one leaf handed to a parser. Index is an opaque carrier that
// must come back unchanged in the leaves of the resulting tree.
type Token struct {
	Index int
	Tag   string
}

// Tree is a labeled bracketing over tokens. A node is either a leaf
// (Leaf set, no children) or a constituent with a label and children.
type Tree struct {
	Label    string
	Leaf     *Token
	Children []*Tree
}

// IsLeaf reports whether the node wraps a single token.
func (t *Tree) IsLeaf() bool {
	return t.Leaf != nil
}

// tag is what later chunking stages match against: the token tag for a
// leaf, the constituent label otherwise.
func (t *Tree) tag() string {
	if t.Leaf != nil {
		return t.Leaf.Tag
	}
	return t.Label
}

// Leaves returns the tokens under the node, left to right.
func (t *Tree) Leaves() []Token {
	var out []Token
	t.walk(func(n *Tree) {
		if n.Leaf != nil {
			out = append(out, *n.Leaf)
		}
	})
	return out
}

// Subtrees returns every constituent node in pre-order, starting with t.
// Leaves are not included.
func (t *Tree) Subtrees() []*Tree {
	var out []*Tree
	t.walk(func(n *Tree) {
		if n.Leaf == nil {
			out = append(out, n)
		}
	})
	return out
}

func (t *Tree) walk(fn func(*Tree)) {
	fn(t)
	for _, c := range t.Children {
		c.walk(fn)
	}
}

// String renders the tree in bracketed form, e.g. "(S (NP 0/NN) 1/VB)".
func (t *Tree) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Tree) write(b *strings.Builder) {
	if t.Leaf != nil {
		b.WriteString(strconv.Itoa(t.Leaf.Index))
		b.WriteByte('/')
		b.WriteString(t.Leaf.Tag)
		return
	}
	b.WriteByte('(')
	b.WriteString(t.Label)
	for _, c := range t.Children {
		b.WriteByte(' ')
		c.write(b)
	}
	b.WriteByte(')')
}
