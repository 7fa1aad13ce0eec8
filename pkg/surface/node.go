// Package surface provides concrete targets for mounting pieces.
//
// Node is a small DOM-like element tree: mount actions append nodes and
// teardowns remove them. Canvas is a raster target that draws text lines
// into an image.
//
// Both are safe for concurrent use, so they can back pieces unmounted with
// piece.WithParallelUnmount.
package surface

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// treeMu guards the structure and contents of every Node tree. A single
// lock keeps Remove, which touches both a node and its parent, simple.
var treeMu sync.RWMutex

// Node is an element in a tree.
type Node struct {
	// Tag names the kind of element, e.g. "div".
	Tag string
	// ID identifies the element for FindByID. It may be empty.
	ID string

	text     string
	parent   *Node
	children []*Node
}

// NewNode returns a detached node.
func NewNode(tag, id string) *Node {
	return &Node{Tag: tag, ID: id}
}

// NewText returns a detached node holding text.
func NewText(tag, id, text string) *Node {
	return &Node{Tag: tag, ID: id, text: text}
}

// AppendChild attaches child as the last child of n and returns child.
// A child that already has a parent is moved. It panics if child is n or
// one of n's ancestors.
func (n *Node) AppendChild(child *Node) *Node {
	treeMu.Lock()
	defer treeMu.Unlock()
	for a := n; a != nil; a = a.parent {
		if a == child {
			panic(fmt.Sprintf("surface: cannot append %s to its own descendant %s", child, n))
		}
	}
	if child.parent != nil {
		child.parent.detach(child)
	}
	child.parent = n
	n.children = append(n.children, child)
	return child
}

// Remove detaches n from its parent. It is a no-op for a detached node.
func (n *Node) Remove() {
	treeMu.Lock()
	defer treeMu.Unlock()
	if n.parent != nil {
		n.parent.detach(n)
	}
}

func (n *Node) detach(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			break
		}
	}
	child.parent = nil
}

// Parent returns the parent node, or nil.
func (n *Node) Parent() *Node {
	treeMu.RLock()
	defer treeMu.RUnlock()
	return n.parent
}

// Children returns a snapshot of the direct children.
func (n *Node) Children() []*Node {
	treeMu.RLock()
	defer treeMu.RUnlock()
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Len returns the number of direct children.
func (n *Node) Len() int {
	treeMu.RLock()
	defer treeMu.RUnlock()
	return len(n.children)
}

// Text returns the node's own text.
func (n *Node) Text() string {
	treeMu.RLock()
	defer treeMu.RUnlock()
	return n.text
}

// SetText replaces the node's own text.
func (n *Node) SetText(text string) {
	treeMu.Lock()
	defer treeMu.Unlock()
	n.text = text
}

// FindByID returns the first node with the given ID under n, including n
// itself, in depth-first pre-order. It returns nil if none matches.
func (n *Node) FindByID(id string) *Node {
	treeMu.RLock()
	defer treeMu.RUnlock()
	return n.find(func(c *Node) bool { return c.ID == id })
}

// Count returns the number of nodes under n, excluding n.
func (n *Node) Count() int {
	treeMu.RLock()
	defer treeMu.RUnlock()
	total := 0
	var walk func(*Node)
	walk = func(c *Node) {
		for _, gc := range c.children {
			total++
			walk(gc)
		}
	}
	walk(n)
	return total
}

func (n *Node) find(match func(*Node) bool) *Node {
	if match(n) {
		return n
	}
	for _, c := range n.children {
		if found := c.find(match); found != nil {
			return found
		}
	}
	return nil
}

// String returns the node's selector, e.g. `div#title`.
func (n *Node) String() string {
	if n.ID == "" {
		return n.Tag
	}
	return n.Tag + "#" + n.ID
}

// Dump writes an indented outline of the tree rooted at n.
func (n *Node) Dump(w io.Writer) error {
	treeMu.RLock()
	defer treeMu.RUnlock()
	return n.dump(w, 0)
}

func (n *Node) dump(w io.Writer, depth int) error {
	line := strings.Repeat("  ", depth) + n.String()
	if n.text != "" {
		line += fmt.Sprintf(" %q", n.text)
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}
	for _, c := range n.children {
		if err := c.dump(w, depth+1); err != nil {
			return err
		}
	}
	return nil
}
