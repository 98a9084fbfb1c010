// Package index provides the ordered identifier index for socialnet.
//
// Tree is a red-black tree over integer identifiers. Nodes live in a
// slice-backed arena and refer to each other by arena position, so the
// parent back-links never form an ownership cycle and rotations are plain
// index reassignments.
package index

import (
	"errors"
	"fmt"
)

type color uint8

const (
	red color = iota
	black
)

// nilIndex marks an absent child or parent (a leaf position).
const nilIndex int32 = -1

type node struct {
	key    int
	color  color
	left   int32
	right  int32
	parent int32
}

// Tree is a red-black tree of unique integer keys.
//
// The zero value is an empty tree ready for use. Tree is not safe for
// concurrent use; callers serialize access (SocialGraph holds it under its
// own lock).
type Tree struct {
	nodes []node
	root  int32
}

// New returns an empty tree with room for capacity keys.
func New(capacity int) *Tree {
	return &Tree{nodes: make([]node, 0, capacity), root: nilIndex}
}

// Len returns the number of keys in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Insert adds key to the tree and rebalances. It returns false, leaving the
// tree untouched, if key is already present.
func (t *Tree) Insert(key int) bool {
	parent := nilIndex
	cur := t.rootIndex()
	for cur != nilIndex {
		parent = cur
		switch n := t.nodes[cur]; {
		case key < n.key:
			cur = n.left
		case key > n.key:
			cur = n.right
		default:
			return false
		}
	}

	idx := int32(len(t.nodes))
	t.nodes = append(t.nodes, node{
		key:    key,
		color:  red,
		left:   nilIndex,
		right:  nilIndex,
		parent: parent,
	})

	switch {
	case parent == nilIndex:
		t.root = idx
	case key < t.nodes[parent].key:
		t.nodes[parent].left = idx
	default:
		t.nodes[parent].right = idx
	}

	t.fixInsert(idx)
	return true
}

// Contains reports whether key is in the tree.
func (t *Tree) Contains(key int) bool {
	_, ok := t.Find(key)
	return ok
}

// Find looks key up by binary search. An empty tree reports not found.
func (t *Tree) Find(key int) (int, bool) {
	cur := t.rootIndex()
	for cur != nilIndex {
		n := t.nodes[cur]
		switch {
		case key < n.key:
			cur = n.left
		case key > n.key:
			cur = n.right
		default:
			return n.key, true
		}
	}
	return 0, false
}

// Keys returns every key in ascending order.
func (t *Tree) Keys() []int {
	keys := make([]int, 0, len(t.nodes))
	stack := make([]int32, 0, t.Height())
	cur := t.rootIndex()
	for cur != nilIndex || len(stack) > 0 {
		for cur != nilIndex {
			stack = append(stack, cur)
			cur = t.nodes[cur].left
		}
		cur = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		keys = append(keys, t.nodes[cur].key)
		cur = t.nodes[cur].right
	}
	return keys
}

// Height returns the number of nodes on the longest root-to-leaf path.
func (t *Tree) Height() int {
	root := t.rootIndex()
	if root == nilIndex {
		return 0
	}

	height := 0
	level := []int32{root}
	for len(level) > 0 {
		height++
		next := level[:0:0]
		for _, i := range level {
			if l := t.nodes[i].left; l != nilIndex {
				next = append(next, l)
			}
			if r := t.nodes[i].right; r != nilIndex {
				next = append(next, r)
			}
		}
		level = next
	}
	return height
}

// Validate checks the red-black invariants: the root is black, no red node
// has a red child, every root-to-leaf path has the same number of black
// nodes, keys are in search-tree order and parent links agree with child
// links.
func (t *Tree) Validate() error {
	root := t.rootIndex()
	if root == nilIndex {
		return nil
	}
	if t.nodes[root].color != black {
		return errors.New("root is red")
	}
	if t.nodes[root].parent != nilIndex {
		return errors.New("root has a parent")
	}

	type frame struct {
		idx    int32
		blacks int
		lo, hi *int
	}

	leafBlacks := -1
	stack := []frame{{idx: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.idx == nilIndex {
			if leafBlacks == -1 {
				leafBlacks = f.blacks
			} else if f.blacks != leafBlacks {
				return fmt.Errorf("black height mismatch: %d != %d", f.blacks, leafBlacks)
			}
			continue
		}

		n := t.nodes[f.idx]
		if f.lo != nil && n.key <= *f.lo {
			return fmt.Errorf("key %d out of order", n.key)
		}
		if f.hi != nil && n.key >= *f.hi {
			return fmt.Errorf("key %d out of order", n.key)
		}

		blacks := f.blacks
		if n.color == black {
			blacks++
		}

		for _, child := range []int32{n.left, n.right} {
			if child == nilIndex {
				continue
			}
			if t.nodes[child].parent != f.idx {
				return fmt.Errorf("key %d: broken parent link", t.nodes[child].key)
			}
			if n.color == red && t.nodes[child].color == red {
				return fmt.Errorf("red key %d has red child %d", n.key, t.nodes[child].key)
			}
		}

		key := n.key
		stack = append(stack,
			frame{idx: n.left, blacks: blacks, lo: f.lo, hi: &key},
			frame{idx: n.right, blacks: blacks, lo: &key, hi: f.hi},
		)
	}
	return nil
}

func (t *Tree) rootIndex() int32 {
	if len(t.nodes) == 0 {
		return nilIndex
	}
	return t.root
}

func (t *Tree) colorOf(i int32) color {
	if i == nilIndex {
		return black
	}
	return t.nodes[i].color
}

// fixInsert restores the red-black invariants after inserting the red node k.
// A red uncle is resolved by recoloring and continuing from the grandparent;
// a black uncle by rotating k into the outer position and rotating the
// grandparent.
func (t *Tree) fixInsert(k int32) {
	for k != t.root && t.colorOf(t.nodes[k].parent) == red {
		p := t.nodes[k].parent
		g := t.nodes[p].parent

		if p == t.nodes[g].left {
			u := t.nodes[g].right
			if t.colorOf(u) == red {
				t.nodes[p].color = black
				t.nodes[u].color = black
				t.nodes[g].color = red
				k = g
				continue
			}
			if k == t.nodes[p].right {
				k = p
				t.rotateLeft(k)
				p = t.nodes[k].parent
			}
			t.nodes[p].color = black
			t.nodes[g].color = red
			t.rotateRight(g)
		} else {
			u := t.nodes[g].left
			if t.colorOf(u) == red {
				t.nodes[p].color = black
				t.nodes[u].color = black
				t.nodes[g].color = red
				k = g
				continue
			}
			if k == t.nodes[p].left {
				k = p
				t.rotateRight(k)
				p = t.nodes[k].parent
			}
			t.nodes[p].color = black
			t.nodes[g].color = red
			t.rotateLeft(g)
		}
	}
	t.nodes[t.root].color = black
}

func (t *Tree) rotateLeft(x int32) {
	y := t.nodes[x].right
	t.nodes[x].right = t.nodes[y].left
	if l := t.nodes[y].left; l != nilIndex {
		t.nodes[l].parent = x
	}
	t.replaceChild(t.nodes[x].parent, x, y)
	t.nodes[y].left = x
	t.nodes[x].parent = y
}

func (t *Tree) rotateRight(y int32) {
	x := t.nodes[y].left
	t.nodes[y].left = t.nodes[x].right
	if r := t.nodes[x].right; r != nilIndex {
		t.nodes[r].parent = y
	}
	t.replaceChild(t.nodes[y].parent, y, x)
	t.nodes[x].right = y
	t.nodes[y].parent = x
}

// replaceChild hangs repl where old used to be under parent.
func (t *Tree) replaceChild(parent, old, repl int32) {
	t.nodes[repl].parent = parent
	switch {
	case parent == nilIndex:
		t.root = repl
	case t.nodes[parent].left == old:
		t.nodes[parent].left = repl
	default:
		t.nodes[parent].right = repl
	}
}
