package albedo

import (
	"image/color"
	"sort"
)

// octreeDepth is the number of bits per channel the tree distinguishes.
const octreeDepth = 8

type octreeNode struct {
	r, g, b  int // channel sums of the pixels held by this node
	count    int // pixels held by this node
	pixels   int // pixels that passed through this node
	leaf     bool
	index    int
	children [8]*octreeNode
}

// octree is an adaptive color tree: each pixel descends one level per bit of
// its channels, and reduce folds sparse branches back into their parents.
// A leaf is any node holding pixels. A partially reduced node is a leaf that
// still has children for the colors it did not absorb.
type octree struct {
	root   *octreeNode
	levels [octreeDepth][]*octreeNode // inner nodes by depth
	leaves int
}

func newOctree() *octree {
	t := &octree{}
	t.root = t.newNode(0)
	return t
}

func (t *octree) newNode(depth int) *octreeNode {
	n := &octreeNode{}
	if depth == octreeDepth {
		n.leaf = true
		t.leaves++
		return n
	}
	t.levels[depth] = append(t.levels[depth], n)
	return n
}

func childIndex(r, g, b uint8, depth int) int {
	shift := 7 - depth
	return int((r>>shift)&1)<<2 | int((g>>shift)&1)<<1 | int((b>>shift)&1)
}

func (t *octree) add(r, g, b uint8) {
	n := t.root
	for depth := 0; ; depth++ {
		n.pixels++
		if depth == octreeDepth {
			n.count++
			n.r += int(r)
			n.g += int(g)
			n.b += int(b)
			return
		}
		i := childIndex(r, g, b, depth)
		if n.children[i] == nil {
			n.children[i] = t.newNode(depth + 1)
		}
		n = n.children[i]
	}
}

// reduce merges the children of the deepest inner nodes into their parent,
// least populated first, until at most k leaves remain. The last merge may
// absorb only some children so that exactly k leaves are left.
func (t *octree) reduce(k int) {
	for depth := octreeDepth - 1; depth >= 0 && t.leaves > k; depth-- {
		nodes := t.levels[depth]
		sort.SliceStable(nodes, func(i, j int) bool {
			return nodes[i].pixels < nodes[j].pixels
		})

		for _, n := range nodes {
			if t.leaves <= k {
				return
			}
			t.merge(n, t.leaves-k+1)
		}
	}
}

// merge folds up to limit children of n into n, least populated first, and
// makes n a leaf.
func (t *octree) merge(n *octreeNode, limit int) {
	var children []int
	for i, c := range n.children {
		if c != nil {
			children = append(children, i)
		}
	}
	sort.SliceStable(children, func(i, j int) bool {
		return n.children[children[i]].pixels < n.children[children[j]].pixels
	})
	if len(children) > limit {
		children = children[:limit]
	}
	if len(children) == 0 {
		return
	}

	for _, i := range children {
		c := n.children[i]
		n.r += c.r
		n.g += c.g
		n.b += c.b
		n.count += c.count
		n.children[i] = nil
	}
	if !n.leaf {
		n.leaf = true
		t.leaves++
	}
	t.leaves -= len(children)
}

// leafNodes returns the leaves in depth-first order.
func (t *octree) leafNodes() []*octreeNode {
	var out []*octreeNode
	var walk func(n *octreeNode)
	walk = func(n *octreeNode) {
		if n.leaf {
			out = append(out, n)
		}
		for _, c := range n.children {
			if c != nil {
				walk(c)
			}
		}
	}
	walk(t.root)
	return out
}

func (n *octreeNode) average() color.NRGBA {
	half := n.count / 2
	return color.NRGBA{
		R: uint8((n.r + half) / n.count),
		G: uint8((n.g + half) / n.count),
		B: uint8((n.b + half) / n.count),
		A: 255,
	}
}

// lookup returns the palette index of the leaf a color falls into. A color
// stops at the deepest leaf on its path. Colors that were never added and
// meet no leaf take the first populated branch.
func (t *octree) lookup(r, g, b uint8) int {
	n := t.root
	for depth := 0; depth < octreeDepth; depth++ {
		next := n.children[childIndex(r, g, b, depth)]
		if next == nil {
			if n.leaf {
				break
			}
			for _, c := range n.children {
				if c != nil {
					next = c
					break
				}
			}
		}
		n = next
	}
	return n.index
}
