package slz

// huffNode is a node of a Huffman tree. It is a leaf (children both nil) or
// an internal node. During construction it additionally carries a
// cumulative frequency; that field is unused once the tree is built.
//
// Nodes are exclusively owned by their parent (the root is owned by the
// coder performing the build), so there is no need for the arena/index
// indirection bwesterb/go-ncrlite's htNode avoids by convention — a plain
// pointer tree is enough as long as the heap moves nodes by pointer, never
// by value.
type huffNode struct {
	symbol   byte
	isLeaf   bool
	freq     uint64
	children [2]*huffNode
}

// nodeHeap is a binary min-heap of *huffNode keyed by frequency, used only
// during Huffman tree construction. Grounded on
// bwesterb/go-ncrlite's htHeap (container/heap.Interface implementation)
// and the bad-character-free sift-up/sift-down pair in
// original_source/huffmantree.py's HuffingTreeHeap.
type nodeHeap struct {
	nodes []*huffNode
}

func (h *nodeHeap) len() int { return len(h.nodes) }

func (h *nodeHeap) less(i, j int) bool {
	return h.nodes[i].freq < h.nodes[j].freq
}

func (h *nodeHeap) swap(i, j int) {
	h.nodes[i], h.nodes[j] = h.nodes[j], h.nodes[i]
}

// buildHeapFrom heapifies nodes in place in O(n) via Floyd's sift-down,
// starting from the last internal node, index (n-2)/2.
func buildHeapFrom(nodes []*huffNode) *nodeHeap {
	h := &nodeHeap{nodes: nodes}
	for i := (len(nodes) - 2) / 2; i >= 0; i-- {
		h.siftDown(i)
	}
	return h
}

func (h *nodeHeap) siftDown(i int) {
	n := h.len()
	for {
		left := 2*i + 1
		if left >= n {
			return
		}
		smallest := left
		if right := left + 1; right < n && h.less(right, left) {
			smallest = right
		}
		if !h.less(smallest, i) {
			return
		}
		h.swap(i, smallest)
		i = smallest
	}
}

func (h *nodeHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(i, parent) {
			return
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *nodeHeap) push(n *huffNode) {
	h.nodes = append(h.nodes, n)
	h.siftUp(h.len() - 1)
}

// popMin removes and returns the minimum-frequency node.
func (h *nodeHeap) popMin() *huffNode {
	n := h.len()
	min := h.nodes[0]
	h.nodes[0] = h.nodes[n-1]
	h.nodes[n-1] = nil
	h.nodes = h.nodes[:n-1]
	if h.len() > 0 {
		h.siftDown(0)
	}
	return min
}
