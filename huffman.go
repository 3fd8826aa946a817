package slz

import (
	"math/bits"
	"sort"
)

// codeEntry is a canonical Huffman codeword: the low `length` bits of
// `code`, right-aligned, written/read most-significant-bit first.
type codeEntry struct {
	code   uint32
	length byte
}

// HuffmanCoder builds and applies canonical Huffman codes over byte
// alphabets. Tree construction is grounded on
// bwesterb/go-ncrlite's buildHuffmanCode (min-heap-driven merge, a
// depth-first walk for code lengths, then canonicalHuffmanCode for the
// length-ordered assignment), generalized from its bitlength-of-a-delta
// alphabet to an arbitrary byte alphabet. The header framing instead
// follows spec.md §4.3/§4.4, grounded on
// original_source/huffingcodes.py's length-histogram header.
type HuffmanCoder struct{}

// HuffmanEncode frequency-counts input, builds a canonical Huffman code for
// its byte alphabet, and returns the header-prefixed bit-packed payload. An
// empty input encodes to an empty output.
func HuffmanEncode(input []byte) ([]byte, error) {
	return (HuffmanCoder{}).Encode(input)
}

// HuffmanDecode is the inverse of HuffmanEncode.
func HuffmanDecode(input []byte) ([]byte, error) {
	return (HuffmanCoder{}).Decode(input)
}

func (HuffmanCoder) Encode(input []byte) ([]byte, error) {
	if len(input) == 0 {
		return []byte{}, nil
	}

	var freq [256]uint64
	for _, b := range input {
		freq[b]++
	}

	var symbols []byte
	for s := 0; s < 256; s++ {
		if freq[s] > 0 {
			symbols = append(symbols, byte(s))
		}
	}

	codeLengths := make(map[byte]byte, len(symbols))
	if len(symbols) == 1 {
		// A single distinct symbol gets a one-bit code to preserve
		// canonical framing; a depth-0 "tree" would otherwise emit a
		// zero-length code.
		codeLengths[symbols[0]] = 1
	} else {
		root := buildHuffmanTree(freq[:], symbols)
		assignDepths(root, 0, codeLengths)
	}

	type symLen struct {
		sym byte
		len byte
	}
	pairs := make([]symLen, len(symbols))
	for i, s := range symbols {
		pairs[i] = symLen{s, codeLengths[s]}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].len != pairs[j].len {
			return pairs[i].len < pairs[j].len
		}
		return pairs[i].sym < pairs[j].sym
	})

	codes := make(map[byte]codeEntry, len(pairs))
	var maxLen byte
	var code uint32
	for i, p := range pairs {
		if i == 0 {
			code = 0
		} else {
			code++
			code <<= uint(p.len - pairs[i-1].len)
		}
		codes[p.sym] = codeEntry{code: code, length: p.len}
		if p.len > maxLen {
			maxLen = p.len
		}
	}

	lengths := make([]int, maxLen+1)
	for _, p := range pairs {
		lengths[p.len]++
	}

	w := headerWidth(lengths, int(maxLen))

	bw := NewBitWriter()
	bw.AppendFixed(uint32(w), 3)
	for l := 1; l <= int(maxLen); l++ {
		bw.AppendFixed(uint32(lengths[l]), w)
	}
	bw.AppendFixed(uint32((1<<uint(w))-1), w)
	bw.FillByte()

	for _, p := range pairs {
		bw.AppendByte(p.sym)
	}

	var payloadBits uint64
	for _, b := range input {
		payloadBits += uint64(codes[b].length)
	}
	bwLen := byteWidth(payloadBits)
	bw.AppendFixed(uint32(bwLen), 4)
	bw.AppendFixed64(payloadBits, bwLen*8)

	for _, b := range input {
		c := codes[b]
		bw.AppendFixed(c.code, int(c.length))
	}

	return bw.Bytes(), nil
}

// headerWidth picks the minimal W (spec.md §4.3) and bumps it until no
// length-count collides with the 2^W-1 terminator sentinel.
func headerWidth(lengths []int, maxLen int) int {
	w := bits.Len(uint(maxLen))
	if w == 0 {
		w = 1
	}
	for {
		term := (1 << uint(w)) - 1
		collision := false
		for l := 1; l <= maxLen; l++ {
			if lengths[l] >= term {
				collision = true
				break
			}
		}
		if !collision {
			return w
		}
		w++
	}
}

// byteWidth returns the minimal number of bytes needed to hold v,
// big-endian, with 0 meaning "zero bits of payload".
func byteWidth(v uint64) int {
	if v == 0 {
		return 0
	}
	return (bits.Len64(v) + 7) / 8
}

// buildHuffmanTree seeds the heap with one leaf per distinct symbol and
// repeatedly merges the two lowest-frequency nodes until one root remains.
func buildHuffmanTree(freq []uint64, symbols []byte) *huffNode {
	nodes := make([]*huffNode, len(symbols))
	for i, s := range symbols {
		nodes[i] = &huffNode{symbol: s, isLeaf: true, freq: freq[s]}
	}
	h := buildHeapFrom(nodes)
	for h.len() > 1 {
		a := h.popMin()
		b := h.popMin()
		h.push(&huffNode{freq: a.freq + b.freq, children: [2]*huffNode{a, b}})
	}
	return h.nodes[0]
}

// assignDepths walks the tree depth-first, recording each leaf's depth as
// its code length.
func assignDepths(n *huffNode, depth int, out map[byte]byte) {
	if n.isLeaf {
		out[n.symbol] = byte(depth)
		return
	}
	assignDepths(n.children[0], depth+1, out)
	assignDepths(n.children[1], depth+1, out)
}

func (HuffmanCoder) Decode(input []byte) ([]byte, error) {
	if len(input) == 0 {
		return []byte{}, nil
	}

	r := NewBitReader(input)

	w, err := r.ReadFixed(3)
	if err != nil {
		return nil, newError(KindMalformedHeader, 0, "reading header width: %v", err)
	}
	if w == 0 {
		return nil, newError(KindMalformedHeader, 0, "header width is zero")
	}

	term := uint32(1<<w) - 1
	var lengths []int // lengths[l-1] = count of symbols with code length l
	for {
		count, err := r.ReadFixed(int(w))
		if err != nil {
			return nil, newError(KindMalformedHeader, r.ByteOffset(), "reading length count: %v", err)
		}
		if count == term {
			break
		}
		lengths = append(lengths, int(count))
		if len(lengths) > 256 {
			return nil, newError(KindMalformedHeader, r.ByteOffset(), "too many code-length buckets")
		}
	}

	numSymbols := 0
	for _, c := range lengths {
		numSymbols += c
	}
	if numSymbols == 0 {
		return nil, newError(KindMalformedHeader, r.ByteOffset(), "empty symbol alphabet")
	}
	if numSymbols > 256 {
		return nil, newError(KindMalformedHeader, r.ByteOffset(), "more symbols than possible byte values")
	}

	r.AlignByte()

	symbols := make([]byte, numSymbols)
	for i := range symbols {
		b, err := r.ReadAlignedByte()
		if err != nil {
			return nil, newError(KindMalformedHeader, r.ByteOffset(), "reading symbol list: %v", err)
		}
		symbols[i] = b
	}

	// Rebuild canonical codes exactly as the encoder assigned them: walk
	// the per-length counts in ascending order, consuming symbols from
	// the already length-sorted list.
	type codeLen struct {
		sym    byte
		length byte
	}
	pairs := make([]codeLen, 0, numSymbols)
	si := 0
	kraft := 0.0
	for li, count := range lengths {
		length := li + 1
		for j := 0; j < count; j++ {
			pairs = append(pairs, codeLen{sym: symbols[si], length: byte(length)})
			si++
		}
		kraft += float64(count) / float64(uint64(1)<<uint(length))
	}
	if kraft > 1.0000001 {
		return nil, newError(KindMalformedHeader, r.ByteOffset(), "code-length distribution violates the Kraft inequality")
	}

	root := &huffNode{}
	code := uint32(0)
	prevLen := byte(0)
	for i, p := range pairs {
		if i == 0 {
			prevLen = p.length
			code = 0
		} else {
			code++
			code <<= uint(p.length - prevLen)
			prevLen = p.length
		}
		insertCode(root, code, p.length, p.sym)
	}

	bwLen, err := r.ReadFixed(4)
	if err != nil {
		return nil, newError(KindMalformedHeader, r.ByteOffset(), "reading payload length width: %v", err)
	}
	payloadBits, err := r.ReadFixed64(int(bwLen) * 8)
	if err != nil {
		return nil, newError(KindMalformedHeader, r.ByteOffset(), "reading payload length: %v", err)
	}

	out := make([]byte, 0, payloadBits/2+1)
	node := root
	var consumed uint64
	for consumed < payloadBits {
		bit, err := r.ReadBit()
		if err != nil {
			return nil, newError(KindUnexpectedEndOfStream, r.ByteOffset(), "decoding payload: %v", err)
		}
		consumed++
		node = node.children[bit]
		if node == nil {
			return nil, newError(KindCorruptStream, r.ByteOffset(), "code not present in tree")
		}
		if node.isLeaf {
			out = append(out, node.symbol)
			node = root
		}
	}
	if node != root {
		return nil, newError(KindCorruptStream, r.ByteOffset(), "payload ended mid-codeword")
	}

	return out, nil
}

// DescribeHuffmanHeader parses just the header of a HuffmanEncode output —
// the header width and the code-length histogram — without touching the
// payload. It exists for diagnostics (see cmd/slz's -info flag); callers
// that want the decoded bytes should use HuffmanDecode instead.
func DescribeHuffmanHeader(input []byte) (histogram map[int]int, width int, err error) {
	if len(input) == 0 {
		return map[int]int{}, 0, nil
	}

	r := NewBitReader(input)
	w, err := r.ReadFixed(3)
	if err != nil {
		return nil, 0, newError(KindMalformedHeader, 0, "reading header width: %v", err)
	}
	if w == 0 {
		return nil, 0, newError(KindMalformedHeader, 0, "header width is zero")
	}

	term := uint32(1<<w) - 1
	histogram = make(map[int]int)
	for {
		count, err := r.ReadFixed(int(w))
		if err != nil {
			return nil, 0, newError(KindMalformedHeader, r.ByteOffset(), "reading length count: %v", err)
		}
		if count == term {
			break
		}
		histogram[len(histogram)+1] = int(count)
		if len(histogram) > 256 {
			return nil, 0, newError(KindMalformedHeader, r.ByteOffset(), "too many code-length buckets")
		}
	}

	return histogram, int(w), nil
}

// insertCode walks (or lazily creates) the decode trie along the bits of
// code, MSB-first, and marks the final node as a leaf for sym.
func insertCode(root *huffNode, code uint32, length byte, sym byte) {
	node := root
	for i := int(length) - 1; i >= 0; i-- {
		bit := (code >> uint(i)) & 1
		if node.children[bit] == nil {
			node.children[bit] = &huffNode{}
		}
		node = node.children[bit]
	}
	node.isLeaf = true
	node.symbol = sym
}
