package slz

// Sliding-window parameters, per spec.md §3/§4.5.
const (
	lzHistoryCap  = 1<<15 - 1 // H = 32767
	lzMinMatch    = 4
	lzMaxMatch    = 255
	lzMaxLiteral  = 1<<15 - 1 // 32767, matches the 16-bit signed id's positive range
)

// searchPattern owns a growable byte pattern plus a Boyer-Moore bad-
// character table: skip[c][i] is the rightmost index of byte c within
// pattern[0:i+1], or -1 if c never occurs there. Appending a byte extends
// every row by one entry in O(256).
//
// Grounded on original_source/lempelziv.py's SearchPattern
// (construct_bad_chars_array / append_bad_chars_array), translated from a
// column-growing list-of-lists into a row-major [256][]int so each row's
// append is a single slice grow.
type searchPattern struct {
	pattern []byte
	skip    [256][]int
}

func newSearchPattern(initial []byte) *searchPattern {
	sp := &searchPattern{}
	for _, b := range initial {
		sp.append(b)
	}
	return sp
}

func (sp *searchPattern) append(b byte) {
	last := make([]int, 256)
	for c := 0; c < 256; c++ {
		last[c] = -1
		if n := len(sp.skip[c]); n > 0 {
			last[c] = sp.skip[c][n-1]
		}
	}
	last[b] = len(sp.pattern)
	for c := 0; c < 256; c++ {
		sp.skip[c] = append(sp.skip[c], last[c])
	}
	sp.pattern = append(sp.pattern, b)
}

func (sp *searchPattern) len() int { return len(sp.pattern) }

// history is a FIFO byte ring of bounded capacity, indexed by an
// ever-increasing global byte position rather than a position relative to
// the current window. A naive slice-and-reslice ring (dropping the head
// once length exceeds capacity) silently renumbers every earlier logical
// index each time it drops bytes, which breaks self-referential matches
// (offset=-1 copying its own freshly-appended output) the moment the
// window is full. Tracking a monotonic `total` and mapping positions to
// `total % cap` — the ring shape spec.md §9 recommends, here sized to
// lzHistoryCap itself and indexed with plain modulo rather than a
// power-of-two mask, since the capacity is 2^15-1 — keeps every position
// stable for as long as it remains in the window.
type history struct {
	ring  []byte
	cap   int
	total int // bytes ever appended
}

func newHistory(cap int) *history {
	return &history{ring: make([]byte, cap), cap: cap}
}

// base is the global position of the oldest byte still in the window.
func (h *history) base() int {
	if h.total > h.cap {
		return h.total - h.cap
	}
	return 0
}

func (h *history) append(b byte) {
	h.ring[h.total%h.cap] = b
	h.total++
}

func (h *history) appendAll(bs []byte) {
	for _, b := range bs {
		h.append(b)
	}
}

// len reports the number of bytes currently in the window (saturates at
// cap), matching spec.md §3's "indexed random access in [0, len())".
func (h *history) len() int {
	if h.total < h.cap {
		return h.total
	}
	return h.cap
}

// at reads the byte at logical index i, i.e. the i-th oldest byte still in
// the window.
func (h *history) at(i int) byte { return h.ring[(h.base()+i)%h.cap] }

// globalAt reads the byte at an absolute global position (as opposed to a
// window-relative logical index); pos must be within [base(), total).
func (h *history) globalAt(pos int) byte { return h.ring[pos%h.cap] }

// retrieve copies length bytes starting at logical index i of the window
// into both the returned slice and the history itself, appending as it
// goes so that self-referential runs (a match copying bytes it has itself
// just emitted, e.g. offset=-1 with length>1) see their own output.
func (h *history) retrieve(i, length int) ([]byte, error) {
	pos := h.total - h.len() + i
	if pos < h.base() {
		return nil, newError(KindCorruptStream, 0, "match offset reaches before the retained window")
	}
	out := make([]byte, 0, length)
	for j := 0; j < length; j++ {
		b := h.globalAt(pos + j)
		out = append(out, b)
		h.append(b)
	}
	return out, nil
}

// lzMatch is the result of the match-finder: either a usable back-
// reference (offset < 0, length >= lzMinMatch) or the "no match" sentinel
// (0, 1) meaning "advance one literal byte".
type lzMatch struct {
	offset int
	length int
}

// findBestMatch runs the Boyer-Moore-style bad-character search described
// in spec.md §4.5, extending the pattern one byte at a time for as long as
// a longer match keeps being found. Grounded on
// original_source/lempelziv.py's History.find_best_match /
// History.next_match.
func findBestMatch(h *history, text []byte, start int) lzMatch {
	best := lzMatch{offset: 0, length: 1}

	if start+lzMinMatch > len(text) {
		return best
	}

	pattern := newSearchPattern(text[start : start+lzMinMatch])
	searchFrom := 0

	for {
		found := nextMatch(h, pattern, searchFrom)
		if found == -1 {
			break
		}

		best = lzMatch{offset: found - h.len(), length: pattern.len()}
		if best.length >= lzMaxMatch {
			break
		}

		next := start + pattern.len()
		if next >= len(text) {
			break
		}
		pattern.append(text[next])
		searchFrom = found
	}

	return best
}

// nextMatch searches h[from:] for pattern using the bad-character rule,
// returning the starting index of the first full match at or after from,
// or -1.
func nextMatch(h *history, pattern *searchPattern, from int) int {
	n := h.len()
	m := pattern.len()
	if m == 0 || from+m > n {
		return -1
	}

	start := from
	latestStart := n - m
	for start <= latestStart {
		pi := m - 1
		for pi >= 0 && pattern.pattern[pi] == h.at(start+pi) {
			pi--
		}
		if pi == -1 {
			return start
		}

		c := h.at(start + pi)
		shift := pi - pattern.skip[c][pi]
		if shift < 1 {
			shift = 1
		}
		start += shift
	}
	return -1
}

// LZ77Encode compresses input into the block stream described in spec.md
// §4.6: a flat sequence of 2-byte signed block ids, each followed either by
// a length byte and no payload (a Match, copying from history) or by the
// id's own byte count of raw payload (a Literal).
func LZ77Encode(input []byte) ([]byte, error) {
	out := make([]byte, 0, len(input))
	h := newHistory(lzHistoryCap)
	var lit []byte

	flushLiteral := func() error {
		for len(lit) > 0 {
			n := len(lit)
			if n > lzMaxLiteral {
				n = lzMaxLiteral
			}
			block, err := encodeLiteralBlock(lit[:n])
			if err != nil {
				return err
			}
			out = append(out, block...)
			lit = lit[n:]
		}
		return nil
	}

	i := 0
	for i < len(input) {
		if len(lit) > lzHistoryCap {
			if err := flushLiteral(); err != nil {
				return nil, err
			}
		}

		m := findBestMatch(h, input, i)
		if m.offset == 0 {
			lit = append(lit, input[i])
			h.append(input[i])
			i++
			continue
		}

		if err := flushLiteral(); err != nil {
			return nil, err
		}
		out = append(out, encodeMatchBlock(m.offset, m.length)...)
		h.appendAll(input[i : i+m.length])
		i += m.length
	}

	if err := flushLiteral(); err != nil {
		return nil, err
	}

	return out, nil
}

func encodeMatchBlock(offset, length int) []byte {
	w := NewBitWriter()
	w.AppendFixed(uint32(int32(offset))&0xffff, 16)
	w.AppendByte(byte(length))
	return w.Bytes()
}

func encodeLiteralBlock(payload []byte) ([]byte, error) {
	if len(payload) == 0 || len(payload) > lzMaxLiteral {
		return nil, newError(KindInputTooLarge, 0, "literal block of %d bytes exceeds the %d-byte wire limit", len(payload), lzMaxLiteral)
	}
	w := NewBitWriter()
	w.AppendFixed(uint32(len(payload)), 16)
	out := w.Bytes()
	return append(out, payload...), nil
}

// LZ77Decode is the inverse of LZ77Encode, grounded on
// original_source/lempelziv.py's lempelziv_decode.
func LZ77Decode(input []byte) ([]byte, error) {
	out := make([]byte, 0, len(input))
	h := newHistory(lzHistoryCap)

	i := 0
	for i+2 <= len(input) {
		r := NewBitReader(input[i:])
		id, err := r.ReadFixedSigned(16)
		if err != nil {
			return nil, newError(KindUnexpectedEndOfStream, i, "reading block id: %v", err)
		}
		i += 2

		switch {
		case id == 0:
			return nil, newError(KindCorruptStream, i-2, "block id is zero")

		case id < 0:
			if i >= len(input) {
				return nil, newError(KindCorruptStream, i, "match block missing length byte")
			}
			length := int(input[i])
			i++

			offset := int(id)
			if h.len()+offset < 0 {
				return nil, newError(KindCorruptStream, i, "match offset %d reaches before start of history (history has %d bytes)", offset, h.len())
			}
			copied, err := h.retrieve(h.len()+offset, length)
			if err != nil {
				return nil, err
			}
			out = append(out, copied...)

		default:
			length := int(id)
			if i+length > len(input) {
				return nil, newError(KindCorruptStream, i, "literal block of %d bytes runs past end of input", length)
			}
			payload := input[i : i+length]
			i += length
			out = append(out, payload...)
			h.appendAll(payload)
		}
	}

	return out, nil
}
