package slz

// BitWriter is an append-only bit buffer backed by a byte slice. Bits are
// written MSB-first within each byte; multi-bit fields (see FixedInt below)
// are emitted most-significant-bit first as well.
//
// This mirrors the accumulate-and-spill shape of
// github.com/bwesterb/go-ncrlite's bitWriter/bitReader pair, but the core
// here works over fully materialised buffers rather than an io.Writer
// stream (the pipeline has no streaming/incremental mode), so the writer
// owns a plain []byte instead of wrapping a bufio.Writer, and bit order is
// fixed MSB-first rather than the teacher's little-endian accumulator.
type BitWriter struct {
	buf    []byte
	cursor int // next bit position within the last byte, in [0, 8]; 8 means the last byte is full (or the stream is empty)
}

// NewBitWriter returns an empty bit writer.
func NewBitWriter() *BitWriter {
	return &BitWriter{cursor: 8}
}

// AppendBit appends a single bit (0 or nonzero) to the stream.
func (w *BitWriter) AppendBit(b uint8) {
	if w.cursor == 8 {
		w.buf = append(w.buf, 0)
		w.cursor = 0
	}
	if b != 0 {
		w.buf[len(w.buf)-1] |= 1 << uint(7-w.cursor)
	}
	w.cursor++
}

// AppendFixed emits the low n bits of v, most significant bit first.
func (w *BitWriter) AppendFixed(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		w.AppendBit(uint8((v >> uint(i)) & 1))
	}
}

// AppendFixed64 is AppendFixed for fields wider than 32 bits.
func (w *BitWriter) AppendFixed64(v uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		w.AppendBit(uint8((v >> uint(i)) & 1))
	}
}

// FillByte pads with zero bits until the stream is byte-aligned. It is a
// no-op if the stream is already aligned.
func (w *BitWriter) FillByte() {
	for w.cursor != 8 {
		w.AppendBit(0)
	}
}

// AppendByte writes a raw, byte-aligned 8-bit value. The caller is
// responsible for having aligned the stream first (see FillByte).
func (w *BitWriter) AppendByte(b byte) {
	w.AppendFixed(uint32(b), 8)
}

// BitLen returns the number of bits written so far.
func (w *BitWriter) BitLen() int {
	if len(w.buf) == 0 {
		return 0
	}
	return (len(w.buf)-1)*8 + w.cursor
}

// Bytes returns the accumulated byte buffer. The trailing partial byte, if
// any, has its unwritten low bits set to zero.
func (w *BitWriter) Bytes() []byte {
	return w.buf
}

// BitReader is a borrowed, read-only view over a byte buffer, consuming
// bits MSB-first in lockstep with BitWriter.
type BitReader struct {
	buf     []byte
	byteIdx int
	bitIdx  int // in [0, 8)
}

// NewBitReader returns a reader positioned at the start of buf. The slice
// is not copied; the caller must not mutate it while the reader is live.
func NewBitReader(buf []byte) *BitReader {
	return &BitReader{buf: buf}
}

// RemainingBits reports how many unread bits are left in the buffer.
func (r *BitReader) RemainingBits() int {
	return (len(r.buf)-r.byteIdx)*8 - r.bitIdx
}

// ReadBit reads a single bit.
func (r *BitReader) ReadBit() (uint8, error) {
	if r.byteIdx >= len(r.buf) {
		return 0, newError(KindUnexpectedEndOfStream, r.byteIdx, "no bits remaining")
	}
	mask := uint8(1) << uint(7-r.bitIdx)
	var bit uint8
	if r.buf[r.byteIdx]&mask != 0 {
		bit = 1
	}
	r.bitIdx++
	if r.bitIdx == 8 {
		r.bitIdx = 0
		r.byteIdx++
	}
	return bit, nil
}

// ReadFixed reads n bits (n <= 32) MSB-first and returns them as an
// unsigned value in [0, 2^n).
func (r *BitReader) ReadFixed(n int) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	if r.RemainingBits() < n {
		return 0, newError(KindUnexpectedEndOfStream, r.byteIdx, "need %d bits, have %d", n, r.RemainingBits())
	}
	var v uint32
	for i := 0; i < n; i++ {
		b, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		v = (v << 1) | uint32(b)
	}
	return v, nil
}

// ReadFixed64 is ReadFixed for fields wider than 32 bits.
func (r *BitReader) ReadFixed64(n int) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	if r.RemainingBits() < n {
		return 0, newError(KindUnexpectedEndOfStream, r.byteIdx, "need %d bits, have %d", n, r.RemainingBits())
	}
	var v uint64
	for i := 0; i < n; i++ {
		b, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		v = (v << 1) | uint64(b)
	}
	return v, nil
}

// ReadFixedSigned reads n bits and reinterprets them as two's-complement
// signed, i.e. a value in [-2^(n-1), 2^(n-1)).
func (r *BitReader) ReadFixedSigned(n int) (int32, error) {
	v, err := r.ReadFixed(n)
	if err != nil {
		return 0, err
	}
	if v&(1<<uint(n-1)) != 0 {
		return int32(v) - (1 << uint(n)), nil
	}
	return int32(v), nil
}

// AlignByte skips any remaining bits in the current byte, positioning the
// reader at the next byte boundary.
func (r *BitReader) AlignByte() {
	if r.bitIdx != 0 {
		r.bitIdx = 0
		r.byteIdx++
	}
}

// ReadAlignedByte reads one raw byte. The reader must already be
// byte-aligned (see AlignByte).
func (r *BitReader) ReadAlignedByte() (byte, error) {
	if r.bitIdx != 0 {
		return 0, newError(KindUnexpectedEndOfStream, r.byteIdx, "reader not byte-aligned")
	}
	if r.byteIdx >= len(r.buf) {
		return 0, newError(KindUnexpectedEndOfStream, r.byteIdx, "no bytes remaining")
	}
	b := r.buf[r.byteIdx]
	r.byteIdx++
	return b, nil
}

// ByteOffset reports the current byte position, rounding down a partial
// byte; used to annotate errors with an offset into the input.
func (r *BitReader) ByteOffset() int {
	return r.byteIdx
}
