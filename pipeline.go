// Package slz implements a lossless byte-stream compressor: an LZ77-style
// sliding-window dictionary coder feeding a canonical Huffman entropy
// coder. The wire format is bespoke, not compatible with DEFLATE, LZMA, or
// any other standard container.
package slz

// Compress applies the full pipeline: the LZ77 block stream is built first,
// then Huffman-coded. compress(x) = huffman_encode(lz77_encode(x)).
func Compress(input []byte) ([]byte, error) {
	lz, err := LZ77Encode(input)
	if err != nil {
		return nil, err
	}
	return HuffmanEncode(lz)
}

// Decompress is the inverse of Compress: the Huffman layer is peeled off
// first, then the LZ77 block stream is expanded.
// decompress(x) = lz77_decode(huffman_decode(x)).
func Decompress(input []byte) ([]byte, error) {
	lz, err := HuffmanDecode(input)
	if err != nil {
		return nil, err
	}
	return LZ77Decode(lz)
}
