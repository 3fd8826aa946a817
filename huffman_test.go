package slz

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestHuffmanEmpty(t *testing.T) {
	out, err := HuffmanEncode(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %v", out)
	}
	back, err := HuffmanDecode(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(back) != 0 {
		t.Fatalf("expected empty round-trip, got %v", back)
	}
}

func TestHuffmanSingleByte(t *testing.T) {
	for b := 0; b < 256; b++ {
		input := []byte{byte(b)}
		out, err := HuffmanEncode(input)
		if err != nil {
			t.Fatalf("byte %d: %v", b, err)
		}
		back, err := HuffmanDecode(out)
		if err != nil {
			t.Fatalf("byte %d: %v", b, err)
		}
		if !bytes.Equal(back, input) {
			t.Fatalf("byte %d: got %v want %v", b, back, input)
		}
	}
}

func TestHuffmanSingleDistinctSymbol(t *testing.T) {
	input := bytes.Repeat([]byte{'x'}, 1000)
	out, err := HuffmanEncode(input)
	if err != nil {
		t.Fatal(err)
	}
	back, err := HuffmanDecode(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(back, input) {
		t.Fatal("round-trip mismatch for single-symbol input")
	}
}

func TestHuffmanCanonicalExample(t *testing.T) {
	input := []byte("vennelige pennevenner")
	out, err := HuffmanEncode(input)
	if err != nil {
		t.Fatal(err)
	}
	back, err := HuffmanDecode(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(back, input) {
		t.Fatalf("got %q want %q", back, input)
	}
}

func TestHuffmanRoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		n := rng.Intn(4000)
		input := make([]byte, n)
		for i := range input {
			// Skewed distribution, exercising unbalanced trees.
			input[i] = byte(rng.Intn(1 + rng.Intn(256)))
		}
		out, err := HuffmanEncode(input)
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		back, err := HuffmanDecode(out)
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		if !bytes.Equal(back, input) {
			t.Fatalf("trial %d: round-trip mismatch", trial)
		}
	}
}

func TestHuffmanKraftInequality(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		n := 10 + rng.Intn(2000)
		input := make([]byte, n)
		rng.Read(input)

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
			codeLengths[symbols[0]] = 1
		} else {
			root := buildHuffmanTree(freq[:], symbols)
			assignDepths(root, 0, codeLengths)
		}

		sum := 0.0
		for _, l := range codeLengths {
			sum += 1.0 / float64(uint64(1)<<uint(l))
		}
		if sum > 1.0000001 {
			t.Fatalf("trial %d: Kraft sum %.6f exceeds 1", trial, sum)
		}
	}
}

func TestHuffmanMalformedHeaderWidthZero(t *testing.T) {
	w := NewBitWriter()
	w.AppendFixed(0, 3)
	_, err := HuffmanDecode(w.Bytes())
	if err == nil {
		t.Fatal("expected error for zero header width")
	}
}

func TestHuffmanWMinimal(t *testing.T) {
	// A two-symbol, single-length alphabet needs the shortest legal
	// header: maxLength=1 forces W to bump from 1 to 2 to avoid the
	// terminator collision.
	input := []byte{'a', 'b', 'a', 'b', 'a'}
	out, err := HuffmanEncode(input)
	if err != nil {
		t.Fatal(err)
	}
	r := NewBitReader(out)
	w, err := r.ReadFixed(3)
	if err != nil {
		t.Fatal(err)
	}
	if w < 2 {
		t.Fatalf("expected W >= 2 to avoid terminator collision, got %d", w)
	}
	back, err := HuffmanDecode(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(back, input) {
		t.Fatalf("got %v want %v", back, input)
	}
}
