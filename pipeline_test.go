package slz

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestCompressEmpty(t *testing.T) {
	out, err := Compress(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("compress(\"\") should be empty, got %v", out)
	}
	back, err := Decompress(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(back) != 0 {
		t.Fatalf("decompress(\"\") should be empty, got %v", back)
	}
}

func TestCompressSingleByteAllValues(t *testing.T) {
	for b := 0; b < 256; b++ {
		input := []byte{byte(b)}
		out, err := Compress(input)
		if err != nil {
			t.Fatalf("byte %d: %v", b, err)
		}
		back, err := Decompress(out)
		if err != nil {
			t.Fatalf("byte %d: %v", b, err)
		}
		if !bytes.Equal(back, input) {
			t.Fatalf("byte %d: got %v want %v", b, back, input)
		}
	}
}

func TestCompressABABPattern(t *testing.T) {
	input := []byte("ABABABABABAB")
	out, err := Compress(input)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Decompress(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(back, input) {
		t.Fatalf("got %q want %q", back, input)
	}
}

func TestCompressVenneligePennevenner(t *testing.T) {
	input := []byte("vennelige pennevenner")
	out, err := Compress(input)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Decompress(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(back, input) {
		t.Fatalf("got %q want %q", back, input)
	}
}

func TestCompressRepeatedZeros(t *testing.T) {
	input := bytes.Repeat([]byte{0x00}, 1000)
	out, err := Compress(input)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) > 150 {
		t.Fatalf("expected a small output for 1000 zeros, got %d", len(out))
	}
	back, err := Decompress(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(back, input) {
		t.Fatal("round-trip mismatch for repeated zeros")
	}
}

func TestCompressRandomUniform(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))
	input := make([]byte, 100*1024)
	rng.Read(input)

	out, err := Compress(input)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Decompress(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(back, input) {
		t.Fatal("round-trip mismatch for random uniform input")
	}
	// Near-incompressible: shouldn't blow up by more than a small
	// constant factor (LZ adds 2 bytes per literal flush; Huffman on
	// uniform bytes stays close to 8 bits/symbol).
	if len(out) > len(input)*2 {
		t.Fatalf("random input should not double in size, got %d from %d", len(out), len(input))
	}
}

func TestCompressRoundTripFuzz(t *testing.T) {
	rng := rand.New(rand.NewSource(55))
	for trial := 0; trial < 40; trial++ {
		n := rng.Intn(5000)
		input := make([]byte, n)
		switch trial % 4 {
		case 0:
			rng.Read(input)
		case 1:
			for i := range input {
				input[i] = byte(rng.Intn(4))
			}
		case 2:
			for i := range input {
				input[i] = byte('a' + rng.Intn(4))
			}
		case 3:
			if n > 0 {
				for i := range input {
					input[i] = input[0]
				}
			}
		}
		out, err := Compress(input)
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		back, err := Decompress(out)
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		if !bytes.Equal(back, input) {
			t.Fatalf("trial %d: round-trip mismatch (n=%d)", trial, n)
		}
	}
}
