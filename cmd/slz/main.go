// Command slz is a thin file-handling shell around the slz package: it
// reads a whole file into memory, runs Compress or Decompress, and writes
// the result back out. The pipeline has no streaming mode (its functions
// take and return whole byte slices), so unlike many compressors this CLI never pipes
// bytes through incrementally — it always materializes the full input.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/term"
	"rsc.io/getopt"

	"github.com/mhagander/slz"
)

var (
	// Flags

	decompress = flag.Bool("decompress", false, "specify to decompress")
	info       = flag.Bool("info", false, "specify to print info on compressed file")
	keep       = flag.Bool("keep", false, "keep (don't delete) input file")
	toStdout   = flag.Bool("stdout", false, "write to stdout; implies -k")
	force      = flag.Bool("force", false, "overwrite output")
	verbose    = flag.Bool("verbose", false, "print stage progress to stderr")
	verify     = flag.Bool("verify", false, "append/check an xxhash integrity trailer")

	// State
	inPath  string
	inFile  *os.File
	outPath string
	outFile *os.File
)

const extension = ".slz"

// trailerLen is the width of the optional -verify trailer: an 8-byte
// little-endian xxhash64 of the uncompressed payload, appended after the
// core's own output. It lives in the CLI framing, not the wire format
// package slz defines, so turning -verify off round-trips exactly the
// bytes slz.Compress produced.
const trailerLen = 8

func logf(format string, args ...any) {
	if *verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

func doCompress() int {
	raw, err := io.ReadAll(bufio.NewReader(inFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: read: %v\n", inPath, err)
		return 5
	}
	logf("slz: read %d bytes from %s\n", len(raw), inPath)

	out, err := slz.Compress(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
		return 7
	}
	logf("slz: compressed to %d bytes\n", len(out))

	w := bufio.NewWriter(outFile)
	if _, err := w.Write(out); err != nil {
		fmt.Fprintf(os.Stderr, "%s: write: %v\n", outPath, err)
		return 7
	}

	if *verify {
		sum := xxhash.Sum64(raw)
		var trailer [trailerLen]byte
		for i := range trailer {
			trailer[i] = byte(sum >> (8 * uint(i)))
		}
		if _, err := w.Write(trailer[:]); err != nil {
			fmt.Fprintf(os.Stderr, "%s: write trailer: %v\n", outPath, err)
			return 7
		}
		logf("slz: wrote xxhash64 trailer %016x\n", sum)
	}

	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: write: %v\n", outPath, err)
		return 7
	}

	return 0
}

func doDecompress() int {
	raw, err := io.ReadAll(bufio.NewReader(inFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: read: %v\n", inPath, err)
		return 8
	}

	var wantSum uint64
	haveTrailer := false
	if *verify && len(raw) >= trailerLen {
		haveTrailer = true
		tail := raw[len(raw)-trailerLen:]
		raw = raw[:len(raw)-trailerLen]
		for i := trailerLen - 1; i >= 0; i-- {
			wantSum = (wantSum << 8) | uint64(tail[i])
		}
	}

	logf("slz: decoding %d bytes from %s\n", len(raw), inPath)
	out, err := slz.Decompress(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
		return 9
	}
	logf("slz: expanded to %d bytes\n", len(out))

	if haveTrailer {
		gotSum := xxhash.Sum64(out)
		if gotSum != wantSum {
			fmt.Fprintf(os.Stderr, "%s: integrity check failed: want xxhash64 %016x, got %016x\n", inPath, wantSum, gotSum)
			return 14
		}
		logf("slz: xxhash64 trailer verified (%016x)\n", gotSum)
	}

	if *info {
		printInfo(os.Stdout, raw, out)
	}

	if outFile == nil {
		return 0
	}

	w := bufio.NewWriter(outFile)
	if _, err := w.Write(out); err != nil {
		fmt.Fprintf(os.Stderr, "%s: write: %v\n", outPath, err)
		return 10
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: write: %v\n", outPath, err)
		return 10
	}

	return 0
}

// printInfo decodes the Huffman header by hand to report the statistics a
// plain round-trip never surfaces: header width, code-length spread, and
// symbol count. It tolerates a header it can't parse by reporting only
// what it could read, since -info is a diagnostic best-effort path, not
// part of the core contract.
func printInfo(w io.Writer, huffmanEncoded []byte, plain []byte) {
	fmt.Fprintf(w, "Uncompressed size     %d\n", len(plain))
	fmt.Fprintf(w, "Compressed size       %d\n", len(huffmanEncoded))
	if len(plain) > 0 {
		fmt.Fprintf(w, "Ratio                 %.2f%%\n", 100*float64(len(huffmanEncoded))/float64(len(plain)))
	}

	hist, w2, err := slz.DescribeHuffmanHeader(huffmanEncoded)
	if err != nil {
		fmt.Fprintf(w, "Huffman header        unreadable: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Header width (W)      %d bits\n", w2)
	var symbols, maxLen int
	for length, count := range hist {
		if count == 0 {
			continue
		}
		symbols += count
		if length > maxLen {
			maxLen = length
		}
	}
	fmt.Fprintf(w, "Distinct symbols      %d\n", symbols)
	fmt.Fprintf(w, "Max code length       %d bits\n", maxLen)
}

func do() int {
	var (
		err  error
		code int
	)

	if len(flag.Args()) > 1 {
		fmt.Fprintf(os.Stderr, "too many arguments\n")
		return 2
	}

	if len(flag.Args()) == 0 {
		inPath = "-"
	} else {
		inPath = flag.Args()[0]
	}

	closeInput := false
	closeOutput := false

	defer func() {
		if closeInput {
			inFile.Close()
		}

		if closeOutput {
			outFile.Close()

			if code != 0 {
				os.Remove(outPath)
			}
		}
	}()

	if inPath == "-" {
		inFile = os.Stdin
		closeInput = false
	} else {
		if _, err := os.Stat(inPath); errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
			return 1
		}

		inFile, err = os.Open(inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", inPath, err)
			return 3
		}
		closeInput = true
	}

	if inPath == "-" {
		outPath = "-"
	} else {
		if *toStdout {
			outPath = "-"
		} else if *decompress {
			if strings.HasSuffix(inPath, extension) {
				outPath = inPath[:len(inPath)-len(extension)]
			} else {
				outPath = inPath + ".out"
				fmt.Fprintf(
					os.Stderr,
					"%s: Unknown extension, writing to %s\n",
					inPath,
					outPath,
				)
			}
		} else if !*info {
			outPath = inPath + extension
		}
	}

	if *info && !*decompress {
		outFile = nil
	} else if outPath == "-" {
		outFile = os.Stdout

		if term.IsTerminal(int(os.Stdout.Fd())) && !*decompress && !*info {
			fmt.Fprintf(os.Stderr, "slz: I'm not writing compressed data to stdout\n")
			return 13
		}
	} else if !*info {
		if _, err := os.Stat(outPath); !*force && err == nil {
			fmt.Fprintf(os.Stderr, "%s: already exists\n", outPath)
			return 11
		}

		outFile, err = os.Create(outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: create: %v\n", outPath, err)
			return 4
		}

		closeOutput = true
	}

	if *decompress || *info {
		code = doDecompress()
	} else {
		code = doCompress()
	}

	if closeInput {
		closeInput = false
		inFile.Close()

		if !*keep && !*toStdout && code == 0 && !*info {
			err = os.Remove(inPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: unlink: %v\n", inPath, err)
				return 2
			}
		}
	}

	return code
}

func main() {
	getopt.Alias("d", "decompress")
	getopt.Alias("k", "keep")
	getopt.Alias("c", "stdout")
	getopt.Alias("f", "force")
	getopt.Alias("i", "info")
	getopt.Alias("v", "verbose")

	// Work around https://github.com/rsc/getopt/issues/3
	err := getopt.CommandLine.Parse(os.Args[1:])
	if err != nil {
		os.Exit(12)
	}

	ret := do()
	os.Exit(ret)
}
