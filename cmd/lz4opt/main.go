// Command lz4opt is the CLI driver for the lz4opt codec, spec §6. It
// follows the teacher's pattern of keeping all library logic in
// importable packages and doing only argument parsing, I/O wiring, and
// os.Exit in main — the teacher itself has no CLI, so this is grounded
// instead on the small-CLI convention the DOMAIN STACK notes are common
// across the pack: a single manual pass over bare switches (-B4..-B7,
// -BD, -BI, plus -z/-d/-c/-v/-r), then a second pass pulling out -D's
// path argument, leaving exactly two positional operands. No flag
// package involved.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/harriteja/lz4opt"
	"github.com/harriteja/lz4opt/frame"
	"github.com/harriteja/lz4opt/internal/wildcopy"
	"github.com/harriteja/lz4opt/matchfinder"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

const (
	exitOK    = 0
	exitError = 100
)

type config struct {
	decompress bool
	verify     bool
	verbose    bool
	raw        bool
	blockMax   frame.BlockMaxCode
	mode       frame.Mode
	dictPath   string
	in, out    string
}

func run(args []string) int {
	cfg, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lz4opt:", err)
		return exitError
	}

	var dict []byte
	if cfg.dictPath != "" {
		dict, err = lz4opt.LoadDictionary(cfg.dictPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "lz4opt:", err)
			return exitError
		}
	}

	opts := lz4opt.Options{
		BlockMax:    cfg.blockMax,
		Mode:        cfg.mode,
		Dict:        dict,
		Raw:         cfg.raw,
		MatchConfig: matchfinder.DefaultConfig(),
	}

	if cfg.verbose && !cfg.decompress {
		opts.OnBlock = func(origTotal, compTotal int64) {
			pct := 0.0
			if origTotal > 0 {
				pct = float64(compTotal) / float64(origTotal) * 100
			}
			fmt.Printf("%d => %d (%.1f%%)\n", origTotal, compTotal, pct)
		}
	}

	if cfg.verbose {
		sizeLabel, _ := cfg.blockMax.Size()
		depLabel := "dependent"
		if cfg.mode == frame.Independent {
			depLabel = "independent"
		}
		features := wildcopy.Detect()
		fmt.Printf("block size: %d bytes (%s), cpu: %s sse4.1=%v avx2=%v neon=%v\n",
			sizeLabel, depLabel, features.Arch, features.HasSSE41, features.HasAVX2, features.HasNEON)
	}

	start := time.Now()
	var stats lz4opt.Stats
	if cfg.decompress {
		stats, err = lz4opt.DecompressFile(cfg.in, cfg.out, opts)
	} else {
		stats, err = lz4opt.CompressFile(cfg.in, cfg.out, opts)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "lz4opt:", err)
		return exitError
	}

	if !cfg.decompress && cfg.verify {
		if err := verify(cfg, opts); err != nil {
			fmt.Fprintln(os.Stderr, "lz4opt: verify failed:", err)
			return exitError
		}
	}

	if cfg.verbose {
		elapsed := time.Since(start)
		ratio := 0.0
		if stats.OriginalBytes > 0 {
			ratio = float64(stats.CompressedBytes) / float64(stats.OriginalBytes) * 100
		}
		mbps := 0.0
		if elapsed > 0 {
			mbps = float64(stats.OriginalBytes) / elapsed.Seconds() / (1024 * 1024)
		}
		if cfg.decompress {
			fmt.Printf("%d => %d (%.1f%%) in %s, %.2f MB/s\n",
				stats.OriginalBytes, stats.CompressedBytes, ratio, elapsed, mbps)
		} else {
			fmt.Printf("%d => %d (%.1f%%) in %s, %.2f MB/s, %d tokens\n",
				stats.OriginalBytes, stats.CompressedBytes, ratio, elapsed, mbps, stats.Tokens)
		}
	}

	return exitOK
}

func verify(cfg config, opts lz4opt.Options) error {
	original, err := os.ReadFile(cfg.in)
	if err != nil {
		return err
	}
	compressed, err := os.ReadFile(cfg.out)
	if err != nil {
		return err
	}
	return lz4opt.Verify(compressed, original, opts)
}

func parseArgs(args []string) (config, error) {
	cfg := config{
		blockMax: frame.BlockMax4MiB,
		mode:     frame.Dependent,
	}

	var rest []string
	for _, a := range args {
		switch a {
		case "-z":
			cfg.decompress = false
		case "-d":
			cfg.decompress = true
		case "-c":
			cfg.verify = true
		case "-v":
			cfg.verbose = true
		case "-r":
			cfg.raw = true
		case "-B4":
			cfg.blockMax = frame.BlockMax64KiB
		case "-B5":
			cfg.blockMax = frame.BlockMax256KiB
		case "-B6":
			cfg.blockMax = frame.BlockMax1MiB
		case "-B7":
			cfg.blockMax = frame.BlockMax4MiB
		case "-BD":
			cfg.mode = frame.Dependent
		case "-BI":
			cfg.mode = frame.Independent
		default:
			rest = append(rest, a)
		}
	}

	for i := 0; i < len(rest); i++ {
		if rest[i] == "-D" {
			if i+1 >= len(rest) {
				return cfg, fmt.Errorf("-D requires a path argument")
			}
			cfg.dictPath = rest[i+1]
			rest = append(rest[:i], rest[i+2:]...)
			i--
			continue
		}
	}

	if len(rest) != 2 {
		return cfg, fmt.Errorf("usage: lz4opt [-z] [-d] [-c] [-v] [-r] [-B4..7] [-BD|-BI] [-D dict] <in> <out>")
	}
	cfg.in, cfg.out = rest[0], rest[1]
	return cfg, nil
}
