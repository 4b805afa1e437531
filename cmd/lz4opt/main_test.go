package main

import (
	"testing"

	"github.com/harriteja/lz4opt/frame"
)

func TestParseArgsDefaults(t *testing.T) {
	cfg, err := parseArgs([]string{"in.txt", "out.lz4"})
	if err != nil {
		t.Fatalf("parseArgs() error = %v", err)
	}
	if cfg.decompress || cfg.verify || cfg.verbose || cfg.raw {
		t.Errorf("unexpected flags set in default config: %+v", cfg)
	}
	if cfg.blockMax != frame.BlockMax4MiB || cfg.mode != frame.Dependent {
		t.Errorf("defaults = %+v, want BlockMax4MiB/Dependent", cfg)
	}
	if cfg.in != "in.txt" || cfg.out != "out.lz4" {
		t.Errorf("in/out = %q/%q, want in.txt/out.lz4", cfg.in, cfg.out)
	}
}

func TestParseArgsFlagsAndDict(t *testing.T) {
	cfg, err := parseArgs([]string{"-d", "-v", "-r", "-B5", "-BI", "-D", "dict.bin", "in.lz4", "out.bin"})
	if err != nil {
		t.Fatalf("parseArgs() error = %v", err)
	}
	if !cfg.decompress || !cfg.verbose || !cfg.raw {
		t.Errorf("flags not set: %+v", cfg)
	}
	if cfg.blockMax != frame.BlockMax256KiB || cfg.mode != frame.Independent {
		t.Errorf("block/mode = %v/%v, want BlockMax256KiB/Independent", cfg.blockMax, cfg.mode)
	}
	if cfg.dictPath != "dict.bin" {
		t.Errorf("dictPath = %q, want dict.bin", cfg.dictPath)
	}
	if cfg.in != "in.lz4" || cfg.out != "out.bin" {
		t.Errorf("in/out = %q/%q", cfg.in, cfg.out)
	}
}

func TestParseArgsMissingOperands(t *testing.T) {
	if _, err := parseArgs([]string{"-v"}); err == nil {
		t.Error("parseArgs() error = nil, want error for missing in/out")
	}
}

func TestParseArgsMissingDictValue(t *testing.T) {
	if _, err := parseArgs([]string{"-D"}); err == nil {
		t.Error("parseArgs() error = nil, want error for -D with no value")
	}
}
