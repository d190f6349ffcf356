package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/prettymuchbryce/fmtcheck/internal/config"
	"github.com/prettymuchbryce/fmtcheck/internal/rules"
)

// resetFlags restores every flag to its default so commands can run repeatedly.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args inside dir.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".xdg"))

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(path, mode); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		args     []string
		wantCode int
		contains []string
	}{
		{
			name:     "clean tree",
			files:    map[string]string{"a.c": "int a;\n"},
			args:     []string{"check"},
			wantCode: ExitOK,
			contains: []string{"check completed successfully"},
		},
		{
			name:     "tabs",
			files:    map[string]string{"a.h": "\tint x;\n", "b.c": "int b;\n"},
			args:     []string{"check"},
			wantCode: ExitFailure,
			contains: []string{"check failed", "      1: tabs"},
		},
		{
			name:     "tabs disabled",
			files:    map[string]string{"a.h": "\tint x;\n"},
			args:     []string{"check", "--no-tabs"},
			wantCode: ExitOK,
		},
		{
			name:     "fail fast",
			files:    map[string]string{"a.c": "\tint a;\n", "b.c": "\tint b;\n"},
			args:     []string{"check", "-f"},
			wantCode: ExitFailFast,
			contains: []string{"fail-fast", "      1: tabs"},
		},
		{
			name:     "line length",
			files:    map[string]string{"a.c": "int a_rather_long_name;\n"},
			args:     []string{"check", "-l", "10"},
			wantCode: ExitFailure,
			contains: []string{"1: line too long"},
		},
		{
			name:     "encoding",
			files:    map[string]string{"a.c": "int caf\xc3\xa9;\n"},
			args:     []string{"check"},
			wantCode: ExitFailure,
			contains: []string{"1: not ascii"},
		},
		{
			name:     "utf-8 accepted",
			files:    map[string]string{"a.c": "int caf\xc3\xa9;\n"},
			args:     []string{"check", "--encoding", "utf-8"},
			wantCode: ExitOK,
		},
		{
			name:     "non-ascii file without encoding check",
			files:    map[string]string{"a.c": "// caf\xc3\xa9\n\tint x; \n"},
			args:     []string{"check", "--no-encoding"},
			wantCode: ExitFailure,
			contains: []string{"1: tabs", "1: trailing spaces"},
		},
		{
			name:     "excluded directory",
			files:    map[string]string{".hidden/a.c": "\tint a;\n"},
			args:     []string{"check"},
			wantCode: ExitOK,
		},
		{
			name:     "no-skip",
			files:    map[string]string{".hidden/a.c": "\tint a;\n"},
			args:     []string{"check", "--no-skip"},
			wantCode: ExitFailure,
			contains: []string{"1: tabs"},
		},
		{
			name:     "multiple paths aggregate",
			files:    map[string]string{"one/a.c": "\tint a;\n", "two/b.c": "\tint b;\n", "three/c.c": "\tint c;\n"},
			args:     []string{"check", "one", "two"},
			wantCode: ExitFailure,
			contains: []string{"      2: tabs"},
		},
		{
			name:     "invalid eol flag",
			files:    map[string]string{"a.c": "int a;\n"},
			args:     []string{"check", "--eol", "mac"},
			wantCode: ExitFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				writeFile(t, filepath.Join(dir, filepath.FromSlash(name)), content, 0644)
			}

			out, err := execute(t, dir, tt.args...)
			if code := ExitCode(err); code != tt.wantCode {
				t.Fatalf("exit code = %d (err %v), want %d\n%s", code, err, tt.wantCode, out)
			}
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestCheck_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.c"), "\tint a;\n", 0644)
	writeFile(t, filepath.Join(dir, "notes.txt"), "fine\n", 0644)
	writeFile(t, filepath.Join(dir, ".fmtcheck.yaml"), "paths:\n  include: '*.txt'\n", 0644)

	if _, err := execute(t, dir, "check"); err != nil {
		t.Errorf("expected a.c to be ignored by the local config, got %v", err)
	}

	// An explicit config replaces the local one
	writeFile(t, filepath.Join(dir, "strict.yaml"), "check:\n  checks: [tabs]\n", 0644)
	if _, err := execute(t, dir, "check", "-c", "strict.yaml"); ExitCode(err) != ExitFailure {
		t.Errorf("expected failure with explicit config, got %v", err)
	}
}

func TestCheck_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".fmtcheck.yaml"), "check:\n  eol: mac\n", 0644)

	_, err := execute(t, dir, "check")
	if err == nil {
		t.Fatal("expected config error")
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		t.Error("config errors are not run results")
	}

	var out bytes.Buffer
	printError(&out, err)
	if !strings.HasPrefix(out.String(), "Error: ") {
		t.Errorf("printError = %q", out.String())
	}
}

func TestCheck_List(t *testing.T) {
	out, err := execute(t, t.TempDir(), "check", "--list", "--copyright")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "* tabs") || !strings.Contains(out, "* copyright") || !strings.Contains(out, "  mode") {
		t.Errorf("unexpected list:\n%s", out)
	}
}

func TestFix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.h")
	writeFile(t, path, "\tint x;  \r\nint y;", 0755)

	if _, err := execute(t, dir, "fix", "--eol", "unix", "--mode"); err != nil {
		t.Fatalf("fix failed: %v", err)
	}
	if got := readFile(t, path); got != "    int x;\nint y;\n" {
		t.Errorf("content = %q", got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("mode = %v, want 0644", info.Mode().Perm())
	}

	if _, err := execute(t, dir, "check", "--eol", "unix", "--mode"); err != nil {
		t.Errorf("check after fix failed: %v", err)
	}
}

func TestFix_TabSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.c")
	writeFile(t, path, "\tint x;\n", 0644)

	if _, err := execute(t, dir, "fix", "--tabsize", "2"); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, path); got != "  int x;\n" {
		t.Errorf("content = %q", got)
	}
}

func TestFix_ThroughSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real", "a.c")
	link := filepath.Join(dir, "src", "a.c")
	writeFile(t, target, "int x; \n", 0644)
	if err := os.MkdirAll(filepath.Dir(link), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	if _, err := execute(t, dir, "fix", "src"); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, target); got != "int x;\n" {
		t.Errorf("target content = %q", got)
	}
	info, err := os.Lstat(link)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Error("symlink was replaced by a regular file")
	}
}

func TestFix_DryRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.c")
	writeFile(t, path, "int x;  \n", 0644)

	out, err := execute(t, dir, "fix", "-n", "-b")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Dry-run") {
		t.Errorf("missing dry-run notice:\n%s", out)
	}
	if got := readFile(t, path); got != "int x;  \n" {
		t.Errorf("dry run modified the file: %q", got)
	}
	if _, err := os.Stat(path + ".bak"); !os.IsNotExist(err) {
		t.Error("dry run wrote a backup")
	}
}

func TestFix_Backup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.c")
	writeFile(t, path, "int x;  \n", 0644)
	clean := filepath.Join(dir, "b.c")
	writeFile(t, clean, "int y;\n", 0644)

	if _, err := execute(t, dir, "fix", "-b"); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, path+".bak"); got != "int x;  \n" {
		t.Errorf("backup = %q", got)
	}
	if _, err := os.Stat(clean + ".bak"); !os.IsNotExist(err) {
		t.Error("unchanged file was backed up")
	}
}

func TestCopyright(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "run.sh")
	writeFile(t, script, "#!/bin/sh\necho hi\n", 0755)
	source := filepath.Join(dir, "a.c")
	writeFile(t, source, "// Copyright 2019 Other\nint a;\n", 0644)

	args := []string{"copyright", "--template", "# Copyright {year} Example\n", "--year", "2024"}
	if _, err := execute(t, dir, args...); err != nil {
		t.Fatalf("copyright failed: %v", err)
	}

	if got := readFile(t, script); got != "#!/bin/sh\n# Copyright 2024 Example\necho hi\n" {
		t.Errorf("run.sh = %q", got)
	}
	if got := readFile(t, source); got != "// Copyright 2019-2024 Other\nint a;\n" {
		t.Errorf("a.c = %q", got)
	}

	// A second run is a fixed point
	if _, err := execute(t, dir, args...); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, script); got != "#!/bin/sh\n# Copyright 2024 Example\necho hi\n" {
		t.Errorf("second run changed run.sh: %q", got)
	}

	// The copyright check now passes
	if _, err := execute(t, dir, "check", "--copyright"); err != nil {
		t.Errorf("check --copyright failed: %v", err)
	}
}

func TestCopyright_NoUpdate(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "a.c")
	writeFile(t, source, "// Copyright 2019 Other\nint a;\n", 0644)

	if _, err := execute(t, dir, "copyright", "--year", "2024", "--no-update"); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, source); got != "// Copyright 2019 Other\nint a;\n" {
		t.Errorf("a.c = %q", got)
	}
}

func TestCopyright_InvalidTemplate(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "a.c")
	writeFile(t, source, "int a;\n", 0644)

	_, err := execute(t, dir, "copyright", "--template", "# Copyright Example\n")
	if err == nil {
		t.Fatal("expected template error")
	}
	if got := readFile(t, source); got != "int a;\n" {
		t.Errorf("file modified despite template error: %q", got)
	}
}

func TestCopyright_InvalidYearFrom(t *testing.T) {
	if _, err := execute(t, t.TempDir(), "copyright", "--year-from", "later"); err == nil {
		t.Error("expected error")
	}
}

func TestDumpcfg(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "dumpcfg", "--default")
	if err != nil {
		t.Fatal(err)
	}
	if out != config.DefaultContent() {
		t.Error("--default should print the embedded config")
	}

	writeFile(t, filepath.Join(dir, ".fmtcheck.yaml"), "check:\n  maxlinelen: 99\n", 0644)
	out, err = execute(t, dir, "dumpcfg")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "maxlinelen: 99") || !strings.Contains(out, "tabsize: 4") {
		t.Errorf("effective config not dumped:\n%s", out)
	}
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	if _, err := execute(t, dir, "init"); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, ".fmtcheck.yaml")
	if readFile(t, path) != config.DefaultContent() {
		t.Error("init did not write the default config")
	}

	if _, err := execute(t, dir, "init"); err == nil {
		t.Error("expected error for existing config")
	}
	if _, err := execute(t, dir, "init", "--force"); err != nil {
		t.Errorf("forced init failed: %v", err)
	}

	// The written config is picked up and valid
	if _, err := execute(t, dir, "check"); err != nil {
		t.Errorf("check with default config failed: %v", err)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, ExitOK},
		{"plain error", errors.New("boom"), ExitFailure},
		{"check failed", resultError(rules.ErrCheckFailed), ExitFailure},
		{"files failed", resultError(rules.ErrFilesFailed), ExitFailure},
		{"fail fast", resultError(rules.ErrFailFast), ExitFailFast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.expected {
				t.Errorf("ExitCode = %d, want %d", got, tt.expected)
			}
		})
	}

	if resultError(nil) != nil {
		t.Error("resultError(nil) should be nil")
	}
}

func TestSetRule(t *testing.T) {
	tests := []struct {
		name     string
		names    config.StringList
		rule     string
		on       bool
		expected config.StringList
	}{
		{"add", config.StringList{"tabs"}, "mode", true, config.StringList{"tabs", "mode"}},
		{"already on", config.StringList{"tabs"}, "tabs", true, config.StringList{"tabs"}},
		{"remove", config.StringList{"tabs", "eol"}, "tabs", false, config.StringList{"eol"}},
		{"already off", config.StringList{"eol"}, "tabs", false, config.StringList{"eol"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := setRule(tt.names, tt.rule, tt.on)
			if strings.Join(got, ",") != strings.Join(tt.expected, ",") {
				t.Errorf("setRule = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLogLevel(t *testing.T) {
	t.Cleanup(func() { verbose, debug, quiet = false, false, false })

	verbose, debug, quiet = false, false, false
	if logLevel("warn") != "warn" {
		t.Error("configured level should apply without flags")
	}
	quiet = true
	if logLevel("info") != "error" {
		t.Error("-q should log errors only")
	}
	quiet, verbose = false, true
	if logLevel("warn") != "info" {
		t.Error("-v should log info")
	}
	debug = true
	if logLevel("warn") != "debug" {
		t.Error("-d should win")
	}
}
