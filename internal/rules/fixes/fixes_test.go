package fixes

import (
	"errors"
	"slices"
	"testing"

	"github.com/prettymuchbryce/fmtcheck/internal/eol"
	"github.com/prettymuchbryce/fmtcheck/internal/formatter"
	"github.com/prettymuchbryce/fmtcheck/internal/fs"
	"github.com/prettymuchbryce/fmtcheck/internal/match"
	"github.com/prettymuchbryce/fmtcheck/internal/rules"
	_ "github.com/prettymuchbryce/fmtcheck/internal/rules/checks"
	"github.com/prettymuchbryce/fmtcheck/internal/srctree"
	"github.com/prettymuchbryce/fmtcheck/internal/testutil"

	"github.com/spf13/afero"
)

func testOptions(fixes ...string) *rules.Options {
	opts := rules.DefaultOptions()
	opts.Fixes = fixes
	opts.EOL = eol.Unix
	opts.SkipBinary = false
	return opts
}

func walk(t *testing.T, afs afero.Fs, root string) *srctree.Tree {
	t.Helper()
	m, err := match.New(match.DefaultInclude, match.DefaultExclude, false)
	if err != nil {
		t.Fatal(err)
	}
	return srctree.New(afs, root, m)
}

func runFix(t *testing.T, fsys fs.FileSystem, root string, opts *rules.Options) []rules.FixOutcome {
	t.Helper()
	runner, err := rules.NewFixRunner(fsys, opts, nil)
	if err != nil {
		t.Fatalf("NewFixRunner: %v", err)
	}
	return runner.Run(walk(t, fsys, root).Walk())
}

func outcomeFor(t *testing.T, outcomes []rules.FixOutcome, path string) rules.FixOutcome {
	t.Helper()
	for _, o := range outcomes {
		if o.Path == path {
			return o
		}
	}
	t.Fatalf("no outcome for %s in %+v", path, outcomes)
	return rules.FixOutcome{}
}

func TestFix_Content(t *testing.T) {
	tests := []struct {
		name     string
		fixes    []string
		tabSize  int
		eol      eol.EOL
		content  string
		expected string
		applied  []string
	}{
		{
			name:     "tabs to spaces",
			fixes:    []string{"tabs"},
			tabSize:  4,
			content:  "\tx = 1;\n",
			expected: "    x = 1;\n",
			applied:  []string{"tabs"},
		},
		{
			name:     "tabsize zero keeps tabs",
			fixes:    []string{"tabs", "trailing"},
			tabSize:  0,
			content:  "\tx = 1; \n",
			expected: "\tx = 1;\n",
			applied:  []string{"trailing"},
		},
		{
			name:     "trailing whitespace",
			fixes:    []string{"trailing"},
			content:  "a \t\nb\t\r\nc  ",
			expected: "a\nb\r\nc",
			applied:  []string{"trailing"},
		},
		{
			name:     "whitespace between carriage returns",
			fixes:    []string{"trailing"},
			content:  "a \r \nb \r\t\r\n",
			expected: "a\r\nb\r\r\n",
			applied:  []string{"trailing"},
		},
		{
			name:     "defaults on carriage return mix",
			fixes:    rules.DefaultFixes,
			tabSize:  4,
			eol:      eol.Unix,
			content:  "a \r \nb\n",
			expected: "a\nb\n",
			applied:  []string{"trailing", "eol"},
		},
		{
			name:     "eol to unix",
			fixes:    []string{"eol"},
			eol:      eol.Unix,
			content:  "a\r\nb\nc\r\n",
			expected: "a\nb\nc\n",
			applied:  []string{"eol"},
		},
		{
			name:     "eol to windows",
			fixes:    []string{"eol"},
			eol:      eol.Win,
			content:  "a\r\nb\nc",
			expected: "a\r\nb\r\nc",
			applied:  []string{"eol"},
		},
		{
			name:     "missing final newline",
			fixes:    []string{"eof"},
			content:  "int x;",
			expected: "int x;\n",
			applied:  []string{"eof"},
		},
		{
			name:     "final newline follows file style",
			fixes:    []string{"eof"},
			eol:      eol.Unix,
			content:  "a\r\nint x;",
			expected: "a\r\nint x;\r\n",
			applied:  []string{"eof"},
		},
		{
			name:     "eof after eol normalization",
			fixes:    []string{"eof", "eol"},
			eol:      eol.Win,
			content:  "a\nb",
			expected: "a\r\nb\r\n",
			applied:  []string{"eol", "eof"},
		},
		{
			name:     "empty file untouched",
			fixes:    rules.DefaultFixes,
			tabSize:  4,
			content:  "",
			expected: "",
		},
		{
			name:     "all defaults",
			fixes:    rules.DefaultFixes,
			tabSize:  2,
			eol:      eol.Unix,
			content:  "if (x) {\r\n\ty(); \r\n}",
			expected: "if (x) {\n  y();\n}\n",
			applied:  []string{"trailing", "tabs", "eol", "eof"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			afs := afero.NewMemMapFs()
			testutil.Build(t, afs, "/src", testutil.File("a.c").WithContent(tt.content))

			opts := testOptions(tt.fixes...)
			opts.TabSize = tt.tabSize
			if tt.eol != "" {
				opts.EOL = tt.eol
			}

			outcomes := runFix(t, fs.NewMemOver(afs), "/src", opts)
			o := outcomeFor(t, outcomes, "/src/a.c")
			if o.Err != nil {
				t.Fatalf("unexpected error: %v", o.Err)
			}
			if !slices.Equal(o.Applied, tt.applied) {
				t.Errorf("applied = %v, want %v", o.Applied, tt.applied)
			}
			if got := testutil.ReadFile(t, afs, "/src/a.c"); got != tt.expected {
				t.Errorf("content = %q, want %q", got, tt.expected)
			}

			// A second run is a no-op.
			again := outcomeFor(t, runFix(t, fs.NewMemOver(afs), "/src", opts), "/src/a.c")
			if len(again.Applied) != 0 {
				t.Errorf("second run applied %v", again.Applied)
			}
		})
	}
}

func TestFix_Mode(t *testing.T) {
	afs := afero.NewMemMapFs()
	testutil.Build(t, afs, "/src", testutil.File("run.sh").WithContent("echo hi\n").WithMode(0755))

	opts := testOptions("mode")
	o := outcomeFor(t, runFix(t, fs.NewMemOver(afs), "/src", opts), "/src/run.sh")
	if !slices.Equal(o.Applied, []string{"mode"}) {
		t.Fatalf("applied = %v, want [mode]", o.Applied)
	}

	info, err := afs.Stat("/src/run.sh")
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("mode = %v, want 0644", info.Mode().Perm())
	}
	if got := testutil.ReadFile(t, afs, "/src/run.sh"); got != "echo hi\n" {
		t.Errorf("content changed to %q", got)
	}

	again := outcomeFor(t, runFix(t, fs.NewMemOver(afs), "/src", opts), "/src/run.sh")
	if len(again.Applied) != 0 {
		t.Errorf("second run applied %v", again.Applied)
	}
}

func TestFix_KeepsPermissions(t *testing.T) {
	afs := afero.NewMemMapFs()
	testutil.Build(t, afs, "/src", testutil.File("run.sh").WithContent("echo hi \n").WithMode(0750))

	runFix(t, fs.NewMemOver(afs), "/src", testOptions("trailing"))

	info, err := afs.Stat("/src/run.sh")
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0750 {
		t.Errorf("mode = %v, want 0750", info.Mode().Perm())
	}
}

func TestFix_Backup(t *testing.T) {
	afs := afero.NewMemMapFs()
	testutil.Build(t, afs, "/src",
		testutil.File("a.c").WithContent("int a; \n"),
		testutil.File("b.c").WithContent("int b;\n"),
		testutil.File("c.c").WithContent("int c; \n"),
		testutil.File("c.c.bak").WithContent("stale"),
	)

	opts := testOptions("trailing")
	opts.Backup = true
	runFix(t, fs.NewMemOver(afs), "/src", opts)

	if got := testutil.ReadFile(t, afs, "/src/a.c.bak"); got != "int a; \n" {
		t.Errorf("backup = %q", got)
	}
	if got := testutil.ReadFile(t, afs, "/src/a.c"); got != "int a;\n" {
		t.Errorf("content = %q", got)
	}
	if testutil.Exists(afs, "/src/b.c.bak") {
		t.Error("unchanged file should not be backed up")
	}
	if got := testutil.ReadFile(t, afs, "/src/c.c.bak"); got != "int c; \n" {
		t.Errorf("existing backup should be overwritten, got %q", got)
	}
}

func TestFix_DryRun(t *testing.T) {
	afs := afero.NewMemMapFs()
	testutil.Build(t, afs, "/src", testutil.File("a.c").WithContent("\tint a; \n").WithMode(0755))

	opts := testOptions("trailing", "tabs", "mode")
	opts.Backup = true
	outcomes := runFix(t, fs.NewDryRunOver(afs), "/src", opts)

	o := outcomeFor(t, outcomes, "/src/a.c")
	if !slices.Equal(o.Applied, []string{"trailing", "tabs", "mode"}) {
		t.Errorf("applied = %v", o.Applied)
	}
	if got := testutil.ReadFile(t, afs, "/src/a.c"); got != "\tint a; \n" {
		t.Errorf("dry run modified content: %q", got)
	}
	if testutil.Exists(afs, "/src/a.c.bak") {
		t.Error("dry run wrote a backup")
	}
	info, _ := afs.Stat("/src/a.c")
	if info.Mode().Perm() != 0755 {
		t.Errorf("dry run changed mode to %v", info.Mode().Perm())
	}
}

func TestFix_WriteErrorContinues(t *testing.T) {
	afs := afero.NewMemMapFs()
	testutil.Build(t, afs, "/src",
		testutil.File("a.c").WithContent("int a; \n"),
		testutil.File("b.c").WithContent("int b; \n"),
	)

	outcomes := runFix(t, fs.NewReadOnly(afs), "/src", testOptions("trailing"))
	if len(outcomes) != 2 {
		t.Fatalf("outcomes = %+v", outcomes)
	}
	for _, o := range outcomes {
		if o.Err == nil {
			t.Errorf("%s: expected write error", o.Path)
		}
		if len(o.Applied) != 0 {
			t.Errorf("%s: failed write must not count as applied", o.Path)
		}
	}
	if !errors.Is(rules.FixErr(outcomes), rules.ErrFilesFailed) {
		t.Error("FixErr should report failure")
	}
	if s := rules.FixSummary(outcomes); s.Errors != 2 {
		t.Errorf("summary errors = %d", s.Errors)
	}
}

func TestFix_UndecodableFile(t *testing.T) {
	afs := afero.NewMemMapFs()
	testutil.Build(t, afs, "/src", testutil.File("a.c").WithContent("caf\xe9 \r\n\tx;\n").WithMode(0755))

	opts := testOptions("trailing", "tabs", "eol", "clang-format", "mode")
	opts.Formatter = formatter.Func(func(path string, content []byte) ([]byte, error) {
		t.Errorf("formatter called on undecodable content")
		return content, nil
	})
	o := outcomeFor(t, runFix(t, fs.NewMemOver(afs), "/src", opts), "/src/a.c")
	if o.Err != nil {
		t.Fatalf("unexpected error: %v", o.Err)
	}
	if !slices.Equal(o.Applied, []string{"trailing", "tabs", "eol", "mode"}) {
		t.Errorf("applied = %v", o.Applied)
	}
	if got := testutil.ReadFile(t, afs, "/src/a.c"); got != "caf\xe9\n    x;\n" {
		t.Errorf("content = %q, want raw bytes kept", got)
	}
}

func TestFix_UndecodableWithoutLines(t *testing.T) {
	afs := afero.NewMemMapFs()
	testutil.Build(t, afs, "/src", testutil.File("a.c").WithContent("\x00\xd8a\x00"))

	opts := testOptions("trailing")
	opts.Encoding = "utf-16le"
	outcomes := runFix(t, fs.NewMemOver(afs), "/src", opts)

	o := outcomeFor(t, outcomes, "/src/a.c")
	if o.Err == nil || len(o.Applied) != 0 {
		t.Errorf("outcome = %+v, want an error and nothing applied", o)
	}
	if !errors.Is(rules.FixErr(outcomes), rules.ErrFilesFailed) {
		t.Errorf("FixErr = %v", rules.FixErr(outcomes))
	}
	if got := testutil.ReadFile(t, afs, "/src/a.c"); got != "\x00\xd8a\x00" {
		t.Errorf("content changed: %q", got)
	}
}

func TestFix_Latin1RoundTrip(t *testing.T) {
	afs := afero.NewMemMapFs()
	testutil.Build(t, afs, "/src", testutil.File("a.c").WithContent("caf\xe9 \n"))

	opts := testOptions("trailing")
	opts.Encoding = "latin1"
	runFix(t, fs.NewMemOver(afs), "/src", opts)

	if got := testutil.ReadFile(t, afs, "/src/a.c"); got != "caf\xe9\n" {
		t.Errorf("content = %q, want latin1 bytes kept", got)
	}
}

func TestFix_ClangFormat(t *testing.T) {
	afs := afero.NewMemMapFs()
	testutil.Build(t, afs, "/src",
		testutil.File("a.c").WithContent("int  x;\n"),
		testutil.File("notes.txt").WithContent("int  x;\n"),
	)

	opts := testOptions("clang-format")
	opts.Formatter = formatter.Func(func(path string, content []byte) ([]byte, error) {
		return []byte("int x;\n"), nil
	})
	outcomes := runFix(t, fs.NewMemOver(afs), "/src", opts)

	if got := testutil.ReadFile(t, afs, "/src/a.c"); got != "int x;\n" {
		t.Errorf("a.c = %q", got)
	}
	if got := testutil.ReadFile(t, afs, "/src/notes.txt"); got != "int  x;\n" {
		t.Errorf("clang-format must only touch C-family files, notes.txt = %q", got)
	}
	if o := outcomeFor(t, outcomes, "/src/notes.txt"); len(o.Applied) != 0 {
		t.Errorf("notes.txt applied %v", o.Applied)
	}

	opts.Formatter = formatter.Unavailable{}
	testutil.Build(t, afs, "/src", testutil.File("b.c").WithContent("int  y;\n"))
	if o := outcomeFor(t, runFix(t, fs.NewMemOver(afs), "/src", opts), "/src/b.c"); len(o.Applied) != 0 || o.Err != nil {
		t.Errorf("unavailable formatter must be a no-op, got %+v", o)
	}
}

func TestFix_ThenCheckPasses(t *testing.T) {
	afs := afero.NewMemMapFs()
	testutil.Build(t, afs, "/src",
		testutil.File("a.c").WithContent("int main() {\r\n\treturn 0; \r\n}"),
		testutil.File("sub/b.h").WithContent("#define X 1\t\n"),
	)

	opts := testOptions(rules.DefaultFixes...)
	opts.Checks = rules.DefaultChecks
	runFix(t, fs.NewMemOver(afs), "/src", opts)

	checker, err := rules.NewCheckRunner(afs, opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	rep := checker.Run(walk(t, afs, "/src").Walk())
	if rep.Failed() {
		t.Errorf("check after fix failed: %v", rep.Counts)
	}
}

func TestFixRules_Unknown(t *testing.T) {
	if _, err := rules.FixRules([]string{"encoding"}); err == nil {
		t.Error("expected error for unknown fix")
	}
}

func TestFixSummary(t *testing.T) {
	s := rules.FixSummary([]rules.FixOutcome{
		{Path: "a", Applied: []string{"mode", "trailing"}},
		{Path: "b", Applied: []string{"trailing"}},
		{Path: "c"},
	})
	if s.Files != 3 || len(s.Rows) != 2 {
		t.Fatalf("summary = %+v", s)
	}
	if s.Rows[0].Label != "trailing" || s.Rows[0].Count != 2 || s.Rows[1].Label != "mode" {
		t.Errorf("rows = %+v", s.Rows)
	}
}
