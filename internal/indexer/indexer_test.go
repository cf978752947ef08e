package indexer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rvtools/rvenc/internal/config"
)

const addDefinition = `name: add
long_name: Add
extension: I
encoding:
  match: "0000000----------000-----0110011"
  variables:
    - name: xs2
      location: 24-20
    - name: xs1
      location: 19-15
    - name: xd
      location: 11-7
`

const sketchyDefinition = `name: sketchy
extension: I
encoding:
  match: "0000000----------000-----0110011"
  variables:
    - name: imm
      location: bogus
`

func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Site.OutputDir = "" // individual tests opt in
	return cfg
}

func TestRunResolvesCorpus(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"add.yaml":     addDefinition,
		"sketchy.yaml": sketchyDefinition,
	})

	idx := NewWithConfig(testConfig())
	if err := idx.Run(dir); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(idx.Resolved) != 2 {
		t.Fatalf("expected 2 resolved instructions, got %+v", idx.Resolved)
	}
	// Sorted by name.
	if idx.Resolved[0].Instruction.Name != "add" || idx.Resolved[1].Instruction.Name != "sketchy" {
		t.Fatalf("unexpected order: %s, %s", idx.Resolved[0].Instruction.Name, idx.Resolved[1].Instruction.Name)
	}
	if idx.Result == nil {
		t.Fatalf("no result recorded")
	}
	if idx.Result.Stats.Instructions != 2 {
		t.Fatalf("unexpected stats %+v", idx.Result.Stats)
	}
	// sketchy has a malformed piece and a dropped variable, both errors.
	if idx.Result.Summary.Errors < 2 {
		t.Fatalf("expected malformed-location and dropped-variable errors, got %+v", idx.Result.Violations)
	}
}

func TestRunSecondPassHitsCache(t *testing.T) {
	dir := writeCorpus(t, map[string]string{"add.yaml": addDefinition})

	cfg := testConfig()
	idx := NewWithConfig(cfg)
	if err := idx.Run(dir); err != nil {
		t.Fatalf("first run: %v", err)
	}

	cacheDir := filepath.Join(dir, cfg.Analysis.Cache.Dir)
	if _, err := os.Stat(filepath.Join(cacheDir, "index.json")); err != nil {
		t.Fatalf("cache index not written: %v", err)
	}

	idx2 := NewWithConfig(testConfig())
	if err := idx2.Run(dir); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(idx2.Resolved) != 1 || idx2.Resolved[0].Instruction.Name != "add" {
		t.Fatalf("cached run lost results: %+v", idx2.Resolved)
	}
	if idx2.Resolved[0].Format != "R" || len(idx2.Resolved[0].Layout) == 0 {
		t.Fatalf("cached result incomplete: %+v", idx2.Resolved[0])
	}
}

func TestRunUnreadableFileIsLoadError(t *testing.T) {
	dir := writeCorpus(t, map[string]string{
		"add.yaml":    addDefinition,
		"broken.yaml": "name: [unclosed\n",
	})

	idx := NewWithConfig(testConfig())
	if err := idx.Run(dir); err != nil {
		t.Fatalf("per-file failures must not abort the batch: %v", err)
	}
	if len(idx.Resolved) != 1 {
		t.Fatalf("expected the good file to survive, got %+v", idx.Resolved)
	}
	if len(idx.Result.LoadErrors) != 1 || !strings.Contains(idx.Result.LoadErrors[0].Message, "broken.yaml") {
		t.Fatalf("expected a load error for broken.yaml, got %+v", idx.Result.LoadErrors)
	}
}

func TestRunMissingRootDegradesToEmpty(t *testing.T) {
	idx := NewWithConfig(testConfig())
	if err := idx.Run(filepath.Join(t.TempDir(), "no-such-dir")); err != nil {
		t.Fatalf("missing root must degrade, not fail: %v", err)
	}
	if len(idx.Resolved) != 0 {
		t.Fatalf("expected empty corpus, got %+v", idx.Resolved)
	}
}

func TestRunGeneratesSite(t *testing.T) {
	dir := writeCorpus(t, map[string]string{"add.yaml": addDefinition})
	cfg := testConfig()
	cfg.Site.OutputDir = "site"

	idx := NewWithConfig(cfg)
	if err := idx.Run(dir); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, rel := range []string{
		filepath.Join("site", "index.html"),
		filepath.Join("site", "insns", "add.html"),
		filepath.Join("site", "svg", "add.svg"),
	} {
		if _, err := os.Stat(filepath.Join(dir, rel)); err != nil {
			t.Fatalf("missing site output %s: %v", rel, err)
		}
	}
}

func TestRunRuleConfigOverrides(t *testing.T) {
	dir := writeCorpus(t, map[string]string{"sketchy.yaml": sketchyDefinition})

	cfg := testConfig()
	cfg.Lint.Rules = map[string]string{
		"malformed-location": "off",
		"dropped-variable":   "warning",
	}
	idx := NewWithConfig(cfg)
	if err := idx.Run(dir); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, viol := range idx.Result.Violations {
		if viol.Rule == "malformed-location" {
			t.Fatalf("disabled rule still reported: %+v", viol)
		}
		if viol.Rule == "dropped-variable" && viol.Severity != "warning" {
			t.Fatalf("severity override lost: %+v", viol)
		}
	}
	if idx.Result.Summary.Errors != 0 {
		t.Fatalf("expected no errors after overrides, got %+v", idx.Result.Summary)
	}
}

func TestRunMaxParallelFiles(t *testing.T) {
	files := make(map[string]string)
	files["add.yaml"] = addDefinition
	files["add2.yaml"] = strings.Replace(addDefinition, "name: add", "name: add2", 1)
	files["add3.yaml"] = strings.Replace(addDefinition, "name: add", "name: add3", 1)
	dir := writeCorpus(t, files)

	cfg := testConfig()
	cfg.Analysis.MaxParallelFiles = 1
	idx := NewWithConfig(cfg)
	if err := idx.Run(dir); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(idx.Resolved) != 3 {
		t.Fatalf("expected 3 instructions, got %d", len(idx.Resolved))
	}
}

func TestRunTimingOutput(t *testing.T) {
	dir := writeCorpus(t, map[string]string{"add.yaml": addDefinition})

	cfg := testConfig()
	idx := NewWithConfig(cfg)
	idx.Timing = true
	idx.TimingPath = filepath.Join(dir, "timing.jsonl")
	if err := idx.Run(dir); err != nil {
		t.Fatalf("run: %v", err)
	}

	data, err := os.ReadFile(idx.TimingPath)
	if err != nil {
		t.Fatalf("read timing: %v", err)
	}
	out := string(data)
	for _, phase := range []string{`"phase":"scan"`, `"phase":"resolve"`, `"phase":"total"`} {
		if !strings.Contains(out, phase) {
			t.Fatalf("timing output missing %s: %s", phase, out)
		}
	}
}
