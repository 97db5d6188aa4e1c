package diag

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCompare(t *testing.T) {
	items := []any{
		map[string]any{"a": 1, "b": math.NaN()},
		[]any{"x", nil, true, 2.5},
		map[string]any{"nested": map[string]any{"deep": []any{1, 2}}},
	}
	for _, item := range items {
		if err := Compare(item, false); err != nil {
			t.Errorf("Compare(%v) = %v, want nil", item, err)
		}
	}
}

func TestComparePretty(t *testing.T) {
	if err := Compare(map[string]any{"a": []any{1}}, true); err != nil {
		t.Errorf("Compare(pretty) = %v, want nil", err)
	}
}

func TestCompareUnencodable(t *testing.T) {
	if err := Compare(map[string]any{"ch": make(chan int)}, false); err == nil {
		t.Error("Compare(unencodable) = nil, want error")
	}
}

func TestBenchmark(t *testing.T) {
	results, err := Benchmark(map[string]any{"y": []any{1, 2, 3}}, false, Params{MinRuns: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) < 2 {
		t.Fatalf("Benchmark results = %v, want at least the built-in engines", results)
	}
	for _, r := range results {
		if r.Runs < 3 {
			t.Errorf("engine %s ran %d times, want >= 3", r.Engine, r.Runs)
		}
		if r.PerRun() <= 0 {
			t.Errorf("engine %s per-run time = %v", r.Engine, r.PerRun())
		}
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	if p.MinRuns != 10 || p.MinTime != time.Second {
		t.Errorf("DefaultParams = %+v", p)
	}
}

func TestAppendCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.csv")
	results := []Result{{Engine: "json", Runs: 10, Total: 5 * time.Millisecond}}

	if err := AppendCSV(path, results); err != nil {
		t.Fatal(err)
	}
	if err := AppendCSV(path, results); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv lines = %d, want header plus two rows:\n%s", len(lines), data)
	}
	if lines[0] != "engine,runs,total_ns,per_run_ns" {
		t.Errorf("csv header = %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "json,10,") {
		t.Errorf("csv row = %s", lines[1])
	}
}

func TestDumpSample(t *testing.T) {
	dir := t.TempDir()
	path, err := DumpSample(dir, map[string]any{"a": 1})
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := "{\n  \"a\": 1\n}"; string(data) != want {
		t.Errorf("dumped sample = %q, want %q", data, want)
	}

	// Unique names: a second dump must not collide.
	other, err := DumpSample(dir, map[string]any{"a": 1})
	if err != nil {
		t.Fatal(err)
	}
	if other == path {
		t.Error("DumpSample reused a file name")
	}
}

func TestDumpSampleCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dumps", "nested")
	path, err := DumpSample(dir, map[string]any{"a": 1})
	if err != nil {
		t.Fatalf("DumpSample() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("dumped sample missing: %v", err)
	}
}
