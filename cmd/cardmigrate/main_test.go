package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/cardmigrate/internal/store/sqlitestore"
)

const sampleExport = `[
  {"ID": 1, "NAME": "Pikachu", "TYPE": "Lightning", "RARITY": "Common", "IMAGE": "aGVsbG8=", "DATE_ADDED": "2024-03-15"},
  {"ID": 2, "NAME": "Gengar", "IMAGE": "%%%"},
  {"NAME": "No ID"}
]`

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("STORE_DRIVER", "memory")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pokemon_cards_export.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write export: %v", err)
	}
	return path
}

func TestMigrate_PrintsSummary(t *testing.T) {
	out, err := execute(t, "migrate", writeFile(t, sampleExport))
	if err != nil {
		t.Fatalf("migrate error = %v", err)
	}
	if !strings.Contains(out, "Migration complete. migrated=2, skipped=1") {
		t.Errorf("output = %q, want summary line", out)
	}
}

func TestMigrate_LogsSkippedRowAtAnyLevel(t *testing.T) {
	out, err := execute(t, "migrate", writeFile(t, sampleExport))
	if err != nil {
		t.Fatalf("migrate error = %v", err)
	}

	var skipped []string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "row skipped") {
			skipped = append(skipped, line)
		}
	}
	if len(skipped) != 1 {
		t.Fatalf("skipped-row lines = %d, want 1 with LOG_LEVEL=error:\n%s", len(skipped), out)
	}
	for _, want := range []string{"index=1", "code=IMG001", "run_id="} {
		if !strings.Contains(skipped[0], want) {
			t.Errorf("skipped-row line %q missing %q", skipped[0], want)
		}
	}
}

func TestMigrate_EmptyExport(t *testing.T) {
	out, err := execute(t, "migrate", writeFile(t, `[]`))
	if err != nil {
		t.Fatalf("migrate error = %v", err)
	}
	if !strings.Contains(out, "Migration complete. migrated=0, skipped=0") {
		t.Errorf("output = %q, want zero summary", out)
	}
}

func TestMigrate_ExportPathFromEnv(t *testing.T) {
	t.Setenv("EXPORT_FILE", writeFile(t, `[{"ID": "a"}]`))

	out, err := execute(t, "migrate")
	if err != nil {
		t.Fatalf("migrate error = %v", err)
	}
	if !strings.Contains(out, "migrated=1, skipped=0") {
		t.Errorf("output = %q", out)
	}
}

func TestMigrate_FatalErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     func(t *testing.T) []string
		wantText string
	}{
		{
			name:     "invalid json",
			args:     func(t *testing.T) []string { return []string{"migrate", writeFile(t, `[{"ID": 1},`)} },
			wantText: "FILE002",
		},
		{
			name:     "not an array",
			args:     func(t *testing.T) []string { return []string{"migrate", writeFile(t, `{"ID": 1}`)} },
			wantText: "FILE003",
		},
		{
			name:     "missing file",
			args:     func(t *testing.T) []string { return []string{"migrate", filepath.Join(t.TempDir(), "nope.json")} },
			wantText: "FILE005",
		},
		{
			name:     "unknown driver",
			args:     func(t *testing.T) []string { return []string{"migrate", "--store", "cassandra", writeFile(t, `[]`)} },
			wantText: "STORE_DRIVER",
		},
		{
			name:     "sqlite without url",
			args:     func(t *testing.T) []string { return []string{"migrate", "--store", "sqlite", writeFile(t, `[]`)} },
			wantText: "STORE_URL is a MongoDB URI",
		},
		{
			name:     "too many args",
			args:     func(*testing.T) []string { return []string{"migrate", "a.json", "b.json"} },
			wantText: "accepts at most 1 arg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args(t)...)
			if err == nil {
				t.Fatal("migrate expected error")
			}
			if !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantText)
			}
			if strings.Contains(out, "Migration complete") {
				t.Errorf("output = %q, want no completion line", out)
			}
		})
	}
}

func TestMigrate_DryRunOverridesDriver(t *testing.T) {
	path := writeFile(t, sampleExport)

	var out bytes.Buffer
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("STORE_DRIVER", "mongo")
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"migrate", "--dry-run", path})

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("migrate --dry-run error = %v", err)
	}
	if !strings.Contains(out.String(), "migrated=2, skipped=1") {
		t.Errorf("output = %q", out.String())
	}
}

func TestMigrate_SQLiteRerun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cards.db")
	exportPath := writeFile(t, sampleExport)

	for run := 1; run <= 2; run++ {
		out, err := execute(t, "migrate", "--store", "sqlite", "--url", dbPath, exportPath)
		if err != nil {
			t.Fatalf("run %d: migrate error = %v", run, err)
		}
		if !strings.Contains(out, "migrated=2, skipped=1") {
			t.Errorf("run %d: output = %q", run, out)
		}
	}

	s, err := sqlitestore.Open(context.Background(), dbPath, "pokemon_cards")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer s.Close(context.Background())

	// Row 1 upserted twice, the row without an ID inserted once per run.
	if n, _ := s.Count(context.Background()); n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}
	doc, ok, err := s.Get(context.Background(), "1")
	if err != nil || !ok {
		t.Fatalf("Get(1) = ok %v, err %v", ok, err)
	}
	if string(doc.Image) != "hello" {
		t.Errorf("image = %q, want decoded bytes", doc.Image)
	}
}

func TestDrivers(t *testing.T) {
	out, err := execute(t, "drivers")
	if err != nil {
		t.Fatalf("drivers error = %v", err)
	}
	for _, name := range []string{"memory", "mongo", "postgres", "sqlite"} {
		if !strings.Contains(out, name) {
			t.Errorf("drivers output missing %q:\n%s", name, out)
		}
	}
}
