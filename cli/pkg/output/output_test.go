package output

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/emrealmaoglu/trailium/cli/pkg/config"
)

func setup(t *testing.T, format string) *bytes.Buffer {
	t.Helper()
	if err := config.Init(filepath.Join(t.TempDir(), "config.toml")); err != nil {
		t.Fatal(err)
	}
	config.Set("output.format", format)
	color.NoColor = true

	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(color.Output) })
	return &buf
}

func TestGetOutputFormat(t *testing.T) {
	for format, want := range map[string]OutputFormat{
		"json":  FormatJSON,
		"table": FormatTable,
		"text":  FormatText,
		"bogus": FormatText,
	} {
		setup(t, format)
		if got := GetOutputFormat(); got != want {
			t.Errorf("GetOutputFormat(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		format string
		want   bool
	}{
		{"json", true},
		{"table", true},
		{"text", true},
		{"xml", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidateOutputFormat(tt.format); got != tt.want {
			t.Errorf("ValidateOutputFormat(%q) = %v, want %v", tt.format, got, tt.want)
		}
	}
}

func TestPrintTable(t *testing.T) {
	buf := setup(t, "table")
	rows := [][]string{{"1", "first post"}, {"2", "second"}}

	if err := PrintTable(nil, []string{"ID", "TITLE"}, rows); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[1], "first post") {
		t.Errorf("unexpected table output %q", buf.String())
	}
}

func TestPrintTableJSONUsesRaw(t *testing.T) {
	buf := setup(t, "json")
	raw := []map[string]interface{}{{"id": 1}}

	if err := PrintTable(raw, []string{"ID"}, [][]string{{"1"}}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"id": 1`) {
		t.Errorf("json output = %q", buf.String())
	}
}

func TestPrintTableEmpty(t *testing.T) {
	buf := setup(t, "text")
	if err := PrintTable(nil, []string{"ID"}, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No results") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrintRecordSorted(t *testing.T) {
	buf := setup(t, "text")
	if err := PrintRecord("User", map[string]interface{}{"username": "alice", "id": 7}); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	if strings.Index(got, "id:") > strings.Index(got, "username:") {
		t.Errorf("keys not sorted: %q", got)
	}
	if !strings.HasPrefix(got, "User:\n") {
		t.Errorf("title missing: %q", got)
	}
}

func TestMessages(t *testing.T) {
	buf := setup(t, "text")
	PrintSuccess("Logged in as %s", "alice")
	PrintError("bad %d", 1)
	PrintWarning("careful")

	got := buf.String()
	for _, want := range []string{"Logged in as alice", "Error: bad 1", "Warning: careful"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}

func TestFormatAsJSON(t *testing.T) {
	got, err := FormatAsJSON(map[string]int{"a": 1})
	if err != nil || got != `{"a":1}` {
		t.Errorf("FormatAsJSON = %q, %v", got, err)
	}
}
