package render

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "json", "ndjson", "yaml", "tsv"} {
		got, err := ParseFormat(s)
		if err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseFormat(%q) = %q", s, got)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRenderTableAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, Options{Format: FormatTable})

	err := r.RenderTable([]string{"ID", "NAME"}, [][]string{
		{"338", "Speedster GT"},
		{"2000", "clone"},
	})
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + separator + 2 rows:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[0], "NAME") {
		t.Errorf("unexpected header line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "--") {
		t.Errorf("expected separator, got %q", lines[1])
	}
	if !strings.HasPrefix(lines[3], "2000  ") {
		t.Errorf("columns not padded to widest cell: %q", lines[3])
	}
}

func TestRenderTablePorcelain(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, Options{Format: FormatTable, Porcelain: true})

	err := r.RenderTable([]string{"ID", "NAME"}, [][]string{{"338", "Speedster GT"}})
	if err != nil {
		t.Fatal(err)
	}

	want := "ID\tNAME\n338\tSpeedster GT\n"
	if buf.String() != want {
		t.Errorf("porcelain output = %q, want %q", buf.String(), want)
	}
}

func TestRenderTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, Options{Format: FormatTable})

	if err := r.RenderTable([]string{"ID"}, nil); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("empty table produced output %q", buf.String())
	}
}

func TestRenderTSV(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, Options{Format: FormatTSV})

	err := r.RenderTSV([]string{"ID", "NAME"}, [][]string{{"338", "Speedster GT"}})
	if err != nil {
		t.Fatal(err)
	}
	want := "ID\tNAME\n338\tSpeedster GT\n"
	if buf.String() != want {
		t.Errorf("tsv output = %q, want %q", buf.String(), want)
	}
}

func TestRenderRowsDispatch(t *testing.T) {
	headers := []string{"ID"}
	rows := [][]string{{"338"}}
	items := []interface{}{map[string]int64{"id": 338}}

	var table bytes.Buffer
	if err := NewRenderer(&table, Options{Format: FormatTable}).RenderRows(headers, rows, items); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(table.String(), "ID") {
		t.Errorf("table dispatch output %q", table.String())
	}

	var ndjson bytes.Buffer
	if err := NewRenderer(&ndjson, Options{Format: FormatNDJSON}).RenderRows(headers, rows, items); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(ndjson.String()); got != `{"id":338}` {
		t.Errorf("ndjson dispatch output %q", got)
	}

	var asJSON bytes.Buffer
	if err := NewRenderer(&asJSON, Options{Format: FormatJSON, Porcelain: true}).RenderRows(headers, rows, items); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(asJSON.String()); got != `[{"id":338}]` {
		t.Errorf("json dispatch output %q", got)
	}
}
