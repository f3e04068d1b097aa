package sample

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	samples := []Sample{
		{T: 1700000000000, V: 2250.5},
		{T: 1700000030000, V: 2251},
	}
	if err := WriteCSV(&buf, samples); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "timestamp,value" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != "2023-11-14T22:13:20.000Z,2250.5" {
		t.Fatalf("unexpected row %q", lines[1])
	}
	if lines[2] != "2023-11-14T22:13:50.000Z,2251" {
		t.Fatalf("unexpected row %q", lines[2])
	}
}

func TestWriteCSVEmptyHistory(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "timestamp,value" {
		t.Fatalf("expected header only, got %q", buf.String())
	}
}
