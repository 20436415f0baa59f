// archive_test.go: tests for the archive log format, scan rules and compaction
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package bivium

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		text string
		want uint64
	}{
		{"42", 3483},
		{"7", 3374},
		{"hello world", 5019},
		{"", 4399},
	}
	for _, tt := range tests {
		if got := Checksum(tt.text); got != tt.want {
			t.Errorf("Checksum(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestArchiveRecord_Format(t *testing.T) {
	tests := []struct {
		name string
		rec  archiveRecord
		want string
	}{
		{
			name: "integer key",
			rec:  newArchiveRecord("42", "4200"),
			want: "Key: 42, Checksum: 3483, Value: \"4200\"\n",
		},
		{
			name: "key with separator is quoted",
			rec:  archiveRecord{key: "a, b", checksum: 1, value: "x\ny", hasValue: true},
			want: "Key: \"a, b\", Checksum: 1, Value: \"x\\ny\"\n",
		},
		{
			name: "key only",
			rec:  archiveRecord{key: "7", checksum: 3374},
			want: "Key: 7, Checksum: 3374\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rec.format()
			if got != tt.want {
				t.Fatalf("format() = %q, want %q", got, tt.want)
			}
			parsed, err := parseArchiveLine(strings.TrimSuffix(got, "\n"))
			if err != nil {
				t.Fatalf("parseArchiveLine: %v", err)
			}
			if parsed != tt.rec {
				t.Errorf("parsed %+v, want %+v", parsed, tt.rec)
			}
		})
	}
}

func TestParseArchiveLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantKey  string
		wantSum  uint64
		wantText string
		wantErr  bool
	}{
		{name: "legacy float checksum", line: "Key: 42, Checksum: 3483", wantKey: "42", wantSum: 3483, wantText: "42"},
		{name: "legacy exponent checksum", line: "Key: 42, Checksum: 3.483e+03", wantKey: "42", wantSum: 3483, wantText: "42"},
		{name: "windows line ending", line: "Key: 42, Checksum: 3483, Value: \"v\"\r", wantKey: "42", wantSum: 3483, wantText: "v"},
		{name: "missing key prefix", line: "42, Checksum: 3483", wantErr: true},
		{name: "empty key", line: "Key: , Checksum: 3483", wantErr: true},
		{name: "missing checksum", line: "Key: 42", wantErr: true},
		{name: "fractional checksum", line: "Key: 42, Checksum: 34.5", wantErr: true},
		{name: "negative checksum", line: "Key: 42, Checksum: -1", wantErr: true},
		{name: "unquoted value", line: "Key: 42, Checksum: 3483, Value: v", wantErr: true},
		{name: "broken quoted key", line: "Key: \"42, Checksum: 3483", wantErr: true},
		{name: "garbage", line: "\x00\x01", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := parseArchiveLine(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", rec)
				}
				if GetErrorCode(err) != ErrCodeCorruptedRecord {
					t.Errorf("code = %s", GetErrorCode(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.key != tt.wantKey || rec.checksum != tt.wantSum || rec.payload() != tt.wantText {
				t.Errorf("got %+v", rec)
			}
		})
	}
}

func writeArchive(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bivium.archive")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	return path
}

func TestArchiveLog_LastRecordWins(t *testing.T) {
	path := writeArchive(t, strings.Join([]string{
		`Key: 42, Checksum: 3483, Value: "first"`,
		`Key: 7, Checksum: 3374, Value: "seven"`,
		`not a record`,
		`Key: 42, Checksum: 3483, Value: "second"`,
		``,
	}, "\n"))

	a := newArchiveLog(path)
	rec, found, err := a.lookup("42")
	if err != nil || !found {
		t.Fatalf("lookup(42) = %v, %v", found, err)
	}
	if rec.value != "second" {
		t.Errorf("value = %q, want the most recent record", rec.value)
	}
}

func TestArchiveLog_SkipsInterruptedWrite(t *testing.T) {
	path := writeArchive(t, "Key: 42, Checksum: 3483, Value: \"whole\"\nKey: 42, Checksum: 3483, Value: \"cut\"")

	a := newArchiveLog(path)
	rec, found, err := a.lookup("42")
	if err != nil || !found {
		t.Fatalf("lookup(42) = %v, %v", found, err)
	}
	if rec.value != "whole" {
		t.Errorf("value = %q, a line without newline must be ignored", rec.value)
	}

	_, skipped := archiveRecords(t, a)
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
}

func TestArchiveLog_AppendAfterInterruptedWrite(t *testing.T) {
	path := writeArchive(t, "Key: 7, Check")
	a := newArchiveLog(path)

	first, second := newArchiveRecord("42", "answer"), newArchiveRecord("43", "next")
	for _, rec := range []archiveRecord{first, second} {
		if err := a.append(rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := "Key: 7, Check\n" + first.format() + second.format(); string(data) != want {
		t.Errorf("archive = %q, want %q", data, want)
	}

	recs, skipped := archiveRecords(t, a)
	if len(recs) != 2 || skipped != 1 {
		t.Fatalf("records = %d, skipped = %d, want 2 and 1", len(recs), skipped)
	}
	if rec, found, _ := a.lookup("42"); !found || !rec.valid() {
		t.Errorf("lookup(42) = %+v, %v", rec, found)
	}
}

func TestCache_RestoreAfterInterruptedWrite(t *testing.T) {
	path := writeArchive(t, "Key: 7, Check")
	c, err := New[int, string](Config{Capacity: 4, ArchivePath: path, TimeProvider: newFakeClock()})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = c.Close() }()

	c.Insert(42, "answer")
	if !c.Archive(42) {
		t.Fatal("Archive(42) = false")
	}
	if v, ok := c.Get(42); !ok || v != "answer" {
		t.Errorf("Get(42) = %q, %v, want answer, true", v, ok)
	}
	if _, ok := c.Get(7); ok {
		t.Error("the truncated record must stay unrecoverable")
	}
}

func TestArchiveLog_MissingFileIsEmpty(t *testing.T) {
	a := newArchiveLog(filepath.Join(t.TempDir(), "absent.archive"))
	if _, found, err := a.lookup("42"); found || err != nil {
		t.Errorf("lookup on missing file = %v, %v", found, err)
	}
}

func TestArchiveLog_AppendFailure(t *testing.T) {
	a := newArchiveLog(filepath.Join(t.TempDir(), "no-such-dir", "bivium.archive"))
	err := a.append(newArchiveRecord("42", "v"))
	if err == nil {
		t.Fatal("append into a missing directory should fail")
	}
	if GetErrorCode(err) != ErrCodeArchiveWriteFailed || !IsRetryable(err) || !IsArchiveError(err) {
		t.Errorf("unexpected error classification: %v", err)
	}
	if GetErrorContext(err)["path"] == nil {
		t.Error("error context should carry the path")
	}
}

func TestArchiveLog_Compact(t *testing.T) {
	path := writeArchive(t, strings.Join([]string{
		`Key: 1, Checksum: 1, Value: "a"`,
		`Key: 2, Checksum: 2, Value: "b"`,
		`garbage`,
		`Key: 1, Checksum: 1, Value: "c"`,
		``,
	}, "\n"))

	a := newArchiveLog(path)
	kept, err := a.compact()
	if err != nil {
		t.Fatalf("compact: %v", err)
	}
	if kept != 2 {
		t.Errorf("kept = %d, want 2", kept)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "Key: 2, Checksum: 2, Value: \"b\"\nKey: 1, Checksum: 1, Value: \"c\"\n"
	if string(data) != want {
		t.Errorf("compacted archive = %q, want %q", data, want)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestIsBareKey(t *testing.T) {
	for key, want := range map[string]bool{
		"42":       true,
		"-7":       true,
		"user:123": true,
		"a.b_c":    true,
		"":         false,
		"a b":      false,
		"a,b":      false,
		`"q"`:      false,
	} {
		if got := isBareKey(key); got != want {
			t.Errorf("isBareKey(%q) = %v, want %v", key, got, want)
		}
	}
}
