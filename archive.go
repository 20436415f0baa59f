// archive.go: append-only archive log with checksum-verified records
//
// The archive stores one record per line:
//
//	Key: 42, Checksum: 4080, Value: "answer"
//
// Records are never rewritten in place; a key archived several times has
// several lines and the last one wins. Lines without a trailing newline are
// the remains of an interrupted write and are ignored, as are lines that do
// not parse. Records without a Value field come from older writers that only
// kept the key; restoring them yields the key text decoded as a value.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package bivium

import (
	"bufio"
	"crypto/sha256"
	goerrors "errors"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

const (
	fieldKey      = "Key: "
	fieldChecksum = ", Checksum: "
	fieldValue    = ", Value: "
)

// Checksum returns the SHA-256 digest of text reduced to the sum of its bytes.
// The archive stores Checksum of the encoded key and restores a record only
// when the stored and recomputed values agree.
func Checksum(text string) uint64 {
	digest := sha256.Sum256([]byte(text))
	var sum uint64
	for _, b := range digest {
		sum += uint64(b)
	}
	return sum
}

// archiveRecord is one parsed archive line. key and value hold codec text.
type archiveRecord struct {
	key      string
	checksum uint64
	value    string
	hasValue bool
}

func newArchiveRecord(key, value string) archiveRecord {
	return archiveRecord{key: key, checksum: Checksum(key), value: value, hasValue: true}
}

// valid reports whether the stored checksum matches the key.
func (r archiveRecord) valid() bool {
	return r.checksum == Checksum(r.key)
}

// payload returns the value text, or the key text for key-only records.
func (r archiveRecord) payload() string {
	if r.hasValue {
		return r.value
	}
	return r.key
}

func (r archiveRecord) format() string {
	var b strings.Builder
	b.WriteString(fieldKey)
	if isBareKey(r.key) {
		b.WriteString(r.key)
	} else {
		b.WriteString(strconv.Quote(r.key))
	}
	b.WriteString(fieldChecksum)
	b.WriteString(strconv.FormatUint(r.checksum, 10))
	if r.hasValue {
		b.WriteString(fieldValue)
		b.WriteString(strconv.Quote(r.value))
	}
	b.WriteByte('\n')
	return b.String()
}

// isBareKey reports whether key can be written without quotes.
func isBareKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r == '-', r == '+', r == '_', r == '.', r == ':':
		default:
			return false
		}
	}
	return true
}

// parseArchiveLine parses one line without its trailing newline.
func parseArchiveLine(line string) (archiveRecord, error) {
	var rec archiveRecord
	rest, ok := strings.CutPrefix(strings.TrimSuffix(line, "\r"), fieldKey)
	if !ok {
		return rec, NewErrCorruptedRecord(line)
	}

	if strings.HasPrefix(rest, `"`) {
		quoted, err := strconv.QuotedPrefix(rest)
		if err != nil {
			return rec, NewErrCorruptedRecord(line)
		}
		if rec.key, err = strconv.Unquote(quoted); err != nil {
			return rec, NewErrCorruptedRecord(line)
		}
		rest = rest[len(quoted):]
	} else {
		idx := strings.Index(rest, fieldChecksum)
		if idx <= 0 {
			return rec, NewErrCorruptedRecord(line)
		}
		rec.key, rest = rest[:idx], rest[idx:]
	}

	rest, ok = strings.CutPrefix(rest, fieldChecksum)
	if !ok {
		return rec, NewErrCorruptedRecord(line)
	}

	checksumText, valueText, hasValue := strings.Cut(rest, fieldValue)
	checksum, ok := parseChecksum(checksumText)
	if !ok {
		return rec, NewErrCorruptedRecord(line)
	}
	rec.checksum = checksum

	if hasValue {
		value, err := strconv.Unquote(valueText)
		if err != nil {
			return rec, NewErrCorruptedRecord(line)
		}
		rec.value, rec.hasValue = value, true
	}
	return rec, nil
}

// parseChecksum accepts integers and integral floats, which older writers emitted.
func parseChecksum(text string) (uint64, bool) {
	if n, err := strconv.ParseUint(text, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f > math.MaxUint32 {
		return 0, false
	}
	return uint64(f), true
}

// archiveLog owns the archive file. It is the only reader and writer.
type archiveLog struct {
	path string
	mu   sync.Mutex
}

func newArchiveLog(path string) *archiveLog {
	return &archiveLog{path: path}
}

// append writes rec at the end of the log. The file is opened per record so
// a fault that is fixed later does not leave the log permanently unusable.
func (a *archiveLog) append(rec archiveRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return NewErrArchiveWriteFailed(a.path, err)
	}
	line := rec.format()
	terminated, err := endsWithNewline(f)
	if err != nil {
		_ = f.Close()
		return NewErrArchiveWriteFailed(a.path, err)
	}
	if !terminated {
		// Close the fragment left by an interrupted write so it stays a
		// line of its own.
		line = "\n" + line
	}
	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return NewErrArchiveWriteFailed(a.path, err)
	}
	if err := f.Close(); err != nil {
		return NewErrArchiveWriteFailed(a.path, err)
	}
	return nil
}

// endsWithNewline reports whether f is empty or its last byte is '\n'.
func endsWithNewline(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return true, nil
	}
	var last [1]byte
	if _, err := f.ReadAt(last[:], info.Size()-1); err != nil {
		return false, err
	}
	return last[0] == '\n', nil
}

// lookup returns the last parsable record for key. A missing log is empty.
func (a *archiveLog) lookup(key string) (archiveRecord, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var (
		last  archiveRecord
		found bool
	)
	_, err := a.scan(func(rec archiveRecord) {
		if rec.key == key {
			last, found = rec, true
		}
	})
	return last, found, err
}

// compact rewrites the log keeping only the last record of each key.
// Records keep the order of their last appearance.
func (a *archiveLog) compact() (kept int, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var (
		order  []string
		latest = make(map[string]archiveRecord)
	)
	if _, err := a.scan(func(rec archiveRecord) {
		if _, seen := latest[rec.key]; seen {
			order = removeString(order, rec.key)
		}
		latest[rec.key] = rec
		order = append(order, rec.key)
	}); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(a.path), filepath.Base(a.path)+".compact-*")
	if err != nil {
		return 0, NewErrArchiveWriteFailed(a.path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	for _, key := range order {
		if _, err = w.WriteString(latest[key].format()); err != nil {
			_ = tmp.Close()
			return 0, NewErrArchiveWriteFailed(a.path, err)
		}
	}
	if err = w.Flush(); err != nil {
		_ = tmp.Close()
		return 0, NewErrArchiveWriteFailed(a.path, err)
	}
	if err = tmp.Close(); err != nil {
		return 0, NewErrArchiveWriteFailed(a.path, err)
	}
	if err = os.Rename(tmp.Name(), a.path); err != nil {
		return 0, NewErrArchiveWriteFailed(a.path, err)
	}
	return len(order), nil
}

// scan calls fn for every complete, parsable line. Callers hold a.mu.
func (a *archiveLog) scan(fn func(archiveRecord)) (skipped int, err error) {
	f, err := os.Open(a.path)
	if err != nil {
		if goerrors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, NewErrArchiveReadFailed(a.path, err)
	}
	defer func() { _ = f.Close() }()

	r := bufio.NewReader(f)
	for {
		line, readErr := r.ReadString('\n')
		if readErr != nil {
			if readErr == io.EOF {
				if line != "" {
					skipped++ // interrupted write
				}
				return skipped, nil
			}
			return skipped, NewErrArchiveReadFailed(a.path, readErr)
		}
		rec, parseErr := parseArchiveLine(strings.TrimSuffix(line, "\n"))
		if parseErr != nil {
			skipped++
			continue
		}
		fn(rec)
	}
}

func removeString(s []string, v string) []string {
	for i := range s {
		if s[i] == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
