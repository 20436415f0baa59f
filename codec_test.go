// codec_test.go: tests for archive text codecs
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package bivium

import (
	"math"
	"testing"
)

func TestCodec_Scalars(t *testing.T) {
	if s, _ := NewCodec[int]().Encode(-42); s != "-42" {
		t.Errorf("int encode = %q", s)
	}
	if v, err := NewCodec[int]().Decode("-42"); err != nil || v != -42 {
		t.Errorf("int decode = %d, %v", v, err)
	}
	if s, _ := NewCodec[uint64]().Encode(math.MaxUint64); s != "18446744073709551615" {
		t.Errorf("uint64 encode = %q", s)
	}
	if s, _ := NewCodec[float64]().Encode(0.1); s != "0.1" {
		t.Errorf("float64 encode = %q", s)
	}
	if v, err := NewCodec[bool]().Decode("true"); err != nil || !v {
		t.Errorf("bool decode = %v, %v", v, err)
	}
	if s, _ := NewCodec[string]().Encode("a, b"); s != "a, b" {
		t.Errorf("string encode = %q", s)
	}
}

func TestCodec_Structs(t *testing.T) {
	type session struct {
		User  string `json:"user"`
		Count int    `json:"count"`
	}
	codec := NewCodec[session]()
	s, err := codec.Encode(session{User: "ann", Count: 3})
	if err != nil {
		t.Fatal(err)
	}
	if s != `{"user":"ann","count":3}` {
		t.Errorf("encode = %s", s)
	}
	v, err := codec.Decode(s)
	if err != nil || v.User != "ann" || v.Count != 3 {
		t.Errorf("decode = %+v, %v", v, err)
	}
}

func TestCodec_DecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		fn   func() error
	}{
		{"int", func() error { _, err := NewCodec[int]().Decode("x"); return err }},
		{"int8 overflow", func() error { _, err := NewCodec[int8]().Decode("300"); return err }},
		{"uint negative", func() error { _, err := NewCodec[uint]().Decode("-1"); return err }},
		{"bool", func() error { _, err := NewCodec[bool]().Decode("maybe"); return err }},
		{"json", func() error { _, err := NewCodec[[]int]().Decode("[1,"); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn()
			if GetErrorCode(err) != ErrCodeCodecFailed {
				t.Errorf("expected %s, got %v", ErrCodeCodecFailed, err)
			}
		})
	}
}

func TestCodec_EncodeError(t *testing.T) {
	if _, err := NewCodec[chan int]().Encode(make(chan int)); GetErrorCode(err) != ErrCodeCodecFailed {
		t.Errorf("expected %s, got %v", ErrCodeCodecFailed, err)
	}
}
