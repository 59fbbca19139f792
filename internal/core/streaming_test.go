package core

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"golang.org/x/text/encoding/japanese"
)

func TestBOMSkippingReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("id,name")...),
			expected: "id,name",
		},
		{
			name:     "file without BOM",
			input:    []byte("id,name"),
			expected: "id,name",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "shorter than a BOM",
			input:    []byte("a"),
			expected: "a",
		},
		{
			name:     "partial BOM at start",
			input:    []byte{0xEF, 0xBB, 'a', 'b', 'c'},
			expected: string([]byte{0xEF, 0xBB, 'a', 'b', 'c'}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(NewBOMSkippingReader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestStrictUTF8Reader(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    string
		wantErr bool
	}{
		{name: "ascii", input: []byte("id,name\n1,a\n"), want: "id,name\n1,a\n"},
		{name: "japanese", input: []byte("ユニークID,物件名\n"), want: "ユニークID,物件名\n"},
		{name: "invalid byte", input: []byte{'a', 0x80, 'b'}, wantErr: true},
		{name: "truncated rune at EOF", input: []byte{'a', 0xE3, 0x83}, wantErr: true},
		{name: "latin-1 e acute", input: []byte{'c', 'a', 'f', 0xE9}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(NewStrictUTF8Reader(bytes.NewReader(tt.input), false))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidEncoding) {
					t.Fatalf("error = %v, want ErrInvalidEncoding", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStrictUTF8Reader_SplitRunes(t *testing.T) {
	// One byte per underlying read forces every multi-byte rune to be split.
	input := "物件名,マンション\n"
	r := NewStrictUTF8Reader(iotest.OneByteReader(strings.NewReader(input)), false)

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != input {
		t.Errorf("got %q, want %q", got, input)
	}
}

func TestStrictUTF8Reader_RejectsReplacement(t *testing.T) {
	input := "a�b"

	if _, err := io.ReadAll(NewStrictUTF8Reader(strings.NewReader(input), false)); err != nil {
		t.Errorf("UTF-8 mode rejected U+FFFD: %v", err)
	}
	if _, err := io.ReadAll(NewStrictUTF8Reader(strings.NewReader(input), true)); !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("legacy mode error = %v, want ErrInvalidEncoding", err)
	}
}

func TestStreamingCountingReader(t *testing.T) {
	input := strings.Repeat("x", 1000)
	reader := NewStreamingCountingReader(strings.NewReader(input), int64(len(input)))

	if _, err := io.Copy(io.Discard, reader); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reader.BytesRead != int64(len(input)) {
		t.Errorf("BytesRead = %d, want %d", reader.BytesRead, len(input))
	}
	if reader.Progress() != 100 {
		t.Errorf("Progress = %d, want 100", reader.Progress())
	}
}

func TestResolveEncoding(t *testing.T) {
	tests := []struct {
		name    string
		wantNil bool
		wantErr bool
	}{
		{name: "", wantNil: true},
		{name: "UTF-8", wantNil: true},
		{name: "utf8", wantNil: true},
		{name: "shift_jis"},
		{name: "Shift_JIS"},
		{name: "cp932"},
		{name: "euc-jp"},
		{name: "klingon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := ResolveEncoding(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (enc == nil) != tt.wantNil {
				t.Errorf("ResolveEncoding(%q) nil = %v, want %v", tt.name, enc == nil, tt.wantNil)
			}
		})
	}
}

func TestWrapForStreaming(t *testing.T) {
	t.Run("utf-8 with BOM", func(t *testing.T) {
		input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("ユニークID\n1\n")...)

		reader, counter := WrapForStreaming(bytes.NewReader(input), nil, int64(len(input)))
		got, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(got) != "ユニークID\n1\n" {
			t.Errorf("got %q", got)
		}
		if counter.BytesRead != int64(len(input)) {
			t.Errorf("BytesRead = %d, want %d", counter.BytesRead, len(input))
		}
	})

	t.Run("shift_jis", func(t *testing.T) {
		want := "建物の種類\nマンション\n"
		encoded, err := japanese.ShiftJIS.NewEncoder().String(want)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}

		reader, counter := WrapForStreaming(strings.NewReader(encoded), japanese.ShiftJIS, 0)
		got, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
		if counter.BytesRead != int64(len(encoded)) {
			t.Errorf("BytesRead = %d, want raw size %d", counter.BytesRead, len(encoded))
		}
	})

	t.Run("invalid utf-8 fails", func(t *testing.T) {
		reader, _ := WrapForStreaming(bytes.NewReader([]byte{'h', 'e', 0x80, 'l', 'o'}), nil, 0)
		if _, err := io.ReadAll(reader); !errors.Is(err, ErrInvalidEncoding) {
			t.Errorf("error = %v, want ErrInvalidEncoding", err)
		}
	})
}
