package core

// streaming.go provides the reader chain that sits in front of the CSV parser.
//
//   - StreamingCountingReader: counts raw source bytes for progress logging
//   - legacy decoder: converts Shift_JIS, EUC-JP and friends to UTF-8
//   - BOMSkippingReader: drops a leading UTF-8 BOM (0xEF 0xBB 0xBF)
//   - StrictUTF8Reader: fails the read on any invalid UTF-8
//
// Use WrapForStreaming to build the chain in the correct order.

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// encodingAliases covers names Japanese spreadsheet exports use that the
// WHATWG index does not know.
var encodingAliases = map[string]encoding.Encoding{
	"sjis":  japanese.ShiftJIS,
	"cp932": japanese.ShiftJIS,
	"ms932": japanese.ShiftJIS,
	"eucjp": japanese.EUCJP,
}

// ResolveEncoding maps a source encoding name to a decoder. It returns nil
// for UTF-8 (including the empty name), which needs no transform.
func ResolveEncoding(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "", "utf-8", "utf8":
		return nil, nil
	}
	if enc, ok := encodingAliases[key]; ok {
		return enc, nil
	}
	enc, err := htmlindex.Get(key)
	if err != nil {
		return nil, fmt.Errorf("unsupported source encoding %q: %w", name, err)
	}
	return enc, nil
}

// StrictUTF8Reader passes UTF-8 through unchanged and fails with
// ErrInvalidEncoding as soon as an invalid sequence is seen. Sequences split
// across underlying reads are held back until the rest arrives.
type StrictUTF8Reader struct {
	reader io.Reader
	buf    []byte
	out    []byte // validated bytes not yet returned

	// Leftover bytes from the previous read that may start a multi-byte rune
	pending []byte

	// When set, U+FFFD is also rejected. Legacy decoders emit it for bytes
	// they cannot map.
	rejectReplacement bool

	err error
}

const strictReadSize = 4096

// NewStrictUTF8Reader creates a strict UTF-8 reader.
func NewStrictUTF8Reader(r io.Reader, rejectReplacement bool) *StrictUTF8Reader {
	return &StrictUTF8Reader{
		reader:            r,
		buf:               make([]byte, strictReadSize+utf8.UTFMax),
		pending:           make([]byte, 0, utf8.UTFMax),
		rejectReplacement: rejectReplacement,
	}
}

var replacementChar = []byte(string(utf8.RuneError))

// Read implements io.Reader.
func (s *StrictUTF8Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for len(s.out) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		s.fill()
	}
	n := copy(p, s.out)
	s.out = s.out[n:]
	return n, nil
}

// fill reads one chunk from the underlying reader and validates it.
func (s *StrictUTF8Reader) fill() {
	offset := copy(s.buf, s.pending)
	s.pending = s.pending[:0]

	n, err := s.reader.Read(s.buf[offset:])
	n += offset
	data := s.buf[:n]

	if err == nil {
		if trailing := incompleteTrailingBytes(data); trailing > 0 {
			s.pending = append(s.pending, data[n-trailing:]...)
			data = data[:n-trailing]
		}
	}

	if !isAllASCII(data) {
		if !utf8.Valid(data) {
			s.err = ErrInvalidEncoding
			return
		}
		if s.rejectReplacement && bytes.Contains(data, replacementChar) {
			s.err = fmt.Errorf("%w: unmappable byte sequence", ErrInvalidEncoding)
			return
		}
	}

	s.out = data
	if err != nil {
		s.err = err
	}
}

// isAllASCII reports whether every byte is below 0x80.
func isAllASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// incompleteTrailingBytes returns the number of bytes at the end of data
// that could be the start of an unfinished multi-byte UTF-8 sequence.
func incompleteTrailingBytes(data []byte) int {
	for i := 1; i <= 3 && i <= len(data); i++ {
		b := data[len(data)-i]
		if b >= 0xC0 {
			if i < runeLen(b) {
				return i
			}
			return 0
		}
		// Anything other than a continuation byte ends the search
		if b&0xC0 != 0x80 {
			return 0
		}
	}
	return 0
}

// runeLen returns the expected length of a UTF-8 sequence starting with b.
func runeLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xC0:
		return 0
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	default:
		return 4
	}
}

// BOMSkippingReader drops a UTF-8 BOM at the very start of the stream.
// Excel adds one to every "CSV UTF-8" export.
type BOMSkippingReader struct {
	reader  io.Reader
	checked bool
	head    []byte // bytes read during the check that still need returning
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{reader: r}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Read implements io.Reader.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true

		buf := make([]byte, len(utf8BOM))
		n, err := io.ReadFull(r.reader, buf)
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return 0, err
		}
		if n == len(utf8BOM) && bytes.Equal(buf, utf8BOM) {
			n = 0
		}
		r.head = buf[:n]
		if err != nil && len(r.head) == 0 {
			return 0, io.EOF
		}
	}

	if len(r.head) > 0 {
		copied := copy(p, r.head)
		r.head = r.head[copied:]
		return copied, nil
	}

	return r.reader.Read(p)
}

// StreamingCountingReader wraps an io.Reader to track bytes read.
type StreamingCountingReader struct {
	reader    io.Reader
	BytesRead int64
	Total     int64 // 0 if unknown
}

// NewStreamingCountingReader creates a counting reader with optional total size.
func NewStreamingCountingReader(r io.Reader, total int64) *StreamingCountingReader {
	return &StreamingCountingReader{
		reader: r,
		Total:  total,
	}
}

// Read implements io.Reader.
func (r *StreamingCountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// Progress returns the read progress as a percentage (0-100).
// Returns 0 if total is unknown.
func (r *StreamingCountingReader) Progress() int {
	if r.Total <= 0 {
		return 0
	}
	return int(r.BytesRead * 100 / r.Total)
}

// WrapForStreaming builds the reader chain for a CSV source.
//
// The order matters:
//  1. Counting sees raw source bytes, so progress matches the file size
//  2. Legacy encodings are converted to UTF-8
//  3. The BOM is stripped before the parser sees the header
//  4. Strict validation catches anything that is still not UTF-8
func WrapForStreaming(r io.Reader, enc encoding.Encoding, totalSize int64) (io.Reader, *StreamingCountingReader) {
	counter := NewStreamingCountingReader(r, totalSize)

	var src io.Reader = counter
	if enc != nil {
		src = transform.NewReader(src, enc.NewDecoder())
	}

	return NewStrictUTF8Reader(NewBOMSkippingReader(src), enc != nil), counter
}
