package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
)

// Decoder reads a header-led CSV source into Rows, one per data line.
// Decoding is lazy: nothing past the header is read until Next is called.
type Decoder struct {
	src       io.Reader
	enc       encoding.Encoding
	size      int64
	counter   *StreamingCountingReader
	reader    *csv.Reader
	header    []string
	exhausted bool
}

// NewDecoder creates a decoder and reads the header row. encoding names the
// source character set; empty means UTF-8. An empty source is not an error:
// it decodes to zero rows.
func NewDecoder(r io.Reader, encodingName string) (*Decoder, error) {
	enc, err := ResolveEncoding(encodingName)
	if err != nil {
		return nil, err
	}

	d := &Decoder{src: r, enc: enc}
	if s, ok := r.(io.Seeker); ok {
		if end, err := s.Seek(0, io.SeekEnd); err == nil {
			d.size = end
			if _, err := s.Seek(0, io.SeekStart); err != nil {
				return nil, fmt.Errorf("seek source: %w", err)
			}
		}
	}

	if err := d.start(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Decoder) start() error {
	stream, counter := WrapForStreaming(d.src, d.enc, d.size)
	d.counter = counter

	d.reader = csv.NewReader(stream)
	d.reader.FieldsPerRecord = -1 // ragged rows are padded or truncated against the header
	d.reader.LazyQuotes = false
	d.exhausted = false

	record, err := d.reader.Read()
	if errors.Is(err, io.EOF) {
		d.header = nil
		d.exhausted = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	if allBlank(record) {
		return ErrEmptyHeader
	}

	d.header = make([]string, len(record))
	for i, name := range record {
		d.header[i] = strings.TrimSpace(name)
	}
	return nil
}

// Header returns the trimmed field names. It is nil for an empty source.
func (d *Decoder) Header() []string {
	out := make([]string, len(d.header))
	copy(out, d.header)
	return out
}

// Next returns the next data row, or io.EOF when the source is exhausted.
// Lines whose cells are all blank are skipped. Any other error is fatal for
// the run.
func (d *Decoder) Next() (Row, error) {
	for {
		if d.exhausted {
			return Row{}, io.EOF
		}

		record, err := d.reader.Read()
		if errors.Is(err, io.EOF) {
			d.exhausted = true
			return Row{}, io.EOF
		}
		if err != nil {
			return Row{}, err
		}

		if allBlank(record) {
			continue
		}

		line, _ := d.reader.FieldPos(0)
		row := Row{Line: line, Fields: make(map[string]string, len(d.header))}
		for i, name := range d.header {
			if i < len(record) {
				row.Fields[name] = record[i]
			}
		}
		return row, nil
	}
}

// Rewind restarts decoding from the first data row. It requires a seekable
// source.
func (d *Decoder) Rewind() error {
	s, ok := d.src.(io.Seeker)
	if !ok {
		return ErrNotRewindable
	}
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind: %w", err)
	}
	return d.start()
}

// BytesRead returns how many raw source bytes have been consumed.
func (d *Decoder) BytesRead() int64 {
	return d.counter.BytesRead
}

// Progress returns read progress as a percentage, or 0 if the size is unknown.
func (d *Decoder) Progress() int {
	return d.counter.Progress()
}

func allBlank(record []string) bool {
	for _, cell := range record {
		if !isBlank(cell) {
			return false
		}
	}
	return true
}
