package sse

import (
	"bufio"
	"io"
	"strings"
)

const dataField = "data:"

// Decoder reads SSE data frames from a source io.Reader, optionally writing
// all raw lines verbatim to a destination io.Writer.
//
// ┌──────────────────┐
// │ source io.Reader │
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐   ┌──────────────────────────────┐
// │  Decoder.Next()  │──▶│ destination io.Writer (tee)  │
// └──────────────────┘   └──────────────────────────────┘
// │
// ▼
// ┌──────────────────┐
// │      Frame       │
// └──────────────────┘
type Decoder struct {
	scanner *bufio.Scanner
	dest    io.Writer

	// pos is the number of source bytes consumed by the scanner so far.
	pos       int64
	lineStart int64
	line      int

	// raw is the last scanned line with its terminator, kept for the tee.
	raw []byte
}

// NewDecoder returns a Decoder that parses SSE data frames from src.
func NewDecoder(src io.Reader) *Decoder {
	return NewTeeDecoder(src, nil)
}

// NewTeeDecoder returns a Decoder that parses SSE data frames from src and
// writes every raw line through to dest. A nil dest disables the tee.
func NewTeeDecoder(src io.Reader, dest io.Writer) *Decoder {
	d := &Decoder{dest: dest}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	scanner.Split(d.scanLines)
	d.scanner = scanner

	return d
}

// scanLines wraps bufio.ScanLines to track the byte offset of each line and,
// when teeing, its bytes exactly as read ("\r\n" included).
func (d *Decoder) scanLines(data []byte, atEOF bool) (int, []byte, error) {
	advance, token, err := bufio.ScanLines(data, atEOF)
	if token != nil {
		d.lineStart = d.pos
		if d.dest != nil {
			d.raw = append(d.raw[:0], data[:advance]...)
		}
	}
	d.pos += int64(advance)
	return advance, token, err
}

// Next returns the next data frame from the source. It blocks until a
// "data:" line is available. Lines that carry no data field (blank lines,
// comments, "event:", "id:", "retry:" or unknown fields) are skipped.
//
// Next returns nil, nil when the source is exhausted, and nil, err when the
// source fails.
func (d *Decoder) Next() (*Frame, error) {
	for d.scanner.Scan() {
		raw := d.scanner.Text()
		d.line++

		if d.dest != nil {
			if _, err := d.dest.Write(d.raw); err != nil {
				return nil, err
			}
		}

		payload, ok := parseLine(raw)
		if !ok {
			continue
		}

		return &Frame{
			Data:   payload,
			Offset: d.lineStart,
			Line:   d.line,
		}, nil
	}

	if err := d.scanner.Err(); err != nil {
		return nil, err
	}

	return nil, nil
}

// parseLine returns the payload of a "data:" line. The first space after the
// colon is optional and stripped if present.
func parseLine(line string) (string, bool) {
	if !strings.HasPrefix(line, dataField) {
		return "", false
	}
	return strings.TrimPrefix(line[len(dataField):], " "), true
}
