// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// frame decoder for consuming streamed inference responses. It splits an
// upstream byte stream into the payloads of its "data:" lines and can
// optionally tee the raw bytes verbatim to a second writer.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities, and it does not join multi-line data fields: every
// "data:" line is its own frame.
//
// See the WHATWG Server-Sent Events standard:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// Frame is the payload of a single "data:" line.
type Frame struct {
	// Data is the remainder of the line after "data:" with at most one
	// leading space removed. It may be empty.
	Data string

	// Offset is the byte offset of the start of the line in the stream.
	Offset int64

	// Line is the 1-based line number in the stream.
	Line int
}
