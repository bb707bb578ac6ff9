// Package sse decodes Server-Sent-Events byte streams into discrete
// (event, data) frames. The backend delimits frames purely by data lines:
// an "event: " line names the frame, the following "data: " line carries
// its JSON payload and completes it. Blank separator lines and keep-alive
// comments are ignored, and chunk boundaries may fall anywhere, including
// mid-line.
package sse

import (
	"bytes"
	"errors"
	"io"
)

// Event is one decoded SSE frame. Name is empty when the data line had
// no preceding event line; callers treat such frames as ignorable.
type Event struct {
	Name string
	Data []byte
}

const (
	eventPrefix = "event: "
	dataPrefix  = "data: "
)

// Reader incrementally decodes an SSE stream. It is not safe for
// concurrent use and cannot be rewound; reopen the stream to restart.
type Reader struct {
	r     io.Reader
	buf   []byte // unconsumed bytes, tail may be a partial line
	name  string // current event name, reset after each emitted frame
	err   error  // sticky read error (io.EOF after drain)
	chunk []byte
}

// NewReader wraps r in an SSE frame decoder.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, chunk: make([]byte, 4096)}
}

// Next returns the next frame. It returns io.EOF when the stream ends;
// a trailing partial line (stream cut mid-frame) is dropped silently.
// Any other error comes from the underlying reader.
func (s *Reader) Next() (Event, error) {
	for {
		// Emit from already-buffered complete lines first.
		if ev, ok := s.nextBuffered(); ok {
			return ev, nil
		}

		if s.err != nil {
			return Event{}, s.err
		}

		n, err := s.r.Read(s.chunk)
		if n > 0 {
			s.buf = append(s.buf, s.chunk[:n]...)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return Event{}, err
			}
			// Drain remaining complete lines, then surface EOF.
			s.err = io.EOF
		}
	}
}

// nextBuffered scans buffered complete lines and returns the first frame
// they produce. The final segment after the last newline may still grow,
// so it is retained unparsed.
func (s *Reader) nextBuffered() (Event, bool) {
	for {
		idx := bytes.IndexByte(s.buf, '\n')
		if idx < 0 {
			return Event{}, false
		}
		line := string(bytes.TrimRight(s.buf[:idx], "\r"))
		s.buf = s.buf[idx+1:]

		switch {
		case len(line) >= len(eventPrefix) && line[:len(eventPrefix)] == eventPrefix:
			s.name = line[len(eventPrefix):]

		case len(line) >= len(dataPrefix) && line[:len(dataPrefix)] == dataPrefix:
			ev := Event{Name: s.name, Data: []byte(line[len(dataPrefix):])}
			s.name = ""
			return ev, true

		default:
			// Blank separators, comments, keep-alives: skip.
		}
	}
}
