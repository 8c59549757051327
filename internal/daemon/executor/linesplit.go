package executor

import "strings"

// LineSplitter turns an arbitrary chunk stream into complete lines. A
// trailing partial line is held back until the next chunk or Flush. Used by
// the CLI backends, whose subprocesses emit one JSON event per line but
// whose pipes deliver arbitrary chunk boundaries.
type LineSplitter struct {
	buf strings.Builder
}

// Feed appends chunk and returns every complete line accumulated so far,
// without trailing newlines.
func (ls *LineSplitter) Feed(chunk []byte) []string {
	ls.buf.Write(chunk)
	s := ls.buf.String()
	idx := strings.LastIndexByte(s, '\n')
	if idx < 0 {
		return nil
	}
	ls.buf.Reset()
	ls.buf.WriteString(s[idx+1:])
	return strings.Split(s[:idx], "\n")
}

// Flush returns the held partial line, if any.
func (ls *LineSplitter) Flush() string {
	s := ls.buf.String()
	ls.buf.Reset()
	return s
}
