package executor

import (
	"reflect"
	"testing"
)

func TestLineSplitterHoldsPartials(t *testing.T) {
	t.Parallel()

	var ls LineSplitter

	if got := ls.Feed([]byte(`{"a":1`)); got != nil {
		t.Fatalf("partial chunk produced lines: %v", got)
	}
	got := ls.Feed([]byte("}\n{\"b\":2}\n{\"c\":"))
	want := []string{`{"a":1}`, `{"b":2}`}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got := ls.Feed([]byte("3}")); got != nil {
		t.Fatalf("unterminated line produced lines: %v", got)
	}
	if tail := ls.Flush(); tail != `{"c":3}` {
		t.Fatalf("flush returned %q", tail)
	}
	if tail := ls.Flush(); tail != "" {
		t.Fatalf("second flush returned %q", tail)
	}
}

func TestLineSplitterMultipleLinesOneChunk(t *testing.T) {
	t.Parallel()

	var ls LineSplitter
	got := ls.Feed([]byte("one\ntwo\nthree\n"))
	want := []string{"one", "two", "three"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if tail := ls.Flush(); tail != "" {
		t.Fatalf("expected empty tail, got %q", tail)
	}
}

func TestLineSplitterEmptyLinesPreserved(t *testing.T) {
	t.Parallel()

	var ls LineSplitter
	got := ls.Feed([]byte("a\n\nb\n"))
	want := []string{"a", "", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
