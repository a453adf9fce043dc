package crofdb

import (
	"reflect"
	"testing"
)

func TestEntriesHelpers(t *testing.T) {
	e := Entries{"b": "2", "a": "1", "n": float64(3), "nil": nil}

	if v, ok := e.String("a"); !ok || v != "1" {
		t.Fatalf("String(a) = %q, %v", v, ok)
	}
	if _, ok := e.String("n"); ok {
		t.Fatalf("expected non-string value to be skipped")
	}
	if _, ok := e.String("zzz"); ok {
		t.Fatalf("expected missing key to report false")
	}

	if got := e.Strings(); !reflect.DeepEqual(got, map[string]string{"a": "1", "b": "2"}) {
		t.Fatalf("Strings = %#v", got)
	}
	if got := e.Keys(); !reflect.DeepEqual(got, []string{"a", "b", "n", "nil"}) {
		t.Fatalf("Keys = %#v", got)
	}
}
