package pointers

import "testing"

func TestPtrAllocatesPerCall(t *testing.T) {
	a := Ptr("x")
	b := Ptr("x")
	if a == b {
		t.Fatal("each call must return a fresh pointer")
	}
	if *a != "x" {
		t.Fatalf("value: got %q", *a)
	}
}

func TestFloat64(t *testing.T) {
	if p := Float64(12.5); p == nil || *p != 12.5 {
		t.Fatalf("got %v", p)
	}
}
