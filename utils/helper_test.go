package utils

import "testing"

func TestDereferencePtr(t *testing.T) {
	value := 2026
	if got := DereferencePtr(&value); got != 2026 {
		t.Fatalf("DereferencePtr(&value) = %d", got)
	}
	if got := DereferencePtr[int](nil); got != 0 {
		t.Fatalf("DereferencePtr(nil) = %d, expected zero value", got)
	}
	if got := DereferencePtr[int](nil, 42); got != 42 {
		t.Fatalf("DereferencePtr(nil, 42) = %d", got)
	}
	if got := DereferencePtr(&value, 42); got != 2026 {
		t.Fatalf("DereferencePtr(&value, 42) = %d, pointer must win", got)
	}
}

func TestUniqueSlice(t *testing.T) {
	got := UniqueSlice([]string{"a", "b", "a", "c", "b"})
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("UniqueSlice = %v", got)
	}
}
