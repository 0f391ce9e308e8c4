package team

import "testing"

func TestKey_OrderIndependent(t *testing.T) {
	if Key([]int64{9, 3, 3}) != Key([]int64{3, 9}) {
		t.Fatalf("expected same key for same members")
	}
	if got := Key([]int64{12, 4}); got != "4,12" {
		t.Fatalf("unexpected key: %s", got)
	}
	if Key(nil) != "" {
		t.Fatalf("expected empty key for no members")
	}
}
