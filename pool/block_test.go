package pool

import "testing"

func TestTypeIDOfStable(t *testing.T) {
	a := typeIDOf[int]()
	b := typeIDOf[int]()
	if a != b {
		t.Errorf("expected the same token across calls, got %v and %v", a, b)
	}
}

func TestTypeIDOfDistinctTypes(t *testing.T) {
	type foo struct{ x int }
	type bar struct{ x int }
	if typeIDOf[foo]() == typeIDOf[bar]() {
		t.Errorf("expected distinct tokens for distinct types")
	}
}

func TestTypeNameForUnknown(t *testing.T) {
	if name := typeNameFor(1 << 62); name != "N/A" {
		t.Errorf("expected N/A for an unregistered token, got %v", name)
	}
}
