package viewstamp

import (
	"math/rand"
	"testing"
)

func randomViewstamp(r *rand.Rand) Viewstamp {
	return New(uint64(r.Intn(4)), uint64(r.Intn(4)))
}

// TestViewstamp_Property_Antisymmetric tests that a<b implies b>a
func TestViewstamp_Property_Antisymmetric(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		a, b := randomViewstamp(r), randomViewstamp(r)
		ab, ba := a.Compare(b), b.Compare(a)
		switch ab {
		case Before:
			if ba != After {
				t.Fatalf("%v before %v but reverse is %v", a, b, ba)
			}
		case After:
			if ba != Before {
				t.Fatalf("%v after %v but reverse is %v", a, b, ba)
			}
		case Equal:
			if ba != Equal || a != b {
				t.Fatalf("%v equal %v but reverse is %v", a, b, ba)
			}
		}
	}
}

// TestViewstamp_Property_Transitive tests that a<b and b<c imply a<c
func TestViewstamp_Property_Transitive(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 500; i++ {
		a, b, c := randomViewstamp(r), randomViewstamp(r), randomViewstamp(r)
		if a.Less(b) && b.Less(c) && !a.Less(c) {
			t.Fatalf("transitivity broken: %v < %v < %v", a, b, c)
		}
	}
}
