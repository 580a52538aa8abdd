package directive

import "testing"

func TestArityNRejectsNonPositive(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected ArityN(0) to panic")
		}
	}()
	ArityN(0)
}

func TestArityNRecordsArity(t *testing.T) {
	d := ArityN(2)
	if d.Kind != InlineArityN || d.Arity != 2 {
		t.Fatalf("got %+v, want Kind=InlineArityN Arity=2", d)
	}
}

func TestDefaultIsZeroValue(t *testing.T) {
	if Default() != (InlineDirective{}) {
		t.Fatalf("Default() = %+v, want the zero value", Default())
	}
}
