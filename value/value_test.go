package value

import (
	"testing"

	"github.com/aromano272/loxwalk/token"
)

func tok(lexeme string) token.Token {
	return token.New(token.IDENTIFIER, lexeme, nil, 1)
}

func TestStringifyAppendsPointZeroToIntegralFloats(t *testing.T) {
	if got := Stringify(float64(3)); got != "3.0" {
		t.Fatalf("got %q, want %q", got, "3.0")
	}
	if got := Stringify(3.5); got != "3.5" {
		t.Fatalf("got %q, want %q", got, "3.5")
	}
}

func TestStringifyNilAndBool(t *testing.T) {
	if got := Stringify(nil); got != "nil" {
		t.Fatalf("got %q, want %q", got, "nil")
	}
	if got := Stringify(true); got != "true" {
		t.Fatalf("got %q, want %q", got, "true")
	}
}

func TestIsTruthy(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{float64(0), true},
		{"", true},
	}
	for _, c := range cases {
		if got := IsTruthy(c.v); got != c.want {
			t.Fatalf("IsTruthy(%#v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestEqualsNilOnlyEqualsNil(t *testing.T) {
	if !Equals(nil, nil) {
		t.Fatalf("nil should equal nil")
	}
	if Equals(nil, false) {
		t.Fatalf("nil should not equal false")
	}
}

func TestEqualsComparesScalarsByValue(t *testing.T) {
	if !Equals(float64(1), float64(1)) {
		t.Fatalf("1 should equal 1")
	}
	if Equals(float64(1), "1") {
		t.Fatalf("number should never equal a string")
	}
	if !Equals("a", "a") {
		t.Fatalf("equal strings should compare equal")
	}
}

func TestEnvironmentGetAtAndAssignAt(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("x", float64(1))
	child := NewEnvironment(global)
	if got := child.GetAt(1, "x"); got != float64(1) {
		t.Fatalf("GetAt(1, x) = %v, want 1", got)
	}
	child.AssignAt(1, tok("x"), float64(2))
	if got := global.GetAt(0, "x"); got != float64(2) {
		t.Fatalf("AssignAt should have updated the ancestor environment, got %v", got)
	}
}

func TestClassFindMethodWalksSuperclassChain(t *testing.T) {
	base := &Class{Name: "Base", Methods: map[string]*Function{"greet": {}}}
	derived := &Class{Name: "Derived", Methods: map[string]*Function{}, Superclass: base}
	m, ok := derived.FindMethod("greet")
	if !ok || m == nil {
		t.Fatalf("expected FindMethod to find 'greet' via superclass chain")
	}
	if _, ok := derived.FindMethod("missing"); ok {
		t.Fatalf("expected FindMethod to report 'missing' as absent")
	}
}
