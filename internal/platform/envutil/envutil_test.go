package envutil

import (
	"reflect"
	"testing"
)

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("SRP_TEST_INT", "abc")
	if got := Int("SRP_TEST_INT", 7, nil); got != 7 {
		t.Fatalf("Int: got=%d want=7", got)
	}
	t.Setenv("SRP_TEST_INT", " 42 ")
	if got := Int("SRP_TEST_INT", 7, nil); got != 42 {
		t.Fatalf("Int: got=%d want=42", got)
	}
}

func TestBool(t *testing.T) {
	cases := map[string]bool{"": true, "off": false, "YES": true, "maybe": true}
	for raw, want := range cases {
		t.Setenv("SRP_TEST_BOOL", raw)
		if got := Bool("SRP_TEST_BOOL", true, nil); got != want {
			t.Fatalf("Bool(%q): got=%v want=%v", raw, got, want)
		}
	}
}

func TestList(t *testing.T) {
	t.Setenv("SRP_TEST_LIST", "a, b,,c ")
	got := List("SRP_TEST_LIST", nil)
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("List: got=%v want=%v", got, want)
	}
	t.Setenv("SRP_TEST_LIST", " , ")
	if got := List("SRP_TEST_LIST", []string{"*"}); !reflect.DeepEqual(got, []string{"*"}) {
		t.Fatalf("List default: got=%v", got)
	}
}

func TestStringDefault(t *testing.T) {
	t.Setenv("SRP_TEST_STR", "   ")
	if got := String("SRP_TEST_STR", "fallback", nil); got != "fallback" {
		t.Fatalf("String: got=%q", got)
	}
}
