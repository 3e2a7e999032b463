package cos

import "testing"

func TestIsTruthy(t *testing.T) {
	cases := map[string]bool{
		"":      false,
		"0":     false,
		"1":     true,
		"true":  true,
		"false": true, // any non-empty, non-"0" string is truthy per spec §6
		"yes":   true,
	}
	for in, want := range cases {
		if got := IsTruthy(in); got != want {
			t.Errorf("IsTruthy(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseUintDefault(t *testing.T) {
	got, err := ParseUint("", 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestParseUintValid(t *testing.T) {
	got, err := ParseUint("1024", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1024 {
		t.Fatalf("got %d, want 1024", got)
	}
}

func TestParseUintInvalid(t *testing.T) {
	if _, err := ParseUint("not-a-number", 0); err == nil {
		t.Fatal("expected an error for an unparsable value")
	}
	if _, err := ParseUint("-1", 0); err == nil {
		t.Fatal("expected an error for a negative value")
	}
}
