package validate

import (
	"strings"
	"testing"
)

func TestPassword(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"Aa1!aaaaaaaa", true},
		{"Aa1aaaaaaaaa", true},
		{"aa1!aaaaaaaa", true},
		{"aaaaaaaaaaaa", false},
		{"aaaaaaaaaaa1", false},
		{"Aa1!aaa", false},
		{"Aa1!" + strings.Repeat("a", 47), false},
		{"Éé1ééééééééé", true},
		{"Éé1" + strings.Repeat("é", 40), false},
	}
	for _, tc := range cases {
		var e Error
		e.Password("password", tc.in)
		if got := e.Err() == nil; got != tc.ok {
			t.Errorf("Password(%q) ok = %v, want %v (%v)", tc.in, got, tc.ok, e.Fields)
		}
	}
}

func TestPasswordClassCount(t *testing.T) {
	if n := PasswordClassCount("aA1!"); n != 4 {
		t.Errorf("got %d, want 4", n)
	}
	if n := PasswordClassCount("abc def"); n != 1 {
		t.Errorf("spaces count as special: %d", n)
	}
}

func TestEmail(t *testing.T) {
	valid := []string{"jeanne@example.com", "a.b+c@mail.example.fr"}
	invalid := []string{"a@b.c", "jeanne", "jeanne@example", "Jeanne <jeanne@example.com>", strings.Repeat("a", 95) + "@ex.com"}
	for _, s := range valid {
		var e Error
		if e.Email("email", s); e.Err() != nil {
			t.Errorf("Email(%q) = %v", s, e.Err())
		}
	}
	for _, s := range invalid {
		var e Error
		if e.Email("email", s); e.Err() == nil {
			t.Errorf("Email(%q) accepted", s)
		}
	}
}

func TestLengthCountsRunes(t *testing.T) {
	var e Error
	e.Length("content", strings.Repeat("é", MessageMax), MessageMin, MessageMax)
	if e.Err() != nil {
		t.Fatalf("accented text at the limit rejected: %v", e.Fields)
	}
	e.Length("content", "", MessageMin, MessageMax)
	if e.Fields["content"] != "is required" {
		t.Errorf("empty = %q", e.Fields["content"])
	}
	var opt Error
	opt.Length("bio", "", 0, BioMax)
	if opt.Err() != nil {
		t.Errorf("optional empty field rejected")
	}
}

func TestErrorKeepsFirstProblem(t *testing.T) {
	var e Error
	e.Add("stars", "first")
	e.Add("stars", "second")
	e.Stars("x", 6)
	e.ID("id", 0)
	if e.Fields["stars"] != "first" || len(e.Fields) != 3 {
		t.Errorf("fields = %v", e.Fields)
	}
	if got := e.Error(); !strings.HasPrefix(got, "validation failed: id:") {
		t.Errorf("Error() = %q", got)
	}
	var empty *Error
	if empty.Err() != nil {
		t.Error("nil Error reports a problem")
	}
}
