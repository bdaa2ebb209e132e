package service

import (
	"errors"
	"testing"

	"github.com/jacentio/constellation/model/sadalsuud"
)

func TestDefaultValidator_ValidateUser(t *testing.T) {
	valid := sadalsuud.User{LineUserID: "l", Name: "n", Role: sadalsuud.RoleStarRain}

	tests := []struct {
		name  string
		edit  func(u *sadalsuud.User)
		field string
	}{
		{"valid", func(u *sadalsuud.User) {}, ""},
		{"no line id", func(u *sadalsuud.User) { u.LineUserID = "" }, "lineUserId"},
		{"no name", func(u *sadalsuud.User) { u.Name = "" }, "name"},
		{"bad role", func(u *sadalsuud.User) { u.Role = "KING" }, "role"},
		{"negative session", func(u *sadalsuud.User) { u.JoinSession = -1 }, "joinSession"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := valid
			tt.edit(&u)
			err := DefaultValidator{}.ValidateUser(u)
			if tt.field == "" {
				if err != nil {
					t.Errorf("expected valid, got %v", err)
				}
				return
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, vErr.Field)
			}
		})
	}
}

func TestParseQuestion(t *testing.T) {
	tests := []struct {
		name    string
		row     QuestionRow
		wantErr bool
	}{
		{"single", QuestionRow{Question: "a", Type: "S", Options: "x, y", Answer: "2"}, false},
		{"multiple", QuestionRow{Question: "a", Type: "M", Options: "x,y,z", Answer: "1,3"}, false},
		{"text", QuestionRow{Question: "a", Type: "T", Answer: "free"}, false},
		{"empty row", QuestionRow{}, true},
		{"no question", QuestionRow{Type: "S", Options: "x", Answer: "1"}, true},
		{"unknown type", QuestionRow{Question: "a", Type: "wrong", Options: "x", Answer: "1"}, true},
		{"no options", QuestionRow{Question: "a", Type: "S", Answer: "1"}, true},
		{"no answer", QuestionRow{Question: "a", Type: "M", Options: "x"}, true},
		{"single with two answers", QuestionRow{Question: "a", Type: "S", Options: "x,y", Answer: "1,2"}, true},
		{"answer out of range", QuestionRow{Question: "a", Type: "S", Options: "x", Answer: "2"}, true},
		{"answer not a number", QuestionRow{Question: "a", Type: "S", Options: "x", Answer: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseQuestion(tt.row)
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, ,b ,c")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("expected [a b c], got %v", got)
	}
	if splitList("") != nil {
		t.Error("expected nil for empty input")
	}
}
