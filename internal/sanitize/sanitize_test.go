package sanitize

import (
	"errors"
	"testing"
)

func TestQuestionsCleanJSON(t *testing.T) {
	input := `[{"text":"What is Go?","options":["A language","A mammal"],"correctOption":"A language","explanation":"Released in 2009."}]`
	got, err := Questions(input)
	if err != nil {
		t.Fatalf("Questions error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("unexpected question count: %d", len(got))
	}
	if got[0].Text != "What is Go?" {
		t.Fatalf("unexpected text: %q", got[0].Text)
	}
	if len(got[0].Options) != 2 || got[0].Options[1] != "A mammal" {
		t.Fatalf("options not preserved: %v", got[0].Options)
	}
	if got[0].CorrectOption != "A language" {
		t.Fatalf("unexpected correct option: %q", got[0].CorrectOption)
	}
}

func TestQuestionsStripsCodeFences(t *testing.T) {
	bare := `[{"text":"Hidden"}]`
	fenced := "```json\n" + bare + "\n```"

	want, err := Questions(bare)
	if err != nil {
		t.Fatalf("Questions(bare) error: %v", err)
	}
	got, err := Questions(fenced)
	if err != nil {
		t.Fatalf("Questions(fenced) error: %v", err)
	}
	if len(got) != len(want) || got[0].Text != want[0].Text {
		t.Fatalf("fenced result diverges: %+v vs %+v", got, want)
	}
}

func TestCleanStripsControlCharacters(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"nul byte", "Bad\x00Char", "BadChar"},
		{"bell and escape", "a\x07b\x1bc", "abc"},
		{"delete", "x\x7fy", "xy"},
		{"preserved whitespace", "a\nb\rc\td", "a\nb\rc\td"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Clean(tc.in); got != tc.want {
				t.Fatalf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestQuestionsControlCharacterInsidePayload(t *testing.T) {
	got, err := Questions("[{\"text\": \"Bad\x00Char\"}]")
	if err != nil {
		t.Fatalf("Questions error: %v", err)
	}
	if got[0].Text != "BadChar" {
		t.Fatalf("control char not stripped: %q", got[0].Text)
	}
}

func TestQuestionsInvalidInput(t *testing.T) {
	for _, input := range []string{"This is not JSON", "", "{\"text\":\"object not array\"}"} {
		got, err := Questions(input)
		if err == nil {
			t.Fatalf("expected error for %q, got %+v", input, got)
		}
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("expected *ParseError, got %T", err)
		}
	}
}
