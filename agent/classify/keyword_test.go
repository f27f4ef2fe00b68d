package classify

import (
	"testing"

	contractx "github.com/sirinut/regibot/agent/contract"
)

func TestKeyword(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want contractx.Intent
		ok   bool
	}{
		{"I want to register", contractx.IntentCreate, true},
		{"Sign Up please", contractx.IntentCreate, true},
		{"can I open a new account", contractx.IntentCreate, true},
		{"show my info", contractx.IntentRead, true},
		{"RETRIEVE my registration", contractx.IntentRead, true},
		{"change my phone", contractx.IntentUpdate, true},
		{"edit details", contractx.IntentUpdate, true},
		{"please remove my account", contractx.IntentDelete, true},
		{"help", contractx.IntentHelp, true},
		{"what can you do", contractx.IntentHelp, true},
		{"goodbye", contractx.IntentExit, true},
		{"quit", contractx.IntentExit, true},
		{"the weather is nice", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := Keyword(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("Keyword(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestKeywordFirstGroupWins(t *testing.T) {
	t.Parallel()

	// "create" appears in an earlier rule group than "delete", so a message
	// containing both classifies as create.
	got, ok := Keyword("delete the account I tried to create")
	if !ok || got != contractx.IntentCreate {
		t.Fatalf("expected create to win, got (%q, %v)", got, ok)
	}

	// Within mixed read/update phrasing, read is evaluated first.
	got, ok = Keyword("show me how to change it")
	if !ok || got != contractx.IntentRead {
		t.Fatalf("expected read to win, got (%q, %v)", got, ok)
	}
}
