// Package classify implements intent classification: an ordered keyword
// pass, backed by a language-model fallback for messages no keyword covers.
package classify

import (
	"strings"

	contractx "github.com/sirinut/regibot/agent/contract"
)

// rules are evaluated in order; the first group with a matching keyword
// wins, so "create" outranks "read" outranks "update" and so on. Matching
// is case-insensitive substring matching, not word matching: "I updated my
// create account" classifies as create.
var rules = []struct {
	intent   contractx.Intent
	keywords []string
}{
	{contractx.IntentCreate, []string{"create", "register", "sign up", "new account", "new registration"}},
	{contractx.IntentRead, []string{"read", "show", "view", "get", "retrieve", "my data", "my info"}},
	{contractx.IntentUpdate, []string{"update", "change", "modify", "edit"}},
	{contractx.IntentDelete, []string{"delete", "remove", "deregister"}},
	{contractx.IntentHelp, []string{"help", "what can you do", "commands"}},
	{contractx.IntentExit, []string{"exit", "quit", "bye", "goodbye"}},
}

// Keyword returns the first intent whose keyword group matches text, or
// false when no keyword matches and the fallback classifier should decide.
func Keyword(text string) (contractx.Intent, bool) {
	lower := strings.ToLower(text)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.intent, true
			}
		}
	}
	return "", false
}
