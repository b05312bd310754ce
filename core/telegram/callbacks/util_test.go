package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		data    string
		unique  string
		payload string
	}{
		// Telebot prefixes callback data with the \f control character.
		{"\famount|3", "amount", "3"},
		{"\fconfirm", "confirm", ""},
		{"amount|3", "amount", "3"},
		{"\famount|", "amount", ""},
		{"\famount|a|b", "amount", "a|b"},
		{"", "", ""},
	}
	for _, tc := range cases {
		unique, payload := ParseCallbackData(&tele.Callback{Data: tc.data})
		if unique != tc.unique || payload != tc.payload {
			t.Errorf("ParseCallbackData(%q) = (%q, %q), want (%q, %q)",
				tc.data, unique, payload, tc.unique, tc.payload)
		}
	}
}

func TestParseCallbackDataNil(t *testing.T) {
	unique, payload := ParseCallbackData(nil)
	if unique != "" || payload != "" {
		t.Fatalf("nil callback must parse empty, got (%q, %q)", unique, payload)
	}
}
