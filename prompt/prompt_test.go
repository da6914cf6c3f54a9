package prompt

import (
	"strings"
	"testing"
)

func TestAskTrimmed(t *testing.T) {
	tests := []struct {
		text   string
		ok     bool
		want   string
		wantOK bool
	}{
		{"  Lisbon \n", true, "Lisbon", true},
		{"   ", true, "", false},
		{"", true, "", false},
		{"Paris", false, "", false},
	}
	for _, tt := range tests {
		p := Func(func(Request) (string, bool) { return tt.text, tt.ok })
		got, ok := AskTrimmed(p, Request{Title: "Search Location"})
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("AskTrimmed(%q, %v) = %q, %v; want %q, %v", tt.text, tt.ok, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestRenderPageEscapes(t *testing.T) {
	page, err := renderPage(Request{
		Title:   "Token <b>",
		Message: "Enter your token.\nGet one free",
		Initial: `pk."><script>alert(1)</script>`,
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(page, "<script>alert(1)</script>") {
		t.Error("initial value not escaped")
	}
	if strings.Contains(page, "Token <b>") {
		t.Error("title not escaped")
	}
	if !strings.Contains(page, "window.promptDone") {
		t.Error("page does not call the bound callback")
	}
}

func TestDialogHeightGrowsWithMessage(t *testing.T) {
	one := dialogHeight(Request{Message: "one line"})
	two := dialogHeight(Request{Message: "line\nline"})
	if two <= one {
		t.Errorf("height %d for two lines not above %d for one", two, one)
	}
}
