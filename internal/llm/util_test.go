package llm

import (
	"strings"
	"testing"
)

func TestText(t *testing.T) {
	resp := &Response{Content: []ContentBlock{
		{Type: "text", Text: "hello "},
		{Type: "other", Text: "skipped"},
		{Type: "text", Text: "world"},
	}}
	if got := Text(resp); got != "hello world" {
		t.Fatalf("Text: got %q", got)
	}
	if got := Text(nil); got != "" {
		t.Fatalf("Text(nil): got %q", got)
	}
}

func TestParseJSON(t *testing.T) {
	type out struct {
		IsCorrect bool `json:"is_correct"`
	}

	tests := []struct {
		name    string
		raw     string
		want    bool
		wantErr bool
	}{
		{name: "plain", raw: `{"is_correct": true}`, want: true},
		{name: "fenced", raw: "```json\n{\"is_correct\": true}\n```", want: true},
		{name: "prose wrapped", raw: `Sure! {"is_correct": false} Done.`, want: false},
		{name: "trailing comma", raw: `{"is_correct": true,}`, want: true},
		{name: "unknown field", raw: `{"is_correct": true, "extra": 1}`, wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "no object", raw: "not json", wantErr: true},
	}

	for _, tc := range tests {
		var v out
		err := ParseJSON(tc.raw, &v)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error", tc.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: ParseJSON: %v", tc.name, err)
		}
		if v.IsCorrect != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, v.IsCorrect, tc.want)
		}
	}
}

func TestParseJSONList(t *testing.T) {
	type item struct {
		Question string `json:"question"`
	}

	raw := "```json\n[\n  {\"question\": \"q1\"},\n  {\"question\": \"q2\"},\n]\n```"
	var items []item
	if err := ParseJSONList(raw, &items); err != nil {
		t.Fatalf("ParseJSONList: %v", err)
	}
	if len(items) != 2 || items[0].Question != "q1" || items[1].Question != "q2" {
		t.Fatalf("items: got %+v", items)
	}

	var bad []item
	if err := ParseJSONList(`[{"question": "q", "surprise": 1}]`, &bad); err == nil {
		t.Fatal("expected error for unknown field")
	}
	if err := ParseJSONList("no array here", &bad); err == nil {
		t.Fatal("expected error for missing array")
	}
}

func TestNormalizeProviderName(t *testing.T) {
	if got := normalizeProviderName(" Anthropic "); got != "claude" {
		t.Fatalf("got %q", got)
	}
	if got := normalizeProviderName("OPENAI"); got != "openai" {
		t.Fatalf("got %q", got)
	}
}

func TestParseJSON_FencedWithProse(t *testing.T) {
	raw := strings.Join([]string{
		"Here is the result:",
		"```json",
		`{"is_correct": true}`,
		"```",
	}, "\n")

	var v struct {
		IsCorrect bool `json:"is_correct"`
	}
	if err := ParseJSON(raw, &v); err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if !v.IsCorrect {
		t.Fatal("expected is_correct=true")
	}
}
