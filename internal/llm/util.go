package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

func Text(resp *Response) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// ParseJSON extracts the first JSON object from raw output into out.
// Unknown fields are rejected so schema drift surfaces as a parse error.
func ParseJSON(raw string, out any) error {
	s, err := extractJSON(raw, '{', '}')
	if err != nil {
		return err
	}
	return decodeStrict(s, out)
}

// ParseJSONList extracts the first JSON array from raw output into out.
func ParseJSONList(raw string, out any) error {
	s, err := extractJSON(raw, '[', ']')
	if err != nil {
		return err
	}
	return decodeStrict(s, out)
}

func extractJSON(raw string, openDelim, closeDelim byte) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", errors.New("empty output")
	}

	if strings.HasPrefix(s, "```") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```"))
		if strings.HasPrefix(s, "json") {
			s = strings.TrimSpace(strings.TrimPrefix(s, "json"))
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = strings.TrimSpace(s[:idx])
		}
	}

	start := strings.IndexByte(s, openDelim)
	end := strings.LastIndexByte(s, closeDelim)
	if start < 0 || end < 0 || start >= end {
		return "", errors.New("missing JSON value")
	}

	s = s[start : end+1]
	return trailingCommaRe.ReplaceAllString(s, "$1"), nil
}

func decodeStrict(s string, out any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}
