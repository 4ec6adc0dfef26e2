package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const snippetLimit = 160

// DecodeJSON decodes the first JSON object or array in a model response.
// Markdown code fences and prose before or after the payload are ignored.
func DecodeJSON(content string, target any) error {
	body := stripCodeFence(content)
	if body == "" {
		return errors.New("empty model response")
	}
	start := strings.IndexAny(body, "{[")
	if start < 0 {
		return fmt.Errorf("no JSON in model response: %s", snippet(body))
	}
	if err := json.NewDecoder(strings.NewReader(body[start:])).Decode(target); err != nil {
		return fmt.Errorf("decode model response: %w (response: %s)", err, snippet(body))
	}
	return nil
}

// stripCodeFence unwraps a ```json ... ``` block when the response is one.
func stripCodeFence(content string) string {
	body := strings.TrimSpace(content)
	rest, ok := strings.CutPrefix(body, "```")
	if !ok {
		return body
	}
	rest = strings.TrimLeft(rest, " \t\r\n")
	if len(rest) >= 4 && strings.EqualFold(rest[:4], "json") {
		rest = rest[4:]
	}
	if end := strings.LastIndex(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// snippet collapses whitespace and truncates a response for error messages.
func snippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if runes := []rune(clean); len(runes) > snippetLimit {
		return string(runes[:snippetLimit]) + "..."
	}
	return clean
}
