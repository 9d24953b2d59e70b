// Package parsing extracts a single structured JSON record from free-form model output.
package parsing

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// snippetLength bounds the response excerpt carried on MalformedResponseError.
const snippetLength = 120

// Strategy is one way of locating a JSON object inside text.
// Extract returns the candidate object text and whether one was found.
type Strategy struct {
	Name    string
	Extract func(text string) (string, bool)
}

// Strategy names, in default order of preference.
const (
	StrategyWhole    = "whole"
	StrategyFenced   = "fenced"
	StrategyBalanced = "balanced"
)

// fencePattern matches ``` blocks with an optional language tag.
var fencePattern = regexp.MustCompile("(?s)```[ \\t]*([A-Za-z0-9_-]*)[ \\t]*\\r?\\n?(.*?)```")

// DefaultStrategies returns the whole-input, fenced-block and balanced-brace strategies in that order.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: StrategyWhole, Extract: extractWhole},
		{Name: StrategyFenced, Extract: extractFenced},
		{Name: StrategyBalanced, Extract: extractBalanced},
	}
}

// Record is a parsed JSON object together with the strategy that found it.
type Record struct {
	Raw      json.RawMessage
	Strategy string
}

// Fields decodes the record into a generic map.
func (r *Record) Fields() (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(r.Raw, &fields); err != nil {
		return nil, &DecodeError{Message: "record is not an object", Cause: err}
	}
	return fields, nil
}

// Decode unmarshals the record into v.
func (r *Record) Decode(v any) error {
	if err := json.Unmarshal(r.Raw, v); err != nil {
		return &DecodeError{Message: "failed to decode record", Cause: err}
	}
	return nil
}

// String returns the compact JSON text of the record.
func (r *Record) String() string {
	return string(r.Raw)
}

// Parse returns the first JSON object found by the default strategies.
func Parse(text string) (*Record, error) {
	return ParseWith(text, DefaultStrategies())
}

// ParseWith tries each strategy in order and returns the first valid JSON object.
func ParseWith(text string, strategies []Strategy) (*Record, error) {
	tried := make([]string, 0, len(strategies))
	for _, s := range strategies {
		tried = append(tried, s.Name)
		candidate, ok := s.Extract(text)
		if !ok {
			continue
		}
		raw, ok := asObject(candidate)
		if !ok {
			continue
		}
		return &Record{Raw: raw, Strategy: s.Name}, nil
	}
	return nil, &MalformedResponseError{
		Message: "no JSON object found",
		Tried:   tried,
		Snippet: snippet(text),
	}
}

// asObject reports whether s is a single JSON object and returns it compacted.
func asObject(s string) (json.RawMessage, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") || !json.Valid([]byte(s)) {
		return nil, false
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return nil, false
	}
	return json.RawMessage(buf.Bytes()), true
}

func extractWhole(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	return trimmed, trimmed != ""
}

// extractFenced prefers blocks tagged json, then falls back to untagged blocks.
func extractFenced(text string) (string, bool) {
	matches := fencePattern.FindAllStringSubmatch(text, -1)
	for _, m := range matches {
		if strings.EqualFold(m[1], "json") {
			if _, ok := asObject(m[2]); ok {
				return m[2], true
			}
		}
	}
	for _, m := range matches {
		if m[1] == "" {
			if _, ok := asObject(m[2]); ok {
				return m[2], true
			}
		}
	}
	return "", false
}

// extractBalanced returns the first balanced brace-delimited substring that is valid JSON.
func extractBalanced(text string) (string, bool) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end, ok := matchBrace(text, start); ok {
			candidate := text[start : end+1]
			if _, valid := asObject(candidate); valid {
				return candidate, true
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

func snippet(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= snippetLength {
		return text
	}
	return string(runes[:snippetLength]) + "..."
}
