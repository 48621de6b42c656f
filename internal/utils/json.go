// Package utils holds small helpers for digesting LLM output.
package utils

import (
	"encoding/json"
	"regexp"
	"strings"
)

// trailingCommaRegex fixes trailing commas before a closing brace/bracket,
// the most common syntax slip in model-produced JSON.
var trailingCommaRegex = regexp.MustCompile(`,\s*([}\]])`)

// FencedBlocks scans free-form text and returns the body of every fenced
// code block, in order of appearance. Blocks tagged json are returned first
// so callers trying candidates in order hit the likely one early. An
// unterminated fence contributes the remainder of the text.
func FencedBlocks(text string) []string {
	var tagged, untagged []string

	rest := text
	for {
		start := strings.Index(rest, "```")
		if start == -1 {
			break
		}
		rest = rest[start+3:]

		// The fence tag runs to the end of the opening line.
		nl := strings.IndexByte(rest, '\n')
		tag := ""
		if nl >= 0 {
			tag = strings.TrimSpace(rest[:nl])
			rest = rest[nl+1:]
		}

		end := strings.Index(rest, "```")
		var body string
		if end == -1 {
			body = rest
			rest = ""
		} else {
			body = rest[:end]
			rest = rest[end+3:]
		}

		body = strings.TrimSpace(body)
		if body == "" {
			continue
		}
		if strings.EqualFold(tag, "json") {
			tagged = append(tagged, body)
		} else {
			untagged = append(untagged, body)
		}
		if rest == "" {
			break
		}
	}

	return append(tagged, untagged...)
}

// DecodeFirstJSON attempts to decode each candidate block into T, returning
// the first one that both unmarshals and passes the validator. It never
// returns an error: a response with no usable block yields ok=false and the
// caller treats it as "no data extracted".
func DecodeFirstJSON[T any](blocks []string, validate func(T) bool) (T, bool) {
	var zero T
	for _, block := range blocks {
		candidate := block
		idx := strings.IndexAny(candidate, "{[")
		if idx == -1 {
			continue
		}
		candidate = candidate[idx:]

		var result T
		decoder := json.NewDecoder(strings.NewReader(candidate))
		if err := decoder.Decode(&result); err != nil {
			// One repair pass for trailing commas, then give up on this block.
			repaired := repairJSON(candidate)
			if repaired == candidate {
				continue
			}
			result = zero
			dec2 := json.NewDecoder(strings.NewReader(repaired))
			if err2 := dec2.Decode(&result); err2 != nil {
				continue
			}
		}
		if validate == nil || validate(result) {
			return result, true
		}
	}
	return zero, false
}

// ExtractJSON is the common two-stage path: scan for fenced blocks, decode
// the first valid one. When the response has no fences at all, the whole
// text is tried as a single candidate, since some models skip the fence.
func ExtractJSON[T any](response string, validate func(T) bool) (T, bool) {
	blocks := FencedBlocks(response)
	if len(blocks) == 0 {
		blocks = []string{response}
	}
	return DecodeFirstJSON(blocks, validate)
}

// repairJSON fixes common LLM syntax errors. Kept deliberately narrow:
// anything beyond trailing commas and literal control characters inside
// strings is rejected rather than guessed at.
func repairJSON(input string) string {
	result := sanitizeControlChars(input)
	return trailingCommaRegex.ReplaceAllString(result, `$1`)
}

// sanitizeControlChars escapes literal tabs and newlines inside JSON
// strings, which models emit frequently and encoding/json rejects.
func sanitizeControlChars(input string) string {
	var b strings.Builder
	b.Grow(len(input))

	inString := false
	escaped := false
	for i := 0; i < len(input); i++ {
		c := input[i]
		if escaped {
			b.WriteByte(c)
			escaped = false
			continue
		}
		if c == '\\' && inString {
			b.WriteByte(c)
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			b.WriteByte(c)
			continue
		}
		if inString {
			switch c {
			case '\t':
				b.WriteString(`\t`)
			case '\n':
				b.WriteString(`\n`)
			case '\r':
				b.WriteString(`\r`)
			default:
				b.WriteByte(c)
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
