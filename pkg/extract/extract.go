// Package extract narrows model output down to a candidate JSON substring.
// It never validates: callers run the actual parse and handle failure there.
package extract

import "strings"

const fence = "```"

// JSON pulls a candidate JSON value out of free-form model text:
//
//  1. the trimmed interior of the first triple-backtick fence, when one
//     exists (an optional language tag on the opening marker is skipped);
//  2. otherwise the span from the first '{' or '[' to the matching closer,
//     located by scanning back from the end of the text;
//  3. otherwise the whole text, trimmed.
//
// The bracket matching is deliberately not depth-aware: text holding several
// independent JSON values, or brackets inside string literals, can over- or
// under-capture. Downstream normalization tolerates that, and the parse
// failure path covers the rest.
func JSON(text string) string {
	if inner, ok := firstFencedBlock(text); ok {
		return strings.TrimSpace(inner)
	}

	if span, ok := bracketSpan(text); ok {
		return span
	}

	return strings.TrimSpace(text)
}

func firstFencedBlock(text string) (string, bool) {
	open := strings.Index(text, fence)
	if open < 0 {
		return "", false
	}

	// Skip the optional language tag: everything to the end of the opening
	// marker's line belongs to the marker, not the payload.
	body := text[open+len(fence):]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	}

	closing := strings.Index(body, fence)
	if closing < 0 {
		return "", false
	}
	return body[:closing], true
}

func bracketSpan(text string) (string, bool) {
	objOpen := strings.IndexByte(text, '{')
	arrOpen := strings.IndexByte(text, '[')

	open, closer := objOpen, byte('}')
	if open < 0 || (arrOpen >= 0 && arrOpen < open) {
		open, closer = arrOpen, ']'
	}
	if open < 0 {
		return "", false
	}

	end := strings.LastIndexByte(text, closer)
	if end <= open {
		return "", false
	}
	return text[open : end+1], true
}
