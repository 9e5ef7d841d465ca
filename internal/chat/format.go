// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

// Package chat translates display color codes and renders chat lines
// from the configured chat format template.
package chat

import "strings"

// SectionSign is the in-protocol color code marker understood by game
// clients. Configuration files use '&' instead; Translate converts
// between the two.
const SectionSign = "§"

// colorCodes are the characters valid after a '&' marker.
const colorCodes = "0123456789abcdefklmnorABCDEFKLMNOR"

// Translate converts '&'-prefixed color codes to section-sign codes.
// A '&' followed by anything other than a valid code character is left
// untouched.
func Translate(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '&' && i+1 < len(s) && strings.IndexByte(colorCodes, s[i+1]) >= 0 {
			b.WriteString(SectionSign)
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Strip removes all section-sign color codes from a string, for logging
// chat lines to plain-text sinks.
func Strip(s string) string {
	if !strings.Contains(s, SectionSign) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	skip := false
	for _, r := range s {
		if skip {
			skip = false
			continue
		}
		if string(r) == SectionSign {
			skip = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Render expands a chat format template. Recognized placeholders are
// {prefix}, {suffix}, {name} and {message}; color codes in the template
// and in the prefix/suffix are translated.
func Render(format, prefix, suffix, name, message string) string {
	out := strings.NewReplacer(
		"{prefix}", prefix,
		"{suffix}", suffix,
		"{name}", name,
		"{message}", message,
	).Replace(format)
	return Translate(out)
}
