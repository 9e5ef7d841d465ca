// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

package command

import "strings"

// ParseLine splits a raw command line into label and argument tokens.
// A leading slash on the label is stripped so both chat-style "/perm"
// input and console-style "perm" input resolve identically. Returns
// ok=false for blank input.
func ParseLine(input string) (label string, args []string, ok bool) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return "", nil, false
	}

	label = strings.TrimPrefix(fields[0], "/")
	if label == "" {
		return "", nil, false
	}
	return label, fields[1:], true
}
