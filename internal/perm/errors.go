// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

package perm

// Error codes for permission resolution failures.
const (
	// CodeResolveFailed marks a failed remote resolution of a user
	// record. Fatal for that resolution attempt; the login path may
	// use it to reject the connecting session.
	CodeResolveFailed = "PERM_RESOLVE_FAILED"
)
