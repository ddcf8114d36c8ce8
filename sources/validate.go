// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package sources

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// maxNameLength bounds skill names to keep them usable as directory names.
const maxNameLength = 128

// ValidateName validates that a string is usable as a skill name. Names
// containing path separators indicate a broken identity extraction upstream
// and must never reach the ledger or the store.
func ValidateName(skillName string) error {
	if skillName == "" {
		return fmt.Errorf("skill name cannot be empty")
	}
	if len(skillName) > maxNameLength {
		return fmt.Errorf("skill name exceeds maximum length of %d bytes", maxNameLength)
	}
	if strings.ContainsAny(skillName, `/\`) {
		return fmt.Errorf("invalid skill name %q: contains a path separator", skillName)
	}
	if skillName == "." || skillName == ".." {
		return fmt.Errorf("invalid skill name %q", skillName)
	}
	return nil
}

// ValidateHostedURL validates that a hosted source locator is a well-formed
// http(s) URL safe to hand to a fetcher.
//
// A valid locator must:
//   - Include an http or https scheme
//   - Include a host
//   - Not contain fragments
//   - Not contain control characters or CRLF sequences
func ValidateHostedURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("source URL cannot be empty")
	}

	// Same validity rules Go's HTTP/2 implementation applies to field values,
	// which catches CRLF injection and control characters.
	if !httpguts.ValidHeaderFieldValue(raw) {
		return fmt.Errorf("invalid source URL: contains control characters")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid source URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("source URL must use http or https scheme, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("source URL must include a host")
	}
	if u.Fragment != "" {
		return fmt.Errorf("source URL must not contain a fragment")
	}
	return nil
}
