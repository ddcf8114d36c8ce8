// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package sources

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
)

// SourceKind classifies a source locator.
type SourceKind string

// Source locator kinds.
const (
	// KindGitHub is an "owner/repo" shorthand or "github:" prefixed locator.
	KindGitHub SourceKind = "github"

	// KindGist is a "gist:" prefixed locator or a gist.github.com URL.
	KindGist SourceKind = "gist"

	// KindURL is a plain http(s) URL.
	KindURL SourceKind = "url"

	// KindArchive is a locator ending in an archive extension (.zip, .tar.gz, .tgz, .tar).
	KindArchive SourceKind = "archive"

	// KindOCI is an "oci://" prefixed OCI artifact reference.
	KindOCI SourceKind = "oci"

	// KindLocal is a filesystem path.
	KindLocal SourceKind = "local"
)

// archiveExts are recognized archive extensions, longest first so that
// ".tar.gz" is stripped before ".gz" would match anything.
var archiveExts = []string{".tar.gz", ".tgz", ".tar", ".zip"}

// Kind classifies a source locator. Classification is purely syntactic;
// no filesystem or network access is performed.
//
// A bare "owner/repo" with exactly one slash is GitHub shorthand. Relative
// local paths that would be ambiguous must be written with an explicit
// "./" prefix.
func Kind(source string) SourceKind {
	s := strings.TrimSpace(source)
	switch {
	case strings.HasPrefix(s, "oci://"):
		return KindOCI
	case strings.HasPrefix(s, "gist:"):
		return KindGist
	case strings.HasPrefix(s, "github:"):
		return KindGitHub
	}

	if u, err := url.Parse(s); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		if strings.EqualFold(u.Host, "gist.github.com") {
			return KindGist
		}
		if hasArchiveExt(u.Path) {
			return KindArchive
		}
		return KindURL
	}

	if hasArchiveExt(s) {
		return KindArchive
	}
	if isRepoShorthand(s) {
		return KindGitHub
	}
	return KindLocal
}

// SkillNameFromSource normalizes a source locator to a skill name. This is
// the single normalization function used everywhere skill identity is
// compared: two different locators that normalize to the same name are
// treated as the same skill.
func SkillNameFromSource(source string) string {
	s := strings.TrimSpace(source)

	switch Kind(s) {
	case KindOCI:
		return nameFromOCIRef(strings.TrimPrefix(s, "oci://"))
	case KindGist:
		s = strings.TrimPrefix(s, "gist:")
		if u, err := url.Parse(s); err == nil && u.Path != "" {
			return trimName(path.Base(u.Path))
		}
		return trimName(lastElement(s))
	case KindGitHub:
		s = strings.TrimPrefix(s, "github:")
		return trimName(lastElement(s))
	case KindURL, KindArchive:
		if u, err := url.Parse(s); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
			return trimName(path.Base(u.Path))
		}
		return trimName(filepath.Base(filepath.Clean(s)))
	default:
		return trimName(filepath.Base(filepath.Clean(s)))
	}
}

// nameFromOCIRef extracts the skill name from an OCI reference such as
// "ghcr.io/org/my-skill:v1.0.0". The name is the last path element of the
// repository, ignoring tag and digest.
func nameFromOCIRef(ref string) string {
	parsed, err := name.ParseReference(ref)
	if err != nil {
		// Fall back to trimming tag/digest by hand.
		if i := strings.IndexAny(ref, "@"); i >= 0 {
			ref = ref[:i]
		}
		if i := strings.LastIndex(ref, ":"); i > strings.LastIndex(ref, "/") {
			ref = ref[:i]
		}
		return trimName(lastElement(ref))
	}
	return trimName(lastElement(parsed.Context().RepositoryStr()))
}

func lastElement(s string) string {
	s = strings.TrimSuffix(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}

// trimName strips archive extensions and a trailing ".git" from a candidate name.
func trimName(s string) string {
	s = strings.TrimSpace(s)
	for _, ext := range archiveExts {
		if strings.HasSuffix(s, ext) {
			s = strings.TrimSuffix(s, ext)
			break
		}
	}
	return strings.TrimSuffix(s, ".git")
}

func hasArchiveExt(s string) bool {
	for _, ext := range archiveExts {
		if strings.HasSuffix(s, ext) {
			return true
		}
	}
	return false
}

// isRepoShorthand reports whether s looks like an "owner/repo" GitHub shorthand.
func isRepoShorthand(s string) bool {
	if strings.HasPrefix(s, ".") || strings.HasPrefix(s, "/") || strings.HasPrefix(s, "~") {
		return false
	}
	if strings.ContainsAny(s, "\\ \t") || strings.Count(s, "/") != 1 {
		return false
	}
	parts := strings.SplitN(s, "/", 2)
	return parts[0] != "" && parts[1] != ""
}
