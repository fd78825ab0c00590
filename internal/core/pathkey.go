package core

import (
	"strings"
	"unicode"
)

// PathKey is a validated absolute entry path: slash-separated segments, no
// trailing slash, no empty segments, case-sensitive.
type PathKey string

// ParsePath validates and normalizes a raw entry path
func ParsePath(raw string) (PathKey, error) {
	if raw == "" {
		return "", &InvalidPathError{Raw: raw, Reason: "path is empty"}
	}
	if strings.ContainsFunc(raw, unicode.IsSpace) {
		return "", &InvalidPathError{Raw: raw, Reason: "path contains whitespace"}
	}
	if !strings.HasPrefix(raw, "/") {
		return "", &InvalidPathError{Raw: raw, Reason: "path must start with '/'"}
	}
	if strings.Contains(raw, "//") {
		return "", &InvalidPathError{Raw: raw, Reason: "path contains empty segment"}
	}
	if strings.HasSuffix(raw, "/") {
		return "", &InvalidPathError{Raw: raw, Reason: "path has trailing slash"}
	}

	return PathKey(raw), nil
}

// String returns the path as a plain string
func (p PathKey) String() string {
	return string(p)
}

// UnderPrefix reports whether p equals prefix or lies below it, segment-wise.
// "/global/example" is not a prefix of "/global/example2".
func (p PathKey) UnderPrefix(prefix PathKey) bool {
	if p == prefix {
		return true
	}
	return strings.HasPrefix(string(p), string(prefix)+"/")
}

// Segment appends one path segment to p. The caller validates the result.
func (p PathKey) Segment(name string) string {
	return string(p) + "/" + name
}

// CommonPrefix returns the longest segment-wise common prefix of the given
// paths. Reports false when the paths share no leading segment.
func CommonPrefix(paths []PathKey) (PathKey, bool) {
	if len(paths) == 0 {
		return "", false
	}

	common := strings.Split(string(paths[0][1:]), "/")
	for _, p := range paths[1:] {
		segments := strings.Split(string(p[1:]), "/")
		if len(segments) < len(common) {
			common = common[:len(segments)]
		}
		for i := range common {
			if segments[i] != common[i] {
				common = common[:i]
				break
			}
		}
		if len(common) == 0 {
			return "", false
		}
	}

	return PathKey("/" + strings.Join(common, "/")), true
}
