package core

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Candidate is an entry parsed from a local source, with provenance
// for error reporting. Record is the zero-based manifest record index,
// Line the one-based dotenv line number, Var the original dotenv name.
type Candidate struct {
	Key    PathKey
	Value  string
	Secure bool

	Record int
	Line   int
	Var    string
}

// Provenance describes where the candidate came from in its source file
func (c Candidate) Provenance() string {
	if c.Line > 0 {
		return fmt.Sprintf("line %d (%s)", c.Line, c.Var)
	}
	return fmt.Sprintf("record %d", c.Record)
}

// manifestRecord is one JSON record in a manifest file.
// Pointers distinguish "missing" from "empty".
type manifestRecord struct {
	Key    *string `json:"key"`
	Value  *string `json:"value"`
	Secure bool    `json:"secure"`
}

// ParseManifest parses a JSON manifest: an ordered list of
// {key, value, secure?} records. secure defaults to false.
func ParseManifest(data []byte) ([]Candidate, error) {
	var records []manifestRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &MalformedManifestError{Record: -1, Reason: "expected a JSON list of {key, value, secure?} records"}
	}

	candidates := make([]Candidate, 0, len(records))
	for i, rec := range records {
		if rec.Key == nil {
			return nil, &MalformedManifestError{Record: i, Reason: `missing "key" field`}
		}
		if rec.Value == nil {
			return nil, &MalformedManifestError{Record: i, Reason: `missing "value" field`}
		}

		key, err := ParsePath(*rec.Key)
		if err != nil {
			return nil, &MalformedManifestError{Record: i, Reason: err.Error()}
		}

		candidates = append(candidates, Candidate{
			Key:    key,
			Value:  *rec.Value,
			Secure: rec.Secure,
			Record: i,
		})
	}

	return dedupe(candidates), nil
}

// ParseDotenv parses NAME=value lines into candidates rooted at base.
// Blank lines and #-comments are skipped. The variable name is lower-cased
// and becomes a path segment under base; the value is everything after the
// first '=' with symmetric surrounding quotes stripped. The format has no
// secure marker, so all candidates are plaintext.
func ParseDotenv(data []byte, base PathKey) ([]Candidate, error) {
	var candidates []Candidate

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.Index(line, "=")
		if idx < 0 {
			return nil, &MalformedManifestError{Line: lineNo, Reason: "missing '='"}
		}

		name := strings.TrimSpace(line[:idx])
		if name == "" {
			return nil, &MalformedManifestError{Line: lineNo, Reason: "missing variable name"}
		}

		value := stripQuotes(strings.TrimSpace(line[idx+1:]))

		key, err := ParsePath(base.Segment(strings.ToLower(name)))
		if err != nil {
			return nil, &MalformedManifestError{Line: lineNo, Reason: err.Error()}
		}

		candidates = append(candidates, Candidate{
			Key:   key,
			Value: value,
			Line:  lineNo,
			Var:   name,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, &MalformedManifestError{Record: -1, Reason: err.Error()}
	}

	return dedupe(candidates), nil
}

// stripQuotes removes one pair of symmetric surrounding quotes
func stripQuotes(value string) string {
	if len(value) < 2 {
		return value
	}
	if (value[0] == '"' && value[len(value)-1] == '"') ||
		(value[0] == '\'' && value[len(value)-1] == '\'') {
		return value[1 : len(value)-1]
	}
	return value
}

// dedupe collapses duplicate keys last-write-wins while keeping each key at
// its first position, so the plan stays in source order.
func dedupe(candidates []Candidate) []Candidate {
	seen := make(map[PathKey]int, len(candidates))
	out := make([]Candidate, 0, len(candidates))

	for _, c := range candidates {
		if i, ok := seen[c.Key]; ok {
			out[i] = c
			continue
		}
		seen[c.Key] = len(out)
		out = append(out, c)
	}

	return out
}
