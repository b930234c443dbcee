package analyze

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ResponseKind tags what the provider actually returned. Only a
// structured narrative passing the field checks is ever promoted to a
// ValueNarrative; the other tags force the fallback path.
type ResponseKind int

const (
	// ResponseStructured - a JSON object passing schema validation
	ResponseStructured ResponseKind = iota
	// ResponseRawText - free-form text with no JSON object in it
	ResponseRawText
	// ResponseInvalid - JSON was found but failed schema validation
	ResponseInvalid
)

// StructuredNarrative is the response schema the prompt asks for
type StructuredNarrative struct {
	Summary      string   `json:"summary"`
	KeyValues    []string `json:"key_values"`
	Achievements []string `json:"achievements"`
	NextSteps    string   `json:"next_steps"`
}

// ParsedResponse is the tagged result of interpreting provider output
type ParsedResponse struct {
	Kind      ResponseKind
	Narrative StructuredNarrative
	Raw       string
	Err       error
}

// Sanity bounds: a response outside these is treated as invalid rather
// than trusted into the report.
const (
	maxSummaryLen  = 2000
	maxBulletLen   = 1000
	maxBulletCount = 20
)

// ParseResponse interprets raw provider output. Providers in JSON mode
// should return a bare object, but fenced or prefixed output still
// occurs, so the first balanced JSON object is extracted before
// unmarshaling.
func ParseResponse(raw string) ParsedResponse {
	jsonText, ok := extractJSONObject(raw)
	if !ok {
		return ParsedResponse{Kind: ResponseRawText, Raw: raw}
	}

	var n StructuredNarrative
	if err := json.Unmarshal([]byte(jsonText), &n); err != nil {
		return ParsedResponse{Kind: ResponseInvalid, Raw: raw, Err: fmt.Errorf("invalid json: %w", err)}
	}

	if err := validate(&n); err != nil {
		return ParsedResponse{Kind: ResponseInvalid, Raw: raw, Err: err}
	}
	return ParsedResponse{Kind: ResponseStructured, Narrative: n}
}

// validate applies the field-presence and sanity checks that gate
// promotion to a ValueNarrative
func validate(n *StructuredNarrative) error {
	n.Summary = strings.TrimSpace(n.Summary)
	if n.Summary == "" {
		return fmt.Errorf("missing required field: summary")
	}
	if len(n.Summary) > maxSummaryLen {
		return fmt.Errorf("summary exceeds %d characters", maxSummaryLen)
	}
	if len(n.KeyValues) == 0 && len(n.Achievements) == 0 {
		return fmt.Errorf("missing required field: key_values or achievements")
	}
	if len(n.KeyValues) > maxBulletCount || len(n.Achievements) > maxBulletCount {
		return fmt.Errorf("bullet list exceeds %d entries", maxBulletCount)
	}

	n.KeyValues = cleanBullets(n.KeyValues)
	n.Achievements = cleanBullets(n.Achievements)
	n.NextSteps = strings.TrimSpace(n.NextSteps)
	if len(n.KeyValues) == 0 && len(n.Achievements) == 0 {
		return fmt.Errorf("bullet lists contain no usable entries")
	}
	return nil
}

func cleanBullets(in []string) []string {
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || len(s) > maxBulletLen {
			continue
		}
		out = append(out, s)
	}
	return out
}

// extractJSONObject returns the first balanced {...} span in s,
// ignoring braces inside JSON strings
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
