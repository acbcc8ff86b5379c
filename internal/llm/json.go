package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const fixJSONSystem = "You repair malformed JSON. Reply with the corrected JSON only, no commentary."

// GenerateJSON asks g for a JSON reply and decodes it into dst. A reply that
// does not parse gets one repair request; if that also fails the error wraps
// ErrExternalService.
func GenerateJSON(ctx context.Context, g Generator, prompt, system string, dst any) error {
	raw, err := g.Generate(ctx, prompt, system)
	if err != nil {
		return asExternal(err)
	}
	if err := decodeReply(raw, dst); err == nil {
		return nil
	}

	fixed, err := g.Generate(ctx, "Fix this so it is valid JSON:\n"+raw, fixJSONSystem)
	if err != nil {
		return asExternal(err)
	}
	if err := decodeReply(fixed, dst); err != nil {
		return fmt.Errorf("%w: model returned malformed JSON: %v", ErrExternalService, err)
	}
	return nil
}

// ExtractJSON trims code fences and prose around the outermost JSON object or array.
func ExtractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```JSON")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end < start {
		return s[start:]
	}
	return s[start : end+1]
}

func decodeReply(raw string, dst any) error {
	body := ExtractJSON(raw)
	if body == "" {
		return errors.New("empty reply")
	}
	return json.Unmarshal([]byte(body), dst)
}

func asExternal(err error) error {
	if errors.Is(err, ErrExternalService) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrExternalService, err)
}
