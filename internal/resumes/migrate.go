package resumes

import (
	"fmt"
	"strings"
)

// CurrentSchemaVersion is the payload shape this build writes.
const CurrentSchemaVersion = 3

// UpgradeFunc converts a payload at version v into version v+1. It must be
// deterministic and must not retain or mutate its input.
type UpgradeFunc func(Payload) (Payload, error)

// Guard upgrades payloads written by older builds on the decode path.
type Guard struct {
	current  int
	upgrades map[int]UpgradeFunc
}

// NewGuard builds a Guard that targets current; upgrades is keyed by the source version.
func NewGuard(current int, upgrades map[int]UpgradeFunc) *Guard {
	steps := make(map[int]UpgradeFunc, len(upgrades))
	for v, fn := range upgrades {
		steps[v] = fn
	}
	return &Guard{current: current, upgrades: steps}
}

// DefaultGuard returns the Guard for CurrentSchemaVersion with every shipped upgrade.
func DefaultGuard() *Guard {
	return NewGuard(CurrentSchemaVersion, map[int]UpgradeFunc{
		1: upgradeV1ToV2,
		2: upgradeV2ToV3,
	})
}

// Current reports the version the Guard upgrades to.
func (g *Guard) Current() int {
	return g.current
}

// Migrate applies upgrades until payload reaches the current version. It returns
// the upgraded payload, its version and the number of steps applied. A payload
// already at the current version is returned as is with zero steps.
func (g *Guard) Migrate(version int, payload Payload) (Payload, int, int, error) {
	if version > g.current {
		return nil, version, 0, fmt.Errorf("%w: record is v%d, this build supports up to v%d", ErrUnsupportedSchema, version, g.current)
	}
	if version < 1 {
		return nil, version, 0, fmt.Errorf("%w: invalid schemaVersion %d", ErrSchema, version)
	}
	if version == g.current {
		return payload, version, 0, nil
	}

	out := payload
	steps := 0
	for v := version; v < g.current; v++ {
		fn, ok := g.upgrades[v]
		if !ok {
			return nil, version, 0, fmt.Errorf("%w: no upgrade registered from v%d", ErrSchema, v)
		}
		next, err := fn(clonePayload(out))
		if err != nil {
			return nil, version, 0, fmt.Errorf("%w: upgrade v%d to v%d: %v", ErrSchema, v, v+1, err)
		}
		if next == nil {
			return nil, version, 0, fmt.Errorf("%w: upgrade v%d to v%d returned no payload", ErrSchema, v, v+1)
		}
		out = next
		steps++
	}
	return out, g.current, steps, nil
}

// upgradeV1ToV2 renames experiences to experience and splits the skills string.
func upgradeV1ToV2(p Payload) (Payload, error) {
	if exps, ok := p["experiences"]; ok {
		if _, exists := p["experience"]; !exists {
			p["experience"] = exps
		}
		delete(p, "experiences")
	}
	if raw, ok := p["skills"].(string); ok {
		p["skills"] = splitSkills(raw)
	}
	return p, nil
}

// upgradeV2ToV3 folds linkedin/website into links and derives experience highlights.
func upgradeV2ToV3(p Payload) (Payload, error) {
	if info, ok := p["personalInfo"].(map[string]any); ok {
		var links []any
		seen := map[string]bool{}
		if existing, ok := info["links"].([]any); ok {
			for _, l := range existing {
				if s, ok := l.(string); ok {
					seen[s] = true
				}
				links = append(links, l)
			}
		}
		for _, key := range []string{"linkedin", "website"} {
			if s, ok := info[key].(string); ok {
				s = strings.TrimSpace(s)
				if s != "" && !seen[s] {
					links = append(links, s)
					seen[s] = true
				}
			}
			delete(info, key)
		}
		if links == nil {
			links = []any{}
		}
		info["links"] = links
	}

	if exps, ok := p["experience"].([]any); ok {
		for _, item := range exps {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if _, has := entry["highlights"]; has {
				continue
			}
			desc, _ := entry["description"].(string)
			entry["highlights"] = splitHighlights(desc)
		}
	}
	return p, nil
}

func splitSkills(raw string) []any {
	out := []any{}
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func splitHighlights(desc string) []any {
	out := []any{}
	for _, line := range strings.Split(desc, "\n") {
		for _, part := range strings.Split(line, "•") {
			s := strings.TrimSpace(part)
			s = strings.TrimSpace(strings.TrimLeft(s, "-*"))
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
