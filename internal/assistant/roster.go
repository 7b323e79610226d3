package assistant

import "strings"

// matchRoster resolves a model answer to a roster name. An exact
// case-insensitive match wins; otherwise the answer must mention exactly one
// member ("I'd go with Fito Ananda.").
func matchRoster(answer string, roster []TeamMember) (string, bool) {
	normalized := strings.ToLower(strings.Trim(strings.TrimSpace(answer), "\"'`*."))
	if normalized == "" {
		return "", false
	}

	for _, m := range roster {
		if strings.ToLower(strings.TrimSpace(m.Name)) == normalized {
			return m.Name, true
		}
	}

	var found []string
	for _, m := range roster {
		name := strings.ToLower(strings.TrimSpace(m.Name))
		if name != "" && strings.Contains(normalized, name) {
			found = append(found, m.Name)
		}
	}
	if len(found) == 1 {
		return found[0], true
	}
	return "", false
}
