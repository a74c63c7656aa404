package repurpose

import (
	"encoding/json"
	"strings"
)

// Normalize extracts the JSON object spanning the first '{' and the last '}'
// of a model reply. When there is no such span, or it does not parse, the raw
// text is wrapped as {"content": raw, "platform": platform}. The second return
// value reports whether a JSON object was found.
func Normalize(raw string, platform Platform) (map[string]any, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")

	if start != -1 && end > start {
		var obj map[string]any
		if err := json.Unmarshal([]byte(raw[start:end+1]), &obj); err == nil && obj != nil {
			return obj, true
		}
	}

	return map[string]any{
		"content":  raw,
		"platform": string(platform),
	}, false
}
