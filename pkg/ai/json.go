package ai

import "strings"

// ExtractJSON strips markdown code fences and any prose around the
// outermost JSON object or array of a model response.
func ExtractJSON(content string) string {
	content = strings.TrimSpace(content)

	// Check if wrapped in markdown code block
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}
	content = strings.TrimSpace(content)

	if content == "" || content[0] == '{' || content[0] == '[' {
		return content
	}

	start := strings.IndexAny(content, "{[")
	if start == -1 {
		return content
	}
	closer := byte('}')
	if content[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(content, closer)
	if end <= start {
		return content
	}
	return content[start : end+1]
}
