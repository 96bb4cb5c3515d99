package prompts

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Front-matter keys for prompt timestamps, stored as integer milliseconds.
const (
	KeyCreated  = "promptvault-created"
	KeyModified = "promptvault-modified"
	KeyLastUsed = "promptvault-last-used"
)

const delimiter = "---"

// splitFrontMatter splits raw file text into the front-matter block (without
// delimiters) and the body that follows. ok is false when no complete block
// is present at the start of the text, in which case body is raw unchanged.
func splitFrontMatter(raw string) (block, body string, ok bool) {
	if !strings.HasPrefix(raw, delimiter+"\n") && raw != delimiter {
		return "", raw, false
	}

	rest := raw[len(delimiter):]
	rest = strings.TrimPrefix(rest, "\n")

	idx := strings.Index(rest, "\n"+delimiter)
	if idx == -1 {
		return "", raw, false
	}

	block = rest[:idx+1]
	body = rest[idx+1+len(delimiter):]
	body = strings.TrimPrefix(body, "\n")
	return block, body, true
}

// StripFrontMatter removes a leading front-matter block if present and
// returns the remaining body with leading whitespace trimmed. Text without
// a block is returned unchanged.
func StripFrontMatter(raw string) string {
	_, body, ok := splitFrontMatter(raw)
	if !ok {
		return raw
	}
	return strings.TrimLeft(body, " \t\r\n")
}

// ParseFile converts a prompt file's raw text into a UserPrompt. Missing
// timestamp fields default to zero.
func ParseFile(filePath, raw string) UserPrompt {
	p := UserPrompt{
		Title:   TitleFromPath(filePath),
		Content: StripFrontMatter(raw),
	}

	block, _, ok := splitFrontMatter(raw)
	if !ok {
		return p
	}

	var meta map[string]any
	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		return p
	}

	p.CreatedMs = toMillis(meta[KeyCreated])
	p.ModifiedMs = toMillis(meta[KeyModified])
	p.LastUsedMs = toMillis(meta[KeyLastUsed])
	return p
}

// toMillis coerces a decoded YAML value to int64 milliseconds.
func toMillis(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	case string:
		if ms, err := strconv.ParseInt(n, 10, 64); err == nil {
			return ms
		}
	}
	return 0
}

// EnsureTimestamps back-fills missing timestamp fields in raw's front-matter
// from p, creating the block if absent. Existing values and unrelated user
// keys are preserved, and the body text is never altered. changed reports
// whether the returned text differs from raw.
func EnsureTimestamps(raw string, p UserPrompt) (out string, changed bool) {
	block, body, ok := splitFrontMatter(raw)
	if !ok {
		body = raw
	}

	mapping := &yaml.Node{Kind: yaml.MappingNode}
	if ok {
		var doc yaml.Node
		if err := yaml.Unmarshal([]byte(block), &doc); err == nil &&
			len(doc.Content) > 0 && doc.Content[0].Kind == yaml.MappingNode {
			mapping = doc.Content[0]
		}
	}

	for _, field := range []struct {
		key string
		val int64
	}{
		{KeyCreated, p.CreatedMs},
		{KeyModified, p.ModifiedMs},
		{KeyLastUsed, p.LastUsedMs},
	} {
		if !hasKey(mapping, field.key) {
			appendInt(mapping, field.key, field.val)
			changed = true
		}
	}

	if !changed && ok {
		return raw, false
	}

	return renderDocument(mapping, body), true
}

// SetTimestamp sets a single timestamp field in raw's front-matter,
// overwriting any existing value and creating the block if absent.
func SetTimestamp(raw, key string, ms int64) string {
	block, body, ok := splitFrontMatter(raw)
	if !ok {
		body = raw
	}

	mapping := &yaml.Node{Kind: yaml.MappingNode}
	if ok {
		var doc yaml.Node
		if err := yaml.Unmarshal([]byte(block), &doc); err == nil &&
			len(doc.Content) > 0 && doc.Content[0].Kind == yaml.MappingNode {
			mapping = doc.Content[0]
		}
	}

	val := strconv.FormatInt(ms, 10)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = intNode(val)
			return renderDocument(mapping, body)
		}
	}

	appendInt(mapping, key, ms)
	return renderDocument(mapping, body)
}

// ReplaceBody swaps the body text of raw, leaving any front-matter block
// byte-for-byte intact.
func ReplaceBody(raw, body string) string {
	block, _, ok := splitFrontMatter(raw)
	if !ok {
		return body
	}

	var b strings.Builder
	b.WriteString(delimiter)
	b.WriteString("\n")
	b.WriteString(block)
	b.WriteString(delimiter)
	b.WriteString("\n")
	b.WriteString(body)
	return b.String()
}

func hasKey(mapping *yaml.Node, key string) bool {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return true
		}
	}
	return false
}

func appendInt(mapping *yaml.Node, key string, val int64) {
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		intNode(strconv.FormatInt(val, 10)),
	)
}

func intNode(val string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: val}
}

// renderDocument reassembles a full prompt file from its front-matter
// mapping and body text.
func renderDocument(mapping *yaml.Node, body string) string {
	encoded, err := yaml.Marshal(mapping)
	if err != nil {
		return body
	}

	var b strings.Builder
	b.WriteString(delimiter)
	b.WriteString("\n")
	b.Write(encoded)
	b.WriteString(delimiter)
	b.WriteString("\n")
	b.WriteString(body)
	return b.String()
}
