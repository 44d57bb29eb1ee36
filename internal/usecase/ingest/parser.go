package ingest

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// actionItemsPrompt asks LeMUR for a machine-readable list of action items.
// The model is told to answer with bare JSON so the strict parser usually
// succeeds on the first try.
const actionItemsPrompt = `Extract all action items from this meeting transcript. ` +
	`For each action item, identify the task text, who it is assigned to, any mentioned deadline, ` +
	`and the approximate time in the meeting (in seconds) when it was discussed. ` +
	`Respond with ONLY a JSON array in this exact format, with no preamble and no explanation: ` +
	`[{"text": "...", "assignee": "...", "deadline": "...", "timeIndex": 0}]. ` +
	`If a field is unknown, use null. If there are no action items, respond with [].`

// ActionItemDraft is one extracted action item before persistence. Assignee
// and Deadline are pointers because the model is allowed to answer null.
type ActionItemDraft struct {
	Text      string  `json:"text"`
	Assignee  *string `json:"assignee"`
	Deadline  *string `json:"deadline"`
	TimeIndex int     `json:"timeIndex"`
}

// parseFunc attempts one extraction strategy. ok reports whether the
// strategy applied, an applied strategy may still yield zero items.
type parseFunc func(raw string) (items []ActionItemDraft, ok bool)

// Parser recovers action items from free-form model output. Strategies are
// tried in order, the first one that applies wins.
type Parser struct {
	strategies []parseFunc
}

// NewParser creates a Parser with the default strategy chain:
// strict JSON first, then pattern recovery for malformed output.
func NewParser() *Parser {
	return &Parser{
		strategies: []parseFunc{
			parseStrictJSON,
			parsePatterns,
		},
	}
}

// ParseActionItems extracts action items from a raw model response. A
// response no strategy can read yields an empty result, never an error:
// action items are a best-effort category.
func (p *Parser) ParseActionItems(raw string) []ActionItemDraft {
	for _, parse := range p.strategies {
		if items, ok := parse(raw); ok {
			return items
		}
	}
	return nil
}

// parseStrictJSON handles well-formed answers: a JSON array, or a single
// JSON object which is wrapped into a one-element list.
func parseStrictJSON(raw string) ([]ActionItemDraft, bool) {
	content := extractJSON(raw)
	if content == "" {
		return nil, false
	}

	var items []ActionItemDraft
	if err := json.Unmarshal([]byte(content), &items); err == nil {
		return items, true
	}

	var single ActionItemDraft
	if err := json.Unmarshal([]byte(content), &single); err == nil && strings.HasPrefix(content, "{") {
		return []ActionItemDraft{single}, true
	}

	return nil, false
}

// actionItemPattern matches the fields of one action item object inside
// otherwise unparseable output (trailing commas, commentary between items).
var actionItemPattern = regexp.MustCompile(
	`"text"\s*:\s*"([^"]+)"[^}]*"assignee"\s*:\s*(?:"([^"]*)"|null)[^}]*"deadline"\s*:\s*(?:"([^"]*)"|null)[^}]*"timeIndex"\s*:\s*(\d+)`)

// parsePatterns salvages individual items from malformed JSON.
func parsePatterns(raw string) ([]ActionItemDraft, bool) {
	matches := actionItemPattern.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return nil, false
	}

	items := make([]ActionItemDraft, 0, len(matches))
	for _, m := range matches {
		item := ActionItemDraft{Text: m[1]}
		if m[2] != "" {
			assignee := m[2]
			item.Assignee = &assignee
		}
		if m[3] != "" {
			deadline := m[3]
			item.Deadline = &deadline
		}
		if n, err := strconv.Atoi(m[4]); err == nil {
			item.TimeIndex = n
		}
		items = append(items, item)
	}
	return items, true
}

// extractJSON strips markdown code fences the model sometimes wraps its
// answer in.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}
