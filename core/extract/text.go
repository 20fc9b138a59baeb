package extract

import (
	"encoding/json"
	"strings"

	"github.com/jungtin/notion-to-audio/core"
)

// payload holds the text-bearing fields a block type may carry.
// Pointers distinguish an absent field from an empty one.
type payload struct {
	RichText *[]core.Span `json:"rich_text"`
	Text     *[]core.Span `json:"text"`
	Title    *string      `json:"title"`
}

// blockText applies the text rule: rich_text spans, else text spans, else
// the title of a child page, else "". Malformed payloads yield "".
func blockText(b core.RawBlock) string {
	if len(b.Payload) == 0 {
		return ""
	}
	var p payload
	if err := json.Unmarshal(b.Payload, &p); err != nil {
		return ""
	}
	switch {
	case p.RichText != nil:
		return joinSpans(*p.RichText)
	case p.Text != nil:
		return joinSpans(*p.Text)
	case b.Type == string(core.KindChildPage) && p.Title != nil:
		return *p.Title
	}
	return ""
}

func joinSpans(spans []core.Span) string {
	parts := make([]string, len(spans))
	for i, s := range spans {
		parts[i] = s.PlainText
	}
	return strings.Join(parts, " ")
}
