package render

import (
	"fmt"
	"strings"

	"github.com/jungtin/notion-to-audio/core"
)

// Formats lists the accepted output format names.
var Formats = []string{"txt", "pdf", "md", "json"}

// ForFormat selects the renderer for a format name. fonts is only
// consulted for pdf.
func ForFormat(format string, fonts *FontManager) (core.Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "txt", "text":
		return NewTextRenderer(), nil
	case "pdf":
		if fonts == nil {
			return nil, core.ConfigurationError("select renderer", fmt.Errorf("pdf output requires a font manager"))
		}
		return NewPDFRenderer(fonts), nil
	case "md", "markdown":
		return NewMarkdownRenderer(), nil
	case "json":
		return NewJSONRenderer(), nil
	default:
		return nil, core.ConfigurationError("select renderer", fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(Formats, ", ")))
	}
}
