package render

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/jungtin/notion-to-audio/core"
	"github.com/jungtin/notion-to-audio/core/output"
)

// JSONRenderer writes the page model as indented JSON.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Render writes <stem>.json into outputDir.
func (r *JSONRenderer) Render(_ context.Context, page core.Page, outputDir string) (string, error) {
	if page.Blocks == nil {
		page.Blocks = []core.Block{}
	}
	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return "", core.RenderError("render json "+page.ID, fmt.Errorf("marshaling JSON: %w", err))
	}
	path := filepath.Join(outputDir, page.FileStem()+r.Extension())
	if err := output.WriteAtomic(path, append(data, '\n')); err != nil {
		return "", core.RenderError("render json "+page.ID, err)
	}
	return path, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}
