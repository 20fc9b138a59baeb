package merge

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/jungtin/notion-to-audio/core"
	"github.com/jungtin/notion-to-audio/core/output"
)

// JSONMerger combines JSON documents into one array. Inputs that are
// themselves arrays are spliced in, so merging merged files stays flat.
type JSONMerger struct{}

// NewJSONMerger creates a JSONMerger.
func NewJSONMerger() *JSONMerger {
	return &JSONMerger{}
}

// Merge writes a JSON array of every input document to outputPath.
func (m *JSONMerger) Merge(paths []string, outputPath string) (string, error) {
	contents, err := readAll(paths)
	if err != nil {
		return "", err
	}
	items := make([]json.RawMessage, 0, len(contents))
	for i, c := range contents {
		var arr []json.RawMessage
		if err := json.Unmarshal(c, &arr); err == nil {
			items = append(items, arr...)
			continue
		}
		if !json.Valid(c) {
			return "", core.MergeError("merge json", fmt.Errorf("%s is not valid JSON", filepath.Base(paths[i])))
		}
		items = append(items, json.RawMessage(c))
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", core.MergeError("merge json", err)
	}
	if err := output.WriteAtomic(outputPath, append(data, '\n')); err != nil {
		return "", core.MergeError("merge json", err)
	}
	return outputPath, nil
}
