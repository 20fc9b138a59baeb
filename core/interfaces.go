// Package core defines the pipeline types and stage interfaces.
// Each stage of the pipeline is a clean, testable interface.
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Kind is the normalized type tag of a content block.
type Kind string

const (
	KindHeading1     Kind = "heading_1"
	KindHeading2     Kind = "heading_2"
	KindHeading3     Kind = "heading_3"
	KindParagraph    Kind = "paragraph"
	KindBulleted     Kind = "bulleted_list_item"
	KindNumbered     Kind = "numbered_list_item"
	KindToggle       Kind = "toggle"
	KindQuote        Kind = "quote"
	KindCode         Kind = "code"
	KindToDo         Kind = "to_do"
	KindChildPage    Kind = "child_page"
	KindOther        Kind = "other"
	untitledFallback      = "Untitled"
)

var knownKinds = map[string]Kind{
	string(KindHeading1):  KindHeading1,
	string(KindHeading2):  KindHeading2,
	string(KindHeading3):  KindHeading3,
	string(KindParagraph): KindParagraph,
	string(KindBulleted):  KindBulleted,
	string(KindNumbered):  KindNumbered,
	string(KindToggle):    KindToggle,
	string(KindQuote):     KindQuote,
	string(KindCode):      KindCode,
	string(KindToDo):      KindToDo,
	string(KindChildPage): KindChildPage,
}

// ParseKind maps a source type tag to a Kind. Unknown tags become KindOther.
func ParseKind(tag string) Kind {
	if k, ok := knownKinds[tag]; ok {
		return k
	}
	return KindOther
}

// IsHeading reports whether k is one of the three heading levels.
func (k Kind) IsHeading() bool {
	return k == KindHeading1 || k == KindHeading2 || k == KindHeading3
}

// IsListItem reports whether k renders as a contiguous list line.
func (k Kind) IsListItem() bool {
	return k == KindBulleted || k == KindNumbered
}

// Block is one content node extracted from a page.
type Block struct {
	Kind  Kind   `json:"kind"`
	Tag   string `json:"tag"` // raw source type, used for labels of unrecognized kinds
	Text  string `json:"text"`
	Depth int    `json:"depth"`
}

// Page is one top-level document with its blocks in pre-order.
type Page struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Blocks []Block `json:"blocks"`

	// Ordinal, when positive, prefixes the file name with a zero-padded number.
	Ordinal int `json:"-"`
	// Disambiguator, when set, is appended to the file name.
	Disambiguator string `json:"-"`
}

// FileStem returns the output file name (without extension) for the page.
func (p Page) FileStem() string {
	stem := Sanitize(p.Title)
	if p.Ordinal > 0 {
		stem = fmt.Sprintf("%03d_%s", p.Ordinal, stem)
	}
	if p.Disambiguator != "" {
		stem += "_" + Sanitize(p.Disambiguator)
	}
	return stem
}

// TitleOrDefault returns title, or the "Untitled" placeholder when it is blank.
func TitleOrDefault(title string) string {
	if strings.TrimSpace(title) == "" {
		return untitledFallback
	}
	return title
}

// Sanitize replaces every character that is not a letter or number, in
// any script, with an underscore.
func Sanitize(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if unicode.IsLetter(ch) || unicode.IsNumber(ch) {
			b.WriteRune(ch)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Span is one piece of rich text as returned by the source API.
type Span struct {
	PlainText string `json:"plain_text"`
}

// RawBlock is a child node as listed by the source, before text extraction.
type RawBlock struct {
	ID          string
	Type        string
	HasChildren bool
	// Payload is the type-specific object stored under the key named by Type.
	Payload json.RawMessage
}

// UnmarshalJSON reads the common block fields and keeps the payload keyed by type.
func (b *RawBlock) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var head struct {
		ID          string `json:"id"`
		Type        string `json:"type"`
		HasChildren bool   `json:"has_children"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	b.ID = head.ID
	b.Type = head.Type
	b.HasChildren = head.HasChildren
	b.Payload = fields[head.Type]
	return nil
}

// PageDescriptor is one database row describing a page.
type PageDescriptor struct {
	ID          string                     `json:"id"`
	CreatedTime time.Time                  `json:"created_time"`
	Properties  map[string]json.RawMessage `json:"properties"`
}

// Source lists pages and block children from the document database.
type Source interface {
	// QueryDatabase returns every row of the database ordered by creation time.
	QueryDatabase(ctx context.Context, databaseID string) ([]PageDescriptor, error)
	// ListChildren returns all immediate children of a block, following
	// continuation cursors until the source reports completion.
	ListChildren(ctx context.Context, blockID string) ([]RawBlock, error)
}

// Renderer writes a page to a single file in a directory.
type Renderer interface {
	Render(ctx context.Context, page Page, outputDir string) (string, error)
	// Extension returns the file extension for this renderer (e.g. ".txt", ".pdf").
	Extension() string
}

// Merger combines rendered files, in the given order, into one artifact.
type Merger interface {
	Merge(paths []string, outputPath string) (string, error)
}

// Completer sends one prompt to a generative-text model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Segment is one synthesized piece of speech.
type Segment struct {
	Graphemes string
	Phonemes  string
	Samples   []int
}

// Synthesizer turns text into speech segments. The text is split on
// splitPattern and each non-empty piece yields one Segment.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, splitPattern string) ([]Segment, error)
	SampleRate() int
}
