package core

import (
	"errors"
	"io/fs"
	"testing"
)

func TestStageErrorMatchesKindAndCause(t *testing.T) {
	err := RenderError("render page", fs.ErrNotExist)

	if !errors.Is(err, ErrRender) {
		t.Fatalf("expected ErrRender, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
	if errors.Is(err, ErrMerge) {
		t.Fatalf("unexpected ErrMerge match")
	}
	var se *StageError
	if !errors.As(err, &se) || se.Op != "render page" {
		t.Fatalf("expected StageError with op, got %#v", se)
	}
}

func TestFileStem(t *testing.T) {
	cases := []struct {
		page Page
		want string
	}{
		{Page{Title: "My Notes!"}, "My_Notes_"},
		{Page{Title: "Plan", Ordinal: 7}, "007_Plan"},
		{Page{Title: "a/b", Disambiguator: "1f2e-3c"}, "a_b_1f2e_3c"},
		{Page{Title: "Ghi chú!"}, "Ghi_chú_"},
		{Page{Title: "Tiếng Việt"}, "Tiếng_Việt"},
		{Page{Title: "日本語 ノート"}, "日本語_ノート"},
		{Page{Title: "Bài 1"}, "Bài_1"},
		{Page{Title: "Bái 1"}, "Bái_1"},
	}
	for _, tc := range cases {
		if got := tc.page.FileStem(); got != tc.want {
			t.Errorf("FileStem(%+v) = %q, want %q", tc.page, got, tc.want)
		}
	}
}

func TestParseKindUnknown(t *testing.T) {
	if got := ParseKind("callout"); got != KindOther {
		t.Fatalf("ParseKind(callout) = %q", got)
	}
	if got := ParseKind("heading_2"); got != KindHeading2 || !got.IsHeading() {
		t.Fatalf("ParseKind(heading_2) = %q", got)
	}
}

func TestRawBlockUnmarshal(t *testing.T) {
	var b RawBlock
	data := []byte(`{"id":"b1","type":"quote","has_children":true,"quote":{"rich_text":[]}}`)
	if err := b.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if b.ID != "b1" || b.Type != "quote" || !b.HasChildren {
		t.Fatalf("unexpected block %+v", b)
	}
	if string(b.Payload) != `{"rich_text":[]}` {
		t.Fatalf("payload = %s", b.Payload)
	}
}
