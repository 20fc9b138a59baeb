package extract

import "github.com/jungtin/notion-to-audio/core"

// frame is one block waiting to be emitted at a given depth.
type frame struct {
	block core.RawBlock
	depth int
}

// worklist is a LIFO stack of frames with a visited set for expansions.
// Children are pushed in reverse so that pops yield document order.
type worklist struct {
	items    []frame
	expanded map[string]bool
}

func newWorklist() *worklist {
	return &worklist{expanded: make(map[string]bool)}
}

// pushChildren stacks children at depth so the first child pops first.
func (w *worklist) pushChildren(children []core.RawBlock, depth int) {
	for i := len(children) - 1; i >= 0; i-- {
		w.items = append(w.items, frame{block: children[i], depth: depth})
	}
}

func (w *worklist) hasNext() bool {
	return len(w.items) > 0
}

func (w *worklist) pop() frame {
	last := len(w.items) - 1
	f := w.items[last]
	w.items = w.items[:last]
	return f
}

// markExpanded records id and reports whether it was new.
func (w *worklist) markExpanded(id string) bool {
	if w.expanded[id] {
		return false
	}
	w.expanded[id] = true
	return true
}
