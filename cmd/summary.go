package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/jungtin/notion-to-audio/core"
)

// printSummary renders one row per item followed by the totals.
func printSummary(out io.Writer, s core.Summary) {
	if len(s.Items) > 0 {
		fmt.Fprintln(out, renderSummary(s))
	}
	fmt.Fprintln(out, s.String())
	switch {
	case s.MergedPath != "":
		fmt.Fprintf(out, "✓ Combined: %s\n", s.MergedPath)
	case s.MergeErr != nil:
		fmt.Fprintf(out, "✗ Merge failed: %v\n", s.MergeErr)
	}
}

func renderSummary(s core.Summary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Item", "Status", "Result"})
	for _, it := range s.Items {
		status, result := "ok", it.Output
		if !it.OK() {
			status = "failed"
			result = "no output"
			if it.Err != nil {
				result = it.Err.Error()
			}
		}
		tw.AppendRow(table.Row{strconv.Itoa(it.Index + 1), it.Name, status, result})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, WidthMax: 80},
	})
	return tw.Render()
}
