package reporter

import (
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderTable renders rows with the rounded box style. Short rows are padded.
func RenderTable(data TableData) string {
	columns := len(data.Headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if data.Title != "" {
		tw.SetTitle(data.Title)
	}

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = data.Headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range data.Rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if slices.Contains(data.RightAligned, i) {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
