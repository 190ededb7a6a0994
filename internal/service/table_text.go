package service

import "strings"

// tableToText serializes a cell grid into an aligned, boxed text table:
// columns padded to the widest cell, rows separated by "+---+" lines.
func tableToText(grid [][]string) string {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return ""
	}

	widths := make([]int, len(grid[0]))
	for _, row := range grid {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var separator strings.Builder
	separator.WriteByte('+')
	for _, width := range widths {
		separator.WriteString(strings.Repeat("-", width+2))
		separator.WriteByte('+')
	}

	var b strings.Builder
	b.WriteString(separator.String())
	for _, row := range grid {
		b.WriteByte('\n')
		b.WriteByte('|')
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			b.WriteByte(' ')
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", widths[i]-len(cell)))
			b.WriteString(" |")
		}
		b.WriteByte('\n')
		b.WriteString(separator.String())
	}

	return b.String()
}

// parseTableText recovers the grid dimensions (rows, columns) from boxed
// table text produced by tableToText.
func parseTableText(text string) (rows, columns int) {
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		if strings.HasPrefix(line, "+") {
			if columns == 0 {
				columns = strings.Count(line, "+") - 1
			}
			continue
		}
		if strings.HasPrefix(line, "|") {
			rows++
		}
	}
	return rows, columns
}
