package queue

import "strings"

// board is the parsed auction sheet: one column per item, header in row 0.
// Columns are kept in sheet order, including blank or duplicate headers and
// cells to the right of the last header, so rendering never drops data a
// human put into the sheet.
type board struct {
	items []string
	lists [][]string
}

// parseBoard reads a raw matrix. The board is as wide as the widest row.
// Header cells are trimmed. Queue cells of addressable columns are trimmed
// and compacted: blank cells inside a column are dropped. Other columns
// keep their cells verbatim, row by row.
func parseBoard(rows [][]string) *board {
	b := &board{}
	if len(rows) == 0 {
		return b
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	b.items = make([]string, width)
	b.lists = make([][]string, width)
	for j := 0; j < width && j < len(rows[0]); j++ {
		b.items[j] = strings.TrimSpace(rows[0][j])
	}

	for j := 0; j < width; j++ {
		keep := b.addressable(j)
		last := 0
		for i, r := range rows[1:] {
			v := ""
			if j < len(r) {
				v = r[j]
			}
			if keep {
				if v = strings.TrimSpace(v); v != "" {
					b.lists[j] = append(b.lists[j], v)
				}
				continue
			}
			b.lists[j] = append(b.lists[j], v)
			if v != "" {
				last = i + 1
			}
		}
		if !keep {
			b.lists[j] = b.lists[j][:last]
		}
	}
	return b
}

// addressable reports whether column j is the first column of a named item.
// Only addressable columns are ever changed by queue operations.
func (b *board) addressable(j int) bool {
	return b.items[j] != "" && b.index(b.items[j]) == j
}

// render produces a rectangular matrix: 1 + longest column rows, one cell
// per item in every row, empty strings padding short columns.
func (b *board) render() [][]string {
	height := 0
	for _, l := range b.lists {
		height = max(height, len(l))
	}

	rows := make([][]string, height+1)
	rows[0] = append([]string{}, b.items...)
	for i := 1; i <= height; i++ {
		row := make([]string, len(b.items))
		for j, l := range b.lists {
			if i-1 < len(l) {
				row[j] = l[i-1]
			}
		}
		rows[i] = row
	}
	return rows
}

// index returns the column of item, or -1. Blank headers never match.
func (b *board) index(item string) int {
	if item == "" {
		return -1
	}
	for j, name := range b.items {
		if name == item {
			return j
		}
	}
	return -1
}

// names returns the non-blank item names in header order. A duplicated
// header is listed once.
func (b *board) names() []string {
	out := make([]string, 0, len(b.items))
	for j, name := range b.items {
		if b.addressable(j) {
			out = append(out, name)
		}
	}
	return out
}

// position returns the 1-based position of nick in column j, or 0.
func (b *board) position(j int, nick string) int {
	for i, v := range b.lists[j] {
		if v == nick {
			return i + 1
		}
	}
	return 0
}

// remove drops every occurrence of nick from column j and reports whether
// anything was removed.
func (b *board) remove(j int, nick string) bool {
	l := b.lists[j]
	out := l[:0]
	for _, v := range l {
		if v != nick {
			out = append(out, v)
		}
	}
	removed := len(out) != len(l)
	b.lists[j] = out
	return removed
}

// enqueue moves nick to the tail of column j. It returns the new position
// and whether nick was already queued.
func (b *board) enqueue(j int, nick string) (int, bool) {
	requeued := b.remove(j, nick)
	b.lists[j] = append(b.lists[j], nick)
	return len(b.lists[j]), requeued
}

// addItem appends an empty column.
func (b *board) addItem(name string) {
	b.items = append(b.items, name)
	b.lists = append(b.lists, nil)
}

// removeItem drops column j with its entries.
func (b *board) removeItem(j int) {
	b.items = append(b.items[:j], b.items[j+1:]...)
	b.lists = append(b.lists[:j], b.lists[j+1:]...)
}

// rename rewrites oldNick to newNick in place and then removes later
// duplicates of newNick in each column, keeping the earliest. It returns the
// number of rewritten cells and whether the board changed.
func (b *board) rename(oldNick, newNick string) (int, bool) {
	rewritten := 0
	changed := false
	for j, l := range b.lists {
		if !b.addressable(j) {
			continue
		}
		seen := false
		out := l[:0]
		for _, v := range l {
			if v == oldNick {
				v = newNick
				rewritten++
				changed = true
			}
			if v == newNick {
				if seen {
					changed = true
					continue
				}
				seen = true
			}
			out = append(out, v)
		}
		b.lists[j] = out
	}
	return rewritten, changed
}
