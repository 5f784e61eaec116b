package printer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Text alignment
const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

// DefaultWidth is the character width of 80mm paper.
const DefaultWidth = 48

// Document builds a fixed-width plain-text receipt.
type Document struct {
	buf   bytes.Buffer
	width int // print width in characters (32 for 58mm paper, 48 for 80mm)
	align int
}

// NewDocument creates a new document with the given character width.
func NewDocument(charWidth int) *Document {
	if charWidth <= 0 {
		charWidth = DefaultWidth
	}
	return &Document{width: charWidth}
}

// Width returns the character width of the document.
func (d *Document) Width() int {
	return d.width
}

// SetAlign sets alignment for subsequent Text lines.
func (d *Document) SetAlign(align int) *Document {
	d.align = align
	return d
}

// LineFeed writes an empty line.
func (d *Document) LineFeed() *Document {
	d.buf.WriteByte('\n')
	return d
}

// Text writes a line of text using the current alignment. Long lines are truncated.
func (d *Document) Text(s string) *Document {
	s = truncate(s, d.width)
	pad := d.width - runeLen(s)
	switch d.align {
	case AlignCenter:
		d.buf.WriteString(strings.Repeat(" ", pad/2))
	case AlignRight:
		d.buf.WriteString(strings.Repeat(" ", pad))
	}
	d.buf.WriteString(s)
	d.buf.WriteByte('\n')
	return d
}

// TextF writes a formatted line of text.
func (d *Document) TextF(format string, args ...interface{}) *Document {
	return d.Text(fmt.Sprintf(format, args...))
}

// Separator prints a full-width rule, e.g. "************".
func (d *Document) Separator(char rune) *Document {
	d.buf.WriteString(strings.Repeat(string(char), d.width))
	d.buf.WriteByte('\n')
	return d
}

// KeyValue prints a left-aligned key and right-aligned value on the same line.
// Example: "Total Amount:              ₦1,900.00"
func (d *Document) KeyValue(key, value string) *Document {
	spaces := d.width - runeLen(key) - runeLen(value)
	if spaces < 1 {
		key = truncate(key, d.width-runeLen(value)-1)
		spaces = 1
	}
	d.buf.WriteString(key)
	d.buf.WriteString(strings.Repeat(" ", spaces))
	d.buf.WriteString(value)
	d.buf.WriteByte('\n')
	return d
}

// Row prints cells into columns whose widths are given as fractions of the
// document width. The first column is left aligned, the last right aligned and
// the rest centered.
func (d *Document) Row(fractions []float64, cells ...string) *Document {
	widths := d.columnWidths(fractions)
	var line strings.Builder
	for i, cell := range cells {
		if i >= len(widths) {
			break
		}
		w := widths[i]
		cell = truncate(cell, w)
		pad := w - runeLen(cell)
		switch {
		case i == 0:
			line.WriteString(cell)
			line.WriteString(strings.Repeat(" ", pad))
		case i == len(widths)-1:
			line.WriteString(strings.Repeat(" ", pad))
			line.WriteString(cell)
		default:
			line.WriteString(strings.Repeat(" ", pad/2))
			line.WriteString(cell)
			line.WriteString(strings.Repeat(" ", pad-pad/2))
		}
	}
	d.buf.WriteString(strings.TrimRight(line.String(), " "))
	d.buf.WriteByte('\n')
	return d
}

func (d *Document) columnWidths(fractions []float64) []int {
	widths := make([]int, len(fractions))
	used := 0
	for i, f := range fractions {
		widths[i] = int(f * float64(d.width))
		used += widths[i]
	}
	if len(widths) > 0 {
		widths[0] += d.width - used
	}
	return widths
}

// Bytes returns the accumulated document.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

// String returns the accumulated document as text.
func (d *Document) String() string {
	return d.buf.String()
}

// Reset clears the buffer.
func (d *Document) Reset() *Document {
	d.buf.Reset()
	d.align = AlignLeft
	return d
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if runeLen(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
