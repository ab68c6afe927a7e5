package diagfmt

import (
	"bytes"
	"unicode/utf8"

	"fortio.org/safecast"
)

// position is a 1-based line and rune column inside a file.
type position struct {
	Line uint32
	Col  uint32
}

// locate resolves a byte offset by scanning the content; FileSet keeps no line index.
func locate(content []byte, off uint32) (pos position, lineStart, lineEnd int) {
	o := min(int(off), len(content))
	lineStart = bytes.LastIndexByte(content[:o], '\n') + 1
	lineEnd = bytes.IndexByte(content[o:], '\n')
	if lineEnd < 0 {
		lineEnd = len(content)
	} else {
		lineEnd += o
	}
	line := bytes.Count(content[:lineStart], []byte{'\n'}) + 1
	col := utf8.RuneCount(content[lineStart:o]) + 1
	l, err := safecast.Conv[uint32](line)
	if err != nil {
		l = ^uint32(0)
	}
	c, err := safecast.Conv[uint32](col)
	if err != nil {
		c = ^uint32(0)
	}
	return position{Line: l, Col: c}, lineStart, lineEnd
}
