// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package mdtree

import (
	"strconv"
	"strings"
)

// Line recognizers.
// Every function in this file operates on a single preprocessed line
// with the container prefixes already removed.
// None of them allocate.

// maxStartDigits is the longest ordered list number accepted.
const maxStartDigits = 9

// leadingSpaces returns the number of spaces at the start of line.
func leadingSpaces(line string) int {
	n := 0
	for n < len(line) && line[n] == ' ' {
		n++
	}
	return n
}

func isBlankLine(line string) bool {
	return leadingSpaces(line) == len(line)
}

// trimIndent removes up to three leading spaces from line.
// ok is false if line is indented by four or more spaces.
func trimIndent(line string) (rest string, ok bool) {
	n := leadingSpaces(line)
	if n > 3 {
		return line, false
	}
	return line[n:], true
}

// isThematicBreak reports whether the line is a horizontal rule:
// three or more matching '-', '_', or '*' characters,
// optionally separated by spaces.
func isThematicBreak(line string) bool {
	line, ok := trimIndent(line)
	if !ok {
		return false
	}
	n := 0
	var want byte
	for i := 0; i < len(line); i++ {
		switch b := line[i]; b {
		case '-', '_', '*':
			if n == 0 {
				want = b
			} else if b != want {
				return false
			}
			n++
		case ' ':
			// Ignore
		default:
			return false
		}
	}
	return n >= 3
}

// blockQuotePrefix returns the end of the block quote marker
// at the start of line, including at most one following space,
// or -1 if the line does not begin with the marker.
func blockQuotePrefix(line string) (end int) {
	indent := leadingSpaces(line)
	if indent > 3 || indent >= len(line) || line[indent] != '>' {
		return -1
	}
	end = indent + 1
	if end < len(line) && line[end] == ' ' {
		end++
	}
	return end
}

type atxHeader struct {
	level   int // 1-6
	content string
}

// parseATXHeader attempts to parse the line as an ATX header.
// The level is zero if the line is not an ATX header.
func parseATXHeader(line string) atxHeader {
	line, ok := trimIndent(line)
	if !ok {
		return atxHeader{}
	}
	var h atxHeader
	for h.level < len(line) && line[h.level] == '#' {
		h.level++
	}
	if h.level == 0 || h.level > 6 {
		return atxHeader{}
	}
	i := h.level
	if i >= len(line) {
		return h
	}
	if line[i] != ' ' {
		return atxHeader{}
	}
	content := strings.Trim(line[i:], " ")

	// An optional closing sequence of '#' must be preceded by a space.
	end := len(content)
	for end > 0 && content[end-1] == '#' {
		end--
	}
	switch {
	case end == 0:
		content = ""
	case end < len(content) && content[end-1] == ' ':
		content = strings.TrimRight(content[:end], " ")
	}
	h.content = content
	return h
}

// setextUnderline returns the header level of a setext underline
// ("=" for level 1, "-" for level 2) or zero if the line is not one.
func setextUnderline(line string) int {
	line, ok := trimIndent(line)
	if !ok || line == "" {
		return 0
	}
	c := line[0]
	if c != '=' && c != '-' {
		return 0
	}
	i := 1
	for i < len(line) && line[i] == c {
		i++
	}
	if !isBlankLine(line[i:]) {
		return 0
	}
	if c == '=' {
		return 1
	}
	return 2
}

// setextText returns the header text of a line
// that could precede a setext underline.
func setextText(line string) (text string, ok bool) {
	line, ok = trimIndent(line)
	if !ok || isBlankLine(line) {
		return "", false
	}
	return strings.TrimRight(line, " "), true
}

type codeFence struct {
	indent int
	char   byte
	n      int
	info   string
}

// parseCodeFence attempts to parse an opening code fence:
// three or more backticks or tildes followed by an optional info string.
// The info string may not contain a backtick.
func parseCodeFence(line string) (f codeFence, ok bool) {
	f.indent = leadingSpaces(line)
	if f.indent > 3 || f.indent >= len(line) {
		return codeFence{}, false
	}
	f.char = line[f.indent]
	if f.char != '`' && f.char != '~' {
		return codeFence{}, false
	}
	i := f.indent
	for i < len(line) && line[i] == f.char {
		i++
	}
	f.n = i - f.indent
	if f.n < 3 {
		return codeFence{}, false
	}
	f.info = strings.Trim(line[i:], " ")
	if strings.IndexByte(f.info, '`') >= 0 {
		return codeFence{}, false
	}
	return f, true
}

// isClosingFence reports whether line closes a code block opened by f.
func (f codeFence) isClosingFence(line string) bool {
	line, ok := trimIndent(line)
	if !ok {
		return false
	}
	n := 0
	for n < len(line) && line[n] == f.char {
		n++
	}
	return n >= f.n && isBlankLine(line[n:])
}

type listMarker struct {
	typ ListType
	// prefixLen is the number of bytes covering
	// the indentation, the marker, and the required space after it.
	prefixLen int
	// extra is the number of additional spaces after prefixLen.
	extra   int
	content string
}

// width returns the number of columns that continuation lines
// must be indented by to belong to the item.
// If the content begins with more than three extra spaces,
// it is treated as indented code and only one space is part of the marker.
// Extra spaces count even when the marker has no content on its line.
func (m listMarker) width() int {
	if m.extra > 3 {
		return m.prefixLen
	}
	return m.prefixLen + m.extra
}

// parseListMarker attempts to parse a bullet ('-', '+', '*')
// or ordered ("1." or "1)") list marker at the start of line.
// The marker must be followed by at least one space.
func parseListMarker(line string) (m listMarker, ok bool) {
	indent := leadingSpaces(line)
	if indent > 3 || indent >= len(line) {
		return listMarker{}, false
	}
	i := indent
	switch c := line[i]; {
	case c == '-' || c == '+' || c == '*':
		m.typ = Unordered(c)
		i++
	case isASCIIDigit(c):
		for i < len(line) && isASCIIDigit(line[i]) {
			i++
		}
		if i-indent > maxStartDigits || i >= len(line) || (line[i] != '.' && line[i] != ')') {
			return listMarker{}, false
		}
		start, err := strconv.Atoi(line[indent:i])
		if err != nil {
			return listMarker{}, false
		}
		m.typ = Ordered(start, line[i])
		i++
	default:
		return listMarker{}, false
	}
	if i >= len(line) || line[i] != ' ' {
		return listMarker{}, false
	}
	m.prefixLen = i + 1
	m.extra = leadingSpaces(line[m.prefixLen:])
	m.content = line[m.prefixLen+m.extra:]
	return m, true
}

func isASCIIDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isASCIILetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}
