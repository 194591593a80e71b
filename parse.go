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

// Package mdtree parses a practical subset of Markdown into a tree
// and renders that tree as HTML or as a canonical textual dump.
//
// The parser is total: every input produces a document.
// Parsing happens in two phases.
// The block phase splits the input into lines with [Preprocess]
// and recognizes headers, rules, code blocks, HTML blocks,
// block quotes, lists, and paragraphs.
// The inline phase ([ParseInline]) splits each block's text into
// code spans, autolinks, raw HTML tags, emphasis, and strong emphasis.
package mdtree

import (
	"fmt"
	"io"
	"strings"
)

// DefaultMaxNesting is the default limit on nested block quotes and list items.
const DefaultMaxNesting = 64

// ParseOptions is the set of parameters to [*ParseOptions.Parse].
// The zero value and nil both parse with the defaults.
type ParseOptions struct {
	// MaxNesting is the maximum number of block quotes and list items
	// that may contain a block.
	// Markers past the limit are treated as paragraph text.
	// Zero or negative means [DefaultMaxNesting].
	MaxNesting int
}

// Parse parses a Markdown document with the default options.
func Parse(source []byte) *Document {
	return (*ParseOptions)(nil).Parse(source)
}

// ParseReader reads all of r and parses it as a Markdown document.
func ParseReader(r io.Reader, opts *ParseOptions) (*Document, error) {
	source, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("parse markdown: %w", err)
	}
	return opts.Parse(source), nil
}

// Parse parses a Markdown document.
func (opts *ParseOptions) Parse(source []byte) *Document {
	return opts.ParseLines(Preprocess(string(source)))
}

// ParseLines parses a Markdown document
// that has already been split into lines by [Preprocess].
// ParseLines may modify the elements of lines.
func (opts *ParseOptions) ParseLines(lines []string) *Document {
	p := &parseState{
		lines:      lines,
		maxNesting: DefaultMaxNesting,
	}
	if opts != nil && opts.MaxNesting > 0 {
		p.maxNesting = opts.MaxNesting
	}
	blocks, _, _ := p.parseBlocks()
	if p.pos < len(p.lines) {
		panic("parse stopped before end of document")
	}
	return &Document{blocks: blocks}
}

type containerKind uint8

const (
	blockQuoteContainer containerKind = 1 + iota
	listItemContainer
)

// container is an open block quote or list item.
type container struct {
	kind  containerKind
	width int // list items only
}

// parseState is a cursor over the document's lines
// plus the stack of containers the cursor is currently inside.
type parseState struct {
	lines      []string
	pos        int
	containers []container
	maxNesting int

	// inParagraph is set while a paragraph is consuming continuation lines.
	// It permits lazy continuation:
	// a line that is missing container prefixes
	// is still passed to the paragraph.
	inParagraph bool
}

// currentLine returns the current line with the prefixes
// of all open containers removed.
// ok is false if there are no more lines
// or if the line does not belong to the innermost container.
func (p *parseState) currentLine() (line string, ok bool) {
	if p.pos >= len(p.lines) {
		return "", false
	}
	return p.stripContainerPrefixes(p.lines[p.pos])
}

// nextLine is like currentLine but for the line after the current one.
func (p *parseState) nextLine() (line string, ok bool) {
	if p.pos+1 >= len(p.lines) {
		return "", false
	}
	return p.stripContainerPrefixes(p.lines[p.pos+1])
}

func (p *parseState) stripContainerPrefixes(line string) (string, bool) {
	for _, c := range p.containers {
		switch c.kind {
		case blockQuoteContainer:
			end := blockQuotePrefix(line)
			if end < 0 {
				if p.inParagraph {
					return line, true
				}
				return "", false
			}
			line = line[end:]
		case listItemContainer:
			if n := leadingSpaces(line); n >= c.width || n == len(line) {
				line = line[min(c.width, len(line)):]
			} else if p.inParagraph {
				return line, true
			} else {
				return "", false
			}
		default:
			panic("unknown container kind")
		}
	}
	return line, true
}

// skipBlankLines advances past blank lines in the current container
// and returns the number of lines skipped.
func (p *parseState) skipBlankLines() int {
	n := 0
	for {
		line, ok := p.currentLine()
		if !ok || !isBlankLine(line) {
			return n
		}
		p.pos++
		n++
	}
}

func (p *parseState) inListItem() bool {
	return len(p.containers) > 0 && p.containers[len(p.containers)-1].kind == listItemContainer
}

func (p *parseState) push(c container) {
	p.containers = append(p.containers, c)
}

func (p *parseState) pop() {
	p.containers = p.containers[:len(p.containers)-1]
}

func (p *parseState) canNest() bool {
	return len(p.containers) < p.maxNesting
}

// parseBlocks parses blocks until the current container ends.
// tight is false if blank lines separated any of the blocks.
// endLists is true if two or more consecutive blank lines
// were encountered inside a list item,
// which ends every enclosing list.
func (p *parseState) parseBlocks() (blocks []*Block, tight, endLists bool) {
	tight = true
	start := p.pos
	for {
		if _, ok := p.currentLine(); !ok {
			break
		}
		before := p.pos
		skipped := p.skipBlankLines()
		if skipped >= 2 && p.inListItem() {
			endLists = true
			break
		}
		if _, ok := p.currentLine(); !ok {
			// Leave trailing blank lines for the enclosing list
			// so that it can see the gap between its items.
			if p.inListItem() && before > start {
				p.pos = before
			}
			break
		}
		if skipped > 0 && len(blocks) > 0 {
			tight = false
		}

		if b := p.parseRule(); b != nil {
			blocks = append(blocks, b)
			continue
		}
		if b := p.parseATXHeader(); b != nil {
			blocks = append(blocks, b)
			continue
		}
		if b := p.parseIndentedCode(); b != nil {
			blocks = append(blocks, b)
			continue
		}
		if b := p.parseHTMLBlock(); b != nil {
			blocks = append(blocks, b)
			continue
		}
		if b := p.parseFencedCode(); b != nil {
			blocks = append(blocks, b)
			continue
		}
		if b := p.parseBlockQuote(); b != nil {
			blocks = append(blocks, b)
			continue
		}
		if b, ended := p.parseList(); b != nil {
			blocks = append(blocks, b)
			if ended {
				endLists = true
				if p.inListItem() {
					break
				}
			}
			continue
		}
		if b := p.parseSetextHeader(); b != nil {
			blocks = append(blocks, b)
			continue
		}
		if b := p.parseParagraph(); b != nil {
			blocks = append(blocks, b)
			continue
		}
		panic("no block recognized a non-blank line")
	}
	return blocks, tight, endLists
}

func (p *parseState) parseRule() *Block {
	line, _ := p.currentLine()
	if !isThematicBreak(line) {
		return nil
	}
	p.pos++
	return &Block{kind: RuleKind}
}

func (p *parseState) parseATXHeader() *Block {
	line, _ := p.currentLine()
	h := parseATXHeader(line)
	if h.level == 0 {
		return nil
	}
	p.pos++
	return &Block{
		kind:    HeaderKind,
		level:   h.level,
		inlines: ParseInline(h.content),
	}
}

func (p *parseState) parseSetextHeader() *Block {
	line, _ := p.currentLine()
	text, ok := setextText(line)
	if !ok {
		return nil
	}
	next, ok := p.nextLine()
	if !ok {
		return nil
	}
	level := setextUnderline(next)
	if level == 0 {
		return nil
	}
	p.pos += 2
	return &Block{
		kind:    HeaderKind,
		level:   level,
		inlines: ParseInline(text),
	}
}

func (p *parseState) parseIndentedCode() *Block {
	var lines []string
scan:
	for {
		line, ok := p.currentLine()
		if !ok {
			break
		}
		n := leadingSpaces(line)
		switch {
		case n >= 4:
			lines = append(lines, line[4:])
		case n == len(line) && len(lines) > 0:
			lines = append(lines, "")
		default:
			break scan
		}
		p.pos++
	}
	if len(lines) == 0 {
		return nil
	}
	// Trailing blank lines are not part of the block.
	for isBlankLine(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
		p.pos--
	}
	return &Block{
		kind: CodeKind,
		text: joinLines(lines),
	}
}

func (p *parseState) parseFencedCode() *Block {
	line, _ := p.currentLine()
	f, ok := parseCodeFence(line)
	if !ok {
		return nil
	}
	p.pos++
	var lines []string
	for {
		line, ok := p.currentLine()
		if !ok {
			break
		}
		p.pos++
		if f.isClosingFence(line) {
			break
		}
		lines = append(lines, line[min(f.indent, leadingSpaces(line)):])
	}
	b := &Block{
		kind: CodeKind,
		text: joinLines(lines),
	}
	if f.info != "" {
		b.info = ParseInline(f.info)
	}
	return b
}

func (p *parseState) parseHTMLBlock() *Block {
	line, _ := p.currentLine()
	if !isHTMLBlockStart(line) {
		return nil
	}
	var lines []string
	for {
		line, ok := p.currentLine()
		if !ok || isBlankLine(line) {
			break
		}
		lines = append(lines, line)
		p.pos++
	}
	return &Block{
		kind:    HTMLBlockKind,
		text:    joinLines(lines),
		inlines: ParseInline(strings.Join(lines, "\n")),
	}
}

func (p *parseState) parseBlockQuote() *Block {
	line, _ := p.currentLine()
	if blockQuotePrefix(line) < 0 || !p.canNest() {
		return nil
	}
	p.push(container{kind: blockQuoteContainer})
	blocks, _, _ := p.parseBlocks()
	p.pop()
	return &Block{
		kind:   BlockQuoteKind,
		blocks: blocks,
	}
}

// seeListItem reports whether the current line starts a list item.
func (p *parseState) seeListItem() (listMarker, bool) {
	line, ok := p.currentLine()
	if !ok || isThematicBreak(line) {
		return listMarker{}, false
	}
	return parseListMarker(line)
}

// parseList parses a sequence of list items of the same type.
// endLists reports whether the list was ended by
// two or more consecutive blank lines.
func (p *parseState) parseList() (_ *Block, endLists bool) {
	first, ok := p.seeListItem()
	if !ok || !p.canNest() {
		return nil, false
	}
	list := &Block{
		kind:  ListKind,
		tight: true,
	}
	for {
		item, itemTight, ended := p.parseListItem()
		list.items = append(list.items, item)
		if !itemTight {
			list.tight = false
		}
		if ended {
			endLists = true
			break
		}

		before := p.pos
		skipped := p.skipBlankLines()
		if skipped >= 2 {
			break
		}
		m, ok := p.seeListItem()
		if !ok || !m.typ.Equal(first.typ) {
			p.pos = before
			break
		}
		if skipped > 0 {
			list.tight = false
		}
	}
	return list, endLists
}

// parseListItem parses a single list item starting at the current line.
// The marker is replaced with spaces in place
// so that the item's first line can be parsed like its continuation lines.
func (p *parseState) parseListItem() (_ *ListItem, tight, endLists bool) {
	raw := p.lines[p.pos]
	line, _ := p.stripContainerPrefixes(raw)
	m, ok := parseListMarker(line)
	if !ok {
		panic("list item does not start with a marker")
	}
	prefix := raw[:len(raw)-len(line)]
	p.lines[p.pos] = prefix + strings.Repeat(" ", m.prefixLen+m.extra) + m.content

	p.push(container{kind: listItemContainer, width: m.width()})
	blocks, tight, endLists := p.parseBlocks()
	p.pop()
	return &ListItem{typ: m.typ, blocks: blocks}, tight, endLists
}

func (p *parseState) parseParagraph() *Block {
	line, ok := p.currentLine()
	if !ok || isBlankLine(line) {
		return nil
	}
	lines := []string{strings.TrimLeft(line, " ")}
	p.pos++
	p.inParagraph = true
	for {
		line, ok := p.currentLine()
		if !ok || isBlankLine(line) || interruptsParagraph(line) {
			break
		}
		lines = append(lines, strings.TrimLeft(line, " "))
		p.pos++
	}
	p.inParagraph = false
	return &Block{
		kind:    ParagraphKind,
		inlines: ParseInline(strings.TrimRight(strings.Join(lines, "\n"), " ")),
	}
}

// interruptsParagraph reports whether line starts a block
// that ends a paragraph in progress.
func interruptsParagraph(line string) bool {
	if isThematicBreak(line) || parseATXHeader(line).level > 0 ||
		isHTMLBlockStart(line) || blockQuotePrefix(line) >= 0 {
		return true
	}
	if _, ok := parseCodeFence(line); ok {
		return true
	}
	_, ok := parseListMarker(line)
	return ok
}

// joinLines joins lines with a trailing newline after each.
func joinLines(lines []string) string {
	n := 0
	for _, line := range lines {
		n += len(line) + 1
	}
	sb := new(strings.Builder)
	sb.Grow(n)
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}
