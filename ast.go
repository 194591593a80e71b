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
	"fmt"
	"strconv"
)

// Document is the root of a parsed Markdown tree.
type Document struct {
	blocks []*Block
}

// Blocks returns the document's top-level blocks.
func (doc *Document) Blocks() []*Block {
	if doc == nil {
		return nil
	}
	return doc.blocks
}

// String returns the canonical dump of the document.
// See [Dump].
func (doc *Document) String() string {
	return string(AppendDump(nil, doc))
}

// A Block is a structural element in a Markdown document.
type Block struct {
	kind    BlockKind
	level   int
	tight   bool
	text    string
	info    []*Inline
	inlines []*Inline
	blocks  []*Block
	items   []*ListItem
}

// Kind returns the type of block
// or zero if the block is nil.
func (b *Block) Kind() BlockKind {
	if b == nil {
		return 0
	}
	return b.kind
}

// HeaderLevel returns the level (1-6) of a [HeaderKind] block
// or zero for any other block.
func (b *Block) HeaderLevel() int {
	if b.Kind() != HeaderKind {
		return 0
	}
	return b.level
}

// IsTight reports whether a [ListKind] block is a tight list.
func (b *Block) IsTight() bool {
	return b.Kind() == ListKind && b.tight
}

// Text returns the raw text of a [CodeKind] or [HTMLBlockKind] block.
// Code text ends with a newline unless it is empty.
func (b *Block) Text() string {
	if b == nil {
		return ""
	}
	return b.text
}

// InfoString returns the parsed info string of a fenced [CodeKind] block
// or nil if the block has no info string.
func (b *Block) InfoString() []*Inline {
	if b.Kind() != CodeKind {
		return nil
	}
	return b.info
}

// Inlines returns the inline content of a
// [HeaderKind], [ParagraphKind], or [HTMLBlockKind] block.
func (b *Block) Inlines() []*Inline {
	if b == nil {
		return nil
	}
	return b.inlines
}

// Blocks returns the children of a [BlockQuoteKind] block.
func (b *Block) Blocks() []*Block {
	if b == nil {
		return nil
	}
	return b.blocks
}

// Items returns the items of a [ListKind] block.
func (b *Block) Items() []*ListItem {
	if b == nil {
		return nil
	}
	return b.items
}

// ChildCount returns the number of children the block has.
// Calling ChildCount on nil returns 0.
func (b *Block) ChildCount() int {
	switch b.Kind() {
	case HeaderKind, ParagraphKind, HTMLBlockKind:
		return len(b.inlines)
	case CodeKind:
		return len(b.info)
	case BlockQuoteKind:
		return len(b.blocks)
	case ListKind:
		return len(b.items)
	default:
		return 0
	}
}

// Child returns the i'th child of the block.
// The children of a [CodeKind] block are its info string.
func (b *Block) Child(i int) Node {
	switch b.Kind() {
	case HeaderKind, ParagraphKind, HTMLBlockKind:
		return b.inlines[i].AsNode()
	case CodeKind:
		return b.info[i].AsNode()
	case BlockQuoteKind:
		return b.blocks[i].AsNode()
	case ListKind:
		return b.items[i].AsNode()
	default:
		panic("index out of bounds")
	}
}

// BlockKind is an enumeration of values returned by [*Block.Kind].
type BlockKind uint16

const (
	RuleKind BlockKind = 1 + iota
	HeaderKind
	ParagraphKind
	CodeKind
	BlockQuoteKind
	HTMLBlockKind
	ListKind
)

func (kind BlockKind) String() string {
	switch kind {
	case RuleKind:
		return "rule"
	case HeaderKind:
		return "header"
	case ParagraphKind:
		return "paragraph"
	case CodeKind:
		return "code"
	case BlockQuoteKind:
		return "blockquote"
	case HTMLBlockKind:
		return "html"
	case ListKind:
		return "list"
	default:
		return fmt.Sprintf("BlockKind(%d)", uint16(kind))
	}
}

// A ListItem is a single item of a [ListKind] block.
type ListItem struct {
	typ    ListType
	blocks []*Block
}

// Type returns the marker type of the item.
func (item *ListItem) Type() ListType {
	if item == nil {
		return ListType{}
	}
	return item.typ
}

// Blocks returns the item's content.
func (item *ListItem) Blocks() []*Block {
	if item == nil {
		return nil
	}
	return item.blocks
}

// ListType describes a list item marker.
// Use [ListType.Equal] rather than == to compare list types:
// consecutive items of an ordered list may carry any number.
type ListType struct {
	ordered bool
	start   int
	delim   byte
}

// Ordered returns the type of an ordered list item
// with the given number and delimiter ('.' or ')').
func Ordered(start int, delim byte) ListType {
	return ListType{ordered: true, start: start, delim: delim}
}

// Unordered returns the type of a bullet list item
// with the given marker ('-', '+', or '*').
func Unordered(marker byte) ListType {
	return ListType{delim: marker}
}

// IsOrdered reports whether t is the type of an ordered list item.
func (t ListType) IsOrdered() bool {
	return t.ordered
}

// Start returns the number of an ordered list item.
func (t ListType) Start() int {
	return t.start
}

// Delimiter returns the marker character of a bullet list item
// or the punctuation following the number of an ordered list item.
func (t ListType) Delimiter() byte {
	return t.delim
}

// Equal reports whether two items belong to the same list.
// The start number is not compared.
func (t ListType) Equal(u ListType) bool {
	return t.ordered == u.ordered && t.delim == u.delim
}

func (t ListType) String() string {
	if t.ordered {
		return "ordered " + strconv.Itoa(t.start) + " " + strconv.QuoteRune(rune(t.delim))
	}
	return "unordered " + strconv.QuoteRune(rune(t.delim))
}

// Inline represents Markdown content elements like text, code spans, or emphasis.
type Inline struct {
	kind     InlineKind
	text     string
	children []*Inline
}

// Kind returns the type of inline node
// or zero if the node is nil.
func (inline *Inline) Kind() InlineKind {
	if inline == nil {
		return 0
	}
	return inline.kind
}

// Text returns the literal content of a leaf inline node:
// the text of a [TextKind] node,
// the destination of an autolink,
// the content of a code span,
// or the raw markup of an HTML tag.
// Text returns the empty string for [EmphasisKind] and [StrongKind].
func (inline *Inline) Text() string {
	if inline == nil {
		return ""
	}
	return inline.text
}

// ChildCount returns the number of children the node has.
// Calling ChildCount on nil returns 0.
func (inline *Inline) ChildCount() int {
	if inline == nil {
		return 0
	}
	return len(inline.children)
}

// Child returns the i'th child of the node.
func (inline *Inline) Child(i int) *Inline {
	return inline.children[i]
}

// Children returns the node's children.
func (inline *Inline) Children() []*Inline {
	if inline == nil {
		return nil
	}
	return inline.children
}

// InlineKind is an enumeration of values returned by [*Inline.Kind].
type InlineKind uint16

const (
	TextKind InlineKind = 1 + iota
	URIAutolinkKind
	EmailAutolinkKind
	HTMLTagKind
	CodeSpanKind
	EmphasisKind
	StrongKind
)

func (kind InlineKind) String() string {
	switch kind {
	case TextKind:
		return "text"
	case URIAutolinkKind:
		return "uri"
	case EmailAutolinkKind:
		return "email"
	case HTMLTagKind:
		return "html-tag"
	case CodeSpanKind:
		return "code-span"
	case EmphasisKind:
		return "emph"
	case StrongKind:
		return "strong"
	default:
		return fmt.Sprintf("InlineKind(%d)", uint16(kind))
	}
}
