// Copyright 2024 Ross Light
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

// Package format provides a function to format a parsed Markdown document
// as normalized Markdown that parses back to the same tree.
package format

import (
	"io"
	"strconv"
	"strings"

	"zombiezen.com/go/mdtree"
)

// Format writes the given document as Markdown to the given writer.
//
// Headers are always written in ATX style,
// code blocks are always fenced,
// emphasis uses asterisks,
// and rules are written as "___".
func Format(w io.Writer, doc *mdtree.Document) error {
	ww := &errWriter{w: w}
	for _, line := range blocksLines(doc.Blocks(), false) {
		ww.WriteString(line)
		ww.WriteString("\n")
	}
	return ww.err
}

// blocksLines formats a sequence of sibling blocks.
// Blocks are separated by a blank line unless tight is true.
func blocksLines(blocks []*mdtree.Block, tight bool) []string {
	var lines []string
	for i, b := range blocks {
		if i > 0 {
			prev := blocks[i-1]
			switch {
			case isSameList(prev, b):
				// Only two blank lines end a list.
				lines = append(lines, "", "")
			case !tight:
				lines = append(lines, "")
			}
		}
		lines = append(lines, blockLines(b)...)
	}
	return lines
}

func isSameList(b1, b2 *mdtree.Block) bool {
	return b1.Kind() == mdtree.ListKind && b2.Kind() == mdtree.ListKind &&
		b1.Items()[0].Type().Equal(b2.Items()[0].Type())
}

func blockLines(b *mdtree.Block) []string {
	switch b.Kind() {
	case mdtree.RuleKind:
		return []string{"___"}
	case mdtree.HeaderKind:
		line := strings.Repeat("#", b.HeaderLevel())
		if text := strings.ReplaceAll(inlineMarkdown(b.Inlines()), "\n", " "); text != "" {
			line += " " + text
		}
		return []string{line}
	case mdtree.ParagraphKind:
		return strings.Split(inlineMarkdown(b.Inlines()), "\n")
	case mdtree.CodeKind:
		fence := strings.Repeat("`", max(3, longestRun(b.Text(), '`')+1))
		lines := []string{fence + inlineMarkdown(b.InfoString())}
		if text := b.Text(); text != "" {
			lines = append(lines, strings.Split(strings.TrimSuffix(text, "\n"), "\n")...)
		}
		return append(lines, fence)
	case mdtree.HTMLBlockKind:
		return strings.Split(strings.TrimSuffix(b.Text(), "\n"), "\n")
	case mdtree.BlockQuoteKind:
		lines := blocksLines(b.Blocks(), false)
		if len(lines) == 0 {
			return []string{">"}
		}
		for i, line := range lines {
			if line == "" {
				lines[i] = ">"
			} else {
				lines[i] = "> " + line
			}
		}
		return lines
	case mdtree.ListKind:
		var lines []string
		for i, item := range b.Items() {
			if i > 0 && !b.IsTight() {
				lines = append(lines, "")
			}
			lines = append(lines, itemLines(item, b.IsTight())...)
		}
		return lines
	default:
		return nil
	}
}

func itemLines(item *mdtree.ListItem, tight bool) []string {
	typ := item.Type()
	marker := string(typ.Delimiter())
	if typ.IsOrdered() {
		marker = strconv.Itoa(typ.Start()) + marker
	}
	content := blocksLines(item.Blocks(), tight)
	if len(content) == 0 {
		return []string{marker + " "}
	}
	indent := strings.Repeat(" ", len(marker)+1)
	lines := make([]string, 0, len(content))
	lines = append(lines, marker+" "+content[0])
	for _, line := range content[1:] {
		if line == "" {
			lines = append(lines, "")
		} else {
			lines = append(lines, indent+line)
		}
	}
	return lines
}

func inlineMarkdown(inlines []*mdtree.Inline) string {
	sb := new(strings.Builder)
	appendInlines(sb, inlines)
	return sb.String()
}

func appendInlines(sb *strings.Builder, inlines []*mdtree.Inline) {
	for _, inline := range inlines {
		switch inline.Kind() {
		case mdtree.TextKind, mdtree.HTMLTagKind:
			sb.WriteString(inline.Text())
		case mdtree.URIAutolinkKind, mdtree.EmailAutolinkKind:
			sb.WriteString("<")
			sb.WriteString(inline.Text())
			sb.WriteString(">")
		case mdtree.CodeSpanKind:
			// Code span content never begins or ends with a backtick,
			// so any run length not present in the content works.
			fence := strings.Repeat("`", shortestMissingRun(inline.Text(), '`'))
			sb.WriteString(fence)
			sb.WriteString(inline.Text())
			sb.WriteString(fence)
		case mdtree.EmphasisKind:
			sb.WriteString("*")
			appendInlines(sb, inline.Children())
			sb.WriteString("*")
		case mdtree.StrongKind:
			sb.WriteString("**")
			appendInlines(sb, inline.Children())
			sb.WriteString("**")
		}
	}
}

// runLengths returns the set of lengths of runs of c in s.
func runLengths(s string, c byte) map[int]struct{} {
	lengths := make(map[int]struct{})
	for i := 0; i < len(s); {
		if s[i] != c {
			i++
			continue
		}
		j := i + 1
		for j < len(s) && s[j] == c {
			j++
		}
		lengths[j-i] = struct{}{}
		i = j
	}
	return lengths
}

func longestRun(s string, c byte) int {
	n := 0
	for k := range runLengths(s, c) {
		n = max(n, k)
	}
	return n
}

func shortestMissingRun(s string, c byte) int {
	lengths := runLengths(s, c)
	n := 1
	for {
		if _, found := lengths[n]; !found {
			return n
		}
		n++
	}
}

type errWriter struct {
	w          io.Writer
	hasWritten bool
	err        error
}

func (w *errWriter) Write(p []byte) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	n, w.err = w.w.Write(p)
	w.hasWritten = w.hasWritten || n > 0
	return n, w.err
}

func (w *errWriter) WriteString(s string) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	n, w.err = io.WriteString(w.w, s)
	w.hasWritten = w.hasWritten || n > 0
	return n, w.err
}
