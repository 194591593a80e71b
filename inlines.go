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
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseInline parses the inline content of a block.
//
// Code spans, autolinks, and raw HTML tags are found first.
// Their contents are never scanned for emphasis,
// but emphasis may contain them.
// Characters that do not form part of any other node,
// including unmatched '*' and '_' delimiters,
// are returned as [TextKind] nodes.
// ParseInline never returns empty [TextKind] nodes.
func ParseInline(text string) []*Inline {
	if text == "" {
		return nil
	}
	atoms := findAtoms(text)
	spans := processEmphasis(text, atoms)
	sort.Slice(spans, func(i, j int) bool {
		return spans[i].openStart < spans[j].openStart
	})
	b := &inlineBuilder{
		text:  text,
		atoms: atoms,
		spans: spans,
	}
	return b.build(0, len(text))
}

// An inlineAtom is a code span, autolink, or raw HTML tag
// occupying text[start:end].
type inlineAtom struct {
	kind    InlineKind
	start   int
	end     int
	content string
}

// atomFinder returns the leftmost atom of one kind
// that starts at or after text[from].
type atomFinder func(text string, from int) (inlineAtom, bool)

// atomFinders is in priority order:
// when two atoms start at the same position,
// the one found by the earlier finder wins.
var atomFinders = [...]atomFinder{
	findURIAutolink,
	findEmailAutolink,
	findCodeSpan,
	findHTMLTag,
}

// findAtoms returns the non-overlapping atoms in text,
// ordered by position.
// Scanning resumes after each atom,
// so an atom never begins inside another.
//
// Each finder's leftmost result from an earlier position
// is still its leftmost result from any later position at or before it,
// and a finder that found nothing will find nothing later.
// Finders are only queried again once the scan passes their last result,
// which keeps the scan linear in the length of text.
func findAtoms(text string) []inlineAtom {
	type finderState struct {
		atom    inlineAtom
		ok      bool
		queried bool
	}
	var states [len(atomFinders)]finderState
	var atoms []inlineAtom
	for pos := 0; pos < len(text); {
		best := -1
		for i, find := range atomFinders {
			st := &states[i]
			if !st.queried || st.ok && st.atom.start < pos {
				st.atom, st.ok = find(text, pos)
				st.queried = true
			}
			if st.ok && (best < 0 || st.atom.start < states[best].atom.start) {
				best = i
			}
		}
		if best < 0 {
			break
		}
		atoms = append(atoms, states[best].atom)
		pos = states[best].atom.end
	}
	return atoms
}

// findCodeSpan finds the first backtick run that closes
// the nearest earlier run of exactly the same length.
// The content between the runs is kept verbatim.
func findCodeSpan(text string, from int) (inlineAtom, bool) {
	type backtickRun struct {
		start int
		n     int
	}
	var open []backtickRun
	for i := from; i < len(text); {
		if text[i] != '`' {
			i++
			continue
		}
		j := i + 1
		for j < len(text) && text[j] == '`' {
			j++
		}
		n := j - i
		for k := len(open) - 1; k >= 0; k-- {
			if open[k].n == n {
				return inlineAtom{
					kind:    CodeSpanKind,
					start:   open[k].start,
					end:     j,
					content: text[open[k].start+n : i],
				}, true
			}
		}
		open = append(open, backtickRun{start: i, n: n})
		i = j
	}
	return inlineAtom{}, false
}

func findHTMLTag(text string, from int) (inlineAtom, bool) {
	for i := from; i < len(text); i++ {
		j := strings.IndexByte(text[i:], '<')
		if j < 0 {
			break
		}
		i += j
		if end := parseHTMLTag(text, i); end >= 0 {
			return inlineAtom{
				kind:    HTMLTagKind,
				start:   i,
				end:     end,
				content: text[i:end],
			}, true
		}
	}
	return inlineAtom{}, false
}

// A delimiterRun is a run of one or more identical '*' or '_' characters.
type delimiterRun struct {
	char  byte
	start int
	n     int
}

// An emphasisSpan is a matched pair of delimiter runs.
// The opening delimiters occupy text[openStart:openStart+n]
// and the closing delimiters occupy text[closeStart:closeStart+n].
type emphasisSpan struct {
	openStart  int
	closeStart int
	n          int
}

const (
	openerFlag = 1 << iota
	closerFlag
)

// emphasisFlags determines whether the delimiter run text[start:end]
// can open emphasis, close emphasis, or both.
//
// A run opens if it is not followed by whitespace
// and it is either a '*' preceded by whitespace
// or a '_' not preceded by a letter or digit.
// A '*' run with non-whitespace on both sides may do either.
// Otherwise, a run closes if it is not preceded by whitespace
// and it is either a '*' or a '_' not followed by a letter or digit.
// The start and end of the text count as whitespace.
func emphasisFlags(text string, start, end int) uint8 {
	prevChar := ' '
	if start > 0 {
		prevChar, _ = utf8.DecodeLastRuneInString(text[:start])
	}
	nextChar := ' '
	if end < len(text) {
		nextChar, _ = utf8.DecodeRuneInString(text[end:])
	}
	star := text[start] == '*'
	spaceBefore := unicode.IsSpace(prevChar)
	spaceAfter := unicode.IsSpace(nextChar)
	switch {
	case !spaceAfter && (star && spaceBefore || !star && !isAlphanumeric(prevChar)):
		return openerFlag
	case star && !spaceBefore && !spaceAfter:
		return openerFlag | closerFlag
	case !spaceBefore && (star || !isAlphanumeric(nextChar)):
		return closerFlag
	default:
		return 0
	}
}

func isAlphanumeric(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c)
}

// processEmphasis matches delimiter runs in text
// outside of the given atoms.
// The returned spans are properly nested or disjoint,
// but are not sorted.
func processEmphasis(text string, atoms []inlineAtom) []emphasisSpan {
	var stack []delimiterRun
	var spans []emphasisSpan
	// onStack counts the runs on the stack for each delimiter character
	// so closers without a possible opener skip the stack search.
	var onStack [2]int
	nextAtom := 0
	for pos := 0; pos < len(text); {
		if nextAtom < len(atoms) && pos == atoms[nextAtom].start {
			pos = atoms[nextAtom].end
			nextAtom++
			continue
		}
		c := text[pos]
		if c != '*' && c != '_' {
			pos++
			continue
		}
		end := pos + 1
		for end < len(text) && text[end] == c {
			end++
		}
		run := delimiterRun{char: c, start: pos, n: end - pos}
		pos = end

		flags := emphasisFlags(text, run.start, end)
		if flags&closerFlag != 0 && onStack[delimiterIndex(c)] > 0 {
			i := findOpener(stack, c)
			for _, r := range stack[i:] {
				onStack[delimiterIndex(r.char)]--
			}
			var span emphasisSpan
			stack, span = matchDelimiters(stack, i, run)
			if len(stack) > i {
				onStack[delimiterIndex(stack[i].char)]++
			}
			spans = append(spans, span)
			continue
		}
		if flags&openerFlag != 0 {
			stack = append(stack, run)
			onStack[delimiterIndex(c)]++
		}
	}
	return spans
}

func delimiterIndex(c byte) int {
	if c == '_' {
		return 1
	}
	return 0
}

// findOpener returns the index of the topmost run on the stack
// with the given character or -1 if there is none.
func findOpener(stack []delimiterRun, c byte) int {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].char == c {
			return i
		}
	}
	return -1
}

// matchDelimiters pairs the opener at stack[i] with closer.
// Every opener above stack[i] is discarded.
// The common length of the two runs forms the span
// and any leftover delimiters are pushed back onto the stack as an opener:
// a longer opener keeps its outer delimiters
// and a longer closer keeps its trailing delimiters.
func matchDelimiters(stack []delimiterRun, i int, closer delimiterRun) ([]delimiterRun, emphasisSpan) {
	opener := stack[i]
	stack = stack[:i]
	switch {
	case opener.n < closer.n:
		n := opener.n
		stack = append(stack, delimiterRun{
			char:  closer.char,
			start: closer.start + n,
			n:     closer.n - n,
		})
		return stack, emphasisSpan{openStart: opener.start, closeStart: closer.start, n: n}
	case opener.n > closer.n:
		n := closer.n
		left := opener.n - n
		stack = append(stack, delimiterRun{
			char:  opener.char,
			start: opener.start,
			n:     left,
		})
		return stack, emphasisSpan{openStart: opener.start + left, closeStart: closer.start, n: n}
	default:
		return stack, emphasisSpan{openStart: opener.start, closeStart: closer.start, n: opener.n}
	}
}

// inlineBuilder converts atoms and emphasis spans into a tree.
// Both atoms and spans are consumed in order of their starting position.
type inlineBuilder struct {
	text     string
	atoms    []inlineAtom
	spans    []emphasisSpan
	nextAtom int
	nextSpan int
}

func (b *inlineBuilder) build(start, end int) []*Inline {
	var nodes []*Inline
	plain := start
	for pos := start; pos < end; {
		if b.nextSpan < len(b.spans) && b.spans[b.nextSpan].openStart == pos {
			span := b.spans[b.nextSpan]
			b.nextSpan++
			nodes = appendText(nodes, b.text[plain:pos])
			children := b.build(pos+span.n, span.closeStart)
			nodes = append(nodes, wrapEmphasis(span.n, children))
			pos = span.closeStart + span.n
			plain = pos
			continue
		}
		if b.nextAtom < len(b.atoms) && b.atoms[b.nextAtom].start == pos {
			a := b.atoms[b.nextAtom]
			b.nextAtom++
			nodes = appendText(nodes, b.text[plain:pos])
			nodes = append(nodes, &Inline{kind: a.kind, text: a.content})
			pos = a.end
			plain = pos
			continue
		}
		pos++
	}
	return appendText(nodes, b.text[plain:end])
}

func appendText(nodes []*Inline, s string) []*Inline {
	if s == "" {
		return nodes
	}
	return append(nodes, &Inline{kind: TextKind, text: s})
}

// wrapEmphasis wraps children in emphasis for a span of n delimiters.
// Each pair of delimiters adds a level of strong emphasis.
// An odd delimiter adds emphasis around the whole,
// so "***a***" becomes Emphasis(Strong(a)).
func wrapEmphasis(n int, children []*Inline) *Inline {
	if n%2 == 1 {
		if n > 1 {
			children = []*Inline{wrapEmphasis(n-1, children)}
		}
		return &Inline{kind: EmphasisKind, children: children}
	}
	node := &Inline{kind: StrongKind, children: children}
	for n -= 2; n > 0; n -= 2 {
		node = &Inline{kind: StrongKind, children: []*Inline{node}}
	}
	return node
}
