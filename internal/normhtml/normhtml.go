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

// Package normhtml compares rendered HTML
// while ignoring differences that do not change the rendered document,
// modeled on the [CommonMark test normalization].
//
// [CommonMark test normalization]: https://github.com/commonmark/commonmark-spec/blob/0.30.0/test/normalize.py
package normhtml

import (
	"bytes"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"go4.org/bytereplacer"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

var textEscaper = bytereplacer.New(
	"&", "&amp;",
	`'`, "&#39;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

// blockTags is the set of elements around which whitespace is insignificant.
var blockTags = map[atom.Atom]struct{}{
	atom.P:          {},
	atom.H1:         {},
	atom.H2:         {},
	atom.H3:         {},
	atom.H4:         {},
	atom.H5:         {},
	atom.H6:         {},
	atom.Hr:         {},
	atom.Pre:        {},
	atom.Blockquote: {},
	atom.Ol:         {},
	atom.Ul:         {},
	atom.Li:         {},
	atom.Div:        {},
	atom.Table:      {},
	atom.Thead:      {},
	atom.Tbody:      {},
	atom.Tr:         {},
	atom.Th:         {},
	atom.Td:         {},
}

// Normalize returns a copy of b with insignificant differences removed.
// Outside of <pre> elements, runs of whitespace collapse to a single space
// and whitespace next to block-level elements is dropped.
// Attributes are sorted by name,
// self-closing tags are written as start tags,
// and character references are replaced with the characters they stand for
// (except for the five characters that must stay escaped).
func Normalize(b []byte) []byte {
	n := &normalizer{last: html.StartTagToken}
	z := html.NewTokenizerFragment(bytes.NewReader(b), "div")
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return n.out
		}
		tok := z.Token()
		switch tt {
		case html.TextToken:
			n.text(tok.Data)
		case html.StartTagToken, html.SelfClosingTagToken:
			n.startTag(tok)
		case html.EndTagToken:
			n.endTag(tok)
		case html.CommentToken:
			n.out = append(n.out, "<!--"...)
			n.out = append(n.out, tok.Data...)
			n.out = append(n.out, "-->"...)
		}
		n.last = tt
		if tt == html.SelfClosingTagToken {
			n.last = html.EndTagToken
		}
	}
}

type normalizer struct {
	out     []byte
	last    html.TokenType
	lastTag atom.Atom
	inPre   bool
}

func (n *normalizer) text(data string) {
	afterTag := n.last == html.EndTagToken || n.last == html.StartTagToken
	if afterTag && n.lastTag == atom.Br {
		data = strings.TrimLeft(data, "\n")
	}
	if !n.inPre {
		data = whitespaceRE.ReplaceAllString(data, " ")
		if afterTag && isBlockTag(n.lastTag) {
			if n.last == html.StartTagToken {
				data = strings.TrimLeftFunc(data, unicode.IsSpace)
			} else {
				data = strings.TrimSpace(data)
			}
		}
	}
	n.out = append(n.out, textEscaper.Replace([]byte(data))...)
}

func (n *normalizer) startTag(tok html.Token) {
	if tok.DataAtom == atom.Pre {
		n.inPre = true
	}
	if isBlockTag(tok.DataAtom) {
		n.out = bytes.TrimRightFunc(n.out, unicode.IsSpace)
	}
	n.out = append(n.out, '<')
	n.out = append(n.out, tok.Data...)
	attrs := slices.Clone(tok.Attr)
	slices.SortStableFunc(attrs, func(a1, a2 html.Attribute) int {
		return strings.Compare(a1.Key, a2.Key)
	})
	for _, attr := range attrs {
		n.out = append(n.out, ' ')
		n.out = append(n.out, attr.Key...)
		if attr.Val != "" {
			n.out = append(n.out, `="`...)
			n.out = append(n.out, html.EscapeString(attr.Val)...)
			n.out = append(n.out, '"')
		}
	}
	n.out = append(n.out, '>')
	n.lastTag = tok.DataAtom
}

func (n *normalizer) endTag(tok html.Token) {
	if tok.DataAtom == atom.Pre {
		n.inPre = false
	} else if isBlockTag(tok.DataAtom) {
		n.out = bytes.TrimRightFunc(n.out, unicode.IsSpace)
	}
	n.out = append(n.out, "</"...)
	n.out = append(n.out, tok.Data...)
	n.out = append(n.out, '>')
	n.lastTag = tok.DataAtom
}

func isBlockTag(a atom.Atom) bool {
	_, ok := blockTags[a]
	return ok
}

// Elements returns the lowercased names of the elements that appear in b,
// in order of first appearance.
func Elements(b []byte) []string {
	var names []string
	z := html.NewTokenizerFragment(bytes.NewReader(b), "div")
	for {
		switch z.Next() {
		case html.ErrorToken:
			return names
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, _ := z.TagName()
			if !slices.Contains(names, string(name)) {
				names = append(names, string(name))
			}
		}
	}
}
