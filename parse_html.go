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
	"strings"

	"golang.org/x/net/html/atom"
)

// htmlBlockTags is the set of tag names that start an HTML block.
var htmlBlockTags = map[atom.Atom]struct{}{
	atom.Article:    {},
	atom.Header:     {},
	atom.Aside:      {},
	atom.Hgroup:     {},
	atom.Blockquote: {},
	atom.Hr:         {},
	atom.Iframe:     {},
	atom.Body:       {},
	atom.Li:         {},
	atom.Map:        {},
	atom.Button:     {},
	atom.Object:     {},
	atom.Canvas:     {},
	atom.Ol:         {},
	atom.Caption:    {},
	atom.Output:     {},
	atom.Col:        {},
	atom.P:          {},
	atom.Colgroup:   {},
	atom.Pre:        {},
	atom.Dd:         {},
	atom.Progress:   {},
	atom.Div:        {},
	atom.Section:    {},
	atom.Dl:         {},
	atom.Table:      {},
	atom.Td:         {},
	atom.Dt:         {},
	atom.Tbody:      {},
	atom.Embed:      {},
	atom.Textarea:   {},
	atom.Fieldset:   {},
	atom.Tfoot:      {},
	atom.Figcaption: {},
	atom.Th:         {},
	atom.Figure:     {},
	atom.Thead:      {},
	atom.Footer:     {},
	atom.Tr:         {},
	atom.Form:       {},
	atom.Ul:         {},
	atom.H1:         {},
	atom.H2:         {},
	atom.H3:         {},
	atom.H4:         {},
	atom.H5:         {},
	atom.H6:         {},
	atom.Video:      {},
	atom.Script:     {},
	atom.Style:      {},
}

// isHTMLBlockStart reports whether line begins an HTML block:
// a comment, declaration, or processing instruction,
// or an opening or closing tag whose name is in [htmlBlockTags].
func isHTMLBlockStart(line string) bool {
	line, ok := trimIndent(line)
	if !ok || !strings.HasPrefix(line, "<") {
		return false
	}
	line = line[1:]
	if strings.HasPrefix(line, "!") || strings.HasPrefix(line, "?") {
		return true
	}
	line = strings.TrimPrefix(line, "/")
	n := 0
	for n < len(line) && (isASCIILetter(line[n]) || isASCIIDigit(line[n])) {
		n++
	}
	if n == 0 {
		return false
	}
	if n < len(line) && line[n] != ' ' && line[n] != '>' && line[n] != '/' {
		return false
	}
	name := make([]byte, n)
	for i := range name {
		name[i] = toLowerASCII(line[i])
	}
	_, ok = htmlBlockTags[atom.Lookup(name)]
	return ok
}

// parseHTMLTag attempts to parse a raw HTML tag starting at s[start].
// It returns the end of the tag or -1 if there is no tag at start.
// Tags may be open tags, closing tags, comments,
// processing instructions, declarations, or CDATA sections.
func parseHTMLTag(s string, start int) (end int) {
	if start+1 >= len(s) || s[start] != '<' {
		return -1
	}
	i := start + 1
	switch s[i] {
	case '?':
		if j := strings.Index(s[i+1:], "?>"); j >= 0 {
			return i + 1 + j + len("?>")
		}
		return -1
	case '!':
		return parseHTMLDeclaration(s, i+1)
	case '/':
		return parseHTMLClosingTag(s, i+1)
	default:
		return parseHTMLOpenTag(s, i)
	}
}

// parseHTMLDeclaration parses the remainder of a tag that began with "<!".
func parseHTMLDeclaration(s string, i int) (end int) {
	rest := s[i:]
	switch {
	case strings.HasPrefix(rest, "--"):
		// Comment text may not start with ">" or "->"
		// and may not contain "--" except for the terminator.
		text := rest[len("--"):]
		if strings.HasPrefix(text, ">") || strings.HasPrefix(text, "->") {
			return -1
		}
		j := strings.Index(text, "--")
		if j < 0 || !strings.HasPrefix(text[j:], "-->") {
			return -1
		}
		return i + len("--") + j + len("-->")
	case strings.HasPrefix(rest, "[CDATA["):
		if j := strings.Index(rest[len("[CDATA["):], "]]>"); j >= 0 {
			return i + len("[CDATA[") + j + len("]]>")
		}
		return -1
	case len(rest) > 0 && isASCIILetter(rest[0]):
		if j := strings.IndexByte(rest, '>'); j >= 0 {
			return i + j + 1
		}
		return -1
	default:
		return -1
	}
}

func parseHTMLOpenTag(s string, i int) (end int) {
	i = parseHTMLTagName(s, i)
	if i < 0 {
		return -1
	}
	for {
		j := skipHTMLSpace(s, i)
		if j >= len(s) {
			return -1
		}
		switch s[j] {
		case '>':
			return j + 1
		case '/':
			if j+1 < len(s) && s[j+1] == '>' {
				return j + 2
			}
			return -1
		}
		if j == i {
			// Attributes must be preceded by whitespace.
			return -1
		}
		i = parseHTMLAttribute(s, j)
		if i < 0 {
			return -1
		}
	}
}

func parseHTMLClosingTag(s string, i int) (end int) {
	i = parseHTMLTagName(s, i)
	if i < 0 {
		return -1
	}
	i = skipHTMLSpace(s, i)
	if i >= len(s) || s[i] != '>' {
		return -1
	}
	return i + 1
}

func parseHTMLTagName(s string, i int) (end int) {
	if i >= len(s) || !isASCIILetter(s[i]) {
		return -1
	}
	i++
	for i < len(s) && (isASCIILetter(s[i]) || isASCIIDigit(s[i]) || s[i] == '-') {
		i++
	}
	return i
}

func parseHTMLAttribute(s string, i int) (end int) {
	// Attribute name.
	if c := s[i]; !isASCIILetter(c) && c != '_' && c != ':' {
		return -1
	}
	i++
	for i < len(s) && (isASCIILetter(s[i]) || isASCIIDigit(s[i]) || strings.IndexByte("_.:-", s[i]) >= 0) {
		i++
	}

	// Attribute value specification.
	// Don't consume space unless it is followed by an equal sign,
	// since it will cause future attributes to fail.
	j := skipHTMLSpace(s, i)
	if j >= len(s) || s[j] != '=' {
		return i
	}
	j = skipHTMLSpace(s, j+1)
	if j >= len(s) {
		return -1
	}
	switch c := s[j]; {
	case c == '\'' || c == '"':
		k := strings.IndexByte(s[j+1:], c)
		if k < 0 {
			return -1
		}
		return j + 1 + k + 1
	case isUnquotedAttributeValueChar(c):
		for j < len(s) && isUnquotedAttributeValueChar(s[j]) {
			j++
		}
		return j
	default:
		return -1
	}
}

func skipHTMLSpace(s string, i int) int {
	for i < len(s) && isSpaceTabOrLineEnding(s[i]) {
		i++
	}
	return i
}

func isSpaceTabOrLineEnding(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func toLowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c - 'A' + 'a'
	}
	return c
}

func isUnquotedAttributeValueChar(c byte) bool {
	return !isSpaceTabOrLineEnding(c) && strings.IndexByte("\"'=<>`", c) < 0
}
