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
	"io"
	"strconv"
	"strings"

	"go4.org/bytereplacer"
	"golang.org/x/net/html/atom"
)

// An HTMLRenderer converts a parsed document into HTML.
//
// # Security considerations
//
// Markdown permits raw HTML, which can introduce
// Cross-Site Scripting (XSS) vulnerabilities and HTML parse errors
// when used with untrusted inputs.
// There are a few options to mitigate this risk:
//
//   - The resulting HTML can be sent through an HTML sanitizer.
//     This is highly recommended.
//   - Set IgnoreRaw to prevent inclusion of raw HTML.
//     The output is then guaranteed to use a fixed set of elements.
//     However, this can lead to content being omitted from the document entirely.
//   - FilterTag can be used to prevent some tags from being used
//     while still showing the source text.
//     Note that this does not prevent parse errors.
type HTMLRenderer struct {
	// SoftBreakBehavior determines how line breaks inside paragraphs are rendered.
	SoftBreakBehavior SoftBreakBehavior
	// If IgnoreRaw is true, the renderer skips any HTML blocks or raw HTML tags.
	IgnoreRaw bool
	// FilterTag is a predicate function
	// that reports whether an element with the given lowercased tag name
	// should have its leading angle bracket escaped.
	// If FilterTag is nil, then no filtering will occur.
	FilterTag func(tag string) bool
}

// RenderHTML writes doc to w as HTML
// using the default options for [HTMLRenderer].
func RenderHTML(w io.Writer, doc *Document) error {
	return new(HTMLRenderer).Render(w, doc)
}

// Render writes doc to w as HTML.
// It will return the first error encountered, if any.
func (r *HTMLRenderer) Render(w io.Writer, doc *Document) error {
	var buf []byte
	for _, b := range doc.Blocks() {
		buf = r.AppendBlock(buf[:0], b)
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("render markdown to html: %w", err)
		}
	}
	return nil
}

// AppendBlock appends the rendered HTML of a block to dst
// and returns the resulting byte slice.
// The rendered HTML always ends in a newline.
func (r *HTMLRenderer) AppendBlock(dst []byte, b *Block) []byte {
	state := &renderState{
		HTMLRenderer: r,
		dst:          dst,
	}
	state.block(b)
	return state.dst
}

// AppendInline appends the rendered HTML of inline content to dst
// and returns the resulting byte slice.
func (r *HTMLRenderer) AppendInline(dst []byte, inlines []*Inline) []byte {
	state := &renderState{
		HTMLRenderer: r,
		dst:          dst,
	}
	state.inlines(inlines)
	return state.dst
}

type renderState struct {
	*HTMLRenderer
	dst []byte
}

func (r *renderState) openTagAttr(name atom.Atom) {
	start := len(r.dst)
	r.dst = append(r.dst, '<')
	r.dst = append(r.dst, name.String()...)
	if r.FilterTag != nil && r.FilterTag(name.String()) {
		r.dst = r.dst[:start]
		r.dst = append(r.dst, "&lt;"...)
		r.dst = append(r.dst, name.String()...)
	}
}

func (r *renderState) openTag(name atom.Atom) {
	r.openTagAttr(name)
	r.dst = append(r.dst, '>')
}

func (r *renderState) closeTag(name atom.Atom) {
	if r.FilterTag != nil && r.FilterTag(name.String()) {
		r.dst = append(r.dst, "&lt;/"...)
	} else {
		r.dst = append(r.dst, "</"...)
	}
	r.dst = append(r.dst, name.String()...)
	r.dst = append(r.dst, '>')
}

func (r *renderState) newline() {
	if len(r.dst) > 0 && r.dst[len(r.dst)-1] != '\n' {
		r.dst = append(r.dst, '\n')
	}
}

var headerTags = [...]atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

func (r *renderState) block(b *Block) {
	switch b.Kind() {
	case ParagraphKind:
		r.openTag(atom.P)
		r.inlines(b.Inlines())
		r.closeTag(atom.P)
		r.dst = append(r.dst, '\n')
	case RuleKind:
		r.openTag(atom.Hr)
		r.dst = append(r.dst, '\n')
	case HeaderKind:
		tagName := headerTags[min(max(b.HeaderLevel(), 1), len(headerTags))-1]
		r.openTag(tagName)
		r.inlines(b.Inlines())
		r.closeTag(tagName)
		r.dst = append(r.dst, '\n')
	case CodeKind:
		r.openTag(atom.Pre)
		r.openTagAttr(atom.Code)
		if words := strings.Fields(PlainText(b.InfoString())); len(words) > 0 {
			r.dst = append(r.dst, ` class="language-`...)
			r.dst = appendEscaped(r.dst, words[0])
			r.dst = append(r.dst, `"`...)
		}
		r.dst = append(r.dst, '>')
		r.dst = appendEscaped(r.dst, b.Text())
		r.closeTag(atom.Code)
		r.closeTag(atom.Pre)
		r.dst = append(r.dst, '\n')
	case BlockQuoteKind:
		r.openTag(atom.Blockquote)
		r.dst = append(r.dst, '\n')
		for _, c := range b.Blocks() {
			r.block(c)
		}
		r.closeTag(atom.Blockquote)
		r.dst = append(r.dst, '\n')
	case ListKind:
		items := b.Items()
		var tagName atom.Atom
		if typ := items[0].Type(); typ.IsOrdered() {
			tagName = atom.Ol
			r.openTagAttr(tagName)
			if n := typ.Start(); n != 1 {
				r.dst = append(r.dst, ` start="`...)
				r.dst = strconv.AppendInt(r.dst, int64(n), 10)
				r.dst = append(r.dst, `"`...)
			}
			r.dst = append(r.dst, '>')
		} else {
			tagName = atom.Ul
			r.openTag(tagName)
		}
		r.dst = append(r.dst, '\n')
		for _, item := range items {
			r.listItem(item, b.IsTight())
		}
		r.closeTag(tagName)
		r.dst = append(r.dst, '\n')
	case HTMLBlockKind:
		if !r.IgnoreRaw {
			r.raw(b.Text())
			r.newline()
		}
	}
}

// listItem renders a list item.
// Paragraphs in tight lists are rendered without <p> tags.
func (r *renderState) listItem(item *ListItem, tight bool) {
	r.openTag(atom.Li)
	for i, c := range item.Blocks() {
		if tight && c.Kind() == ParagraphKind {
			if i > 0 {
				r.newline()
			}
			r.inlines(c.Inlines())
			continue
		}
		if i == 0 {
			r.dst = append(r.dst, '\n')
		} else {
			r.newline()
		}
		r.block(c)
	}
	r.closeTag(atom.Li)
	r.dst = append(r.dst, '\n')
}

func (r *renderState) inlines(inlines []*Inline) {
	for _, c := range inlines {
		r.inline(c)
	}
}

func (r *renderState) inline(inline *Inline) {
	switch inline.Kind() {
	case TextKind:
		r.text(inline.Text())
	case HTMLTagKind:
		if !r.IgnoreRaw {
			r.raw(inline.Text())
		}
	case EmphasisKind:
		r.openTag(atom.Em)
		r.inlines(inline.Children())
		r.closeTag(atom.Em)
	case StrongKind:
		r.openTag(atom.Strong)
		r.inlines(inline.Children())
		r.closeTag(atom.Strong)
	case CodeSpanKind:
		r.openTag(atom.Code)
		r.dst = appendEscaped(r.dst, inline.Text())
		r.closeTag(atom.Code)
	case URIAutolinkKind, EmailAutolinkKind:
		destination := inline.Text()
		r.openTagAttr(atom.A)
		r.dst = append(r.dst, ` href="`...)
		if inline.Kind() == EmailAutolinkKind {
			r.dst = append(r.dst, "mailto:"...)
		}
		r.dst = appendEscaped(r.dst, NormalizeURI(destination))
		r.dst = append(r.dst, `">`...)
		r.dst = appendEscaped(r.dst, destination)
		r.closeTag(atom.A)
	}
}

// text renders a text node,
// treating each newline as a soft line break.
func (r *renderState) text(s string) {
	const hardLineBreak = "<br>\n"
	for {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			r.dst = appendEscaped(r.dst, s)
			return
		}
		r.dst = appendEscaped(r.dst, s[:i])
		switch r.SoftBreakBehavior {
		case SoftBreakHarden:
			r.dst = append(r.dst, hardLineBreak...)
		case SoftBreakSpace:
			r.dst = append(r.dst, ' ')
		default:
			r.dst = append(r.dst, '\n')
		}
		s = s[i+1:]
	}
}

func (r *renderState) raw(rawHTML string) {
	if r.FilterTag == nil {
		r.dst = append(r.dst, rawHTML...)
	} else {
		r.filterRaw(rawHTML)
	}
}

// filterRaw performs the tag filtering
// described in https://github.github.com/gfm/#disallowed-raw-html-extension-.
//
// It cannot use a conventional HTML parser,
// since raw HTML in Markdown may be incomplete or start in the middle of a tag.
func (r *renderState) filterRaw(rawHTML string) {
	const (
		copyState = iota
		commentState
		piState
		declState
		cdataState
	)
	state := copyState
	copyStart := 0
	for i := 0; i < len(rawHTML); {
		switch state {
		case copyState:
			if rawHTML[i] != '<' {
				i++
				continue
			}
			switch rest := rawHTML[i:]; {
			case strings.HasPrefix(rest, "<![CDATA["):
				state = cdataState
				i += len("<![CDATA[")
			case strings.HasPrefix(rest, "<!--"):
				state = commentState
				i += len("<!--")
			case strings.HasPrefix(rest, "<?"):
				state = piState
				i += len("<?")
			case strings.HasPrefix(rest, "<!"):
				state = declState
				i += len("<!")
			default:
				tagNameStart := i + 1
				if tagNameStart < len(rawHTML) && rawHTML[tagNameStart] == '/' {
					tagNameStart++
				}
				tagEnd := len(rawHTML)
				if j := strings.IndexByte(rawHTML[tagNameStart:], '>'); j >= 0 {
					tagEnd = tagNameStart + j + len(">")
				}
				tagNameEnd := tagNameStart
				for tagNameEnd < tagEnd && (isASCIILetter(rawHTML[tagNameEnd]) || isASCIIDigit(rawHTML[tagNameEnd]) || rawHTML[tagNameEnd] == '-') {
					tagNameEnd++
				}
				if r.FilterTag(strings.ToLower(rawHTML[tagNameStart:tagNameEnd])) {
					r.dst = append(r.dst, rawHTML[copyStart:i]...)
					r.dst = append(r.dst, "&lt;"...)
					r.dst = append(r.dst, rawHTML[i+1:tagEnd]...)
					copyStart = tagEnd
				}
				i = tagEnd
			}
		case commentState:
			if strings.HasPrefix(rawHTML[i:], "-->") {
				state = copyState
				i += len("-->")
			} else {
				i++
			}
		case piState:
			if strings.HasPrefix(rawHTML[i:], "?>") {
				state = copyState
				i += len("?>")
			} else {
				i++
			}
		case declState:
			if rawHTML[i] == '>' {
				state = copyState
			}
			i++
		case cdataState:
			if strings.HasPrefix(rawHTML[i:], "]]>") {
				state = copyState
				i += len("]]>")
			} else {
				i++
			}
		default:
			panic("unreachable")
		}
	}
	r.dst = append(r.dst, rawHTML[copyStart:]...)
}

var htmlEscaper = bytereplacer.New(
	"&", "&amp;",
	`'`, "&#39;", // "&#39;" is shorter than "&apos;" and apos was not in HTML until HTML5.
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

// appendEscaped appends the HTML-escaped version of s to dst.
func appendEscaped(dst []byte, s string) []byte {
	if !strings.ContainsAny(s, `&'<>"`) {
		return append(dst, s...)
	}
	return append(dst, htmlEscaper.Replace([]byte(s))...)
}

// PlainText returns the concatenated text content of inline nodes,
// without any markup.
func PlainText(inlines []*Inline) string {
	sb := new(strings.Builder)
	stack := make([]*Inline, 0, len(inlines))
	for i := len(inlines) - 1; i >= 0; i-- {
		stack = append(stack, inlines[i])
	}
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch curr.Kind() {
		case EmphasisKind, StrongKind:
			for i := curr.ChildCount() - 1; i >= 0; i-- {
				stack = append(stack, curr.Child(i))
			}
		default:
			sb.WriteString(curr.Text())
		}
	}
	return sb.String()
}

// FilterTagGFM performs the same tag filtering as the
// GitHub Flavored Markdown [tagfilter extension].
// It is suitable for use as the FilterTag field in [HTMLRenderer].
//
// [tagfilter extension]: https://github.github.com/gfm/#disallowed-raw-html-extension-
func FilterTagGFM(tag string) bool {
	switch atom.Lookup([]byte(tag)) {
	case atom.Title, atom.Textarea, atom.Style, atom.Xmp, atom.Iframe,
		atom.Noembed, atom.Noframes, atom.Script, atom.Plaintext:
		return true
	default:
		return false
	}
}

// SoftBreakBehavior is an enumeration of rendering styles
// for line breaks inside a paragraph.
type SoftBreakBehavior int

const (
	// SoftBreakPreserve indicates that a soft line break should be rendered as-is.
	SoftBreakPreserve SoftBreakBehavior = iota
	// SoftBreakSpace indicates that a soft line break should be rendered as a space.
	SoftBreakSpace
	// SoftBreakHarden indicates that a soft line break should be rendered as a hard line break.
	SoftBreakHarden
)

var softBreakNames = [...]string{
	SoftBreakPreserve: "preserve",
	SoftBreakSpace:    "space",
	SoftBreakHarden:   "harden",
}

func (b SoftBreakBehavior) String() string {
	if b < 0 || int(b) >= len(softBreakNames) {
		return "SoftBreakBehavior(" + strconv.Itoa(int(b)) + ")"
	}
	return softBreakNames[b]
}

// ParseSoftBreakBehavior returns the behavior with the given name
// ("preserve", "space", or "harden").
func ParseSoftBreakBehavior(name string) (SoftBreakBehavior, error) {
	for i, s := range softBreakNames {
		if strings.EqualFold(s, name) {
			return SoftBreakBehavior(i), nil
		}
	}
	return 0, fmt.Errorf("unknown soft break behavior %q", name)
}

// NormalizeURI percent-encodes the bytes of s that are neither
// reserved nor unreserved URI characters (RFC 3986),
// so that autolink destinations can be used in href attributes.
// Existing percent escapes are kept.
// A '%' that does not begin an escape is encoded as "%25".
func NormalizeURI(s string) string {
	return string(appendNormalizedURI(make([]byte, 0, len(s)), s))
}

const (
	uriSafeChars = ";/?:@&=+$,-_.!~*'()#"
	upperHex     = "0123456789ABCDEF"
)

func appendNormalizedURI(dst []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '%' && isPercentEscape(s[i:]):
			dst = append(dst, s[i:i+3]...)
			i += 2
		case isASCIILetter(c) || isASCIIDigit(c) || strings.IndexByte(uriSafeChars, c) >= 0:
			dst = append(dst, c)
		default:
			dst = append(dst, '%', upperHex[c>>4], upperHex[c&0x0f])
		}
	}
	return dst
}

// isPercentEscape reports whether s begins with '%' and two hex digits.
func isPercentEscape(s string) bool {
	return len(s) >= 3 && s[0] == '%' && isHexDigit(s[1]) && isHexDigit(s[2])
}

func isHexDigit(c byte) bool {
	return isASCIIDigit(c) || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
