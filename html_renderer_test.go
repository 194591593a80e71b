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
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html/atom"
	"zombiezen.com/go/mdtree/internal/normhtml"
)

func TestRenderHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Empty",
			input: "",
			want:  "",
		},
		{
			name:  "Paragraph",
			input: "Hello, **World**!\n",
			want:  "<p>Hello, <strong>World</strong>!</p>\n",
		},
		{
			name:  "Header",
			input: "# Hi\n",
			want:  "<h1>Hi</h1>\n",
		},
		{
			name:  "SetextHeader",
			input: "Hi\n--\n",
			want:  "<h2>Hi</h2>\n",
		},
		{
			name:  "Rule",
			input: "***\n",
			want:  "<hr>\n",
		},
		{
			name:  "TightList",
			input: "- a\n- b\n",
			want:  "<ul>\n<li>a</li>\n<li>b</li>\n</ul>\n",
		},
		{
			name:  "LooseList",
			input: "- a\n\n- b\n",
			want:  "<ul>\n<li>\n<p>a</p>\n</li>\n<li>\n<p>b</p>\n</li>\n</ul>\n",
		},
		{
			name:  "OrderedListStart",
			input: "3. a\n",
			want:  "<ol start=\"3\">\n<li>a</li>\n</ol>\n",
		},
		{
			name:  "OrderedListDefaultStart",
			input: "1) a\n",
			want:  "<ol>\n<li>a</li>\n</ol>\n",
		},
		{
			name:  "NestedList",
			input: "- a\n  - b\n",
			want:  "<ul>\n<li>a\n<ul>\n<li>b</li>\n</ul>\n</li>\n</ul>\n",
		},
		{
			name:  "FencedCode",
			input: "```go\nx < y\n```\n",
			want:  "<pre><code class=\"language-go\">x &lt; y\n</code></pre>\n",
		},
		{
			name:  "IndentedCode",
			input: "    a & b\n",
			want:  "<pre><code>a &amp; b\n</code></pre>\n",
		},
		{
			name:  "BlockQuote",
			input: "> a\n",
			want:  "<blockquote>\n<p>a</p>\n</blockquote>\n",
		},
		{
			name:  "URIAutolink",
			input: "<http://example.com/ä>\n",
			want:  "<p><a href=\"http://example.com/%C3%A4\">http://example.com/ä</a></p>\n",
		},
		{
			name:  "EmailAutolink",
			input: "<me@example.com>\n",
			want:  "<p><a href=\"mailto:me@example.com\">me@example.com</a></p>\n",
		},
		{
			name:  "CodeSpan",
			input: "`a<b`\n",
			want:  "<p><code>a&lt;b</code></p>\n",
		},
		{
			name:  "InlineTags",
			input: "a <b>c</b>\n",
			want:  "<p>a <b>c</b></p>\n",
		},
		{
			name:  "HTMLBlock",
			input: "<div>\nx\n</div>\n",
			want:  "<div>\nx\n</div>\n",
		},
		{
			name:  "Escaping",
			input: "\"Tom\" & 'Jerry'\n",
			want:  "<p>&quot;Tom&quot; &amp; &#39;Jerry&#39;</p>\n",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := Parse([]byte(test.input))
			buf := new(bytes.Buffer)
			if err := RenderHTML(buf, doc); err != nil {
				t.Error("RenderHTML:", err)
			}
			if diff := cmp.Diff(test.want, buf.String()); diff != "" {
				t.Errorf("output (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSoftBreakBehavior(t *testing.T) {
	tests := []struct {
		name     string
		behavior SoftBreakBehavior
		input    string
		want     string
	}{
		{
			name:     "PreserveLF",
			behavior: SoftBreakPreserve,
			input:    "Hello\nWorld!",
			want:     "<p>Hello\nWorld!</p>\n",
		},
		{
			name:     "PreserveCRLF",
			behavior: SoftBreakPreserve,
			input:    "Hello\r\nWorld!",
			want:     "<p>Hello\nWorld!</p>\n",
		},
		{
			name:     "Space",
			behavior: SoftBreakSpace,
			input:    "Hello\r\nWorld!",
			want:     "<p>Hello World!</p>\n",
		},
		{
			name:     "Harden",
			behavior: SoftBreakHarden,
			input:    "Hello\r\nWorld!",
			want:     "<p>Hello<br>\nWorld!</p>\n",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := Parse([]byte(test.input))
			r := &HTMLRenderer{
				SoftBreakBehavior: test.behavior,
			}
			buf := new(bytes.Buffer)
			if err := r.Render(buf, doc); err != nil {
				t.Error("Render:", err)
			}
			if got := buf.String(); got != test.want {
				t.Errorf("output = %q; want %q", got, test.want)
			}
		})
	}
}

func TestParseSoftBreakBehavior(t *testing.T) {
	for _, b := range []SoftBreakBehavior{SoftBreakPreserve, SoftBreakSpace, SoftBreakHarden} {
		got, err := ParseSoftBreakBehavior(b.String())
		if got != b || err != nil {
			t.Errorf("ParseSoftBreakBehavior(%q) = %v, %v; want %v, <nil>", b.String(), got, err, b)
		}
	}
	if got, err := ParseSoftBreakBehavior("HARDEN"); got != SoftBreakHarden || err != nil {
		t.Errorf("ParseSoftBreakBehavior(\"HARDEN\") = %v, %v; want harden, <nil>", got, err)
	}
	if _, err := ParseSoftBreakBehavior("bogus"); err == nil {
		t.Error("ParseSoftBreakBehavior(\"bogus\") did not return an error")
	}
}

func TestHTMLRendererIgnoreRaw(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "NoRaw",
			input: "Hello World!",
			want:  "<p>Hello World!</p>\n",
		},
		{
			name:  "MarkdownStrong",
			input: "Hello **World**!",
			want:  "<p>Hello <strong>World</strong>!</p>\n",
		},
		{
			name:  "HTMLStrong",
			input: "Hello <strong>World</strong>!",
			want:  "<p>Hello World!</p>\n",
		},
		{
			name:  "HTMLBlock",
			input: "<table>\n<tr><td>Hello</td></tr>\n</table>",
			want:  "",
		},
		{
			name:  "Mixed",
			input: "<div>x</div>\n\na <b>c</b>\n",
			want:  "<p>a c</p>\n",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := Parse([]byte(test.input))
			r := &HTMLRenderer{
				IgnoreRaw: true,
			}
			buf := new(bytes.Buffer)
			if err := r.Render(buf, doc); err != nil {
				t.Error("Render:", err)
			}
			if got := buf.String(); got != test.want {
				t.Errorf("output = %q; want %q", got, test.want)
			}
		})
	}
}

// TestHTMLRendererIgnoreRawElements verifies that
// with IgnoreRaw set, the output only uses elements the renderer produces itself.
func TestHTMLRendererIgnoreRawElements(t *testing.T) {
	allowed := map[atom.Atom]struct{}{
		atom.P: {}, atom.H1: {}, atom.H2: {}, atom.Hr: {},
		atom.Pre: {}, atom.Code: {}, atom.Blockquote: {},
		atom.Ol: {}, atom.Ul: {}, atom.Li: {},
		atom.Em: {}, atom.Strong: {}, atom.A: {}, atom.Br: {},
	}
	const input = "# Title <script>x</script>\n" +
		"\n" +
		"<iframe src=\"x\">\n" +
		"\n" +
		"> quote with <img src=x onerror=alert(1)> and *emph*\n" +
		"\n" +
		"1. <b>one</b>\n" +
		"2. `<i>`\n" +
		"\n" +
		"```\n<style>\n```\n" +
		"\n" +
		"Sub\n===\n" +
		"\n" +
		"<http://example.com/\"><x>\n" +
		"\n" +
		"***\n"

	doc := Parse([]byte(input))
	r := &HTMLRenderer{
		IgnoreRaw:         true,
		SoftBreakBehavior: SoftBreakHarden,
	}
	buf := new(bytes.Buffer)
	if err := r.Render(buf, doc); err != nil {
		t.Fatal("Render:", err)
	}
	for _, name := range normhtml.Elements(buf.Bytes()) {
		if _, ok := allowed[atom.Lookup([]byte(name))]; !ok {
			t.Errorf("output contains <%s>:\n%s", name, buf)
		}
	}
}

// TestRenderHTMLReference compares output against
// the CommonMark reference renderer for inputs both support.
func TestRenderHTMLReference(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Rules",
			input: "***\n---\n___\n",
			want:  "<hr />\n<hr />\n<hr />\n",
		},
		{
			name:  "Headers",
			input: "# foo\n## foo\n### foo\n",
			want:  "<h1>foo</h1>\n<h2>foo</h2>\n<h3>foo</h3>\n",
		},
		{
			name:  "SetextHeader",
			input: "Foo *bar*\n=========\n",
			want:  "<h1>Foo <em>bar</em></h1>\n",
		},
		{
			name:  "IndentedCode",
			input: "    a simple\n      indented code block\n",
			want:  "<pre><code>a simple\n  indented code block\n</code></pre>\n",
		},
		{
			name:  "FencedCode",
			input: "```ruby\ndef foo(x)\n  return 3\nend\n```\n",
			want:  "<pre><code class=\"language-ruby\">def foo(x)\n  return 3\nend\n</code></pre>\n",
		},
		{
			name:  "BlockQuote",
			input: "> # Foo\n> bar\n> baz\n",
			want:  "<blockquote>\n<h1>Foo</h1>\n<p>bar\nbaz</p>\n</blockquote>\n",
		},
		{
			name:  "TightList",
			input: "- foo\n- bar\n",
			want:  "<ul>\n<li>foo</li>\n<li>bar</li>\n</ul>\n",
		},
		{
			name:  "LooseList",
			input: "- a\n- b\n\n- c\n",
			want:  "<ul>\n<li>\n<p>a</p>\n</li>\n<li>\n<p>b</p>\n</li>\n<li>\n<p>c</p>\n</li>\n</ul>\n",
		},
		{
			name:  "OrderedList",
			input: "2. a\n3. b\n",
			want:  "<ol start=\"2\">\n<li>a</li>\n<li>b</li>\n</ol>\n",
		},
		{
			name:  "Emphasis",
			input: "*foo bar* and **baz**\n",
			want:  "<p><em>foo bar</em> and <strong>baz</strong></p>\n",
		},
		{
			name:  "CodeSpan",
			input: "`foo`\n",
			want:  "<p><code>foo</code></p>\n",
		},
		{
			name:  "URIAutolink",
			input: "<http://foo.bar.baz>\n",
			want:  "<p><a href=\"http://foo.bar.baz\">http://foo.bar.baz</a></p>\n",
		},
		{
			name:  "EmailAutolink",
			input: "<foo@bar.example.com>\n",
			want:  "<p><a href=\"mailto:foo@bar.example.com\">foo@bar.example.com</a></p>\n",
		},
		{
			name:  "Quotes",
			input: "\"Hello\" & 'bye'\n",
			want:  "<p>&quot;Hello&quot; &amp; 'bye'</p>\n",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := Parse([]byte(test.input))
			buf := new(bytes.Buffer)
			if err := RenderHTML(buf, doc); err != nil {
				t.Error("RenderHTML:", err)
			}
			got := string(normhtml.Normalize(buf.Bytes()))
			want := string(normhtml.Normalize([]byte(test.want)))
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Input:\n%s\nOutput (-want +got):\n%s", test.input, diff)
			}
		})
	}
}

func TestHTMLRendererFilter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "ScriptBlock",
			input: "<script>alert(1)</script>\n",
			want:  "&lt;script>alert(1)&lt;/script>\n",
		},
		{
			name:  "Inline",
			input: "<strong> <title> <style> <em>\n",
			want:  "<p><strong> &lt;title> &lt;style> <em></p>\n",
		},
		{
			name:  "MixedCase",
			input: "a <XMP> b\n",
			want:  "<p>a &lt;XMP> b</p>\n",
		},
		{
			name:  "Comment",
			input: "a <!-- <script> --> b\n",
			want:  "<p>a <!-- <script> --> b</p>\n",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := Parse([]byte(test.input))
			r := &HTMLRenderer{
				FilterTag: FilterTagGFM,
			}
			buf := new(bytes.Buffer)
			if err := r.Render(buf, doc); err != nil {
				t.Error("Render:", err)
			}
			if diff := cmp.Diff(test.want, buf.String()); diff != "" {
				t.Errorf("output (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterTagGFM(t *testing.T) {
	tests := []struct {
		tag  string
		want bool
	}{
		{"script", true},
		{"title", true},
		{"textarea", true},
		{"plaintext", true},
		{"b", false},
		{"div", false},
		{"", false},
	}
	for _, test := range tests {
		if got := FilterTagGFM(test.tag); got != test.want {
			t.Errorf("FilterTagGFM(%q) = %t; want %t", test.tag, got, test.want)
		}
	}
}

func TestNormalizeURI(t *testing.T) {
	tests := []struct {
		s    string
		want string
	}{
		{"http://example.com/", "http://example.com/"},
		{"http://example.com/ä", "http://example.com/%C3%A4"},
		{"http://example.com/a b", "http://example.com/a%20b"},
		{"http://example.com/%20", "http://example.com/%20"},
		{"http://example.com/%2F", "http://example.com/%2F"},
		{"http://example.com/%zz", "http://example.com/%25zz"},
		{"http://example.com/\\", "http://example.com/%5C"},
		{"http://example.com/%", "http://example.com/%25"},
		{"http://example.com/%4", "http://example.com/%254"},
		{"http://example.com/%e2%82%ac", "http://example.com/%e2%82%ac"},
		{"http://example.com/€", "http://example.com/%E2%82%AC"},
	}
	for _, test := range tests {
		if got := NormalizeURI(test.s); got != test.want {
			t.Errorf("NormalizeURI(%q) = %q; want %q", test.s, got, test.want)
		}
	}
}

func TestPlainText(t *testing.T) {
	doc := Parse([]byte("*a **b** `c`* <d@e.f>\n"))
	const want = "a b c d@e.f"
	if got := PlainText(doc.Blocks()[0].Inlines()); got != want {
		t.Errorf("PlainText(...) = %q; want %q", got, want)
	}
}

func TestRenderWriteError(t *testing.T) {
	doc := Parse([]byte("a\n\nb\n"))
	errBoom := errors.New("boom")
	err := RenderHTML(failWriter{errBoom}, doc)
	if !errors.Is(err, errBoom) {
		t.Errorf("RenderHTML(...) = %v; want %v", err, errBoom)
	}
	if err != nil && !strings.HasPrefix(err.Error(), "render markdown to html: ") {
		t.Errorf("RenderHTML(...) = %q; want render prefix", err)
	}
}

type failWriter struct {
	err error
}

func (w failWriter) Write(p []byte) (int, error) {
	return 0, w.err
}
