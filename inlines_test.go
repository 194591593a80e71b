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
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDelimiterFlags(t *testing.T) {
	tests := []struct {
		prefix string
		run    string
		suffix string
		want   uint8
	}{
		{"", "***", "abc", openerFlag},
		{"  ", "_", "abc", openerFlag},
		{" ", "_", `"abc"`, openerFlag},
		{`"`, "_", "abc", openerFlag},
		{" abc", "***", "", closerFlag},
		{" abc", "_", "", closerFlag},
		{`"abc"`, "_", "", closerFlag},
		{"abc", "_", ".", closerFlag},
		{" abc", "***", "def", openerFlag | closerFlag},
		{"(", "*", "a", openerFlag | closerFlag},
		{`"abc"`, "_", `"def"`, openerFlag},
		{"abc ", "***", " def", 0},
		{"a ", "_", " b", 0},
		{"abc", "_", "def", 0},
		{"a\n", "*", "b", openerFlag},
	}
	for _, test := range tests {
		source := test.prefix + test.run + test.suffix
		start := len(test.prefix)
		end := start + len(test.run)
		got := emphasisFlags(source, start, end)
		if got != test.want {
			t.Errorf("emphasisFlags(%q, %d, %d) = %#03b; want %#03b", source, start, end, got, test.want)
		}
	}
}

func TestParseInline(t *testing.T) {
	text := func(s string) *Inline { return &Inline{kind: TextKind, text: s} }
	emph := func(children ...*Inline) *Inline { return &Inline{kind: EmphasisKind, children: children} }
	strong := func(children ...*Inline) *Inline { return &Inline{kind: StrongKind, children: children} }
	code := func(s string) *Inline { return &Inline{kind: CodeSpanKind, text: s} }
	uri := func(s string) *Inline { return &Inline{kind: URIAutolinkKind, text: s} }
	email := func(s string) *Inline { return &Inline{kind: EmailAutolinkKind, text: s} }
	tag := func(s string) *Inline { return &Inline{kind: HTMLTagKind, text: s} }

	tests := []struct {
		text string
		want []*Inline
	}{
		{"", nil},
		{"Hello", []*Inline{text("Hello")}},
		{"*a*", []*Inline{emph(text("a"))}},
		{"_a_", []*Inline{emph(text("a"))}},
		{"**a**", []*Inline{strong(text("a"))}},
		{"__a__", []*Inline{strong(text("a"))}},
		{"***a***", []*Inline{emph(strong(text("a")))}},
		{"****a****", []*Inline{strong(strong(text("a")))}},
		{"x *a* y", []*Inline{text("x "), emph(text("a")), text(" y")}},
		{"a*b*c", []*Inline{text("a"), emph(text("b")), text("c")}},
		{"foo_bar_baz", []*Inline{text("foo_bar_baz")}},
		{"a * b", []*Inline{text("a * b")}},
		{"a**b", []*Inline{text("a**b")}},
		{"*a", []*Inline{text("*a")}},
		{"a*", []*Inline{text("a*")}},
		{"*a_", []*Inline{text("*a_")}},
		{"**a*", []*Inline{text("*"), emph(text("a"))}},
		{"*a**", []*Inline{emph(text("a")), text("*")}},
		{"*a **b** c*", []*Inline{emph(text("a "), strong(text("b")), text(" c"))}},
		{"**a *b* c**", []*Inline{strong(text("a "), emph(text("b")), text(" c"))}},
		{"*a _b_ c*", []*Inline{emph(text("a "), emph(text("b")), text(" c"))}},
		{"*a _b* c_", []*Inline{emph(text("a _b")), text(" c_")}},
		{"`code`", []*Inline{code("code")}},
		{"`*a*`", []*Inline{code("*a*")}},
		{"*`a`*", []*Inline{emph(code("a"))}},
		{"`a``b`", []*Inline{code("a``b")}},
		{"``a`b``", []*Inline{code("a`b")}},
		{"`a", []*Inline{text("`a")}},
		{"<http://example.com>", []*Inline{uri("http://example.com")}},
		{"<HTTP://EXAMPLE.COM>", []*Inline{uri("HTTP://EXAMPLE.COM")}},
		{"<foo://bar>", []*Inline{text("<foo://bar>")}},
		{"<http://a b>", []*Inline{text("<http://a b>")}},
		{"<me@example.com>", []*Inline{email("me@example.com")}},
		{"x <me@example.com> y", []*Inline{text("x "), email("me@example.com"), text(" y")}},
		{"a <b>c</b>", []*Inline{text("a "), tag("<b>"), text("c"), tag("</b>")}},
		{`<a href="x">`, []*Inline{tag(`<a href="x">`)}},
		{"<a href>", []*Inline{tag("<a href>")}},
		{"<a/>", []*Inline{tag("<a/>")}},
		{"<!-- x -->", []*Inline{tag("<!-- x -->")}},
		{"<!-- a -- b -->", []*Inline{text("<!-- a -- b -->")}},
		{"<?php x ?>", []*Inline{tag("<?php x ?>")}},
		{"<!DOCTYPE html>", []*Inline{tag("<!DOCTYPE html>")}},
		{"<![CDATA[x]]>", []*Inline{tag("<![CDATA[x]]>")}},
		{"a < b", []*Inline{text("a < b")}},
		{"<a*b>*", []*Inline{text("<a"), emph(text("b>"))}},
		{"`<b>`", []*Inline{code("<b>")}},
		{"<http://a.com/`x`>", []*Inline{uri("http://a.com/`x`")}},
		{"*<b>x</b>*", []*Inline{emph(tag("<b>"), text("x"), tag("</b>"))}},
		{"a\n*b*", []*Inline{text("a\n"), emph(text("b"))}},
	}
	for _, test := range tests {
		got := ParseInline(test.text)
		if diff := cmp.Diff(test.want, got, cmp.AllowUnexported(Inline{})); diff != "" {
			t.Errorf("ParseInline(%q) (-want +got):\n%s", test.text, diff)
		}
	}
}

func TestIsKnownScheme(t *testing.T) {
	tests := []struct {
		scheme string
		want   bool
	}{
		{"http", true},
		{"HTTPS", true},
		{"MailTo", true},
		{"z39.50r", true},
		{"chrome-extension", true},
		{"foo", false},
		{"", false},
	}
	for _, test := range tests {
		if got := IsKnownScheme(test.scheme); got != test.want {
			t.Errorf("IsKnownScheme(%q) = %t; want %t", test.scheme, got, test.want)
		}
	}
}

func TestFindAtomsAgreesWithRescan(t *testing.T) {
	// rescan queries every finder at every step.
	rescan := func(text string) []inlineAtom {
		var atoms []inlineAtom
		for pos := 0; pos < len(text); {
			var best inlineAtom
			found := false
			for _, find := range atomFinders {
				a, ok := find(text, pos)
				if ok && (!found || a.start < best.start) {
					best = a
					found = true
				}
			}
			if !found {
				break
			}
			atoms = append(atoms, best)
			pos = best.end
		}
		return atoms
	}

	tests := []string{
		"",
		"plain text",
		"` <b> ` <b> `",
		"`a` <http://x> `` <b> `` <me@x.y> `",
		"<foo:bar> <http://a> <b>``</b>` <i>`",
		"<a href='`'>` <!-- `` --> ``",
		"``` <b> ` <i> `` <u> ```",
		"<me@x.y <http://a.b <b> <c@d.e> `<x>`",
		strings.Repeat("` <b> ", 50),
		strings.Repeat("`x` <a b='", 50),
		strings.Repeat("<unknown:x> <http://y> ", 20),
	}
	for _, text := range tests {
		want := rescan(text)
		got := findAtoms(text)
		if diff := cmp.Diff(want, got, cmp.AllowUnexported(inlineAtom{})); diff != "" {
			t.Errorf("findAtoms(%q) (-rescan +got):\n%s", text, diff)
		}
	}
}

func TestParseInlineLargeParagraph(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large input in short mode")
	}
	tests := []struct {
		name  string
		text  string
		atoms int
	}{
		{"StrayBacktickWithTags", "`" + strings.Repeat(" <b>", 50000), 50000},
		{"CodeSpansAndOpenAttributes", strings.Repeat("`x` <a b='", 16000), 16000},
		{"UnknownSchemes", strings.Repeat("<foo:x> ", 20000), 0},
		{"UnmatchedOpeners", strings.Repeat("_a ", 30000) + strings.Repeat("b* ", 30000), 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			done := make(chan []*Inline, 1)
			go func() { done <- ParseInline(test.text) }()
			select {
			case got := <-done:
				n := 0
				for _, inline := range got {
					if inline.Kind() != TextKind {
						n++
					}
				}
				if n != test.atoms {
					t.Errorf("ParseInline(...) returned %d non-text nodes; want %d", n, test.atoms)
				}
			case <-time.After(20 * time.Second):
				t.Fatalf("ParseInline on %d bytes did not finish in 20s", len(test.text))
			}
		})
	}
}

func BenchmarkParseInline(b *testing.B) {
	text := "`" + strings.Repeat(" <b>x</b> *y* <http://z>", 4000)
	b.SetBytes(int64(len(text)))
	for i := 0; i < b.N; i++ {
		ParseInline(text)
	}
}
