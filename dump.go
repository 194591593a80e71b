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
)

// Dump writes the canonical textual form of doc to w.
//
// Each node is written as a parenthesized list
// of its kind, its attributes, and then its children,
// one node per line and indented two spaces per level:
//
//	(document
//	  (list tight
//	    (item unordered '-'
//	      (paragraph
//	        (text "a")))))
//
// Strings are quoted with Go syntax.
// The output ends with a newline.
func Dump(w io.Writer, doc *Document) error {
	if _, err := w.Write(AppendDump(nil, doc)); err != nil {
		return fmt.Errorf("dump markdown: %w", err)
	}
	return nil
}

// AppendDump appends the canonical textual form of doc to dst
// and returns the result.
// See [Dump] for the format.
func AppendDump(dst []byte, doc *Document) []byte {
	if doc == nil {
		doc = new(Document)
	}
	Walk(doc.AsNode(), &WalkOptions{
		Pre: func(c *Cursor) bool {
			if c.Depth() > 0 {
				dst = append(dst, '\n')
			}
			for i := 0; i < c.Depth(); i++ {
				dst = append(dst, "  "...)
			}
			dst = append(dst, '(')
			dst = appendNodeLabel(dst, c.Node())
			return true
		},
		Post: func(c *Cursor) bool {
			dst = append(dst, ')')
			return true
		},
	})
	return append(dst, '\n')
}

func appendNodeLabel(dst []byte, n Node) []byte {
	switch {
	case n.Document() != nil:
		return append(dst, "document"...)
	case n.Block() != nil:
		b := n.Block()
		dst = append(dst, b.Kind().String()...)
		switch b.Kind() {
		case HeaderKind:
			dst = append(dst, ' ')
			dst = strconv.AppendInt(dst, int64(b.HeaderLevel()), 10)
		case CodeKind, HTMLBlockKind:
			dst = append(dst, ' ')
			dst = strconv.AppendQuote(dst, b.Text())
		case ListKind:
			if b.IsTight() {
				dst = append(dst, " tight"...)
			} else {
				dst = append(dst, " loose"...)
			}
		}
		return dst
	case n.ListItem() != nil:
		dst = append(dst, "item "...)
		return append(dst, n.ListItem().Type().String()...)
	case n.Inline() != nil:
		inline := n.Inline()
		dst = append(dst, inline.Kind().String()...)
		switch inline.Kind() {
		case EmphasisKind, StrongKind:
		default:
			dst = append(dst, ' ')
			dst = strconv.AppendQuote(dst, inline.Text())
		}
		return dst
	default:
		return append(dst, "nil"...)
	}
}
