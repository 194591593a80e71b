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

// Node is a pointer to a [Document], [Block], [ListItem], or [Inline].
// At most one of the pointers is set.
// Nodes can be compared for equality using the == operator.
type Node struct {
	doc    *Document
	block  *Block
	item   *ListItem
	inline *Inline
}

// Document returns the referenced document
// or nil if the pointer does not reference a document.
func (n Node) Document() *Document {
	return n.doc
}

// Block returns the referenced block
// or nil if the pointer does not reference a block.
func (n Node) Block() *Block {
	return n.block
}

// ListItem returns the referenced list item
// or nil if the pointer does not reference a list item.
func (n Node) ListItem() *ListItem {
	return n.item
}

// Inline returns the referenced inline
// or nil if the pointer does not reference an inline.
func (n Node) Inline() *Inline {
	return n.inline
}

// IsZero reports whether n does not reference anything.
func (n Node) IsZero() bool {
	return n == Node{}
}

// ChildCount returns the number of children the node has.
// Calling ChildCount on the zero value returns 0.
func (n Node) ChildCount() int {
	switch {
	case n.doc != nil:
		return len(n.doc.blocks)
	case n.block != nil:
		return n.block.ChildCount()
	case n.item != nil:
		return len(n.item.blocks)
	case n.inline != nil:
		return n.inline.ChildCount()
	default:
		return 0
	}
}

// Child returns the i'th child of the node.
func (n Node) Child(i int) Node {
	switch {
	case n.doc != nil:
		return n.doc.blocks[i].AsNode()
	case n.block != nil:
		return n.block.Child(i)
	case n.item != nil:
		return n.item.blocks[i].AsNode()
	case n.inline != nil:
		return n.inline.Child(i).AsNode()
	default:
		panic("Child on nil Node")
	}
}

// AsNode converts the document to a [Node] pointer.
func (doc *Document) AsNode() Node {
	return Node{doc: doc}
}

// AsNode converts the block node to a [Node] pointer.
func (b *Block) AsNode() Node {
	return Node{block: b}
}

// AsNode converts the list item to a [Node] pointer.
func (item *ListItem) AsNode() Node {
	return Node{item: item}
}

// AsNode converts the inline node to a [Node] pointer.
func (inline *Inline) AsNode() Node {
	return Node{inline: inline}
}
