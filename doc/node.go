// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package doc

// Payload is the sealed set of node payloads: Text, Link and Code.
// The live variant is determined by the node's Tag.
type Payload interface {
	Kind() PayloadKind
}

// Text is the single buffer of simple text tags like STR or VERBATIM.
type Text string

// Link is the payload of LINK, IMAGE and REFERENCE nodes.
type Link struct {
	// Label is an owned node sequence, e.g. the visible text of a link or the
	// alternative text of an image. It is never an alias into another tree.
	Label *Node
	URL   string
	Title string
}

// Code is the payload of a CODEBLOCK.
type Code struct {
	Lang string
	Str  string
}

func (Text) Kind() PayloadKind { return PayloadText }
func (Link) Kind() PayloadKind { return PayloadLink }
func (Code) Kind() PayloadKind { return PayloadCode }

// A Node is one syntactic unit of a document. It owns its children chain,
// its next-sibling chain and its payload. Nodes are created by an Arena and
// are read-only outside of this package.
type Node struct {
	tag     Tag
	payload Payload
	first   *Node
	next    *Node
	arena   *Arena
	// seq orders the allocations of an arena, see Arena.Mark.
	seq     int
	live    bool
}

func (n *Node) Tag() Tag {
	return n.tag
}

// FirstChild returns the head of the children sequence or nil.
func (n *Node) FirstChild() *Node {
	return n.first
}

// Next returns the following sibling or nil.
func (n *Node) Next() *Node {
	return n.next
}

// Payload returns the live payload, which is nil for structural tags.
func (n *Node) Payload() Payload {
	return n.payload
}

// Text returns the text buffer if the tag carries one.
func (n *Node) Text() (string, bool) {
	t, ok := n.payload.(Text)
	return string(t), ok
}

// Link returns a copy of the link record if the tag carries one.
func (n *Node) Link() (Link, bool) {
	l, ok := n.payload.(Link)
	return l, ok
}

// Code returns a copy of the code record if the tag carries one.
func (n *Node) Code() (Code, bool) {
	c, ok := n.payload.(Code)
	return c, ok
}

// Released reports whether the node was destroyed.
func (n *Node) Released() bool {
	return !n.live
}

// Arena returns the arena that allocated the node.
func (n *Node) Arena() *Arena {
	return n.arena
}

// DetachChildren unlinks and returns the children sequence. Together with
// DestroyNode this recycles a node's content into another parent.
func (n *Node) DetachChildren() *Node {
	c := n.first
	n.first = nil

	return c
}

// DetachNext unlinks and returns the following siblings.
func (n *Node) DetachNext() *Node {
	c := n.next
	n.next = nil

	return c
}

// Len returns the number of nodes in the sibling sequence starting at n.
func Len(n *Node) int {
	c := 0
	for ; n != nil; n = n.next {
		c++
	}

	return c
}

// A List builds a sibling sequence by appending at its tail.
type List struct {
	head, tail *Node
}

// Push appends n together with all of its following siblings.
func (l *List) Push(n *Node) {
	if n == nil {
		return
	}

	if l.head == nil {
		l.head = n
	} else {
		l.tail.next = n
	}

	l.tail = n
	for l.tail.next != nil {
		l.tail = l.tail.next
	}
}

// Head returns the first node of the sequence.
func (l *List) Head() *Node {
	return l.head
}

// Last returns the last node of the sequence.
func (l *List) Last() *Node {
	return l.tail
}

func (l *List) Empty() bool {
	return l.head == nil
}

// Take returns the sequence and resets the builder.
func (l *List) Take() *Node {
	h := l.head
	l.head, l.tail = nil, nil

	return h
}
