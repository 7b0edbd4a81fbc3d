// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package doc

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Stats is a snapshot of the allocation accounting of an Arena.
type Stats struct {
	// Nodes and Buffers count every allocation since the arena was created.
	Nodes   int
	Buffers int
	// LiveNodes and LiveBuffers count what has not been released yet.
	LiveNodes   int
	LiveBuffers int
}

// An Arena allocates the nodes of one resolve call and is the only way to
// release them. An Arena is not safe for concurrent use; each parser
// session owns its own.
type Arena struct {
	recorder Recorder
	log      logrus.FieldLogger
	strict   bool
	// nodes holds the allocations in sequence order. Released entries are
	// dropped by Rollback or by compact once they outnumber the live ones.
	nodes    []*Node
	seq      int
	dead     int
	stats    Stats
}

// Option configures an Arena.
type Option func(a *Arena)

// WithRecorder installs an accounting hook.
func WithRecorder(r Recorder) Option {
	return func(a *Arena) {
		if r != nil {
			a.recorder = r
		}
	}
}

// WithLogger sets the logger used to report contained precondition violations.
func WithLogger(l logrus.FieldLogger) Option {
	return func(a *Arena) {
		if l != nil {
			a.log = l
		}
	}
}

// Strict makes precondition violations, like destroying a node twice, panic
// instead of being logged and ignored.
func Strict(strict bool) Option {
	return func(a *Arena) {
		a.strict = strict
	}
}

// NewArena creates an empty arena.
func NewArena(opts ...Option) *Arena {
	a := &Arena{
		recorder: nopRecorder{},
		log:      logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Stats returns the current accounting snapshot.
func (a *Arena) Stats() Stats {
	return a.stats
}

// Text allocates a node of a text carrying tag, like STR or VERBATIM.
func (a *Arena) Text(tag Tag, s string) *Node {
	return a.alloc(tag, Text(s), nil)
}

// Link allocates a LINK, IMAGE or REFERENCE node. The label sequence is
// adopted and must not be owned by anything else.
func (a *Arena) Link(tag Tag, label *Node, url, title string) *Node {
	a.adopt(label)
	return a.alloc(tag, Link{Label: label, URL: url, Title: title}, nil)
}

// Code allocates a CODEBLOCK.
func (a *Arena) Code(lang, code string) *Node {
	return a.alloc(CODEBLOCK, Code{Lang: lang, Str: code}, nil)
}

// Note allocates a NOTE with its display label and adopts the body sequence.
func (a *Arena) Note(label string, body *Node) *Node {
	a.adopt(body)
	return a.alloc(NOTE, Text(label), body)
}

// Element allocates a structural node and adopts the children sequence.
func (a *Arena) Element(tag Tag, children *Node) *Node {
	a.adopt(children)
	return a.alloc(tag, nil, children)
}

func (a *Arena) alloc(tag Tag, p Payload, children *Node) *Node {
	if !tag.Valid() {
		panic(fmt.Sprintf("doc: invalid tag %d", int(tag)))
	}

	kind := PayloadNone
	if p != nil {
		kind = p.Kind()
	}

	if tag.Payload() != kind {
		panic(fmt.Sprintf("doc: %s carries a %s payload, not %s", tag, tag.Payload(), kind))
	}

	n := &Node{
		tag:     tag,
		payload: p,
		first:   children,
		arena:   a,
		seq:     a.seq,
		live:    true,
	}

	a.seq++
	a.nodes = append(a.nodes, n)
	a.stats.Nodes++
	a.stats.LiveNodes++
	a.recorder.NodeAllocated(tag)

	for _, f := range kind.fields() {
		a.stats.Buffers++
		a.stats.LiveBuffers++
		a.recorder.BufferAllocated(tag, f)
	}

	return n
}

func (a *Arena) adopt(seq *Node) {
	if seq == nil {
		return
	}

	if seq.arena != a {
		panic("doc: cannot adopt a node of another arena, copy it instead")
	}

	if !seq.live {
		panic("doc: cannot adopt a released node")
	}
}

// Copy returns an independently owned deep copy of the sequence starting at
// seq, allocated in a. The source may live in another arena.
func (a *Arena) Copy(seq *Node) *Node {
	var out List

	for n := seq; n != nil; n = n.next {
		var c *Node

		switch p := n.payload.(type) {
		case Text:
			c = a.alloc(n.tag, p, nil)
		case Link:
			c = a.Link(n.tag, a.Copy(p.Label), p.URL, p.Title)
		case Code:
			c = a.Code(p.Lang, p.Str)
		default:
			c = a.Element(n.tag, nil)
		}

		c.first = a.Copy(n.first)
		out.Push(c)
	}

	return out.Head()
}

// Mark identifies the allocation state of an arena, see Rollback.
type Mark int

// Mark returns the current allocation state.
func (a *Arena) Mark() Mark {
	return Mark(a.seq)
}

// Rollback releases every node allocated after m that is still alive. A pass
// that fails uses it to unwind whatever it built.
func (a *Arena) Rollback(m Mark) {
	if int(m) > a.seq || m < 0 {
		return
	}

	i := len(a.nodes) - 1
	for ; i >= 0 && a.nodes[i].seq >= int(m); i-- {
		if n := a.nodes[i]; n.live {
			a.free(n)
		}

		a.nodes[i] = nil
		a.dead--
	}

	a.nodes = a.nodes[:i+1]
}

// compact drops released nodes from the allocation list once they make up
// more than half of it, so an arena reused for many documents stays bounded
// by what is alive.
func (a *Arena) compact() {
	if a.dead <= len(a.nodes)/2 {
		return
	}

	live := a.nodes[:0]
	for _, n := range a.nodes {
		if n.live {
			live = append(live, n)
		}
	}

	clear(a.nodes[len(live):])
	a.nodes = live
	a.dead = 0
}

// Release frees every node of the arena in one bulk operation. The arena
// stays usable afterwards.
func (a *Arena) Release() {
	a.Rollback(0)
}

// free releases the payload buffers and the node itself without following
// any owned pointer. Bulk operations reach the owned nodes through the arena.
func (a *Arena) free(n *Node) {
	for _, f := range n.tag.Payload().fields() {
		a.releaseBuffer(n.tag, f)
	}

	a.releaseNode(n)
}

func (a *Arena) releaseBuffer(tag Tag, f Field) {
	a.stats.LiveBuffers--
	a.recorder.BufferReleased(tag, f)
}

func (a *Arena) releaseNode(n *Node) {
	n.first = nil
	n.next = nil
	n.payload = nil
	n.live = false
	a.dead++
	a.stats.LiveNodes--
	a.recorder.NodeReleased(n.tag)
}

// violation handles a precondition violation: it panics in strict mode and
// otherwise leaves everything untouched.
func (a *Arena) violation(n *Node, msg string) {
	if a.strict {
		panic("doc: " + msg)
	}

	a.log.WithField("tag", n.tag.String()).Warn(msg)
}
