// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package doc

// DestroyTree releases root, every node reachable through its children and
// next-sibling chains and every payload owned resource. A nil root is a no-op.
func DestroyTree(root *Node) {
	if root == nil {
		return
	}

	a := arenaOf(root)
	a.destroySeq(root)
	a.compact()
}

// DestroyNode releases only the payload of n and n itself. Children and
// siblings are not followed; callers detach them first when they are
// redirected into another parent. A nil node is a no-op.
func DestroyNode(n *Node) {
	if n == nil {
		return
	}

	a := arenaOf(n)
	if !n.live {
		a.violation(n, "destroy of a released node")
		return
	}

	a.releasePayload(n)
	a.releaseNode(n)
	a.compact()
}

func arenaOf(n *Node) *Arena {
	if n.arena == nil {
		panic("doc: node was not allocated by an arena")
	}

	return n.arena
}

// destroySeq walks both axes with an explicit work list, so neither long
// sibling chains nor deep nesting grow the call stack.
func (a *Arena) destroySeq(seq *Node) {
	work := []*Node{seq}

	for len(work) > 0 {
		n := work[len(work)-1]
		work = work[:len(work)-1]

		for n != nil {
			if !n.live {
				a.violation(n, "destroy of a released node")
				break
			}

			next := n.next
			if n.first != nil {
				work = append(work, n.first)
			}

			a.releasePayload(n)
			a.releaseNode(n)
			n = next
		}
	}
}

// releasePayload releases the owned buffers of n. A link label is destroyed
// completely before the url and title buffers of its link.
func (a *Arena) releasePayload(n *Node) {
	if l, ok := n.payload.(Link); ok && l.Label != nil {
		a.destroySeq(l.Label)
	}

	for _, f := range n.tag.Payload().fields() {
		a.releaseBuffer(n.tag, f)
	}
}
