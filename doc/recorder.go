// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package doc

// Field names an owned buffer of a payload.
type Field int

const (
	FieldStr Field = iota
	FieldURL
	FieldTitle
	FieldLang
	FieldCode
)

func (f Field) String() string {
	switch f {
	case FieldStr:
		return "str"
	case FieldURL:
		return "url"
	case FieldTitle:
		return "title"
	case FieldLang:
		return "lang"
	case FieldCode:
		return "code"
	default:
		return "unknown"
	}
}

// fields returns the owned buffers of a payload kind in release order.
func (k PayloadKind) fields() []Field {
	switch k {
	case PayloadText:
		return []Field{FieldStr}
	case PayloadLink:
		return []Field{FieldURL, FieldTitle}
	case PayloadCode:
		return []Field{FieldLang, FieldCode}
	default:
		return nil
	}
}

// A Recorder observes every allocation and release performed by an Arena.
// It is the accounting hook used to prove that destroyed trees leave nothing behind.
type Recorder interface {
	NodeAllocated(tag Tag)
	NodeReleased(tag Tag)
	BufferAllocated(tag Tag, field Field)
	BufferReleased(tag Tag, field Field)
}

type nopRecorder struct{}

func (nopRecorder) NodeAllocated(Tag)          {}
func (nopRecorder) NodeReleased(Tag)           {}
func (nopRecorder) BufferAllocated(Tag, Field) {}
func (nopRecorder) BufferReleased(Tag, Field)  {}

// Recorders fans out to multiple recorders.
type Recorders []Recorder

func (r Recorders) NodeAllocated(tag Tag) {
	for _, x := range r {
		x.NodeAllocated(tag)
	}
}

func (r Recorders) NodeReleased(tag Tag) {
	for _, x := range r {
		x.NodeReleased(tag)
	}
}

func (r Recorders) BufferAllocated(tag Tag, field Field) {
	for _, x := range r {
		x.BufferAllocated(tag, field)
	}
}

func (r Recorders) BufferReleased(tag Tag, field Field) {
	for _, x := range r {
		x.BufferReleased(tag, field)
	}
}
