// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package rstdoc

import (
	"io/fs"
	"path"

	"github.com/pkg/errors"
)

var (
	// ErrIncludeDepth is returned when include directives nest deeper than Options.MaxIncludeDepth.
	ErrIncludeDepth = errors.New("include depth exceeded")
	// ErrNoIncluder is returned for an include directive if Options.Includer is nil.
	ErrNoIncluder = errors.New("no includer configured")
)

// An Includer loads the text of an included document. The name is
// already resolved against the including document.
type Includer interface {
	Include(name string) (string, error)
}

// IncluderFunc adapts a function to an Includer.
type IncluderFunc func(name string) (string, error)

func (f IncluderFunc) Include(name string) (string, error) {
	return f(name)
}

type dirIncluder struct {
	fsys fs.FS
}

// DirIncluder loads included documents from a file system.
func DirIncluder(fsys fs.FS) Includer {
	return dirIncluder{fsys: fsys}
}

func (d dirIncluder) Include(name string) (string, error) {
	buf, err := fs.ReadFile(d.fsys, path.Clean(name))
	if err != nil {
		return "", errors.Wrapf(err, "cannot read %q", name)
	}

	return string(buf), nil
}

// includePath resolves the argument of an include directive relative to the including file.
func includePath(from, name string) string {
	if path.IsAbs(name) || from == "" {
		return path.Clean(name)
	}

	return path.Join(path.Dir(from), name)
}
