// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package rstdoc

import (
	"io"
	"strings"

	"github.com/golangee/rstdoc/encoder"
	"github.com/pkg/errors"
)

// Convert resolves text and renders it in the given format. The tree is
// released before Convert returns.
func Convert(text string, opts Options, format encoder.Format) (string, error) {
	var sb strings.Builder
	if err := ConvertTo(&sb, text, opts, format); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// ConvertTo is like Convert but writes the rendition to w.
func ConvertTo(w io.Writer, text string, opts Options, format encoder.Format) error {
	d, err := Resolve(text, opts)
	if err != nil {
		return err
	}

	defer d.Close()

	if err := encoder.Render(w, d.Root, format, opts.Extensions); err != nil {
		return errors.Wrapf(err, "cannot render %s as %s", describe(opts.File), format)
	}

	return nil
}
