// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package rstdoc_test

import (
	"fmt"

	"github.com/golangee/rstdoc"
	"github.com/golangee/rstdoc/doc"
	"github.com/golangee/rstdoc/encoder"
)

func ExampleConvert() {
	out, err := rstdoc.Convert("Hello *world*, see gophers_.\n\n.. _gophers: https://go.dev\n", rstdoc.Options{}, encoder.HTML)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Print(out)
	// Output: <p>Hello <em>world</em>, see <a href="https://go.dev">gophers</a>.</p>
}

func ExampleResolve() {
	d, err := rstdoc.Resolve("Some ``code`` here.\n", rstdoc.Options{Extensions: doc.Smart})
	if err != nil {
		fmt.Println(err)
		return
	}

	defer d.Close()

	for n := d.Root.FirstChild().FirstChild(); n != nil; n = n.Next() {
		fmt.Println(n.Tag())
	}
	// Output:
	// STR
	// SPACE
	// CODE
	// SPACE
	// STR
}
