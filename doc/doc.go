// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

// Package doc contains the document tree model: tagged nodes with children
// and sibling chains, their payloads and the Arena that allocates and
// releases them.
package doc
