// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package buffer implements code.Buffer over reserved code memory.
package buffer

type sizeError string

func (s sizeError) Error() string           { return string(s) }
func (s sizeError) BufferSizeLimit() string { return string(s) }

// ErrSizeLimit implements interface{ BufferSizeLimit() string }.  Generated
// code never continues after it has been raised.
var ErrSizeLimit = sizeError("trampoline does not fit in reserved code memory")
