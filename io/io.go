// Package io offers serialization interfaces for halofold objects.
package io

import (
	"io"
)

// WriterRawTo is the interface that wraps the WriteRawTo method.
//
// WriteRawTo writes data to w until there's no more data to write or
// when an error occurs. The return value n is the number of bytes
// written. Any error encountered during the write is also returned.
//
// WriteRawTo will not compress curve points (as opposed to WriteTo)
type WriterRawTo interface {
	WriteRawTo(w io.Writer) (n int64, err error)
}

// UnsafeReaderFrom is the interface that wraps the UnsafeReadFrom method.
//
// UnsafeReadFrom reads data from reader but doesn't perform any checks, such as
// subgroup checks for elliptic curve points for example.
type UnsafeReaderFrom interface {
	UnsafeReadFrom(r io.Reader) (int64, error)
}
