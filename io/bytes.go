package io

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// WriteBytesShort writes a length-prefixed byte slice (maximum length of 255)
// to a writer. Used for small metadata blobs such as serialization headers.
func WriteBytesShort(blob []byte, writer io.Writer) (int64, error) {
	if len(blob) > 255 {
		return 0, fmt.Errorf("blob too long %d > 255", len(blob))
	}
	if err := binary.Write(writer, binary.BigEndian, uint8(len(blob))); err != nil {
		return math.MinInt, err // in this case we're not sure how many bytes were written
	}
	n, err := writer.Write(blob)
	return int64(n) + 1, err
}

// ReadBytesShort reads a length-prefixed byte slice (maximum length of 255)
// from a reader.
func ReadBytesShort(reader io.Reader) ([]byte, int64, error) {
	var length uint8
	if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
		return nil, math.MinInt, err // in this case we're not sure how many bytes were read
	}
	if length == 0 {
		return nil, 1, nil
	}
	blob := make([]byte, length)
	dn, err := io.ReadFull(reader, blob)
	return blob, 1 + int64(dn), err
}
