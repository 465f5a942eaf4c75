package sse

import (
	"bufio"
	"bytes"
	"io"
)

// Reader reads back the data payloads of an event stream written by Writer.
type Reader struct {
	r *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next returns the payload of the next data line. Blank lines, comments and
// other fields are skipped. It returns io.EOF once the body is exhausted.
func (r *Reader) Next() ([]byte, error) {
	for {
		line, err := r.r.ReadBytes('\n')
		if len(line) > 0 {
			line = bytes.TrimRight(line, "\r\n")
			if payload, ok := bytes.CutPrefix(line, []byte("data:")); ok {
				return bytes.TrimPrefix(payload, []byte(" ")), nil
			}
		}
		if err != nil {
			return nil, err
		}
	}
}
