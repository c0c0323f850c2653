package progress

import (
	"bufio"
	"errors"
	"io"
)

const readChunkSize = 4096

// lineReader splits a byte stream on CR or LF. Terminators are dropped and
// empty lines are skipped, so CRLF and the bare CR used for in-place
// progress redraws both frame exactly one line.
type lineReader struct {
	r   *bufio.Reader
	buf []byte
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReaderSize(r, readChunkSize)}
}

// next returns the next non-empty line. io.EOF is returned only once no
// bytes remain; a trailing unterminated fragment is returned as a line first.
func (l *lineReader) next() (string, error) {
	l.buf = l.buf[:0]
	for {
		b, err := l.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && len(l.buf) > 0 {
				return string(l.buf), nil
			}
			return "", err
		}
		if b == '\r' || b == '\n' {
			if len(l.buf) > 0 {
				return string(l.buf), nil
			}
			continue
		}
		l.buf = append(l.buf, b)
	}
}
