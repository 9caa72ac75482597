package core

// streaming.go provides readers that clean an upload stream before the
// CSV parser sees it:
//
//   - sanitizeReader: strips a UTF-8 BOM and replaces invalid UTF-8
//     sequences with '?' on the fly
//   - limitReader: fails with ErrFileTooLarge once a byte budget is
//     exceeded, without buffering the file
//
// Both operate in O(buffer_size) memory regardless of file size.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

// utf8BOM is the byte order mark commonly prepended by Windows programs.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// sanitizeReader wraps an io.Reader so downstream parsers only ever see
// clean UTF-8. Invalid sequences are replaced with '?' to avoid byte
// expansion mid-stream.
type sanitizeReader struct {
	br       *bufio.Reader
	leftover []byte // encoded rune that did not fit the caller's buffer
}

// newSanitizeReader creates a sanitizing reader and consumes a leading
// BOM if present.
func newSanitizeReader(r io.Reader) *sanitizeReader {
	br := bufio.NewReader(r)
	if peek, err := br.Peek(3); err == nil && bytes.Equal(peek, utf8BOM) {
		br.Discard(3)
	}
	return &sanitizeReader{br: br}
}

// Read implements io.Reader.
func (s *sanitizeReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	n := 0
	if len(s.leftover) > 0 {
		c := copy(p, s.leftover)
		s.leftover = s.leftover[c:]
		n += c
		if n == len(p) {
			return n, nil
		}
	}

	var buf [utf8.UTFMax]byte
	for n < len(p) {
		r, size, err := s.br.ReadRune()
		if err != nil {
			if n > 0 {
				return n, nil
			}
			return 0, err
		}

		// ReadRune reports an invalid sequence as (RuneError, 1)
		if r == utf8.RuneError && size == 1 {
			p[n] = '?'
			n++
			continue
		}

		enc := utf8.EncodeRune(buf[:], r)
		c := copy(p[n:], buf[:enc])
		n += c
		if c < enc {
			s.leftover = append(s.leftover[:0], buf[c:enc]...)
			return n, nil
		}
	}
	return n, nil
}

// limitReader reads at most max bytes before returning ErrFileTooLarge.
// Unlike io.LimitReader it reports the overflow as an error instead of
// silently truncating, so the caller can surface it to the user.
type limitReader struct {
	r         io.Reader
	remaining int64
}

func newLimitReader(r io.Reader, max int64) *limitReader {
	return &limitReader{r: r, remaining: max}
}

// Read implements io.Reader.
func (l *limitReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, ErrFileTooLarge
	}
	// Allow one extra byte through so the overflow is observable
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, ErrFileTooLarge
	}
	return n, err
}
