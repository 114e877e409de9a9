package shell

import (
	"io"
	"os"
	"unicode/utf8"
)

// Source is where a session reads its input from.
type Source interface {
	ReadRune() (r rune, size int, err error)
}

// A source implementing skipper can discard its remaining input, so that a
// terminating interpreter does not leave it to the next reader.
type skipper interface {
	Skip() error
}

// FileSource reads a file one byte at a time, so that the file offset never
// runs ahead of the input consumed. Children sharing the file see exactly
// what the interpreter has not read.
type FileSource struct {
	f   *os.File
	buf [utf8.UTFMax]byte
}

func NewFileSource(f *os.File) *FileSource { return &FileSource{f: f} }

func (s *FileSource) ReadRune() (rune, int, error) {
	if _, err := io.ReadFull(s.f, s.buf[:1]); err != nil {
		return 0, 0, eofOrErr(err)
	}
	n := seqLen(s.buf[0])
	if n > 1 {
		if _, err := io.ReadFull(s.f, s.buf[1:n]); err != nil {
			return utf8.RuneError, 1, nil
		}
	}
	r, size := utf8.DecodeRune(s.buf[:n])
	return r, size, nil
}

// Skip moves the offset to the end of the file. Pipes and terminals can't
// seek, which is fine.
func (s *FileSource) Skip() error {
	_, err := s.f.Seek(0, io.SeekEnd)
	return err
}

func eofOrErr(err error) error {
	if err == io.ErrUnexpectedEOF {
		return io.EOF
	}
	return err
}

// Length of the UTF-8 sequence started by b.
func seqLen(b byte) int {
	switch {
	case b < 0xC0:
		return 1
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	default:
		return 4
	}
}

// OneLine returns a Source that ends after the first newline of src.
func OneLine(src Source) Source { return &oneLine{src: src} }

type oneLine struct {
	src  Source
	done bool
}

func (s *oneLine) ReadRune() (rune, int, error) {
	if s.done {
		return 0, 0, io.EOF
	}
	r, size, err := s.src.ReadRune()
	if r == '\n' {
		s.done = true
	}
	return r, size, err
}
