package trace

import (
	"bufio"
	"io"
	"strings"

	"github.com/go-git/go-billy/v5"
)

// A Source yields trace records in order. Next returns io.EOF after the last
// record.
type Source interface {
	Next() (RawRecord, error)
}

// ReaderSource reads one record per line. Blank lines carry no record and are
// skipped, but still count towards line numbers.
type ReaderSource struct {
	scanner    *bufio.Scanner
	lineNumber int
}

// NewReaderSource creates a Source reading from r.
func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{
		scanner: bufio.NewScanner(r),
	}
}

// Next returns the next non-blank line.
func (s *ReaderSource) Next() (RawRecord, error) {
	for s.scanner.Scan() {
		s.lineNumber++

		text := strings.TrimSpace(s.scanner.Text())
		if text == "" {
			continue
		}

		return RawRecord{LineNumber: s.lineNumber, Text: text}, nil
	}

	if err := s.scanner.Err(); err != nil {
		return RawRecord{}, err
	}

	return RawRecord{}, io.EOF
}

// FileSource reads a trace file from a billy filesystem.
type FileSource struct {
	*ReaderSource

	file billy.File
}

// OpenFileSource opens path on fs.
func OpenFileSource(fs billy.Filesystem, path string) (*FileSource, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}

	return &FileSource{
		ReaderSource: NewReaderSource(f),
		file:         f,
	}, nil
}

// Name returns the name of the underlying file.
func (s *FileSource) Name() string {
	return s.file.Name()
}

// Close closes the underlying file.
func (s *FileSource) Close() error {
	return s.file.Close()
}

// NewSliceSource creates a Source over in-memory lines. Line numbers start
// at 1.
func NewSliceSource(lines ...string) *ReaderSource {
	return NewReaderSource(strings.NewReader(strings.Join(lines, "\n")))
}
