package linesort

import (
	"bufio"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"
)

// readLine returns the next line without its "\n" terminator and the number
// of bytes consumed from r, terminator included. With trimCR one trailing
// "\r" is removed too. Run files are written with "\n" only, so
// they are read without trimCR to keep payloads ending in "\r" intact.
// io.EOF is only returned when no bytes were left.
func readLine(r *bufio.Reader, trimCR bool) (string, int, error) {
	line, err := r.ReadString('\n')
	n := len(line)
	if err != nil {
		if err != io.EOF || n == 0 {
			return "", n, err
		}
	}
	line = strings.TrimSuffix(line, "\n")
	if trimCR {
		line = strings.TrimSuffix(line, "\r")
	}
	return line, n, nil
}

// runWriter writes sorted records to a run file, one per line
type runWriter struct {
	name  string
	file  *os.File
	w     *bufio.Writer
	buf   []byte
	count int64
}

func newRunWriter(f *os.File, bufferSize int) *runWriter {
	return &runWriter{
		name: f.Name(),
		file: f,
		w:    bufio.NewWriterSize(f, bufferSize),
		buf:  make([]byte, 0, 256),
	}
}

func (w *runWriter) Write(r Record) error {
	w.buf = AppendRecord(w.buf[:0], r)
	w.buf = append(w.buf, '\n')
	if _, err := w.w.Write(w.buf); err != nil {
		return NewDiskError(err, "write run", w.name)
	}
	w.count++
	return nil
}

// Close flushes buffered records and closes the file.
// It is safe to call more than once.
func (w *runWriter) Close() error {
	if w.file == nil {
		return nil
	}
	err := w.w.Flush()
	err = multierr.Append(err, w.file.Close())
	if err != nil {
		err = NewDiskError(err, "close run", w.name)
	}
	w.file = nil
	return err
}

// runReader represents each sorted run on disk and its next record
type runReader struct {
	path string
	file *os.File
	r    *bufio.Reader
	next Record
}

func openRun(path string, bufferSize int) (*runReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewDiskError(err, "open run", path)
	}
	return &runReader{
		path: path,
		file: f,
		r:    bufio.NewReaderSize(f, bufferSize),
	}, nil
}

// advance loads the next record into r.next.
// It returns false once the run is exhausted.
func (r *runReader) advance() (bool, error) {
	line, _, err := readLine(r.r, false)
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, NewDiskError(err, "read run", r.path)
	}
	rec, ok := ParseRecord(line)
	if !ok {
		return false, &RunError{Path: r.path, Line: line}
	}
	r.next = rec
	return true, nil
}

// Close closes the run file. It is safe to call more than once.
func (r *runReader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
