package report

import (
	"encoding/csv"
	"io"
	"iter"
	"os"

	"github.com/pkg/errors"

	"github.com/jinwoo1225/gh-prmetrics/internal/model"
	"github.com/jinwoo1225/gh-prmetrics/internal/utils"
)

// Stdout is the output path that writes rows to standard output.
const Stdout = "-"

// Writer writes metrics records as CSV, one flushed row at a time so that a
// failed run leaves every row produced so far on disk.
type Writer struct {
	csv *csv.Writer
}

func NewWriter(out io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(out)}
}

func (w *Writer) WriteHeader() error {
	return w.write(model.Header)
}

func (w *Writer) Write(record *model.MetricsRecord) error {
	return w.write(record.Row())
}

func (w *Writer) write(row []string) error {
	if err := w.csv.Write(row); err != nil {
		return errors.Wrap(err, "writing csv row")
	}
	w.csv.Flush()
	return errors.Wrap(w.csv.Error(), "flushing csv row")
}

// Export writes the header followed by every record of records and returns
// how many records were written. It stops at the first error.
func Export(w *Writer, records iter.Seq2[*model.MetricsRecord, error]) (int, error) {
	if err := w.WriteHeader(); err != nil {
		return 0, err
	}
	written := 0
	for record, err := range records {
		if err != nil {
			return written, err
		}
		if err := w.Write(record); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// Create opens the output at path, expanding a leading '~'. Stdout is
// returned for "-" and is not closed.
func Create(path string) (io.WriteCloser, error) {
	if path == Stdout {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(utils.ExpandHome(path))
	if err != nil {
		return nil, errors.Wrap(err, "creating output file")
	}
	return f, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
