package output

import (
	"io"

	"github.com/jmylchreest/examiq/pkg/dataset"
)

// Records converts frame rows to maps keyed by column name. Missing cells
// become nil.
func Records(frame *dataset.Frame) []any {
	cols := frame.Columns()
	out := make([]any, frame.Len())
	for i := range out {
		rec := make(map[string]any, len(cols))
		for _, c := range cols {
			if v := frame.Value(i, c); v != nil {
				rec[c] = *v
			} else {
				rec[c] = nil
			}
		}
		out[i] = rec
	}
	return out
}

// WriteFrame writes a dataset in format. CSV keeps column order; the other
// formats write one record per row.
func WriteFrame(w io.Writer, format Format, frame *dataset.Frame, opts ...WriterOption) error {
	if format == FormatCSV {
		return dataset.WriteCSV(w, frame)
	}

	ow, err := NewWriter(w, format, append([]WriterOption{WithArray()}, opts...)...)
	if err != nil {
		return err
	}
	if err := ow.WriteAll(Records(frame)); err != nil {
		return err
	}
	return ow.Close()
}
