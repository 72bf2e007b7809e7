package util

import (
	"bytes"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var (
	nullJSONBytes     = []byte("null")
	jsoniterconfiged  = jsoniter.Config{EscapeHTML: false, SortMapKeys: true}.Froze()
	errEmptyJSONInput = errors.New("empty json input")
)

func MarshalJSON(v interface{}) ([]byte, error) {
	b, err := jsoniterconfiged.Marshal(v)

	return b, errors.WithStack(err)
}

func UnmarshalJSON(b []byte, v interface{}) error {
	switch {
	case len(b) < 1:
		return errors.WithStack(errEmptyJSONInput)
	case IsNilJSON(b):
		return nil
	default:
		return errors.WithStack(jsoniterconfiged.Unmarshal(b, v))
	}
}

func IsNilJSON(b []byte) bool {
	return bytes.Equal(bytes.TrimSpace(b), nullJSONBytes)
}

// JSONLineWriter writes each value as one line of json.
type JSONLineWriter struct {
	w io.Writer
}

func NewJSONLineWriter(w io.Writer) *JSONLineWriter {
	return &JSONLineWriter{w: w}
}

func (w *JSONLineWriter) Write(v interface{}) error {
	b, err := MarshalJSON(v)
	if err != nil {
		return err
	}

	_, err = w.w.Write(append(b, '\n'))

	return errors.WithStack(err)
}
