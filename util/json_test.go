package util

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/suite"
)

type testJSON struct {
	suite.Suite
}

func (t *testJSON) TestLineWriter() {
	var buf bytes.Buffer

	w := NewJSONLineWriter(&buf)

	t.NoError(w.Write(map[string]int{"b": 2, "a": 1}))
	t.NoError(w.Write([]string{"<a>"}))

	t.Equal("{\"a\":1,\"b\":2}\n[\"<a>\"]\n", buf.String())
}

func (t *testJSON) TestUnmarshal() {
	var m map[string]int

	t.NoError(UnmarshalJSON([]byte(`{"a":1}`), &m))
	t.Equal(1, m["a"])

	t.NoError(UnmarshalJSON([]byte(" null "), &m))
	t.Error(UnmarshalJSON(nil, &m))
	t.Error(UnmarshalJSON([]byte(`{`), &m))
}

func TestJSON(t *testing.T) {
	suite.Run(t, new(testJSON))
}
