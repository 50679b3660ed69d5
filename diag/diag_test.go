package diag

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkErrorfMarksFailed(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(&buf)

	require.False(t, sink.Failed(), "new sink should not be failed")

	sink.Errorf(Location{Path: "a.src", Line: 3, Column: 5}, "unexpected %q", "}")

	assert.True(t, sink.Failed())
	require.Len(t, sink.All(), 1)
	assert.Contains(t, buf.String(), "a.src:3:5")
}

func TestSinkInfofDoesNotMarkFailed(t *testing.T) {
	sink := NewSink(&bytes.Buffer{})
	sink.Infof(Location{}, "previous declaration of %q is here", "x")

	assert.False(t, sink.Failed(), "Infof must not mark the sink as failed")
	require.Len(t, sink.All(), 1)
}

func TestSinkPreservesReportOrder(t *testing.T) {
	sink := NewSink(&bytes.Buffer{})
	sink.Errorf(Location{Line: 1}, "first")
	sink.Infof(Location{Line: 2}, "second")
	sink.Errorf(Location{Line: 3}, "third")

	all := sink.All()
	require.Len(t, all, 3)
	assert.Equal(t, "first", all[0].Message)
	assert.Equal(t, "second", all[1].Message)
	assert.Equal(t, "third", all[2].Message)
}

func TestSinkNilWriterDoesNotPanic(t *testing.T) {
	sink := NewSink(nil)
	sink.Errorf(Location{}, "boom")
	assert.True(t, sink.Failed(), "Failed() should be true even with a nil writer")
}
