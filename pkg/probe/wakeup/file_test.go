package wakeup

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/last-emo-boy/autosuspendd/pkg/config"
	"github.com/last-emo-boy/autosuspendd/pkg/probe"
)

func TestNewFileRequiresPath(t *testing.T) {
	_, err := NewFile("wakeup", config.ProbeSection{Extra: map[string]interface{}{}})
	assert.ErrorContains(t, err, "path")
}

func TestFileCheckParsesTimestamp(t *testing.T) {
	f := &File{path: "/tmp/fake", readFile: func(path string) ([]byte, error) { return []byte("1700000000\n"), nil }}
	at, ok, err := f.Check(context.Background(), time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), at)
}

func TestFileCheckMissingFileIsNotAnError(t *testing.T) {
	f := &File{path: "/tmp/fake", readFile: func(path string) ([]byte, error) { return nil, os.ErrNotExist }}
	_, ok, err := f.Check(context.Background(), time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileCheckTransientOnReadFailure(t *testing.T) {
	f := &File{path: "/tmp/fake", readFile: func(path string) ([]byte, error) { return nil, errors.New("permission denied") }}
	_, _, err := f.Check(context.Background(), time.Now())
	require.Error(t, err)
	var probeErr *probe.Error
	require.ErrorAs(t, err, &probeErr)
	assert.Equal(t, probe.Transient, probeErr.Kind)
}

func TestFileCheckTransientOnMalformedContents(t *testing.T) {
	f := &File{path: "/tmp/fake", readFile: func(path string) ([]byte, error) { return []byte("not-a-number"), nil }}
	_, _, err := f.Check(context.Background(), time.Now())
	require.Error(t, err)
	var probeErr *probe.Error
	require.ErrorAs(t, err, &probeErr)
	assert.Equal(t, probe.Transient, probeErr.Kind)
}
