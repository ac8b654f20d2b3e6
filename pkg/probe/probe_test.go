package probe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	err := Transientf("dns miss: %s", "example.com")
	var probeErr *Error
	assert.True(t, errors.As(err, &probeErr))
	assert.Equal(t, Transient, probeErr.Kind)
	assert.Contains(t, probeErr.Error(), "transient")

	err = Severef("binary not found")
	assert.True(t, errors.As(err, &probeErr))
	assert.Equal(t, Severe, probeErr.Kind)
	assert.Contains(t, probeErr.Error(), "severe")
}

func TestWrapHelpersNilSafe(t *testing.T) {
	assert.Nil(t, WrapTransient(nil))
	assert.Nil(t, WrapSevere(nil))
}

func TestBaseAttributes(t *testing.T) {
	b := NewBase("ping", KindActivity)
	assert.Equal(t, "ping", b.Name())
	assert.Equal(t, KindActivity, b.Kind())
	assert.NotNil(t, b.Logger())
}
