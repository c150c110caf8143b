package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultsOutputToStderrWhenNil(t *testing.T) {
	log := New("info", nil)
	assert.NotNil(t, log)
	assert.Equal(t, "hornqual", log.Name())
}

func TestNewWritesToGivenOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", &buf)
	log.Info("pipeline started")
	assert.Contains(t, buf.String(), "pipeline started")
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("error", &buf)
	log.Debug("should not appear")
	log.Error("should appear")
	assert.NotContains(t, buf.String(), "should not appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestNamedScopesLogger(t *testing.T) {
	var buf bytes.Buffer
	root := New("info", &buf)
	sub := Named(root, "unroll")
	sub.Info("unrolling")
	assert.Contains(t, buf.String(), "unroll")
}
