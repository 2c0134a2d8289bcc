package log_test

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/dudk/sampler/log"
)

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	l := log.GetLogger()
	l.SetOutput(&buf)
	var _ log.Logger = l
	var _ log.Logger = log.Component(l, "pool")

	log.Component(l, "pool").Warn("exhausted")
	assert.Contains(t, buf.String(), "component=pool")
	assert.Contains(t, buf.String(), "exhausted")
	assert.Contains(t, buf.String(), "level=warning")
}

func TestLevel(t *testing.T) {
	l := log.GetLogger()
	assert.Contains(t, []logrus.Level{logrus.InfoLevel, logrus.DebugLevel}, l.GetLevel())
}
