package rhachis

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, "test", "info")

	l.Debugf("hidden %d", 1)
	l.Infof("shown %d", 2)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown 2")
	assert.Contains(t, buf.String(), "test")
	assert.False(t, l.DebugEnabled())

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("now visible")
	assert.Contains(t, buf.String(), "now visible")

	l.SetDebug(false)
	assert.False(t, l.DebugEnabled())
}

func TestDefaultLogger_UnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, "", "chatty")
	l.Infof("info still works")
	assert.Contains(t, buf.String(), "info still works")
}

func TestDefaultLogger_WarnOnly(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, "", "warn")
	l.Infof("quiet")
	l.Warnf("loud")
	l.SetDebug(false)
	l.Infof("still quiet")
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}

func TestLoggingModule_UsesConfig(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	cfg.Log.Prefix = "from-config"
	cfg.Log.Level = "debug"
	app := NewAppBuilder().WithConfig(cfg).Build()

	require.NoError(t, LoggingModule{Output: &buf}.Install(app))
	app.Logger().Debugf("hello")

	assert.True(t, app.Logger().DebugEnabled())
	assert.Contains(t, buf.String(), "from-config")
	assert.Contains(t, buf.String(), "hello")
}

func TestApp_LoggerNeverNil(t *testing.T) {
	var app *App
	assert.NotNil(t, app.Logger())
	app.Logger().Errorf("discarded")
}
