/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package log

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	spilog "github.com/trustfabric/trustkit-go/spi/log"
)

type recordingLogger struct {
	module  string
	entries []string
}

func (l *recordingLogger) record(level, msg string, args ...interface{}) {
	l.entries = append(l.entries, level+": "+fmt.Sprintf(msg, args...))
}

func (l *recordingLogger) Panicf(msg string, args ...interface{}) { l.record("PANIC", msg, args...) }
func (l *recordingLogger) Fatalf(msg string, args ...interface{}) { l.record("FATAL", msg, args...) }
func (l *recordingLogger) Errorf(msg string, args ...interface{}) { l.record("ERROR", msg, args...) }
func (l *recordingLogger) Warnf(msg string, args ...interface{})  { l.record("WARN", msg, args...) }
func (l *recordingLogger) Infof(msg string, args ...interface{})  { l.record("INFO", msg, args...) }
func (l *recordingLogger) Debugf(msg string, args ...interface{}) { l.record("DEBUG", msg, args...) }

type recordingProvider struct {
	loggers map[string]*recordingLogger
}

func (p *recordingProvider) GetLogger(module string) spilog.Logger {
	logger := &recordingLogger{module: module}
	p.loggers[module] = logger

	return logger
}

func TestCustomProvider(t *testing.T) {
	provider := &recordingProvider{loggers: map[string]*recordingLogger{}}
	Initialize(provider)

	logger := New("test-module")
	logger.Infof("hello %s", "world")
	logger.Errorf("fault %d", 42)
	logger.Warnf("warn")
	logger.Debugf("debug")

	recorded := provider.loggers["test-module"]
	require.NotNil(t, recorded)
	require.Equal(t, []string{
		"INFO: hello world",
		"ERROR: fault 42",
		"WARN: warn",
		"DEBUG: debug",
	}, recorded.entries)
}

func TestModuleScoping(t *testing.T) {
	provider := &recordingProvider{loggers: map[string]*recordingLogger{}}
	Initialize(provider)

	New("module-a").Infof("a")
	New("module-b").Infof("b")

	require.Contains(t, provider.loggers, "module-a")
	require.Contains(t, provider.loggers, "module-b")
}

func TestProviderBindsLazily(t *testing.T) {
	// a logger declared before Initialize picks up the provider set afterwards
	logger := New("late-bound")

	provider := &recordingProvider{loggers: map[string]*recordingLogger{}}
	Initialize(provider)

	logger.Infof("late")

	require.Contains(t, provider.loggers, "late-bound")
}

func TestDefaultZapProvider(t *testing.T) {
	provider := newZapProvider()

	logger := provider.GetLogger("zap-module")
	require.NotNil(t, logger)

	// must not panic
	logger.Infof("structured %s", "line")
}
