/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	spilog "github.com/trustfabric/trustkit-go/spi/log"
)

// zapProvider is the default LoggerProvider, producing named zap sugared loggers.
type zapProvider struct {
	base *zap.Logger
}

func newZapProvider() *zapProvider {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	cfg.DisableStacktrace = true

	logger, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		logger = zap.NewNop()
	}

	return &zapProvider{base: logger}
}

// GetLogger returns a logger scoped to the given module name.
func (p *zapProvider) GetLogger(module string) spilog.Logger {
	return &zapLogger{sugared: p.base.Named(module).Sugar()}
}

type zapLogger struct {
	sugared *zap.SugaredLogger
}

func (l *zapLogger) Panicf(msg string, args ...interface{}) { l.sugared.Panicf(msg, args...) }
func (l *zapLogger) Fatalf(msg string, args ...interface{}) { l.sugared.Fatalf(msg, args...) }
func (l *zapLogger) Errorf(msg string, args ...interface{}) { l.sugared.Errorf(msg, args...) }
func (l *zapLogger) Warnf(msg string, args ...interface{})  { l.sugared.Warnf(msg, args...) }
func (l *zapLogger) Infof(msg string, args ...interface{})  { l.sugared.Infof(msg, args...) }
func (l *zapLogger) Debugf(msg string, args ...interface{}) { l.sugared.Debugf(msg, args...) }
