/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package log implements module-scoped logging for the framework. The default
// provider is backed by zap; call Initialize() before logging any line to plug in a
// custom spi/log.LoggerProvider instead.
package log

import (
	"sync"

	spilog "github.com/trustfabric/trustkit-go/spi/log"
)

//nolint:gochecknoglobals
var (
	loggerProviderInstance spilog.LoggerProvider
	loggerProviderOnce     sync.Once
	mutex                  sync.RWMutex
)

// Log is an implementation of spi/log.Logger. It lazily binds to the configured
// provider on first use, so loggers may be declared as package globals before
// Initialize() is called.
type Log struct {
	instance spilog.Logger
	module   string
	once     sync.Once
}

// New creates a Logger implementation for the given module name.
func New(module string) *Log {
	return &Log{module: module}
}

// Initialize sets the custom logger provider. It must be called before any logging
// happens; once the default provider is bound it stays bound.
func Initialize(l spilog.LoggerProvider) {
	mutex.Lock()
	defer mutex.Unlock()

	loggerProviderInstance = l
}

// Panicf calls Panicf function of the underlying logger.
func (l *Log) Panicf(msg string, args ...interface{}) {
	l.logger().Panicf(msg, args...)
}

// Fatalf calls Fatalf function of the underlying logger.
func (l *Log) Fatalf(msg string, args ...interface{}) {
	l.logger().Fatalf(msg, args...)
}

// Errorf calls Errorf function of the underlying logger.
func (l *Log) Errorf(msg string, args ...interface{}) {
	l.logger().Errorf(msg, args...)
}

// Warnf calls Warnf function of the underlying logger.
func (l *Log) Warnf(msg string, args ...interface{}) {
	l.logger().Warnf(msg, args...)
}

// Infof calls Infof function of the underlying logger.
func (l *Log) Infof(msg string, args ...interface{}) {
	l.logger().Infof(msg, args...)
}

// Debugf calls Debugf function of the underlying logger.
func (l *Log) Debugf(msg string, args ...interface{}) {
	l.logger().Debugf(msg, args...)
}

func (l *Log) logger() spilog.Logger {
	l.once.Do(func() {
		l.instance = provider().GetLogger(l.module)
	})

	return l.instance
}

func provider() spilog.LoggerProvider {
	mutex.RLock()
	p := loggerProviderInstance
	mutex.RUnlock()

	if p != nil {
		return p
	}

	loggerProviderOnce.Do(func() {
		mutex.Lock()
		defer mutex.Unlock()

		if loggerProviderInstance == nil {
			loggerProviderInstance = newZapProvider()
		}
	})

	mutex.RLock()
	defer mutex.RUnlock()

	return loggerProviderInstance
}
