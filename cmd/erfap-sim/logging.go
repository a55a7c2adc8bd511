package main

import "go.uber.org/zap"

// zapLogger adapts *zap.SugaredLogger to erfap.Logger so the processor's
// delegated log calls (path-parse failure, event with no resolvable path,
// uncacheable allow-list match) carry typed fields instead of formatted
// strings, matching the structured-logging stack codeactual-boone reaches
// for instead of log.Printf (SPEC_FULL.md §4.8).
type zapLogger struct {
	sugar *zap.SugaredLogger
}

func newZapLogger(verbose bool) (*zapLogger, func(), error) {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.DisableStacktrace = true
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, err
	}

	return &zapLogger{sugar: logger.Sugar()}, func() { _ = logger.Sync() }, nil
}

func (l *zapLogger) Debug(msg string, kvs ...any) {
	l.sugar.Debugw(msg, kvs...)
}

func (l *zapLogger) Warn(msg string, kvs ...any) {
	l.sugar.Warnw(msg, kvs...)
}
