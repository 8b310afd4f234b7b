// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"go.uber.org/zap"

	"gioui.org/touch/config"
	"gioui.org/touch/internal/di"
	"gioui.org/touch/internal/trace"
	"gioui.org/touch/platform/wsinput"
)

// container assembles the components shared by the commands. opts
// add command specific providers and invocations.
func container(log *zap.SugaredLogger, opts ...di.Option) (*di.Container, error) {
	return di.New(append([]di.Option{
		di.Provider(func() *zap.SugaredLogger { return log }),
		di.Provider(newLoader),
		di.Provider(func(l *config.Loader) *config.Config { return l.Config() }),
		di.Provider(func(log *zap.SugaredLogger, cfg *config.Config) (*wsinput.Server, error) {
			return wsinput.NewServer(log.Named("ws"), cfg)
		}),
		di.Provider(func() *trace.Recorder { return new(trace.Recorder) }),
	}, opts...)...)
}

// newLoader loads the --config file. Without one the defaults are
// used.
func newLoader(log *zap.SugaredLogger) (*config.Loader, error) {
	path := configPath
	if path == "" {
		path = "gestures.toml"
	}
	l := config.NewLoader(path)
	if _, err := l.Load(); err != nil {
		return nil, err
	}
	log.Debugw("configuration loaded", "path", path)
	return l, nil
}
