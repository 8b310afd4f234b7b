// SPDX-License-Identifier: Unlicense OR MIT

// Package di is a thin layer over go.uber.org/dig used to assemble the
// command line tools.
package di

import (
	"go.uber.org/dig"
)

type config struct {
	providers []provider
	invokes   []any
}

type provider struct {
	constructor any
	opts        []dig.ProvideOption
}

// Option configures a Container.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (f optionFunc) apply(c *config) { f(c) }

// Container resolves components from their constructors.
type Container struct {
	dc *dig.Container
}

// New builds a container from the providers and invocations in opts.
func New(opts ...Option) (*Container, error) {
	conf := config{}
	for _, opt := range opts {
		opt.apply(&conf)
	}
	dc := dig.New(dig.DeferAcyclicVerification())
	for _, p := range conf.providers {
		if err := dc.Provide(p.constructor, p.opts...); err != nil {
			return nil, err
		}
	}
	for _, fn := range conf.invokes {
		if err := dc.Invoke(fn); err != nil {
			return nil, err
		}
	}
	return &Container{dc: dc}, nil
}

// Provider registers a constructor.
func Provider(constructor any, opts ...dig.ProvideOption) Option {
	return optionFunc(func(c *config) {
		c.providers = append(c.providers, provider{constructor: constructor, opts: opts})
	})
}

// Invoke registers fn to be called with its dependencies once the
// container is built.
func Invoke(fn any) Option {
	return optionFunc(func(c *config) {
		c.invokes = append(c.invokes, fn)
	})
}

// Get resolves a T from c, constructing its dependencies as needed.
func Get[T any](c *Container) (T, error) {
	var v T
	err := c.dc.Invoke(func(t T) {
		v = t
	})
	return v, err
}
