// SPDX-License-Identifier: Unlicense OR MIT

// Package config loads gesture profiles for named elements from TOML,
// YAML or INI files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"gioui.org/touch/gesture"
	"gioui.org/touch/unit"
)

// Config is the contents of a gesture configuration file.
type Config struct {
	// Density is the number of device pixels per dp.
	Density float64 `toml:"density" yaml:"density"`
	// Defaults applies to every element.
	Defaults Profile `toml:"defaults" yaml:"defaults"`
	// Elements overrides Defaults per element name.
	Elements map[string]Profile `toml:"elements" yaml:"elements"`
}

// Profile is the gesture configuration of an element. Zero fields
// inherit from the defaults.
type Profile struct {
	Mode        string  `toml:"mode" yaml:"mode"`
	LongPressMs int     `toml:"long_press_ms" yaml:"long_press_ms"`
	TapSlopDp   float64 `toml:"tap_slop_dp" yaml:"tap_slop_dp"`
	Draggable   *bool   `toml:"draggable" yaml:"draggable"`
	TapLockMs   int     `toml:"tap_lock_ms" yaml:"tap_lock_ms"`
}

// Default returns the built in configuration.
func Default() *Config {
	return &Config{
		Density: 1,
		Defaults: Profile{
			Mode:        "default",
			LongPressMs: int(gesture.DefaultLongPress / time.Millisecond),
			TapSlopDp:   float64(gesture.DefaultTapSlop),
		},
		Elements: make(map[string]Profile),
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs error
	if !(c.Density > 0) || math.IsInf(c.Density, 0) {
		errs = multierr.Append(errs, fmt.Errorf("density must be positive, got %v", c.Density))
	}
	errs = multierr.Append(errs, c.Defaults.validate("defaults"))
	for name, p := range c.Elements {
		errs = multierr.Append(errs, p.validate(name))
	}
	return errs
}

func (p Profile) validate(name string) error {
	var errs error
	if p.Mode != "" {
		if _, err := gesture.ParseMode(p.Mode); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if p.LongPressMs < 0 {
		errs = multierr.Append(errs, fmt.Errorf("%s: negative long_press_ms %d", name, p.LongPressMs))
	}
	if p.TapSlopDp < 0 || math.IsNaN(p.TapSlopDp) {
		errs = multierr.Append(errs, fmt.Errorf("%s: invalid tap_slop_dp %v", name, p.TapSlopDp))
	}
	if p.TapLockMs < 0 {
		errs = multierr.Append(errs, fmt.Errorf("%s: negative tap_lock_ms %d", name, p.TapLockMs))
	}
	return errs
}

// Profile returns the profile of the named element merged over the
// defaults.
func (c *Config) Profile(name string) Profile {
	p := c.Defaults
	if e, ok := c.Elements[name]; ok {
		p = p.merge(e)
	}
	return p
}

// Resolve returns the engine configuration of the named element.
// Unknown elements get the defaults.
func (c *Config) Resolve(name string) gesture.Config {
	p := c.Profile(name)
	mode, _ := gesture.ParseMode(p.Mode)
	cfg := gesture.Config{
		Mode:      mode,
		LongPress: time.Duration(p.LongPressMs) * time.Millisecond,
		TapSlop:   unit.Dp(p.TapSlopDp),
		Metric:    unit.Metric{PxPerDp: float32(c.Density)},
		TapLock:   time.Duration(p.TapLockMs) * time.Millisecond,
	}
	if p.Draggable != nil {
		cfg.Draggable = *p.Draggable
	}
	return cfg
}

func (p Profile) merge(o Profile) Profile {
	if o.Mode != "" {
		p.Mode = o.Mode
	}
	if o.LongPressMs != 0 {
		p.LongPressMs = o.LongPressMs
	}
	if o.TapSlopDp != 0 {
		p.TapSlopDp = o.TapSlopDp
	}
	if o.Draggable != nil {
		p.Draggable = o.Draggable
	}
	if o.TapLockMs != 0 {
		p.TapLockMs = o.TapLockMs
	}
	return p
}

// Parse decodes data in the format named by ext (".toml", ".yaml",
// ".yml" or ".ini") over the defaults. It does not validate.
func Parse(data []byte, ext string) (*Config, error) {
	cfg := Default()
	switch strings.ToLower(ext) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	case ".ini":
		if err := decodeINI(data, cfg); err != nil {
			return nil, fmt.Errorf("decode INI: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	if cfg.Elements == nil {
		cfg.Elements = make(map[string]Profile)
	}
	return cfg, nil
}

// ParseFile is like Parse with the format taken from the file name.
func ParseFile(path string, data []byte) (*Config, error) {
	return Parse(data, filepath.Ext(path))
}

// decodeINI reads the density from the unnamed section, the defaults
// from [defaults] and one element per other section.
func decodeINI(data []byte, cfg *Config) error {
	f, err := ini.Load(data)
	if err != nil {
		return err
	}
	root := f.Section(ini.DefaultSection)
	if root.HasKey("density") {
		if cfg.Density, err = root.Key("density").Float64(); err != nil {
			return fmt.Errorf("density: %w", err)
		}
	}
	for _, sect := range f.Sections() {
		name := sect.Name()
		if name == ini.DefaultSection {
			continue
		}
		var p Profile
		if name == "defaults" {
			p = cfg.Defaults
		}
		if err := readProfile(sect, &p); err != nil {
			return fmt.Errorf("[%s]: %w", name, err)
		}
		if name == "defaults" {
			cfg.Defaults = p
		} else {
			cfg.Elements[name] = p
		}
	}
	return nil
}

func readProfile(sect *ini.Section, p *Profile) error {
	var err error
	if sect.HasKey("mode") {
		p.Mode = sect.Key("mode").String()
	}
	if sect.HasKey("long_press_ms") {
		if p.LongPressMs, err = sect.Key("long_press_ms").Int(); err != nil {
			return err
		}
	}
	if sect.HasKey("tap_slop_dp") {
		if p.TapSlopDp, err = sect.Key("tap_slop_dp").Float64(); err != nil {
			return err
		}
	}
	if sect.HasKey("draggable") {
		d, err := sect.Key("draggable").Bool()
		if err != nil {
			return err
		}
		p.Draggable = &d
	}
	if sect.HasKey("tap_lock_ms") {
		if p.TapLockMs, err = sect.Key("tap_lock_ms").Int(); err != nil {
			return err
		}
	}
	return nil
}
