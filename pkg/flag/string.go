package flag

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// StringFlag handles string flags
type StringFlag struct {
	Part
	Value    string
	Validate func(f StringFlag) error
}

// NewStringFlag creates a new StringFlag object
func NewStringFlag(key, short, usage, value string, hidden bool, validate func(StringFlag) error) StringFlag {
	return StringFlag{
		Part:     NewFlagPart(key, short, usage, hidden),
		Value:    value,
		Validate: validate,
	}
}

// AddTo satisfies the Flag interface requirement
func (f *StringFlag) AddTo(flagSet *pflag.FlagSet) {
	if f.short == "" {
		flagSet.StringVar(&f.Value, f.Key, f.Value, f.usage)
	} else {
		flagSet.StringVarP(&f.Value, f.Key, f.short, f.Value, f.usage)
	}
	f.hide(flagSet)
}

// FlagValidate satisfies the Flag interface requirement
func (f StringFlag) FlagValidate() error {
	if f.Validate == nil {
		return nil
	}
	return f.Validate(f)
}

// OneOf returns a validator accepting only the given values.
func OneOf(values ...string) func(StringFlag) error {
	return func(f StringFlag) error {
		for _, v := range values {
			if f.Value == v {
				return nil
			}
		}
		return fmt.Errorf("--%s must be one of %s, got '%s'", f.Key, strings.Join(values, ", "), f.Value)
	}
}
