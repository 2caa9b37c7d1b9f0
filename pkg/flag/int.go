package flag

import (
	"fmt"

	"github.com/spf13/pflag"
)

type IntFlag struct {
	Part
	Value    int
	Validate func(f IntFlag) error
}

// NewIntFlag creates a new IntFlag object
func NewIntFlag(key, short, usage string, value int, hidden bool, validate func(IntFlag) error) IntFlag {
	return IntFlag{
		Part:     NewFlagPart(key, short, usage, hidden),
		Value:    value,
		Validate: validate,
	}
}

func (f *IntFlag) AddTo(flagSet *pflag.FlagSet) {
	if f.short == "" {
		flagSet.IntVar(&f.Value, f.Key, f.Value, f.usage)
	} else {
		flagSet.IntVarP(&f.Value, f.Key, f.short, f.Value, f.usage)
	}
	f.hide(flagSet)
}

func (f IntFlag) FlagValidate() error {
	if f.Validate == nil {
		return nil
	}
	return f.Validate(f)
}

// AtLeast returns a validator rejecting values below min.
func AtLeast(min int) func(IntFlag) error {
	return func(f IntFlag) error {
		if f.Value < min {
			return fmt.Errorf("--%s must be at least %d, got %d", f.Key, min, f.Value)
		}
		return nil
	}
}
