package flag

import "github.com/spf13/pflag"

// Flag is a command line flag that knows how to register and validate
// itself.
type Flag interface {
	FlagKey() string
	FlagShort() string
	FlagUsage() string
	FlagValidate() error
	AddTo(flagSet *pflag.FlagSet)
}

type Part struct {
	Key    string
	short  string
	usage  string
	hidden bool
}

// NewFlagPart returns a new Part object
func NewFlagPart(key, short, usage string, hidden bool) Part {
	return Part{
		Key:    key,
		short:  short,
		usage:  usage,
		hidden: hidden,
	}
}

func (p Part) FlagKey() string {
	return p.Key
}

func (p Part) FlagShort() string {
	return p.short
}

func (p Part) FlagUsage() string {
	return p.usage
}

func (p Part) hide(flagSet *pflag.FlagSet) {
	if p.hidden {
		flag := flagSet.Lookup(p.Key)
		flag.Hidden = true
	}
}
