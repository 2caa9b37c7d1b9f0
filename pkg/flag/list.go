package flag

import "github.com/spf13/pflag"

// FlagsList is a group of flags registered and validated together.
type FlagsList []Flag

// AddTo adds every flag in the list to flagSet.
func (f FlagsList) AddTo(flagSet *pflag.FlagSet) {
	for _, x := range f {
		x.AddTo(flagSet)
	}
}

// Validate returns the first validation failure in the list.
func (f FlagsList) Validate() error {
	for _, x := range f {
		err := x.FlagValidate()
		if err != nil {
			return err
		}
	}
	return nil
}
