package cli

import "github.com/spf13/pflag"

// yieldValue is a --yield flag that only accepts finite, non-negative numbers.
type yieldValue struct {
	v *float64
}

var _ pflag.Value = (*yieldValue)(nil)

func (y *yieldValue) String() string {
	if y.v == nil {
		return ""
	}
	return formatYield(*y.v)
}

func (y *yieldValue) Set(s string) error {
	v, err := parseOptionalYield(s)
	if err != nil {
		return err
	}
	if v == nil {
		return errInvalidYield
	}
	y.v = v
	return nil
}

func (y *yieldValue) Type() string { return "float" }

func addYieldFlag(fs *pflag.FlagSet, y *yieldValue) {
	fs.Var(y, "yield", "Weighed harvest in the variety's yield unit")
}
