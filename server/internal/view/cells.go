package view

import "fmt"

// Input identifies an input cell.
type Input int

// Input cells.
const (
	InputSite Input = iota
	InputRange
	numInputs
)

func (i Input) String() string {
	switch i {
	case InputSite:
		return "site"
	case InputRange:
		return "range"
	default:
		return fmt.Sprintf("input(%d)", int(i))
	}
}

// Output identifies an output cell.
type Output int

// Output cells.
const (
	OutputSummary Output = iota
	OutputCorrelation
	numOutputs
)

func (o Output) String() string {
	switch o {
	case OutputSummary:
		return "summary"
	case OutputCorrelation:
		return "correlation"
	default:
		return fmt.Sprintf("output(%d)", int(o))
	}
}

// MarshalText encodes o by name.
func (o Output) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// UnmarshalText decodes an output name.
func (o *Output) UnmarshalText(b []byte) error {
	switch string(b) {
	case "summary":
		*o = OutputSummary
	case "correlation":
		*o = OutputCorrelation
	default:
		return fmt.Errorf("view: unknown output %q", b)
	}
	return nil
}

// dependencies lists, for each output, the inputs it is computed from.
var dependencies = [numOutputs][]Input{
	OutputSummary:     {InputSite},
	OutputCorrelation: {InputSite, InputRange},
}

// DependsOn returns the inputs out is computed from.
func DependsOn(out Output) []Input {
	return append([]Input(nil), dependencies[out]...)
}

// Dependents returns the outputs that must be recomputed when in changes,
// in output order.
func Dependents(in Input) []Output {
	var outs []Output
	for out := Output(0); out < numOutputs; out++ {
		for _, dep := range dependencies[out] {
			if dep == in {
				outs = append(outs, out)
				break
			}
		}
	}
	return outs
}
