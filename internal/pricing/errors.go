package pricing

import "fmt"

// InvalidAttributeError reports a numeric input that violates its domain
// constraint. The mutation that produced it is rejected before any state
// change, so the caller's previous value is always retained.
type InvalidAttributeError struct {
	Field  string
	Reason string
}

func (e *InvalidAttributeError) Error() string {
	return fmt.Sprintf("invalid attribute %q: %s", e.Field, e.Reason)
}

// IndexOutOfRangeError reports a stone operation against a non-existent entry.
type IndexOutOfRangeError struct {
	Index  int
	Length int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("stone index %d out of range (collection has %d entries)", e.Index, e.Length)
}

// MissingAttributeError reports a field required by the active pricing mode
// that has not been supplied.
type MissingAttributeError struct {
	Field string
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("missing required attribute %q", e.Field)
}

// PriceInversionError reports a violated ordering between the commercial
// fields (cost <= selling <= mrp) at commit time.
type PriceInversionError struct {
	Message string
}

func (e *PriceInversionError) Error() string {
	return e.Message
}
