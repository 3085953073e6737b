package violation

import "fmt"

// maxRendered bounds the number of elements rendered per side of a
// prefix report.
const maxRendered = 8

// Assert returns nil when cond holds and a Condition violation otherwise.
// format describes the relation that was expected to hold.
func Assert(cond bool, format string, args ...any) error {
	if cond {
		return nil
	}
	return &Violation{
		Kind:    Condition,
		Message: fmt.Sprintf(format, args...),
		Index:   NoIndex,
	}
}

// AssertEqual returns an Equality violation carrying both values when
// left != right.
func AssertEqual[T comparable](left, right T) error {
	if left == right {
		return nil
	}
	return &Violation{
		Kind:    Equality,
		Message: "values differ",
		Left:    fmt.Sprintf("%v", left),
		Right:   fmt.Sprintf("%v", right),
		Index:   NoIndex,
	}
}

// AssertPrefixEqual compares two slices element-wise. The report holds
// both lengths, the first differing index and the values found there.
func AssertPrefixEqual[E comparable](left, right []E) error {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	idx := NoIndex
	for i := 0; i < n; i++ {
		if left[i] != right[i] {
			idx = i
			break
		}
	}
	if idx == NoIndex {
		if len(left) == len(right) {
			return nil
		}
		idx = n
	}
	return &Violation{
		Kind:    Equality,
		Message: fmt.Sprintf("log prefixes differ at index %d", idx),
		Left:    render(left, idx),
		Right:   render(right, idx),
		Index:   idx,
	}
}

// Malformed returns a MalformedSnapshot violation.
func Malformed(format string, args ...any) error {
	return &Violation{
		Kind:    MalformedSnapshot,
		Message: fmt.Sprintf(format, args...),
		Index:   NoIndex,
	}
}

// render prints len=N followed by the value at idx, or a full listing
// when the slice is short.
func render[E comparable](s []E, idx int) string {
	if len(s) <= maxRendered {
		return fmt.Sprintf("len=%d %v", len(s), s)
	}
	if idx < len(s) {
		return fmt.Sprintf("len=%d [%d]=%v", len(s), idx, s[idx])
	}
	return fmt.Sprintf("len=%d [%d]=<none>", len(s), idx)
}
