package objects

import (
	"fmt"
	"sort"
	"strings"
)

// ActiveLinkError accumulates link integrity violations as a mapping of
// destination to the sources that point at it. One validation pass reports
// every broken or still-active link at once, and the error gates the
// mutation that produced it.
type ActiveLinkError struct {
	violations map[string][]string
}

// NewActiveLinkError creates an empty report.
func NewActiveLinkError() *ActiveLinkError {
	return &ActiveLinkError{violations: make(map[string][]string)}
}

// Add records one violation.
func (e *ActiveLinkError) Add(destination, source string) {
	e.violations[destination] = append(e.violations[destination], source)
}

// Len returns the number of affected destinations.
func (e *ActiveLinkError) Len() int {
	return len(e.violations)
}

// Destinations returns the affected destinations in sorted order.
func (e *ActiveLinkError) Destinations() []string {
	out := make([]string, 0, len(e.violations))
	for dest := range e.violations {
		out = append(out, dest)
	}
	sort.Strings(out)
	return out
}

// Sources returns the sources recorded for a destination.
func (e *ActiveLinkError) Sources(destination string) []string {
	return append([]string(nil), e.violations[destination]...)
}

// OrNil returns the report as an error, or nil when no violation was
// recorded.
func (e *ActiveLinkError) OrNil() error {
	if e.Len() == 0 {
		return nil
	}
	return e
}

func (e *ActiveLinkError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d link destination(s) violated:", e.Len())
	for _, dest := range e.Destinations() {
		fmt.Fprintf(&b, " %s<-[%s]", dest, strings.Join(e.violations[dest], ","))
	}
	return b.String()
}
