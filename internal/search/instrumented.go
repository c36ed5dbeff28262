package search

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// OtherIndexLabel is reported for indexes outside the known set, so caller
// supplied names cannot grow the label space.
const OtherIndexLabel = "other"

// QueryObserver receives one call per engine round-trip.
type QueryObserver interface {
	ObserveEngineQuery(index, outcome string, d time.Duration)
}

type instrumented struct {
	next     Client
	observer QueryObserver
	known    map[string]struct{}
}

// Instrument wraps a Client so every Search call is reported to observer.
// Only indexes listed in known keep their name as the label.
func Instrument(next Client, observer QueryObserver, known ...string) Client {
	if observer == nil {
		return next
	}
	c := &instrumented{next: next, observer: observer, known: make(map[string]struct{}, len(known))}
	for _, index := range known {
		c.known[index] = struct{}{}
	}
	return c
}

func (c *instrumented) Search(ctx context.Context, index string, body any) (*Response, error) {
	start := time.Now()
	res, err := c.next.Search(ctx, index, body)
	c.observer.ObserveEngineQuery(c.indexLabel(index), outcome(err), time.Since(start))
	return res, err
}

func (c *instrumented) indexLabel(index string) string {
	if _, ok := c.known[index]; ok {
		return index
	}
	return OtherIndexLabel
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var engineErr *Error
	if errors.As(err, &engineErr) {
		return strconv.Itoa(engineErr.Status)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "cancelled"
	}
	return "error"
}
