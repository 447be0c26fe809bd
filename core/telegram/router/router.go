// Package router dispatches updates to the first matching handler of each
// priority group. Groups run in ascending order; within a group only the
// first route whose filter matches runs. A handler returning
// ErrStopPropagation halts the remaining groups without surfacing an error.
package router

import (
	"errors"
	"sort"
	"time"

	tele "gopkg.in/telebot.v4"

	"dialogbot/core/telegram/filter"
)

// ErrStopPropagation stops dispatch after the current handler. It is
// swallowed by the router and never reaches the transport.
var ErrStopPropagation = errors.New("stop propagation")

// Well-known group priorities. Lower runs first.
const (
	GroupCommands = 10
	GroupDialog   = 50
	GroupDefault  = 100
)

// Route binds a filter to a handler under a readable name used in logs.
type Route struct {
	Name    string
	Filter  filter.Filter
	Handler tele.HandlerFunc
}

// Binding attaches the router's dispatch to one telebot endpoint.
type Binding struct {
	Endpoint string
	Handler  tele.HandlerFunc
}

// Router holds routes grouped by priority.
type Router struct {
	groups   map[int][]Route
	order    []int
	fallback tele.HandlerFunc
}

// New returns an empty router.
func New() *Router {
	return &Router{groups: make(map[int][]Route)}
}

// Handle registers a route in the given priority group. Registration order
// within a group is match order.
func (r *Router) Handle(group int, rt Route) {
	if rt.Filter == nil {
		rt.Filter = filter.Any()
	}
	if _, ok := r.groups[group]; !ok {
		r.order = append(r.order, group)
		sort.Ints(r.order)
	}
	r.groups[group] = append(r.groups[group], rt)
}

// Fallback runs when no route in any group matched the update.
func (r *Router) Fallback(h tele.HandlerFunc) {
	r.fallback = h
}

// Dispatch walks the groups in priority order. The first matching route of
// each group runs; dispatch then continues with the next group unless the
// handler failed or asked to stop propagation.
func (r *Router) Dispatch(c tele.Context) error {
	start := time.Now()
	matched := false

	for _, group := range r.order {
		for _, rt := range r.groups[group] {
			if !rt.Filter(c) {
				continue
			}
			matched = true
			err := handleWithSummary(c, normalizeHandlerName(rt.Name), start, rt.Handler)
			if errors.Is(err, ErrStopPropagation) {
				return nil
			}
			if err != nil {
				return err
			}
			break
		}
	}

	if !matched && r.fallback != nil {
		return handleWithSummary(c, "fallback", start, r.fallback)
	}
	return nil
}

// Bindings exposes the router as handlers for the given telebot endpoints,
// tele.OnText and tele.OnCallback being the usual pair.
func (r *Router) Bindings(endpoints ...string) []Binding {
	out := make([]Binding, 0, len(endpoints))
	for _, ep := range endpoints {
		out = append(out, Binding{Endpoint: ep, Handler: r.Dispatch})
	}
	return out
}
