// Package metrics collects and exposes Prometheus counters for the
// planner's domain operations.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records domain-level counters. A nil *Collector is valid
// and records nothing, which keeps tests free of registry setup.
type Collector struct {
	registry            *prometheus.Registry
	registrations       prometheus.Counter
	logins              prometheus.Counter
	usersActivated      prometheus.Counter
	eventsCreated       prometheus.Counter
	schedulingConflicts prometheus.Counter
}

// NewCollector builds a Collector with its own registry, including
// the standard Go runtime collectors.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_registrations_total",
			Help: "Number of user registrations accepted.",
		}),
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_logins_total",
			Help: "Number of successful logins.",
		}),
		usersActivated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_users_activated_total",
			Help: "Number of first-login bootstraps that created a default group.",
		}),
		eventsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_events_created_total",
			Help: "Number of events created.",
		}),
		schedulingConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_scheduling_conflicts_total",
			Help: "Number of event creations rejected for window conflicts.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.registrations,
		c.logins,
		c.usersActivated,
		c.eventsCreated,
		c.schedulingConflicts,
	)
	return c
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) RecordRegistration() {
	if c != nil {
		c.registrations.Inc()
	}
}

func (c *Collector) RecordLogin() {
	if c != nil {
		c.logins.Inc()
	}
}

func (c *Collector) RecordUserActivated() {
	if c != nil {
		c.usersActivated.Inc()
	}
}

func (c *Collector) RecordEventCreated() {
	if c != nil {
		c.eventsCreated.Inc()
	}
}

func (c *Collector) RecordSchedulingConflict() {
	if c != nil {
		c.schedulingConflicts.Inc()
	}
}
