// SPDX-FileCopyrightText: © 2021 The rstdoc authors <https://github.com/golangee/rstdoc/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

// Package metrics exports the allocation accounting of document arenas and
// the duration of parser passes to prometheus.
package metrics

import (
	"time"

	"github.com/golangee/rstdoc/doc"
	"github.com/golangee/rstdoc/parser"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements doc.Recorder and the pass observer of rstdoc.Options.
type Collector struct {
	NodesAllocated   *prometheus.CounterVec
	NodesReleased    *prometheus.CounterVec
	BuffersAllocated *prometheus.CounterVec
	BuffersReleased  *prometheus.CounterVec
	LiveNodes        prometheus.Gauge
	LiveBuffers      prometheus.Gauge
	PassDuration     *prometheus.HistogramVec
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)

	return &Collector{
		NodesAllocated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rstdoc_nodes_allocated_total",
				Help: "Total number of allocated document nodes",
			},
			[]string{"tag"},
		),
		NodesReleased: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rstdoc_nodes_released_total",
				Help: "Total number of released document nodes",
			},
			[]string{"tag"},
		),
		BuffersAllocated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rstdoc_buffers_allocated_total",
				Help: "Total number of allocated payload buffers",
			},
			[]string{"tag", "field"},
		),
		BuffersReleased: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rstdoc_buffers_released_total",
				Help: "Total number of released payload buffers",
			},
			[]string{"tag", "field"},
		),
		LiveNodes: f.NewGauge(prometheus.GaugeOpts{
			Name: "rstdoc_live_nodes",
			Help: "Number of document nodes not released yet",
		}),
		LiveBuffers: f.NewGauge(prometheus.GaugeOpts{
			Name: "rstdoc_live_buffers",
			Help: "Number of payload buffers not released yet",
		}),
		PassDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rstdoc_pass_duration_seconds",
				Help:    "Duration of parser passes",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"pass", "result"},
		),
	}
}

func (c *Collector) NodeAllocated(tag doc.Tag) {
	c.NodesAllocated.WithLabelValues(tag.String()).Inc()
	c.LiveNodes.Inc()
}

func (c *Collector) NodeReleased(tag doc.Tag) {
	c.NodesReleased.WithLabelValues(tag.String()).Inc()
	c.LiveNodes.Dec()
}

func (c *Collector) BufferAllocated(tag doc.Tag, field doc.Field) {
	c.BuffersAllocated.WithLabelValues(tag.String(), field.String()).Inc()
	c.LiveBuffers.Inc()
}

func (c *Collector) BufferReleased(tag doc.Tag, field doc.Field) {
	c.BuffersReleased.WithLabelValues(tag.String(), field.String()).Inc()
	c.LiveBuffers.Dec()
}

// ObservePass records the duration of a pass, labelled with its outcome.
func (c *Collector) ObservePass(pass parser.Pass, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}

	c.PassDuration.WithLabelValues(pass.String(), result).Observe(d.Seconds())
}
