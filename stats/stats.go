// Package stats provides Prometheus instrumentation for the wirenet
// transport: connection churn and wire byte counts.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	acceptedConns = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wirenet",
		Name:      "accepted_connections_total",
		Help:      "Client connections accepted by the dispatcher.",
	})
	activeClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "wirenet",
		Name:      "active_clients",
		Help:      "Currently connected clients.",
	})
	bytesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wirenet",
		Name:      "sent_bytes_total",
		Help:      "Bytes written to the wire, frame headers included.",
	})
	bytesRecv = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wirenet",
		Name:      "received_bytes_total",
		Help:      "Bytes read off the wire, frame headers included.",
	})
)

func ConnAccepted() {
	acceptedConns.Inc()
	activeClients.Inc()
}

func ConnGone()     { activeClients.Dec() }
func AddSent(n int) { bytesSent.Add(float64(n)) }
func AddRecv(n int) { bytesRecv.Add(float64(n)) }
