/*
 * Copyright 2025 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/comcast/fishyredfish/common"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelCode   = "code"
	labelMethod = "method"

	// codeError labels calls that failed before a status code was received
	codeError = "error"
)

// TransportMetrics holds the collectors updated by an instrumented transport
type TransportMetrics struct {
	ReqDurationBuckets []float64
	Namespace          string
	Registerer         prometheus.Registerer
	reqTotal           *prometheus.CounterVec
	reqDurationSecs    *prometheus.HistogramVec
	resSizeBytes       *prometheus.SummaryVec
	constLabels        prometheus.Labels
}

// NewTransportMetrics registers the transport collectors with reg, adding
// labels as constant labels to every series. A nil reg leaves them
// unregistered.
func NewTransportMetrics(reg prometheus.Registerer, labels map[string]string) *TransportMetrics {
	m := TransportMetrics{
		Namespace:          "fishyredfish",
		ReqDurationBuckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		Registerer:         reg,
		constLabels:        labels,
	}

	m.initMetrics()
	return &m
}

func (m *TransportMetrics) initMetrics() {
	m.reqTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:      "requests_total",
		Namespace: m.Namespace,
		Help:      "The total number of requests sent to BMCs",
	}, []string{labelMethod, labelCode})

	m.reqDurationSecs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:      "request_duration_seconds",
		Namespace: m.Namespace,
		Help:      "Histogram of the BMC request duration",
		Buckets:   m.ReqDurationBuckets,
	}, []string{labelMethod})

	m.resSizeBytes = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name:      "response_size_bytes",
		Namespace: m.Namespace,
		Help:      "Summary of response bytes received from BMCs",
	}, []string{labelMethod})

	if m.Registerer == nil {
		return
	}

	reg := prometheus.WrapRegistererWith(m.constLabels, m.Registerer)
	reg.MustRegister(
		m.reqTotal,
		m.reqDurationSecs,
		m.resSizeBytes,
	)
}

type instrumentedTransport struct {
	next common.Transport
	m    *TransportMetrics
}

// Instrument wraps next so every call is counted and timed
func Instrument(next common.Transport, m *TransportMetrics) common.Transport {
	return &instrumentedTransport{next: next, m: m}
}

func (t *instrumentedTransport) Do(ctx context.Context, method, uri string, cred *common.Credential, body []byte) (int, []byte, error) {
	startTime := time.Now()

	status, resp, err := t.next.Do(ctx, method, uri, cred, body)

	code := codeError
	if err == nil {
		code = strconv.Itoa(status)
	}

	t.m.reqTotal.WithLabelValues(method, code).Inc()
	t.m.reqDurationSecs.WithLabelValues(method).Observe(time.Since(startTime).Seconds())
	t.m.resSizeBytes.WithLabelValues(method).Observe(float64(len(resp)))

	return status, resp, err
}
