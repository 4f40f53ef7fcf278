// The MIT License (MIT)
//
// # Copyright (c) 2026 crcaudit
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package std

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type auditMetric struct {
	description *prometheus.Desc
	supplier    func(a *Audit) float64
}

// AuditCollector exposes the pipeline counters as prometheus metrics.
type AuditCollector struct {
	audit   *Audit
	metrics []auditMetric
}

func NewAuditCollector(a *Audit) *AuditCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("crcaudit_"+name, help, nil, nil)
	}
	return &AuditCollector{
		audit: a,
		metrics: []auditMetric{
			{desc("datagrams_in_total", "Datagrams read off the socket."), func(a *Audit) float64 { return float64(a.DatagramsIn) }},
			{desc("bytes_in_total", "Raw bytes read off the socket."), func(a *Audit) float64 { return float64(a.BytesIn) }},
			{desc("packets_parsed_total", "Frames that survived decoding."), func(a *Audit) float64 { return float64(a.PacketsParsed) }},
			{desc("malformed_frames_total", "Frames rejected by the decoder."), func(a *Audit) float64 { return float64(a.MalformedFrames) }},
			{desc("unknown_streams_total", "Packets naming an unconfigured stream."), func(a *Audit) float64 { return float64(a.UnknownStreams) }},
			{desc("checksums_checked_total", "Individual CRC comparisons performed."), func(a *Audit) float64 { return float64(a.ChecksumsChecked) }},
			{desc("checksum_mismatches_total", "Individual CRC comparisons that failed."), func(a *Audit) float64 { return float64(a.ChecksumMismatches) }},
			{desc("sequence_mismatches_total", "Packets with an out-of-order sequence."), func(a *Audit) float64 { return float64(a.SequenceMismatches) }},
			{desc("signatures_checked_total", "Signature verifications performed."), func(a *Audit) float64 { return float64(a.SignaturesChecked) }},
			{desc("signature_failures_total", "Signature verifications that failed."), func(a *Audit) float64 { return float64(a.SignatureFailures) }},
			{desc("faults_journaled_total", "Fault lines written to disk."), func(a *Audit) float64 { return float64(a.FaultsJournaled) }},
			{desc("faults_dropped_total", "Fault records lost to a full queue."), func(a *Audit) float64 { return float64(a.FaultsDropped) }},
			{desc("journal_write_errors_total", "Flush cycles that hit an I/O error."), func(a *Audit) float64 { return float64(a.JournalWriteErrors) }},
		},
	}
}

func (c *AuditCollector) Describe(descs chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		descs <- m.description
	}
}

func (c *AuditCollector) Collect(metrics chan<- prometheus.Metric) {
	snapshot := c.audit.Copy()
	for _, m := range c.metrics {
		metrics <- prometheus.MustNewConstMetric(m.description, prometheus.CounterValue, m.supplier(snapshot))
	}
}

// ServeMetrics registers the collector and serves /metrics on addr. Blocks,
// intended to run on its own goroutine.
func ServeMetrics(addr string, a *Audit) error {
	registry := prometheus.NewRegistry()
	if err := registry.Register(NewAuditCollector(a)); err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return http.ListenAndServe(addr, mux)
}
