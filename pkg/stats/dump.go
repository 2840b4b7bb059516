/*
Copyright 2026 The Filebench Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package stats

import (
	"encoding/xml"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/filebench/filebench-sub000/pkg/pools"
)

// DumpText writes the line-oriented "stats dump" format, keyed per
// flowop (spec.md §6 File formats). The whole report is assembled in
// a pooled buffer and written in one call, so a slow w doesn't hold
// the snapshot's backing memory across many small writes.
func DumpText(w io.Writer, snaps []Snapshot) error {
	buf := pools.BytesBuffer()
	defer pools.PutBuffer(buf)

	for _, s := range snaps {
		fmt.Fprintf(buf, "%s: %d ops %d rops %d wops %d bytes %.1fus/op-avg %.1fus/op-min %.1fus/op-max\n",
			s.Name, s.Count, s.RCount, s.WCount, s.Bytes, s.MeanLatencyUS, s.MinLatencyUS, s.MaxLatencyUS)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// DumpMultitab writes the tab-separated, computer-readable variant of
// the stats dump (spec.md §6 "multidump").
func DumpMultitab(w io.Writer, snaps []Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	fmt.Fprintln(tw, "name\tcount\trcount\twcount\tbytes\trbytes\twbytes\tmeanlat_us\tminlat_us\tmaxlat_us")
	for _, s := range snaps {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%.2f\t%.2f\t%.2f\n",
			s.Name, s.Count, s.RCount, s.WCount, s.Bytes, s.RBytes, s.WBytes,
			s.MeanLatencyUS, s.MinLatencyUS, s.MaxLatencyUS)
	}
	return tw.Flush()
}

// xmlDump and xmlFlowop back DumpXML's trivial envelope
// (spec.md §6 "xmldump").
type xmlDump struct {
	XMLName xml.Name     `xml:"filebench_stats"`
	Flowops []xmlFlowop  `xml:"flowop"`
}

type xmlFlowop struct {
	Name    string  `xml:"name,attr"`
	Count   int64   `xml:"count"`
	RCount  int64   `xml:"rcount"`
	WCount  int64   `xml:"wcount"`
	Bytes   int64   `xml:"bytes"`
	MeanUS  float64 `xml:"mean_latency_us"`
	MinUS   float64 `xml:"min_latency_us"`
	MaxUS   float64 `xml:"max_latency_us"`
}

// DumpXML writes the trivial XML envelope variant of the stats dump.
func DumpXML(w io.Writer, snaps []Snapshot) error {
	doc := xmlDump{}
	for _, s := range snaps {
		doc.Flowops = append(doc.Flowops, xmlFlowop{
			Name: s.Name, Count: s.Count, RCount: s.RCount, WCount: s.WCount,
			Bytes: s.Bytes, MeanUS: s.MeanLatencyUS, MinUS: s.MinLatencyUS, MaxUS: s.MaxLatencyUS,
		})
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(doc)
}
