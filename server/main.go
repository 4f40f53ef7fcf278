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

package main

import (
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli"

	"github.com/crcaudit/crcaudit/std"
)

// VERSION is populated via build flags when packaging official binaries.
var VERSION = "SELFBUILD"

func main() {
	if VERSION == "SELFBUILD" {
		// Enable timestamps + file:line to simplify debugging self-built binaries.
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	myApp := cli.NewApp()
	myApp.Name = "crcaudit"
	myApp.Usage = "UDP chained-CRC integrity auditor"
	myApp.Version = VERSION
	myApp.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Value: "",
			Usage: "JSON stream configuration: an array of {id, binary_path, key_path}",
		},
		cli.StringFlag{
			Name:  "listen, l",
			Value: "127.0.0.1:1337",
			Usage: `UDP listen address, eg: "IP:1337" for a single port, "IP:minport-maxport" for a port range`,
		},
		cli.StringFlag{
			Name:  "journal, j",
			Value: std.DefaultJournalPath,
			Usage: "append-only failure journal",
		},
		cli.IntFlag{
			Name:  "cadence",
			Value: 10,
			Usage: "seconds between journal flushes",
		},
		cli.IntFlag{
			Name:  "rcvbuf",
			Value: std.DefaultRecvBuffer,
			Usage: "per-datagram receive buffer in bytes",
		},
		cli.IntFlag{
			Name:  "pktqueue",
			Value: 8192,
			Usage: "packet queue depth between receiver and validator",
		},
		cli.IntFlag{
			Name:  "faultqueue",
			Value: 65536,
			Usage: "fault queue depth between validator and journaler",
		},
		cli.StringFlag{
			Name:  "log",
			Value: "",
			Usage: "specify a log file to output, default goes to stderr",
		},
		cli.StringFlag{
			Name:  "auditlog",
			Value: "",
			Usage: "collect pipeline counters to a CSV file, aware of timeformat in golang, like: ./audit-20060102.log",
		},
		cli.IntFlag{
			Name:  "auditperiod",
			Value: 60,
			Usage: "counter collect period, in seconds",
		},
		cli.StringFlag{
			Name:  "metrics",
			Value: "",
			Usage: `expose prometheus metrics on this address, eg: ":9101"`,
		},
		cli.BoolFlag{
			Name:  "pprof",
			Usage: "start profiling server on :6060",
		},
		cli.BoolFlag{
			Name:  "quiet",
			Usage: "to suppress the per-stream startup messages",
		},
		cli.StringFlag{
			Name:  "opts",
			Value: "", // when set, the JSON file must exist on disk
			Usage: "server options from json file, which will override the command from shell",
		},
	}
	myApp.Action = func(c *cli.Context) error {
		config := Config{}
		config.Streams = c.String("config")
		config.Listen = c.String("listen")
		config.Journal = c.String("journal")
		config.Cadence = c.Int("cadence")
		config.RecvBuf = c.Int("rcvbuf")
		config.PacketQueue = c.Int("pktqueue")
		config.FaultQueue = c.Int("faultqueue")
		config.Log = c.String("log")
		config.AuditLog = c.String("auditlog")
		config.AuditPeriod = c.Int("auditperiod")
		config.Metrics = c.String("metrics")
		config.Pprof = c.Bool("pprof")
		config.Quiet = c.Bool("quiet")

		if c.String("opts") != "" {
			// Only JSON option files are supported at the moment.
			err := parseJSONConfig(&config, c.String("opts"))
			checkError(err)
		}

		if config.Streams == "" {
			log.Println("a stream configuration is required: -c path/to/streams.json")
			os.Exit(-1)
		}

		// Redirect logs when the user supplied a dedicated log file.
		if config.Log != "" {
			f, err := os.OpenFile(config.Log, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
			checkError(err)
			defer f.Close()
			log.SetOutput(f)
		}

		if config.Cadence <= 0 {
			log.Printf("cadence %d is not positive, falling back to 10", config.Cadence)
			config.Cadence = 10
		}
		if config.RecvBuf < std.DefaultRecvBuffer {
			color.Red("Warning: rcvbuf %d is below %d, large checksum batches will be truncated by the kernel and rejected as malformed", config.RecvBuf, std.DefaultRecvBuffer)
		}

		registry, err := std.LoadRegistry(config.Streams)
		checkError(err)

		if !config.Quiet {
			for _, id := range registry.IDs() {
				s, _ := registry.Lookup(id)
				log.Println("stream", id, "artifact:", len(s.Artifact), "bytes, key:", s.Key.N.BitLen(), "bits")
			}
		}

		log.Println("version:", VERSION)
		log.Println("listening on:", config.Listen)
		log.Println("streams:", registry.Len())
		log.Println("journal:", config.Journal)
		log.Println("cadence:", config.Cadence)
		log.Println("rcvbuf:", config.RecvBuf)
		log.Println("pktqueue:", config.PacketQueue)
		log.Println("faultqueue:", config.FaultQueue)
		log.Println("auditlog:", config.AuditLog)
		log.Println("auditperiod:", config.AuditPeriod)
		log.Println("metrics:", config.Metrics)
		log.Println("pprof:", config.Pprof)
		log.Println("quiet:", config.Quiet)

		// Start the counter CSV logger if the feature is enabled.
		go std.AuditLogger(config.AuditLog, config.AuditPeriod)

		// Start the pprof server if the feature is enabled.
		if config.Pprof {
			go http.ListenAndServe(":6060", nil)
		}

		// Start the prometheus exporter if the feature is enabled.
		if config.Metrics != "" {
			go func() {
				if err := std.ServeMetrics(config.Metrics, std.DefaultAudit); err != nil {
					log.Println("metrics:", err)
				}
			}()
		}

		// The pipeline: socket -> receiver -> packets -> validator -> faults
		// -> journaler -> disk. Three goroutines, two channels; the receiver
		// must never wait on CRC/RSA work and the validator must never wait
		// on journal I/O.
		packets := make(chan []byte, config.PacketQueue)
		faults := make(chan std.Fault, config.FaultQueue)

		receiver, err := std.Listen(config.Listen, config.RecvBuf, packets)
		checkError(err)

		journal := std.NewJournal(config.Journal, time.Duration(config.Cadence)*time.Second, faults)
		go journal.Run()

		validator := std.NewValidator(registry, packets, faults)
		go validator.Run()

		receiver.Run()
		return nil
	}
	myApp.Run(os.Args)
}

func checkError(err error) {
	if err != nil {
		log.Printf("%+v\n", err)
		os.Exit(-1)
	}
}
