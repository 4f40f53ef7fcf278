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
	"net"
	"os"
	"strconv"
	"time"

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
	myApp.Name = "crcaudit-client"
	myApp.Usage = "chained-CRC packet producer"
	myApp.Version = VERSION
	myApp.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "remote, r",
			Value: "127.0.0.1:1337",
			Usage: "auditor address",
		},
		cli.UintFlag{
			Name:  "stream, s",
			Value: 1,
			Usage: "stream id to claim in outgoing packets",
		},
		cli.StringFlag{
			Name:  "binary, b",
			Value: "",
			Usage: "binary artifact the checksums are computed over",
		},
		cli.StringFlag{
			Name:  "key, k",
			Value: "",
			Usage: "PKCS#1 RSA private key, PEM or DER",
		},
		cli.IntFlag{
			Name:  "packets, n",
			Value: 1,
			Usage: "number of packets to send",
		},
		cli.IntFlag{
			Name:  "batch",
			Value: 1,
			Usage: "checksums per packet",
		},
		cli.StringFlag{
			Name:  "xorkey",
			Value: "1234",
			Usage: "two-byte checksum mask, hex",
		},
		cli.IntFlag{
			Name:  "interval",
			Value: 0,
			Usage: "milliseconds between packets",
		},
		cli.IntFlag{
			Name:  "corrupt",
			Value: -1,
			Usage: "flip a bit in the nth checksum sent (0-based), to exercise the failure journal",
		},
		cli.IntFlag{
			Name:  "seqskip",
			Value: 0,
			Usage: "add this offset to every declared sequence, to exercise sequence mismatch reporting",
		},
	}
	myApp.Action = func(c *cli.Context) error {
		if c.String("binary") == "" || c.String("key") == "" {
			log.Println("both --binary and --key are required")
			os.Exit(-1)
		}

		artifact, err := std.LoadArtifact(c.String("binary"))
		checkError(err)

		key, err := loadSigner(c.String("key"))
		checkError(err)
		if key.Size() != std.SignatureSize {
			log.Printf("key produces %d-byte signatures, the wire carries %d\n", key.Size(), std.SignatureSize)
			os.Exit(-1)
		}

		xorKey, err := strconv.ParseUint(c.String("xorkey"), 16, 16)
		checkError(err)

		conn, err := net.Dial("udp", c.String("remote"))
		checkError(err)
		defer conn.Close()

		log.Println("version:", VERSION)
		log.Println("remote:", c.String("remote"))
		log.Println("stream:", c.Uint("stream"))
		log.Println("artifact:", len(artifact), "bytes")
		log.Println("key:", key.N.BitLen(), "bits")

		gen := &generator{
			stream:   &std.Stream{Artifact: artifact},
			streamID: uint32(c.Uint("stream")),
			key:      key,
			xorKey:   uint16(xorKey),
			batch:    c.Int("batch"),
			corrupt:  c.Int("corrupt"),
			seqSkip:  uint32(c.Int("seqskip")),
		}

		interval := time.Duration(c.Int("interval")) * time.Millisecond
		for i := 0; i < c.Int("packets"); i++ {
			raw, err := gen.next()
			checkError(err)
			if _, err := conn.Write(raw); err != nil {
				checkError(err)
			}
			if interval > 0 && i+1 < c.Int("packets") {
				time.Sleep(interval)
			}
		}
		log.Println("sent", c.Int("packets"), "packets,", c.Int("packets")*c.Int("batch"), "checksums")
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
