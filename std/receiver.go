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
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// DefaultRecvBuffer accommodates the largest expected checksum batch plus
// header and signature.
const DefaultRecvBuffer = 3600

// Receiver drains one or more bound UDP sockets and posts each datagram
// verbatim onto the packet channel. It never parses and never inspects; the
// kernel socket buffer is the only backpressure, and loss under overload is
// UDP-native.
type Receiver struct {
	conns   []*net.UDPConn
	packets chan<- []byte
	bufSize int
}

// Listen binds every port of the configured range and returns a receiver
// ready to Run. Bind failures are fatal to the caller.
func Listen(addr string, bufSize int, packets chan<- []byte) (*Receiver, error) {
	lr, err := ParseListenRange(addr)
	if err != nil {
		return nil, err
	}
	if bufSize < MinFrameSize {
		return nil, errors.Errorf("receive buffer %d cannot hold a minimum frame", bufSize)
	}

	r := &Receiver{packets: packets, bufSize: bufSize}
	for port := lr.MinPort; port <= lr.MaxPort; port++ {
		udpAddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%v:%v", lr.Host, port))
		if err != nil {
			r.Close()
			return nil, errors.WithStack(err)
		}
		conn, err := net.ListenUDP("udp", udpAddr)
		if err != nil {
			r.Close()
			return nil, errors.WithStack(err)
		}
		r.conns = append(r.conns, conn)
	}
	return r, nil
}

// Run reads datagrams until every socket is closed. One goroutine per bound
// port; each read allocates, because the validator takes ownership of the
// buffer across the channel.
func (r *Receiver) Run() {
	var wg sync.WaitGroup
	for _, conn := range r.conns {
		wg.Add(1)
		go func(conn *net.UDPConn) {
			defer wg.Done()
			log.Println("listening on:", conn.LocalAddr(), "/udp")
			for {
				buf := make([]byte, r.bufSize)
				n, _, err := conn.ReadFromUDP(buf)
				if err != nil {
					log.Println("recv:", err)
					return
				}
				atomic.AddUint64(&DefaultAudit.DatagramsIn, 1)
				atomic.AddUint64(&DefaultAudit.BytesIn, uint64(n))
				r.packets <- buf[:n]
			}
		}(conn)
	}
	wg.Wait()
}

// Close tears down every bound socket, unblocking Run.
func (r *Receiver) Close() {
	for _, conn := range r.conns {
		conn.Close()
	}
}
