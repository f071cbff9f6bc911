package main

import (
	"context"
	"log"
	"net"
	"time"
)

// Backoff bounds for recovering from persistent UDP receive errors
// without spinning.
const (
	udpErrorBackoffBase = 100 * time.Millisecond
	udpErrorBackoffMax  = 5 * time.Second
)

// runUDPEcho binds a UDP socket on addr and echoes every datagram back
// to its sender until the context is cancelled. Receive errors back off
// exponentially.
func runUDPEcho(ctx context.Context, addr string) error {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return err
	}
	socket, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	log.Printf("Starting UDP echo listener on %s", addr)

	go func() {
		<-ctx.Done()
		socket.Close()
	}()

	buf := make([]byte, maxBufferSize)
	consecutiveErrors := 0

	for {
		n, peer, err := socket.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			consecutiveErrors++
			backoff := udpErrorBackoffBase << uint(min(consecutiveErrors, 10))
			if backoff > udpErrorBackoffMax {
				backoff = udpErrorBackoffMax
			}
			log.Printf("UDP receive error on %s: %v (backing off %v)", addr, err, backoff)
			if !sleepContext(ctx, backoff) {
				return nil
			}
			continue
		}
		consecutiveErrors = 0

		if _, err := socket.WriteToUDP(buf[:n], peer); err != nil {
			log.Printf("UDP echo to %s: %v", peer, err)
		}
	}
}
