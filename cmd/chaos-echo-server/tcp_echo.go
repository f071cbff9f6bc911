package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
)

// maxBufferSize caps per-connection buffers so a malicious peer cannot
// exhaust memory.
const maxBufferSize = 65536

// runTCPEcho accepts raw TCP connections on addr and echoes whatever
// each peer sends until the context is cancelled.
func runTCPEcho(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	log.Printf("Starting TCP echo listener on %s", addr)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("Failed to accept TCP connection: %v", err)
			continue
		}
		go handleTCPConnection(conn)
	}
}

// handleTCPConnection copies bytes back to the peer through a bounded
// buffer until EOF or error.
func handleTCPConnection(conn net.Conn) {
	defer conn.Close()

	buf := make([]byte, maxBufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			if _, werr := conn.Write(buf[:n]); werr != nil {
				log.Printf("TCP echo write to %s: %v", conn.RemoteAddr(), werr)
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Printf("TCP echo read from %s: %v", conn.RemoteAddr(), err)
			}
			return
		}
	}
}
