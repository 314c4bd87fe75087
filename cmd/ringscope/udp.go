package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
)

// ingest reads datagrams from conn until ctx is done. Each datagram becomes
// one record at the back of the stream named after the sender's IP.
func ingest(ctx context.Context, conn net.PacketConn, streams *Streams) error {
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	buf := make([]byte, maxPayload)
	for {
		n, peer, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("udp read: %w", err)
		}

		source := peer.String()
		if udp, ok := peer.(*net.UDPAddr); ok {
			source = udp.IP.String()
		}
		payload := strings.TrimRight(string(buf[:n]), "\r\n")

		_, overwrote := streams.GetOrCreate(source).Push(ctx, source, payload, false)
		slog.Debug("record received", "stream", source, "bytes", n, "overwrote", overwrote)
	}
}

func serveUDP(ctx context.Context, addr string, streams *Streams) error {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return fmt.Errorf("udp listen: %w", err)
	}
	slog.Info("udp intake listening", "addr", conn.LocalAddr().String())
	return ingest(ctx, conn, streams)
}
