package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/pin/tftp/v3"
)

var errReadOnly = errors.New("ringscope TFTP is read-only")

// newTFTPServer serves stream snapshots: "<name>" is the slot dump and
// "<name>.json" the records in logical order.
func newTFTPServer(streams *Streams) *tftp.Server {
	read := func(filename string, rf io.ReaderFrom) error {
		var buf bytes.Buffer
		if err := snapshotFile(streams, filename, &buf); err != nil {
			slog.Info("tftp read refused", "file", filename, "error", err)
			return err
		}
		if _, err := rf.ReadFrom(&buf); err != nil {
			slog.Warn("tftp transfer failed", "file", filename, "error", err)
			return err
		}
		return nil
	}
	write := func(filename string, wt io.WriterTo) error {
		slog.Info("tftp write refused", "file", filename)
		return errReadOnly
	}

	s := tftp.NewServer(read, write)
	s.SetTimeout(5 * time.Second)
	return s
}

func snapshotFile(streams *Streams, filename string, w io.Writer) error {
	name := strings.TrimPrefix(filename, "/")
	asJSON := strings.HasSuffix(name, ".json")
	name = strings.TrimSuffix(name, ".json")

	st, err := streams.Get(name)
	if err != nil {
		return err
	}
	if !asJSON {
		return st.Dump(w)
	}
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	_, err = w.Write(data)
	return err
}

func serveTFTP(ctx context.Context, addr string, s *tftp.Server) error {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("tftp address %q: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("tftp listen: %w", err)
	}

	go func() {
		<-ctx.Done()
		s.Shutdown()
		conn.Close()
	}()

	slog.Info("tftp server listening", "addr", conn.LocalAddr().String())
	if err := s.Serve(conn); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tftp server: %w", err)
	}
	return nil
}
