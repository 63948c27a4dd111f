// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

package eventprocessor

import (
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

// ServerConfig configures the embedded NATS broker used by single-instance
// deployments that want JetStream without running NATS separately.
type ServerConfig struct {
	Host string

	// Port -1 picks a free port.
	Port int

	// StoreDir holds JetStream files. Empty keeps JetStream disabled.
	StoreDir string

	ReadyTimeout time.Duration
}

// DefaultServerConfig returns loopback-only defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "127.0.0.1",
		Port:         4222,
		StoreDir:     "/data/nats",
		ReadyTimeout: 10 * time.Second,
	}
}

// EmbeddedServer is an in-process NATS server.
type EmbeddedServer struct {
	ns *server.Server
}

// NewEmbeddedServer starts a broker and waits until it accepts clients.
func NewEmbeddedServer(cfg ServerConfig) (*EmbeddedServer, error) {
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = DefaultServerConfig().ReadyTimeout
	}

	ns, err := server.NewServer(&server.Options{
		ServerName: "newsrec-events",
		Host:       cfg.Host,
		Port:       cfg.Port,
		JetStream:  cfg.StoreDir != "",
		StoreDir:   cfg.StoreDir,
		NoLog:      true,
		NoSigs:     true,
		MaxPayload: 1 << 20, // events are small JSON documents
	})
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}

	go ns.Start()
	if !ns.ReadyForConnections(cfg.ReadyTimeout) {
		ns.Shutdown()
		return nil, errors.New("embedded NATS server not ready within timeout")
	}
	return &EmbeddedServer{ns: ns}, nil
}

// ClientURL returns the URL clients connect to.
func (s *EmbeddedServer) ClientURL() string {
	return s.ns.ClientURL()
}

// JetStreamEnabled reports whether the server runs JetStream.
func (s *EmbeddedServer) JetStreamEnabled() bool {
	return s.ns.JetStreamEnabled()
}

// Close stops the server and waits for it to exit.
func (s *EmbeddedServer) Close() error {
	s.ns.Shutdown()
	s.ns.WaitForShutdown()
	return nil
}
