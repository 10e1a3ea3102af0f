// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

// mockServer implements HTTPServer with controllable behavior.
type mockServer struct {
	listenErr  error
	shutdownCh chan struct{}
	shutdown   bool
}

func newMockServer() *mockServer {
	return &mockServer{shutdownCh: make(chan struct{})}
}

func (m *mockServer) ListenAndServe() error {
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.shutdownCh
	return http.ErrServerClosed
}

func (m *mockServer) Shutdown(context.Context) error {
	m.shutdown = true
	close(m.shutdownCh)
	return nil
}

func TestHTTPServerServiceGracefulShutdown(t *testing.T) {
	t.Parallel()

	server := newMockServer()
	svc := NewHTTPServerService("metrics-server", server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
	if !server.shutdown {
		t.Error("Shutdown was not called")
	}
}

func TestHTTPServerServiceStartupFailure(t *testing.T) {
	t.Parallel()

	server := newMockServer()
	server.listenErr = errors.New("address already in use")
	svc := NewHTTPServerService("metrics-server", server, time.Second)

	err := svc.Serve(context.Background())
	if err == nil || !errors.Is(err, server.listenErr) {
		t.Errorf("Serve returned %v, want wrapped listen error", err)
	}
}

func TestHTTPServerServiceName(t *testing.T) {
	t.Parallel()

	if got := NewHTTPServerService("", newMockServer(), 0).String(); got != "http-server" {
		t.Errorf("default name = %s", got)
	}
	if got := NewHTTPServerService("metrics-server", newMockServer(), 0).String(); got != "metrics-server" {
		t.Errorf("name = %s", got)
	}
}
