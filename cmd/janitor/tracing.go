// Copyright (C) 2025 The Janitor Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var tracerProvider *sdktrace.TracerProvider

// setupTracing installs a stdout span exporter behind the global otel
// tracer when --trace is passed. Without it, the ast and pipeline spans go
// through the default no-op provider and cost nothing. Spans are written to
// stderr so they never interleave with the scan report on stdout.
func setupTracing() error {
	if !traceEnabled {
		return nil
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
	if err != nil {
		return fmt.Errorf("creating stdout trace exporter: %w", err)
	}
	tracerProvider = sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tracerProvider)
	return nil
}

// shutdownTracing flushes any buffered spans. Safe to call when --trace was
// never passed.
func shutdownTracing() {
	if tracerProvider == nil {
		return
	}
	_ = tracerProvider.Shutdown(context.Background())
}
