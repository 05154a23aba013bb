// Package observability wires OpenTelemetry tracing and metrics for API
// clients.
//
// Setup initializes both exporters from a Config:
//
//	metrics, shutdown, err := observability.Setup(ctx, cfg.Observability, "apihelper")
//	defer shutdown(ctx)
//
//	c, err := client.New(p, cfg, client.WithMetrics(metrics))
//
// Every transport call is counted by provider, HTTP method and status, and
// each API call runs inside an apihelper.call span. A nil *Metrics is valid
// and records nothing.
package observability
