package ros2client

import (
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// contextOptions holds configuration for a Context.
type contextOptions struct {
	DomainID int
	Logger   *slog.Logger
	Registry prometheus.Registerer
}

// ContextOption configures a Context. See NewContext.
type ContextOption func(*contextOptions)

func defaultContextOptions() contextOptions {
	return contextOptions{
		DomainID: 0,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Registry: prometheus.DefaultRegisterer,
	}
}

// WithContextLogger sets the logger used for all nodes and spinners
// created from this Context. Defaults to a discarding logger.
func WithContextLogger(l *slog.Logger) ContextOption {
	return func(o *contextOptions) { o.Logger = l }
}

// WithMetricsRegistry overrides the prometheus registerer used for
// this Context's metrics. Defaults to prometheus.DefaultRegisterer.
func WithMetricsRegistry(r prometheus.Registerer) ContextOption {
	return func(o *contextOptions) { o.Registry = r }
}

// nodeOptions holds configuration for a Node.
type nodeOptions struct {
	Namespace    string
	EnableRosout bool
	StatusBuffer int // capacity of each Spinner status-listener channel
}

// NodeOption configures a Node. See Context.NewNode.
type NodeOption func(*nodeOptions)

func defaultNodeOptions() nodeOptions {
	return nodeOptions{
		Namespace:    "/",
		EnableRosout: true,
		StatusBuffer: 8,
	}
}

// WithNamespace sets the node's namespace, e.g. "/turtle1". Defaults
// to "/".
func WithNamespace(ns string) NodeOption {
	return func(o *nodeOptions) { o.Namespace = ns }
}

// WithRosout sets the node's EnableRosout option (true by default).
// The option is stored but nothing reads it: this package creates no
// /rosout topic for a node either way.
func WithRosout(enabled bool) NodeOption {
	return func(o *nodeOptions) { o.EnableRosout = enabled }
}

// WithStatusBuffer sets the capacity of each status-listener channel
// handed out by Spinner.StatusReceiver. Defaults to 8.
func WithStatusBuffer(n int) NodeOption {
	return func(o *nodeOptions) {
		if n > 0 {
			o.StatusBuffer = n
		}
	}
}
