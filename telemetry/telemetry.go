// Package telemetry exposes OpenTelemetry counters for cache and build activity. Without an
// exporter the global no-op meter provider is used, so counting is always safe.
package telemetry

import (
	"context"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/hightail/wilson-sub000/internal/errors"
	"github.com/puzpuzpuz/xsync/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const (
	NoneExporter    = "none"
	ConsoleExporter = "console"

	meterName = "github.com/hightail/wilson-sub000"
)

var (
	metricNameCleanPattern     = regexp.MustCompile(`[^A-Za-z0-9_.]`)
	multipleUnderscoresPattern = regexp.MustCompile(`_+`)

	counters = xsync.NewMapOf[string, metric.Int64Counter]()
)

// Options configures metric export.
type Options struct {
	// Exporter is one of NoneExporter or ConsoleExporter.
	Exporter string
	// Writer receives console exports; defaults to stderr.
	Writer io.Writer
	// Interval between periodic exports.
	Interval time.Duration
}

// ShutdownFunc flushes and stops the meter provider.
type ShutdownFunc func(ctx context.Context) error

// Init installs the global meter provider described by opts.
func Init(ctx context.Context, opts Options) (ShutdownFunc, error) {
	noop := func(context.Context) error { return nil }

	switch strings.ToLower(strings.TrimSpace(opts.Exporter)) {
	case "", NoneExporter:
		return noop, nil
	case ConsoleExporter:
	default:
		return noop, errors.Errorf("unsupported telemetry exporter %q", opts.Exporter)
	}

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	exp, err := stdoutmetric.New(stdoutmetric.WithWriter(writer))
	if err != nil {
		return noop, errors.New(err)
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(provider)

	return provider.Shutdown, nil
}

// Count adds value to the counter called name.
func Count(ctx context.Context, name string, value int64) {
	name = CleanMetricName(name)

	counter, _ := counters.LoadOrCompute(name, func() metric.Int64Counter {
		c, err := otel.Meter(meterName).Int64Counter(name)
		if err != nil {
			return nil
		}

		return c
	})

	if counter != nil {
		counter.Add(ctx, value)
	}
}

// CleanMetricName cleans metric name from invalid characters.
func CleanMetricName(metricName string) string {
	cleanedName := metricNameCleanPattern.ReplaceAllString(metricName, "_")
	cleanedName = multipleUnderscoresPattern.ReplaceAllString(cleanedName, "_")

	return strings.Trim(cleanedName, "_")
}
