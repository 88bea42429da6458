package mongoqx

import (
	"github.com/mongoqx/mongoqx/contrib/buildversion"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	buildVersion string = buildversion.GetVersion("github.com/mongoqx/mongoqx")
	meter               = otel.Meter("github.com/mongoqx/mongoqx",
		metric.WithInstrumentationVersion(buildVersion))
)

var (
	// queryDurations tracks the wall-clock duration of dispatched queries,
	// per query kind.
	queryDurations, _ = meter.Float64Histogram("db.client.operation.duration",
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10))

	// queriesDispatched counts dispatched queries, per query kind.
	queriesDispatched, _ = meter.Int64Counter("mongoqx.queries_dispatched")
)
