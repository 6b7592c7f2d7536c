package sweep

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Katakuri004/HT-Project-Scripts/internal/sweep"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
