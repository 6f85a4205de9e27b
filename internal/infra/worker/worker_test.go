package worker

import (
	"io"
	"log/slog"
)

// Worker metrics register with the default registry, so the package shares one instance.
var testMetrics = NewWorkerMetrics()

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
