package core

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestOptions_FillDefaults verifies zero values are replaced
// Given: A zero Options
// When: FillDefaults is called
// Then: Tag defaults, GOMAXPROCS workers, a generated name and handlers are set
func TestOptions_FillDefaults(t *testing.T) {
	// Arrange
	var o Options

	// Act
	err := o.FillDefaults()

	// Assert
	require.NoError(t, err)
	require.Equal(t, runtime.GOMAXPROCS(0), o.Workers)
	require.Equal(t, 4, o.StealProbeLimit)
	require.Equal(t, 100, o.HistoryCapacity)
	require.Regexp(t, `^pool-[0-9a-f]{8}$`, o.Name)
	require.IsType(t, &ZapLogger{}, o.Logger)
	require.IsType(t, &DefaultPanicHandler{}, o.PanicHandler)
	require.IsType(t, &NilMetrics{}, o.Metrics)
	require.IsType(t, &DefaultRejectedTaskHandler{}, o.RejectedTaskHandler)
}

func TestOptions_FillDefaultsKeepsExplicitValues(t *testing.T) {
	logger := NewNoOpLogger()
	o := Options{Name: "mine", Workers: 3, StealProbeLimit: 1, HistoryCapacity: 7, Logger: logger}

	require.NoError(t, o.FillDefaults())
	require.Equal(t, "mine", o.Name)
	require.Equal(t, 3, o.Workers)
	require.Equal(t, 1, o.StealProbeLimit)
	require.Equal(t, 7, o.HistoryCapacity)
	require.Same(t, logger, o.Logger)
}

func TestOptions_NegativeWorkers(t *testing.T) {
	o := Options{Workers: -1}
	require.ErrorIs(t, o.FillDefaults(), ErrInvalidWorkerCount)
}

// TestOptions_ProbeBound verifies the number of peers probed per steal pass
func TestOptions_ProbeBound(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		limit   int
		want    int
	}{
		{"single worker", 1, 4, 0},
		{"fewer peers than limit", 3, 4, 2},
		{"limit caps", 16, 4, 4},
		{"disabled", 8, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Options{Workers: tt.workers, StealProbeLimit: tt.limit}
			require.Equal(t, tt.want, o.probeBound())
		})
	}
}
