package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()
	r.Observe("cycle", 5*time.Millisecond, nil)
	r.Observe("cycle", time.Millisecond, nil)
	r.Observe("cycle", 0, errors.New("boom"))
	r.Surveyed("entropy-survey", 256)
	r.Saved()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.analyses.WithLabelValues("cycle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.failures.WithLabelValues("cycle")))
	assert.Equal(t, 256.0, testutil.ToFloat64(r.rulesSurveyed.WithLabelValues("entropy-survey")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsSaved))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.Observe("trace", time.Second, nil)
	r.Surveyed("analyze", 1)
	r.Saved()
	assert.Nil(t, r.Registry())
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "m.prom")))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.Observe("compress", 10*time.Millisecond, nil)
	path := filepath.Join(t.TempDir(), "ecalab.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `ecalab_analyses_total{kind="compress"} 1`)
	assert.Contains(t, string(data), "ecalab_analysis_duration_seconds_bucket")
}
