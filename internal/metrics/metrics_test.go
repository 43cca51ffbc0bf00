package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTransition(t *testing.T) {
	before := testutil.ToFloat64(assignments.WithLabelValues("device", "assign", OutcomeOK))
	RecordTransition("device", "assign", OutcomeOK)
	assert.Equal(t, before+1, testutil.ToFloat64(assignments.WithLabelValues("device", "assign", OutcomeOK)))

	RecordTransition("", "assign", OutcomeError)
	assert.Equal(t, float64(1), testutil.ToFloat64(assignments.WithLabelValues("unknown", "assign", OutcomeError)))
}

func TestRecordDeletionCheck(t *testing.T) {
	RecordDeletionCheck("employee", false)
	RecordDeletionCheck("employee", true)
	assert.Equal(t, float64(1), testutil.ToFloat64(deletionChecks.WithLabelValues("employee", "reject")))
	assert.Equal(t, float64(1), testutil.ToFloat64(deletionChecks.WithLabelValues("employee", "allow")))
}
