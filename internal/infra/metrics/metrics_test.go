package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordSelection(t *testing.T) {
	before := testutil.ToFloat64(SelectionsTotal.WithLabelValues(OutcomeCache))
	RecordSelection(OutcomeCache, 0.01)
	assert.Equal(t, before+1, testutil.ToFloat64(SelectionsTotal.WithLabelValues(OutcomeCache)))
}

func TestRecordFallbackAndJob(t *testing.T) {
	before := testutil.ToFloat64(FallbacksTotal.WithLabelValues("parse"))
	RecordFallback("parse")
	assert.Equal(t, before+1, testutil.ToFloat64(FallbacksTotal.WithLabelValues("parse")))

	jobsBefore := testutil.ToFloat64(JobsTotal.WithLabelValues("failed"))
	RecordJob("failed")
	assert.Equal(t, jobsBefore+1, testutil.ToFloat64(JobsTotal.WithLabelValues("failed")))
}

func TestRecordCandidates(t *testing.T) {
	RecordCandidates(7)
	assert.Equal(t, 1, testutil.CollectAndCount(CandidatesAggregated))
}
