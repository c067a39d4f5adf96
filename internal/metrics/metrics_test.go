package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRequestIncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("Open", "SUCCESS"))
	RecordRequest("Open", "SUCCESS")
	after := testutil.ToFloat64(RequestsTotal.WithLabelValues("Open", "SUCCESS"))
	assert.Equal(t, before+1, after)
}

func TestCachedNodesGaugeSettable(t *testing.T) {
	CachedNodes.WithLabelValues("sess-1").Set(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(CachedNodes.WithLabelValues("sess-1")))
}
