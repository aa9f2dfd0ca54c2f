package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpsync/types"
)

func TestRecordCall(t *testing.T) {
	ok := RemoteCallsTotal.WithLabelValues("GET", "200")
	failed := RemoteCallsTotal.WithLabelValues("DELETE", "error")
	beforeOK, beforeFailed := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	RecordCall(types.CallLogEntry{Method: "GET", StatusCode: 200, Duration: 20 * time.Millisecond})
	RecordCall(types.CallLogEntry{Method: "DELETE"})

	assert.Equal(t, beforeOK+1, testutil.ToFloat64(ok))
	assert.Equal(t, beforeFailed+1, testutil.ToFloat64(failed))
}

func TestReportsSink(t *testing.T) {
	success := SyncItemsTotal.WithLabelValues("create", "success")
	failure := SyncItemsTotal.WithLabelValues("create", "failure")
	beforeS, beforeF := testutil.ToFloat64(success), testutil.ToFloat64(failure)

	r := types.SyncReport{Operation: types.OperationCreate}
	r.Add(types.ItemResult{Outcome: types.OutcomeSuccess})
	r.Add(types.ItemResult{Outcome: types.OutcomeSuccess})
	r.Add(types.ItemResult{Outcome: types.OutcomeFailure})

	require.NoError(t, Reports{}.Save(context.Background(), r))

	assert.Equal(t, beforeS+2, testutil.ToFloat64(success))
	assert.Equal(t, beforeF+1, testutil.ToFloat64(failure))
}

func TestRecordComparison(t *testing.T) {
	RecordComparison(types.ComparisonResult{
		New:      make([]types.SourceArticle, 3),
		Orphaned: make([]types.DestinationArticle, 1),
	})
	RecordExcluded(4)

	assert.Equal(t, 3.0, testutil.ToFloat64(ComparisonArticles.WithLabelValues("new")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ComparisonArticles.WithLabelValues("orphaned")))
	assert.Equal(t, 0.0, testutil.ToFloat64(ComparisonArticles.WithLabelValues("existing")))
	assert.Equal(t, 4.0, testutil.ToFloat64(ExcludedArticles))
}
