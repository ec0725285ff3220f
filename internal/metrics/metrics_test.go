package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"pokerserver/internal/table"
)

func TestRecorderIncrementsCounters(t *testing.T) {
	r := NewRecorder()
	tableID := "metrics-test-table"

	before := testutil.ToFloat64(HandsStarted.WithLabelValues(tableID))
	r.RecordHandStarted(tableID)
	require.Equal(t, before+1, testutil.ToFloat64(HandsStarted.WithLabelValues(tableID)))

	beforeComplete := testutil.ToFloat64(HandsCompleted.WithLabelValues(tableID, "showdown"))
	r.RecordHandComplete(tableID, "showdown")
	require.Equal(t, beforeComplete+1, testutil.ToFloat64(HandsCompleted.WithLabelValues(tableID, "showdown")))

	beforeAction := testutil.ToFloat64(ActionsTotal.WithLabelValues(tableID, string(table.CmdFold)))
	r.RecordAction(tableID, table.CmdFold)
	require.Equal(t, beforeAction+1, testutil.ToFloat64(ActionsTotal.WithLabelValues(tableID, string(table.CmdFold))))

	beforeTimeout := testutil.ToFloat64(ActionTimeouts.WithLabelValues(tableID))
	r.RecordActionTimeout(tableID)
	require.Equal(t, beforeTimeout+1, testutil.ToFloat64(ActionTimeouts.WithLabelValues(tableID)))
}
