package pushover

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_RecordCall(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordCall("send", "ok", 250*time.Millisecond)
	m.RecordCall("send", "ok", 100*time.Millisecond)
	m.RecordCall("send", "rejected", 50*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.apiCallsTotal.WithLabelValues("send", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.apiCallsTotal.WithLabelValues("send", "rejected")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordCall("send", "ok", time.Second)
	})
}

func TestClient_RecordsMetrics(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":1,"request":"req-5"}`)
	})
	m := NewMetrics(prometheus.NewRegistry())

	srvClient := newTestClient(t, handler)
	srvClient.metrics = m

	_, err := srvClient.Send(context.Background(), NewMessage("U1", "hi"))
	assert.NoError(t, err)

	_, err = srvClient.CheckReceipt(context.Background(), "not-a-receipt")
	assert.Error(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.apiCallsTotal.WithLabelValues("send", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.apiCallsTotal.WithLabelValues("check_receipt", "validation")))
}
