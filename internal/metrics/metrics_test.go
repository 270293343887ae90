package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRPC(t *testing.T) {
	m := New()
	m.ObserveRPC("/settleup.v1.LedgerService/GetGroupBalances", "ok", 5*time.Millisecond)
	m.ObserveRPC("/settleup.v1.LedgerService/GetGroupBalances", "ok", 7*time.Millisecond)
	m.ObserveRPC("/settleup.v1.LedgerService/GetGroupBalances", "not_found", time.Millisecond)

	got := testutil.ToFloat64(m.rpcRequests.WithLabelValues("/settleup.v1.LedgerService/GetGroupBalances", "ok"))
	if got != 2 {
		t.Errorf("ok count = %v, want 2", got)
	}
	if n := testutil.CollectAndCount(m.rpcDuration); n != 1 {
		t.Errorf("duration series = %d, want 1", n)
	}
}

func TestObserveSettlement(t *testing.T) {
	m := New()
	m.ObserveSettlement(12, 3)
	m.SettlementFailed()

	if got := testutil.ToFloat64(m.settlements.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.settlements.WithLabelValues("error")); got != 1 {
		t.Errorf("error = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRPC("p", "ok", time.Second)
	m.ObserveSettlement(1, 1)
	m.SettlementFailed()
	m.ObserveOverview(2)
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveOverview(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "settleup_overview_groups_count 1") {
		t.Errorf("metrics output missing overview histogram:\n%s", body)
	}
}
