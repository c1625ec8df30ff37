package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestHandlerServesVerificationCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordVerification("qr", true)
	c.RecordVerification("qr", false)
	c.RecordVerification("manual", true)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	if !strings.Contains(bodyStr, "campusqr_verifications_total") {
		t.Error("response should contain campusqr_verifications_total")
	}
	if !strings.Contains(bodyStr, `method="qr",result="granted"`) {
		t.Errorf("granted qr scan not counted:\n%s", bodyStr)
	}
	if !strings.Contains(bodyStr, `method="manual",result="granted"`) {
		t.Errorf("manual grant not counted:\n%s", bodyStr)
	}
}
