package runtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// ReadyCheck is a named dependency probe for /readyz. A nil Check is skipped.
type ReadyCheck struct {
	Name  string
	Check func(context.Context) error
}

const readyProbeTimeout = 2 * time.Second

// NewBaseMux returns a mux serving /healthz and /readyz.
// /readyz answers 503 with the failing dependencies when any check fails.
func NewBaseMux(checks ...ReadyCheck) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		failures := runChecks(r.Context(), checks)

		w.Header().Set("Content-Type", "application/json")
		status := http.StatusOK
		body := map[string]any{"status": "ok"}
		if len(failures) > 0 {
			status = http.StatusServiceUnavailable
			body = map[string]any{"status": "unavailable", "failures": failures}
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})
	return mux
}

func runChecks(ctx context.Context, checks []ReadyCheck) map[string]string {
	failures := map[string]string{}
	for _, check := range checks {
		if check.Check == nil {
			continue
		}
		probeCtx, cancel := context.WithTimeout(ctx, readyProbeTimeout)
		err := check.Check(probeCtx)
		cancel()
		if err != nil {
			name := check.Name
			if name == "" {
				name = "dependency"
			}
			failures[name] = err.Error()
		}
	}
	return failures
}
