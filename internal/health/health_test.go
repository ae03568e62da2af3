package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		code   int
		status Status
	}{
		{name: "ok is up", code: http.StatusOK, status: StatusUp},
		{name: "not found is down", code: http.StatusNotFound, status: StatusDown},
		{name: "server error is down", code: http.StatusBadGateway, status: StatusDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			}))
			defer srv.Close()

			result := Check(context.Background(), nil, srv.URL+"/health")
			if result.Status != tt.status {
				t.Errorf("Check() status = %v, want %v", result.Status, tt.status)
			}
			if result.StatusCode != tt.code {
				t.Errorf("Check() code = %d, want %d", result.StatusCode, tt.code)
			}
		})
	}
}

func TestCheckUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	result := Check(context.Background(), nil, url)
	if result.Status != StatusDown {
		t.Errorf("Check() status = %v, want down", result.Status)
	}
	if result.Err == nil {
		t.Error("Check() expected error for closed server")
	}
}

func TestCheckBadURL(t *testing.T) {
	result := Check(context.Background(), nil, "://nope")
	if result.Status != StatusUnknown {
		t.Errorf("Check() status = %v, want unknown", result.Status)
	}
}
