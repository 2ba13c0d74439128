package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/softwarewrighter/open-tts/internal/voicestore"
)

func authTestServer(t *testing.T, apiKey string) *httptest.Server {
	t.Helper()
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(APIKeyAuth(apiKey)(ok))
	t.Cleanup(srv.Close)
	return srv
}

func doAuth(t *testing.T, srv *httptest.Server, setup func(*http.Request)) int {
	t.Helper()
	req, err := http.NewRequest("GET", srv.URL+"/", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if setup != nil {
		setup(req)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestAPIKeyAuthMissingKey(t *testing.T) {
	srv := authTestServer(t, "secret")
	if code := doAuth(t, srv, nil); code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", code)
	}
}

func TestAPIKeyAuthWrongKey(t *testing.T) {
	srv := authTestServer(t, "secret")
	code := doAuth(t, srv, func(r *http.Request) {
		r.Header.Set("X-API-Key", "wrong")
	})
	if code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", code)
	}
}

func TestAPIKeyAuthHeaderKey(t *testing.T) {
	srv := authTestServer(t, "secret")
	code := doAuth(t, srv, func(r *http.Request) {
		r.Header.Set("X-API-Key", "secret")
	})
	if code != http.StatusOK {
		t.Errorf("expected 200, got %d", code)
	}
}

func TestAPIKeyAuthBearerToken(t *testing.T) {
	srv := authTestServer(t, "secret")
	code := doAuth(t, srv, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer secret")
	})
	if code != http.StatusOK {
		t.Errorf("expected 200, got %d", code)
	}
}

// Health stays public even when the rest of the API requires a key.
func TestRouterHealthBypassesAuth(t *testing.T) {
	store, err := voicestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	h := NewHandler(&stubEngine{modelID: "openf5_tts"}, store, Options{})
	srv := httptest.NewServer(NewRouter(h, RouterConfig{BackendAPIKey: "secret"}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected public health endpoint, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/voices")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without key, got %d", resp.StatusCode)
	}
}
