package catserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adaptivecat/engine/internal/cat"
	"github.com/adaptivecat/engine/internal/irt"
	"github.com/adaptivecat/engine/internal/multicat"
)

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	corpus := []multicat.Stimulus{
		{ID: "item0", Zetas: []multicat.ZetaTuple{
			{Params: irt.Params{A: 1, B: -1, C: 0, D: 1}, Cats: []string{"reading"}},
		}},
		{ID: "item1", Zetas: []multicat.ZetaTuple{
			{Params: irt.Params{A: 1, B: 0, C: 0, D: 1}, Cats: []string{"reading"}},
		}},
	}
	sessionOpts := map[string]cat.CatOptions{
		"reading": {Method: "mle", Selector: "mfi"},
	}

	pinHash, err := HashProctorPIN("1234")
	if err != nil {
		t.Fatalf("HashProctorPIN: %v", err)
	}

	s := NewServer(corpus, sessionOpts, pinHash)
	return httptest.NewServer(s.Routes()), pinHash
}

func postJSON(t *testing.T, url string, body any, bearer string) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRegisterThenNextRequiresBearerToken(t *testing.T) {
	srv, _ := newTestServer(t)
	t.Cleanup(srv.Close)

	resp := postJSON(t, srv.URL+"/v1/sessions/register", map[string]string{"examinee_id": "alice"}, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: got status %d", resp.StatusCode)
	}
	var reg registerResponse
	if err := json.NewDecoder(resp.Body).Decode(&reg); err != nil {
		t.Fatalf("decode register response: %v", err)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/v1/sessions/reading/next", nil)
	unauth, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("unauthenticated next: %v", err)
	}
	defer unauth.Body.Close()
	if unauth.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a bearer token, got %d", unauth.StatusCode)
	}

	req.Header.Set("Authorization", "Bearer "+reg.Token)
	authed, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("authenticated next: %v", err)
	}
	defer authed.Body.Close()
	if authed.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with a valid bearer token, got %d", authed.StatusCode)
	}
}

func TestHandleReviewRejectsWrongProctorPIN(t *testing.T) {
	srv, _ := newTestServer(t)
	t.Cleanup(srv.Close)

	resp := postJSON(t, srv.URL+"/v1/sessions/register", map[string]string{"examinee_id": "bob"}, "")
	var reg registerResponse
	if err := json.NewDecoder(resp.Body).Decode(&reg); err != nil {
		t.Fatalf("decode register response: %v", err)
	}

	wrong := postJSON(t, srv.URL+"/v1/sessions/reading/review", map[string]string{"pin": "0000"}, reg.Token)
	if wrong.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for a wrong proctor pin, got %d", wrong.StatusCode)
	}

	right := postJSON(t, srv.URL+"/v1/sessions/reading/review", map[string]string{"pin": "1234"}, reg.Token)
	if right.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for the correct proctor pin, got %d", right.StatusCode)
	}
}
