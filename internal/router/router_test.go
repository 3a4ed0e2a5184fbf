package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"baby-care-log/internal/adapters/auth/static"
	"baby-care-log/internal/router"
)

func newServer(t *testing.T, opts router.Options) *httptest.Server {
	t.Helper()
	h, err := router.NewRouter(opts)
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_CommandLifecycle(t *testing.T) {
	ts := newServer(t, router.Options{})

	ownerID := "owner-1"
	strangerID := "stranger-1"

	// 1) Owner crea perfil
	profileID := createProfile(t, ts.URL, ownerID, map[string]any{
		"name":          "Lucía",
		"gender":        "female",
		"date_of_birth": "2024-01-31",
	})

	// 2) Owner crea un biberón
	eventID := runCommand(t, ts.URL, ownerID, http.StatusCreated, map[string]any{
		"__action":  "CREATE_BOTTLE_FEED_EVENT",
		"profileId": profileID,
		"time":      "2024-03-01T08:00:00Z",
		"volume":    90,
		"comment":   "mañana",
	})["id"].(string)

	// 3) Update parcial: solo volume. comment queda igual.
	{
		out := runCommand(t, ts.URL, ownerID, http.StatusOK, map[string]any{
			"__action": "UPDATE_BOTTLE_FEED_EVENT",
			"id":       eventID,
			"volume":   120,
		})
		if out["volume"] != 120.0 {
			t.Fatalf("expected volume 120, got %v", out["volume"])
		}
		if out["comment"] != "mañana" {
			t.Fatalf("expected comment untouched, got %v", out["comment"])
		}
		if out["hash"] == "" {
			t.Fatalf("expected hash in response")
		}
	}

	// 4) Kind de la acción distinto al guardado => 400
	{
		st, body := doReq(t, ts.URL, "POST", "/api/runCommand", ownerID, map[string]any{
			"__action": "UPDATE_SLEEP_EVENT",
			"id":       eventID,
			"duration": 1000,
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 on kind mismatch, got %d body=%s", st, string(body))
		}
	}

	// 5) Otro usuario no puede tocarlo
	{
		st, _ := doReq(t, ts.URL, "POST", "/api/runCommand", strangerID, map[string]any{
			"__action": "UPDATE_BOTTLE_FEED_EVENT",
			"id":       eventID,
			"volume":   1,
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 for stranger, got %d", st)
		}
	}

	// 6) Lista canónica
	{
		st, body := doReq(t, ts.URL, "GET", "/profiles/"+profileID+"/events?kinds=BOTTLE_FEED", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list, got %d body=%s", st, string(body))
		}
		var items []map[string]any
		_ = json.Unmarshal(body, &items)
		if len(items) != 1 || items[0]["id"] != eventID {
			t.Fatalf("unexpected list: %s", string(body))
		}
	}

	// 7) Remove
	{
		out := runCommand(t, ts.URL, ownerID, http.StatusOK, map[string]any{
			"__action": "REMOVE_BOTTLE_FEED_EVENT",
			"id":       eventID,
		})
		if out["id"] != eventID {
			t.Fatalf("expected removed id, got %v", out)
		}

		st, body := doReq(t, ts.URL, "GET", "/profiles/"+profileID+"/events", ownerID, nil)
		if st != http.StatusOK || strings.TrimSpace(string(body)) != "[]" {
			t.Fatalf("expected empty list after remove, got %d body=%s", st, string(body))
		}
	}
}

func TestHTTP_TopPrescriptions(t *testing.T) {
	ts := newServer(t, router.Options{})
	ownerID := "owner-1"
	profileID := createProfile(t, ts.URL, ownerID, map[string]any{"name": "Tomás"})

	for _, p := range []string{"Amoxicillin 250mg", "Ibuprofen", "Amoxicillin 250mg", "__UNSPECIFIED__"} {
		runCommand(t, ts.URL, ownerID, http.StatusCreated, map[string]any{
			"__action":     "CREATE_MEDICINE_EVENT",
			"profileId":    profileID,
			"prescription": p,
		})
	}

	st, body := doReq(t, ts.URL, "GET", "/api/runCommand/FETCH_TOP_PRESCRIPTIONS?profileId="+profileID+"&searchText=", ownerID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", st, string(body))
	}
	var out struct {
		Prescriptions []string `json:"prescriptions"`
	}
	_ = json.Unmarshal(body, &out)
	if len(out.Prescriptions) != 2 || out.Prescriptions[0] != "Amoxicillin 250mg" {
		t.Fatalf("unexpected prescriptions: %s", string(body))
	}

	st, body = doReq(t, ts.URL, "GET", "/api/runCommand/FETCH_TOP_PRESCRIPTIONS?profileId="+profileID+"&searchText=ibu", ownerID, nil)
	if st != http.StatusOK || !strings.Contains(string(body), "Ibuprofen") || strings.Contains(string(body), "Amox") {
		t.Fatalf("unexpected filtered prescriptions: %d %s", st, string(body))
	}
}

func TestHTTP_RunCommand_Rejects(t *testing.T) {
	ts := newServer(t, router.Options{})
	ownerID := "owner-1"
	profileID := createProfile(t, ts.URL, ownerID, map[string]any{"name": "Tomás"})

	cases := []struct {
		name   string
		user   string
		body   any
		status int
	}{
		{"no user", "", map[string]any{"__action": "CREATE_SLEEP_EVENT", "profileId": profileID}, http.StatusUnauthorized},
		{"unknown action", ownerID, map[string]any{"__action": "UPDATE_TELEPORT_EVENT", "id": "x"}, http.StatusBadRequest},
		{"missing action", ownerID, map[string]any{"id": "x"}, http.StatusBadRequest},
		{"unknown event", ownerID, map[string]any{"__action": "UPDATE_SLEEP_EVENT", "id": "nope"}, http.StatusNotFound},
		{"unknown profile", ownerID, map[string]any{"__action": "CREATE_SLEEP_EVENT", "profileId": "nope"}, http.StatusNotFound},
		{"missing volume", ownerID, map[string]any{"__action": "CREATE_BOTTLE_FEED_EVENT", "profileId": profileID}, http.StatusBadRequest},
		{"negative duration", ownerID, map[string]any{"__action": "CREATE_SLEEP_EVENT", "profileId": profileID, "duration": -5}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, body := doReq(t, ts.URL, "POST", "/api/runCommand", tc.user, tc.body)
			if st != tc.status {
				t.Fatalf("expected %d, got %d body=%s", tc.status, st, string(body))
			}
		})
	}
}

func TestHTTP_StaticTokens(t *testing.T) {
	ts := newServer(t, router.Options{
		AuthVerifier: static.NewVerifier(map[string]string{"s3cret": "owner-1"}),
	})

	// El header de debug no sirve si hay verifier.
	st, _ := doReq(t, ts.URL, "GET", "/profiles", "owner-1", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 with debug header and verifier, got %d", st)
	}

	req, _ := http.NewRequest("GET", ts.URL+"/profiles", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", res.StatusCode)
	}
}

func TestHTTP_SwaggerDoc(t *testing.T) {
	ts := newServer(t, router.Options{})

	st, body := doReq(t, ts.URL, "GET", "/swagger/doc.json", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 swagger doc, got %d", st)
	}
	if !strings.Contains(string(body), "/api/runCommand") {
		t.Fatalf("swagger doc missing command endpoint")
	}
}

func createProfile(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/profiles", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create profile, got %d body=%s", st, string(body))
	}

	var out struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &out)
	if out.ID == "" {
		t.Fatalf("expected profile id in response, body=%s", string(body))
	}
	return out.ID
}

func runCommand(t *testing.T, baseURL, userID string, want int, payload map[string]any) map[string]any {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/api/runCommand", userID, payload)
	if st != want {
		t.Fatalf("expected %d for %v, got %d body=%s", want, payload["__action"], st, string(body))
	}

	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal: %v body=%s", err, string(body))
	}
	return out
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
