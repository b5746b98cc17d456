package bridge

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qc-advancedmedic/nui/internal/config"
	"github.com/qc-advancedmedic/nui/internal/gateway"
	"github.com/qc-advancedmedic/nui/internal/handlers"
	"github.com/qc-advancedmedic/nui/internal/journal/memory"
	"github.com/qc-advancedmedic/nui/internal/state"
	"github.com/qc-advancedmedic/nui/pkg/nui"
)

func testServer(t *testing.T) (*httptest.Server, *Server) {
	t.Helper()
	j := memory.New(config.MemoryConfig{})
	svc := handlers.NewService(handlers.Dependencies{
		Gateway:   gateway.NewMock(1, 0, rand.New(rand.NewSource(1))),
		Journal:   j,
		DeathTick: time.Hour,
	})
	t.Cleanup(svc.Close)

	b := New(Dependencies{
		Service: svc,
		Journal: j,
		Config: config.BridgeConfig{
			AllowedOrigins: []string{"nui://game"},
			Metrics:        true,
		},
	})
	ctx, cancel := context.WithCancel(context.Background())
	go b.Hub().Run(ctx)

	srv := httptest.NewServer(b.Handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
		_ = b.Shutdown(context.Background())
	})
	return srv, b
}

func post(t *testing.T, url, body string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func TestHealthcheck(t *testing.T) {
	srv, _ := testServer(t)
	code, body := get(t, srv.URL+"/healthcheck")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestPushAndState(t *testing.T) {
	srv, _ := testServer(t)

	code, out := post(t, srv.URL+"/push", `{"type":"show-medical-panel","data":{"wounds":{"lrm":{"painLevel":1}}}}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["ok"])
	assert.Len(t, out["warnings"], 1)

	code, body := get(t, srv.URL+"/state")
	require.Equal(t, http.StatusOK, code)
	var vm handlers.ViewModel
	require.NoError(t, json.Unmarshal([]byte(body), &vm))
	assert.Equal(t, state.ViewMedical, vm.View)
	assert.NotNil(t, vm.Medical)
}

func TestPushErrors(t *testing.T) {
	srv, _ := testServer(t)

	code, out := post(t, srv.URL+"/push", `{"type":"show-deth-screen"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, out["error"], "did you mean")

	code, _ = post(t, srv.URL+"/push", `not json`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAction(t *testing.T) {
	srv, _ := testServer(t)

	code, out := post(t, srv.URL+"/action", `{"type":"death/respawn"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, out["error"], "panel not open")

	code, _ = post(t, srv.URL+"/action", `{"type":"inspection/inspect","data":{}}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = post(t, srv.URL+"/push", `{"type":"show-death-screen","data":{"seconds":300,"medicsOnDuty":0}}`)
	require.Equal(t, http.StatusOK, code)
	code, out = post(t, srv.URL+"/action", `{"type":"death/call-medic"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, out["error"], "no medics")

	code, out = post(t, srv.URL+"/push", `{"type":"update-death-timer","data":{"canRespawn":true}}`)
	require.Equal(t, http.StatusOK, code, out)
	code, out = post(t, srv.URL+"/action", `{"type":"death/respawn"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["ok"])
}

func TestJournal(t *testing.T) {
	srv, _ := testServer(t)
	post(t, srv.URL+"/push", `{"type":"hide-all"}`)
	post(t, srv.URL+"/action", `{"type":"death/respawn"}`)

	code, body := get(t, srv.URL+"/journal?kind=push")
	require.Equal(t, http.StatusOK, code)
	var out struct {
		Entries []struct {
			Type string `json:"type"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	require.Len(t, out.Entries, 1)
	assert.Equal(t, nui.PushHideAll, out.Entries[0].Type)

	code, _ = get(t, srv.URL+"/journal?limit=-1")
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = get(t, srv.URL+"/journal?since=yesterday")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestMetrics(t *testing.T) {
	srv, _ := testServer(t)
	post(t, srv.URL+"/push", `{"type":"hide-all"}`)

	code, body := get(t, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `medic_nui_messages_total{kind="push",result="ok",type="hide-all"} 1`)
	assert.Contains(t, body, "medic_nui_overlay_clients")
}

func TestCORS(t *testing.T) {
	srv, _ := testServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/action", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "nui://game")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "nui://game", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://example.com")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func dial(t *testing.T, srv *httptest.Server, origin string) (*ws.Conn, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	conn, _, err := ws.DefaultDialer.Dial(url, header)
	if err == nil {
		t.Cleanup(func() { conn.Close() })
	}
	return conn, err
}

func readJSON(t *testing.T, conn *ws.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}

type viewMessage struct {
	Type    string             `json:"type"`
	Version uint64             `json:"version"`
	Payload handlers.ViewModel `json:"payload"`
}

func TestWebSocket_ViewUpdates(t *testing.T) {
	srv, b := testServer(t)

	conn, err := dial(t, srv, "nui://game")
	require.NoError(t, err)

	var first viewMessage
	readJSON(t, conn, &first)
	assert.Equal(t, nui.TypeView, first.Type)
	assert.Equal(t, state.ViewHidden, first.Payload.View)
	require.Eventually(t, func() bool { return b.Hub().Clients() == 1 }, time.Second, 10*time.Millisecond)

	code, _ := post(t, srv.URL+"/push", `{"type":"show-death-screen","data":{"seconds":90,"medicsOnDuty":1}}`)
	require.Equal(t, http.StatusOK, code)

	var update viewMessage
	readJSON(t, conn, &update)
	assert.Equal(t, state.ViewDeath, update.Payload.View)
	assert.Greater(t, update.Version, first.Version)
	require.NotNil(t, update.Payload.DeathScreen)
	assert.Equal(t, 90, update.Payload.DeathScreen.TimeLeft)
}

func TestWebSocket_ActionAck(t *testing.T) {
	srv, _ := testServer(t)

	conn, err := dial(t, srv, "")
	require.NoError(t, err)
	var first viewMessage
	readJSON(t, conn, &first)

	require.NoError(t, conn.WriteMessage(ws.TextMessage, []byte(`{"type":"medical/close"}`)))

	// the ack may arrive before or after the view refresh
	for i := 0; i < 3; i++ {
		var msg map[string]any
		readJSON(t, conn, &msg)
		if msg["type"] == nui.TypeAck {
			assert.Equal(t, "medical/close", msg["for"])
			assert.Contains(t, msg["error"], "panel not open")
			return
		}
	}
	t.Fatal("no ack received")
}

func TestWebSocket_RejectsForeignOrigin(t *testing.T) {
	srv, _ := testServer(t)
	_, err := dial(t, srv, "https://evil.example")
	assert.Error(t, err)
}
