package daemon_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"veritext/internal/config"
	"veritext/internal/daemon"
	"veritext/internal/detector"
	"veritext/internal/runs"
	"veritext/internal/testsupport"
)

func startDaemon(t *testing.T) (*daemon.Daemon, *runs.Store, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	svc := detector.New(cfg, nil)
	d, err := daemon.New(cfg, store, svc, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(d.Stop)
	return d, store, cfg
}

func TestHealthEndpoint(t *testing.T) {
	d, _, _ := startDaemon(t)

	resp, err := http.Get("http://" + d.Addr() + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}

	var payload struct {
		Running    bool `json:"running"`
		ModelReady bool `json:"model_ready"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload.Running {
		t.Error("daemon reports not running")
	}
	if payload.ModelReady {
		t.Error("model reported ready without a bundle")
	}
}

func TestDetectEndpointWithoutModel(t *testing.T) {
	d, _, _ := startDaemon(t)

	body := bytes.NewBufferString(`{"text":"A perfectly reasonable paragraph of text for classification."}`)
	resp, err := http.Post("http://"+d.Addr()+"/api/detect", "application/json", body)
	if err != nil {
		t.Fatalf("POST /api/detect: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503 while untrained", resp.StatusCode)
	}
}

func TestDetectEndpointRejectsBadBody(t *testing.T) {
	d, _, _ := startDaemon(t)

	resp, err := http.Post("http://"+d.Addr()+"/api/detect", "application/json",
		bytes.NewBufferString("not json"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}
}

func TestDetectEndpointRejectsTextAndPath(t *testing.T) {
	d, _, _ := startDaemon(t)

	resp, err := http.Post("http://"+d.Addr()+"/api/detect", "application/json",
		bytes.NewBufferString(`{"text":"some text","path":"/tmp/doc.txt"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}
}

func TestRunsEndpoints(t *testing.T) {
	d, store, _ := startDaemon(t)
	run, err := store.Create(context.Background(), "corpus.csv", "full", 42)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get("http://" + d.Addr() + "/api/runs")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close() //nolint:errcheck
	var list struct {
		Runs []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"runs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Runs) != 1 || list.Runs[0].ID != run.ID {
		t.Fatalf("unexpected run list: %+v", list)
	}

	single, err := http.Get(fmt.Sprintf("http://%s/api/runs/%s", d.Addr(), run.ID))
	if err != nil {
		t.Fatal(err)
	}
	defer single.Body.Close() //nolint:errcheck
	if single.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", single.StatusCode)
	}

	missing, err := http.Get("http://" + d.Addr() + "/api/runs/not-a-run")
	if err != nil {
		t.Fatal(err)
	}
	defer missing.Body.Close() //nolint:errcheck
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d, want 404", missing.StatusCode)
	}
}

func TestSecondInstanceRefused(t *testing.T) {
	d, store, cfg := startDaemon(t)
	_ = d

	svc := detector.New(cfg, nil)
	second, err := daemon.New(cfg, store, svc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second instance acquired the lock")
	}
}
