package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mcdev12/souldraw/go/internal/models"
	"github.com/mcdev12/souldraw/go/internal/souldraw"
	"github.com/mcdev12/souldraw/go/internal/souldraw/gateway"
)

type staticDrawings []souldraw.Snapshot

func (s staticDrawings) Active() []souldraw.Snapshot { return s }

func (s staticDrawings) Status(_ context.Context, id string) (souldraw.DisplayModel, error) {
	for _, snap := range s {
		if snap.Drawing.ID == id {
			return souldraw.DisplayModel{DrawingID: id, Prize: snap.Drawing.Prize}, nil
		}
	}
	return souldraw.DisplayModel{}, souldraw.ErrNotFound
}

func TestHealthEndpoints(t *testing.T) {
	srv := httptest.NewServer(newHandler(staticDrawings(nil), gateway.NewConnectionManager(gateway.DefaultConnectionConfig())))
	defer srv.Close()

	for _, path := range []string{"/", "/health"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || string(body) != "Bot is running" {
			t.Errorf("GET %s = %d %q", path, resp.StatusCode, body)
		}
	}

	resp, err := http.Get(srv.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown path status = %d", resp.StatusCode)
	}
}

func TestDrawingsEndpoint(t *testing.T) {
	active := staticDrawings{{
		Drawing: models.Drawing{ID: "d1", Prize: "Nitro", DrawMode: models.DrawModeAuto, Participants: []string{"a"}},
		Phase:   "active",
	}}
	srv := httptest.NewServer(newHandler(active, gateway.NewConnectionManager(gateway.DefaultConnectionConfig())))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/drawings")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got []struct {
		Drawing struct {
			ID           string   `json:"id"`
			Participants []string `json:"participants"`
		} `json:"drawing"`
		Phase string `json:"phase"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].Drawing.ID != "d1" || got[0].Phase != "active" || len(got[0].Drawing.Participants) != 1 {
		t.Errorf("drawings = %+v", got)
	}
}

func TestDrawingStatusEndpoint(t *testing.T) {
	active := staticDrawings{{Drawing: models.Drawing{ID: "d1", Prize: "Nitro"}}}
	srv := httptest.NewServer(newHandler(active, gateway.NewConnectionManager(gateway.DefaultConnectionConfig())))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/drawings/d1")
	if err != nil {
		t.Fatal(err)
	}
	var view souldraw.DisplayModel
	err = json.NewDecoder(resp.Body).Decode(&view)
	resp.Body.Close()
	if err != nil || view.DrawingID != "d1" || view.Prize != "Nitro" {
		t.Errorf("view = %+v, err = %v", view, err)
	}

	resp, err = http.Get(srv.URL + "/drawings/missing")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing status = %d", resp.StatusCode)
	}
}

func TestRemainingLabel(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	d := models.Drawing{EndTime: now.Add(90 * time.Second)}
	if got := remainingLabel(d, now); got != "1 minute 30 seconds" {
		t.Errorf("label = %q", got)
	}
	d.EndTime = now.Add(-time.Second)
	if got := remainingLabel(d, now); !strings.Contains(got, "overdue") {
		t.Errorf("label = %q", got)
	}
}
