package portal_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/cardfolio/cardfolio-data/internal/provider"
	"github.com/cardfolio/cardfolio-data/internal/provider/portal"
)

func TestEachCardStopsOnEmptyPage(t *testing.T) {
	const total = 150 // one full page of 100, one short page, one empty
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/card" {
			http.NotFound(w, r)
			return
		}
		requests++

		skip, _ := strconv.Atoi(r.URL.Query().Get("$skip"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("$limit"))
		var data []map[string]any
		for i := skip; i < skip+limit && i < total; i++ {
			data = append(data, map[string]any{
				"id":          fmt.Sprintf("card-%d", i),
				"owner":       "0xabc",
				"hero_id":     "h1",
				"rarity":      float64(i % 4),
				"season":      "2",
				"blocknumber": nil,
				"created_at":  "2026-08-27T10:00:00Z",
				"timestamp":   "not-a-timestamp",
			})
		}
		json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
	defer srv.Close()

	client := portal.NewClient(srv.URL, "k", 6000, nil)

	var cards []provider.Card
	err := client.EachCard(context.Background(), func(c provider.Card) error {
		cards = append(cards, c)
		return nil
	})
	if err != nil {
		t.Fatalf("EachCard: %v", err)
	}

	if len(cards) != total {
		t.Errorf("accumulated %d cards, want %d", len(cards), total)
	}
	if requests != 3 {
		t.Errorf("issued %d page requests, want 3", requests)
	}

	c := cards[0]
	if c.Season != 2 {
		t.Errorf("string season = %d, want 2", c.Season)
	}
	if c.BlockNumber != nil {
		t.Errorf("null blocknumber = %v, want nil preserved", *c.BlockNumber)
	}
	if c.CreatedAt == nil {
		t.Error("valid created_at should parse")
	}
	if c.Timestamp != nil {
		t.Error("malformed timestamp should degrade to nil")
	}
}

func TestPlayers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/players" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "p1", "name": "Striker"},
			{"id": "p2", "name": "Keeper"},
		})
	}))
	defer srv.Close()

	client := portal.NewClient(srv.URL, "k", 6000, nil)
	players, err := client.Players(context.Background())
	if err != nil {
		t.Fatalf("Players: %v", err)
	}
	if len(players) != 2 || players[1].Name != "Keeper" {
		t.Errorf("players = %+v", players)
	}
}
