// Mock government exclusions registry for local development. Serves the
// /search endpoint the live-API provider calls, with a small fixed dataset.
//
// Run with:
//
//	go run ./mocks/exclusions-registry
//	EXCLUSIONS_BASE_URL=http://localhost:9090 EXCLUSIONS_API_KEY=dev-key go run ./cmd/server
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
)

type record struct {
	FullName  string `json:"full_name"`
	Authority string `json:"authority"`
	Action    string `json:"action"`
}

var excluded = []record{
	{FullName: "james t. powell", Authority: "HHS-OIG", Action: "5-year exclusion"},
	{FullName: "renata vasquez", Authority: "HHS-OIG", Action: "mandatory exclusion"},
}

func main() {
	addr := os.Getenv("MOCK_REGISTRY_ADDR")
	if addr == "" {
		addr = ":9090"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/search", handleSearch)

	log.Printf("mock exclusions registry listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}

func handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Api-Key") == "" {
		http.Error(w, `{"error":"missing api key"}`, http.StatusUnauthorized)
		return
	}

	name := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("name")))
	var results []map[string]any
	for _, rec := range excluded {
		if name != "" && rec.FullName == name {
			results = append(results, map[string]any{
				"full_name": rec.FullName,
				"authority": rec.Authority,
				"action":    rec.Action,
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"total":   len(results),
		"results": results,
	})
}
