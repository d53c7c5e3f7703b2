// Package observer implements a ground-truth-only HTTP client against a Ryu
// SDN controller's ofctl_rest API, used by an out-of-band evaluator to
// confirm flow-table growth during experiments. It is never imported by the
// probing or attack path (spec.md §6, §1 Out of scope).
package observer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ssmendon/sdnprobe/internal/core/ports"
)

// flowStat mirrors one entry of Ryu's aggregateflow response.
type flowStat struct {
	FlowCount int `json:"flow_count"`
}

// RyuObserver queries a Ryu controller's REST API for aggregate flow-table
// statistics.
type RyuObserver struct {
	baseURL    string
	httpClient *http.Client
}

// NewRyuObserver builds an observer against a Ryu controller reachable at
// baseURL (e.g. "http://127.0.0.1:8080").
func NewRyuObserver(baseURL string) *RyuObserver {
	return &RyuObserver{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// AggregateFlowCount fetches GET /stats/aggregateflow/<dpid> and returns the
// flow_count field of its single entry.
func (o *RyuObserver) AggregateFlowCount(ctx context.Context, dpid string) (int, error) {
	url := fmt.Sprintf("%s/stats/aggregateflow/%s", o.baseURL, dpid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("observer: build request: %w", err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("observer: request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("observer: %s returned %d: %s", url, resp.StatusCode, string(body))
	}

	var payload map[string][]flowStat
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("observer: decode response: %w", err)
	}

	stats, ok := payload[dpid]
	if !ok || len(stats) == 0 {
		return 0, fmt.Errorf("observer: no aggregate stats for dpid %s", dpid)
	}
	return stats[0].FlowCount, nil
}

var _ ports.FlowStatsObserver = (*RyuObserver)(nil)
