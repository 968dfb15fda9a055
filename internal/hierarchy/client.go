package hierarchy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Node is one merchant entry in the hierarchy tree. Nodes are value objects:
// once cached they are never mutated, only replaced wholesale.
type Node struct {
	ID           string `json:"id"`
	ParentID     string `json:"parent_id"`
	MerchantCode string `json:"merchant_code"`
	Name         string `json:"name"`
	Level        int    `json:"level"`
	HasChildren  bool   `json:"has_children"`
}

// listEnvelope is the upstream hierarchy API response. Code 200 is success;
// anything else is a failure with Message as the reason.
type listEnvelope struct {
	Code          int    `json:"code"`
	Message       string `json:"message"`
	ChildrensData []Node `json:"childrens_data"`
}

// Client talks to the multilayer hierarchy API.
type Client struct {
	baseURL string
	httpc   *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Children lists the direct children of parentID. Cancelling ctx aborts the
// underlying transfer; the returned error then wraps context.Canceled.
func (c *Client) Children(ctx context.Context, parentID, sessionID string) ([]Node, error) {
	endpoint := fmt.Sprintf("%s/multilayer/childrens?parent_id=%s", c.baseURL, url.QueryEscape(parentID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Session-ID", sessionID)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hierarchy request failed: %w", err)
	}
	defer resp.Body.Close()

	var envelope listEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode hierarchy response: %w", err)
	}

	if envelope.Code != 200 {
		if envelope.Message == "" {
			envelope.Message = "hierarchy listing failed"
		}
		return nil, fmt.Errorf("hierarchy API code %d: %s", envelope.Code, envelope.Message)
	}

	return envelope.ChildrensData, nil
}
