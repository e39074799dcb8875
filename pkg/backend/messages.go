package backend

import (
	"context"
	"encoding/json"
	"net/http"
)

// ContactThread is a live-chat conversation between a customer and the
// counter. Only the fields the storefront surfaces are decoded.
type ContactThread struct {
	ID            string  `json:"_id"`
	UserID        *string `json:"userId"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Message       string  `json:"message"`
	Handled       bool    `json:"handled"`
	UnreadByUser  int     `json:"unreadByUser"`
	UnreadByAdmin int     `json:"unreadByAdmin"`
}

// threadList tolerates both response shapes the API has shipped:
// a bare array and an object wrapping {"threads": [...]}.
type threadList []ContactThread

func (t *threadList) UnmarshalJSON(raw []byte) error {
	var direct []ContactThread
	if err := json.Unmarshal(raw, &direct); err == nil {
		*t = direct
		return nil
	}
	var wrapped struct {
		Threads []ContactThread `json:"threads"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return err
	}
	*t = wrapped.Threads
	return nil
}

// MyThreads lists the calling customer's chat threads.
func (c *Client) MyThreads(ctx context.Context) ([]ContactThread, error) {
	var out threadList
	if err := c.do(ctx, http.MethodGet, "/api/contact/my?page=1&limit=50", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdminThreads lists every chat thread (admin scope).
func (c *Client) AdminThreads(ctx context.Context) ([]ContactThread, error) {
	var out threadList
	if err := c.do(ctx, http.MethodGet, "/api/contact?page=1&limit=100", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UnreadByUser sums messages the customer has not read yet.
func UnreadByUser(threads []ContactThread) int {
	total := 0
	for _, thread := range threads {
		if thread.UnreadByUser > 0 {
			total += thread.UnreadByUser
		}
	}
	return total
}

// UnreadByAdmin sums messages the counter has not read yet.
func UnreadByAdmin(threads []ContactThread) int {
	total := 0
	for _, thread := range threads {
		if thread.UnreadByAdmin > 0 {
			total += thread.UnreadByAdmin
		}
	}
	return total
}
