package client

import "time"

// HistoryEntry records one transport call that produced a response.
type HistoryEntry struct {
	ID         string    `json:"id"`
	Method     string    `json:"method"`
	URI        string    `json:"uri"` // without query string
	Time       time.Time `json:"time"`
	StatusCode int       `json:"status_code"`
}

// History returns a copy of the request history, oldest first.
func (c *Client) History() []HistoryEntry {
	c.histMu.Lock()
	defer c.histMu.Unlock()
	return append([]HistoryEntry(nil), c.history...)
}

// LastRequest returns the most recent history entry.
func (c *Client) LastRequest() (HistoryEntry, bool) {
	c.histMu.Lock()
	defer c.histMu.Unlock()
	if len(c.history) == 0 {
		return HistoryEntry{}, false
	}
	return c.history[len(c.history)-1], true
}

func (c *Client) record(e HistoryEntry) {
	c.histMu.Lock()
	c.history = append(c.history, e)
	c.histMu.Unlock()
}
