package remotemandel

import (
	"encoding/json"
	"net/http"

	"github.com/hnakamur/ltsvlog"
)

// Status is a point-in-time view of a run, suitable for JSON encoding.
type Status struct {
	State        string `json:"state"`
	Height       int    `json:"height"`
	Width        int    `json:"width"`
	RowsMerged   int    `json:"rows_merged"`
	Dispatches   int    `json:"dispatches"`
	Replies      int    `json:"replies"`
	Terminations int    `json:"terminations"`
}

// Status returns a snapshot of the run. It is safe to call from other
// goroutines while Run is in progress.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:        c.state.String(),
		Height:       c.grid.Height,
		Width:        c.grid.Width,
		RowsMerged:   c.grid.RowsMerged(),
		Dispatches:   len(c.result.Dispatches),
		Replies:      c.result.Replies,
		Terminations: c.result.Terminations,
	}
}

// StatusHandler serves the status of c as JSON.
func StatusHandler(c *Coordinator, logger ltsvlog.LogWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		if err := enc.Encode(c.Status()); err != nil {
			logger.Err(ltsvlog.Err(err).String("msg", "failed to encode status").Stack(""))
		}
	}
}
