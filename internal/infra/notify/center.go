package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"sellerhub-agent/internal/domain/ports/adapter"
)

const maxRecent = 50

// Notice is one dismissible user-facing notification.
type Notice struct {
	Level   string    `json:"level"` // "success" | "failure"
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

var (
	_ adapter.Notifier     = (*Center)(nil)
	_ adapter.ProgressSink = (*Center)(nil)
)

// Center is the agent's presentation surface: recent notifications plus
// the current progress line of every tracked job. Monitors drive it; the
// HTTP API and logs read from it. It holds no job logic.
type Center struct {
	log *zerolog.Logger

	mu       sync.RWMutex
	recent   []Notice
	progress map[string]string
}

func NewCenter(logger *zerolog.Logger) *Center {
	l := logger.With().Str("component", "NotifyCenter").Logger()
	return &Center{
		log:      &l,
		progress: make(map[string]string),
	}
}

func (c *Center) Success(msg string) { c.add("success", msg) }
func (c *Center) Failure(msg string) { c.add("failure", msg) }

func (c *Center) add(level, msg string) {
	c.mu.Lock()
	c.recent = append(c.recent, Notice{Level: level, Message: msg, At: time.Now()})
	if len(c.recent) > maxRecent {
		c.recent = c.recent[len(c.recent)-maxRecent:]
	}
	c.mu.Unlock()

	if level == "failure" {
		c.log.Warn().Msg(msg)
		return
	}
	c.log.Info().Msg(msg)
}

func (c *Center) Show(correlationID, text string) {
	c.mu.Lock()
	c.progress[correlationID] = text
	c.mu.Unlock()
	c.log.Debug().Str("correlation_id", correlationID).Msg(text)
}

func (c *Center) Hide(correlationID string) {
	c.mu.Lock()
	delete(c.progress, correlationID)
	c.mu.Unlock()
}

// Recent returns a copy of the notification ring, newest last.
func (c *Center) Recent() []Notice {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Notice(nil), c.recent...)
}

// Progress returns the current progress line per tracked job.
func (c *Center) Progress() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.progress))
	for k, v := range c.progress {
		out[k] = v
	}
	return out
}
