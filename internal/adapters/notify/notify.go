// Package notify implements the user-notice port.
package notify

import (
	"sync"

	"github.com/rs/zerolog"

	"staybook/internal/domain"
)

const (
	LevelSuccess = domain.NoticeSuccess
	LevelError   = domain.NoticeError
)

// Log writes notices to a zerolog logger. Used by commands without a UI.
type Log struct{ l zerolog.Logger }

func NewLog(l zerolog.Logger) Log { return Log{l: l} }

func (n Log) Success(msg string) { n.l.Info().Str("notice", string(LevelSuccess)).Msg(msg) }
func (n Log) Error(msg string)   { n.l.Warn().Str("notice", string(LevelError)).Msg(msg) }

// Flash queues notices for one session until the next response drains them.
type Flash struct {
	mu  sync.Mutex
	log zerolog.Logger
	q   []domain.Notice
	max int
}

func NewFlash(l zerolog.Logger) *Flash { return &Flash{log: l, max: 20} }

func (f *Flash) Success(msg string) { f.push(LevelSuccess, msg) }
func (f *Flash) Error(msg string)   { f.push(LevelError, msg) }

func (f *Flash) push(lv domain.NoticeLevel, msg string) {
	f.log.Debug().Str("level", string(lv)).Msg(msg)
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.q) == f.max {
		f.q = f.q[1:]
	}
	f.q = append(f.q, domain.Notice{Level: lv, Message: msg})
}

// Drain returns queued notices oldest first and empties the queue.
func (f *Flash) Drain() []domain.Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.q
	f.q = nil
	if out == nil {
		out = []domain.Notice{}
	}
	return out
}
