// Package player drives an external media player process as the kiosk's
// playback surface.
package player

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

const waitDelay = time.Second

// Reporter receives the outcome of a playback, tagged with the seq that
// Play was called with.
type Reporter interface {
	OnPlaybackEnded(seq uint64)
	OnPlaybackError(seq uint64, detail string)
}

// Config represents the player command line.
type Config struct {
	Command  []string // Program and arguments; the location is appended last
	LoopArgs []string // Extra arguments when the media loops
}

// ExecSurface plays media by running one player process at a time.
// A new Play or a Stop kills the running process; only the outcome of the
// latest process is reported. The reporter still gets the seq because a
// report can race with a Play issued by the reporter's own owner.
type ExecSurface struct {
	cfg Config

	mu       sync.Mutex
	reporter Reporter
	cancel   context.CancelFunc
	gen      uint64
	wg       sync.WaitGroup
}

// New creates a surface for the configured command.
func New(cfg Config) (*ExecSurface, error) {
	if len(cfg.Command) == 0 || strings.TrimSpace(cfg.Command[0]) == "" {
		return nil, errors.New("player command is empty")
	}
	return &ExecSurface{cfg: cfg}, nil
}

// Bind sets where playback outcomes are reported. It must be called before
// the first Play.
func (s *ExecSurface) Bind(r Reporter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reporter = r
}

// Play starts the player for location, replacing whatever is playing.
// seq is passed back untouched with the outcome.
func (s *ExecSurface) Play(seq uint64, location string, loop bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.gen++
	gen := s.gen

	args := append([]string{}, s.cfg.Command[1:]...)
	if loop {
		args = append(args, s.cfg.LoopArgs...)
	}
	args = append(args, location)

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, s.cfg.Command[0], args...)
	// Children of a killed player may hold stderr open
	cmd.WaitDelay = waitDelay
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		cancel()
		zlog.Error().Msgf("player start failed: location=%s err=%v", location, err)
		s.report(gen, func(r Reporter) { r.OnPlaybackError(seq, err.Error()) })
		return
	}
	s.cancel = cancel
	zlog.Debug().Msgf("player started: pid=%d seq=%d location=%s loop=%v", cmd.Process.Pid, seq, location, loop)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := cmd.Wait()
		cancel()

		if err == nil {
			s.report(gen, func(r Reporter) { r.OnPlaybackEnded(seq) })
			return
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		s.report(gen, func(r Reporter) { r.OnPlaybackError(seq, detail) })
	}()
}

// Stop kills the running player, if any.
func (s *ExecSurface) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.gen++
}

// Wait blocks until every started player has exited and been reported.
func (s *ExecSurface) Wait() {
	s.wg.Wait()
}

func (s *ExecSurface) stopLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// report calls fn in its own goroutine when gen is still the latest
// playback. Reporters call back into the session engine, which may be
// calling Play or Stop at that moment.
func (s *ExecSurface) report(gen uint64, fn func(Reporter)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.mu.Lock()
		r := s.reporter
		stale := gen != s.gen
		s.mu.Unlock()

		if stale || r == nil {
			return
		}
		fn(r)
	}()
}
