/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package royale

import (
	"context"
	"crypto/rand"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Seednode/quizroyale/logging"
	"github.com/Seednode/quizroyale/metrics"
)

const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6
)

type RegistryOptions struct {
	MaxRooms    int
	IdleTimeout time.Duration
	RevealDelay time.Duration
	PlayerGrace time.Duration

	Logger  logrus.FieldLogger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// RoomSummary is one entry of the room listing.
type RoomSummary struct {
	Code      string    `json:"code"`
	Phase     string    `json:"phase"`
	Teams     int       `json:"teams"`
	Players   int       `json:"players"`
	CreatedAt time.Time `json:"createdAt"`
}

// Registry owns every live room, keyed by code.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	opts RegistryOptions
	log  logrus.FieldLogger
}

func NewRegistry(opts RegistryOptions) *Registry {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Registry{
		rooms: make(map[string]*Room),
		opts:  opts,
		log:   opts.Logger,
	}
}

// Create starts a new room and returns it with its host key.
func (g *Registry) Create(cfg GameConfig, bank []Question) (*Room, string, error) {
	hostKey := uuid.NewString()

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.opts.MaxRooms > 0 && len(g.rooms) >= g.opts.MaxRooms {
		return nil, "", fmt.Errorf("%w: %d rooms open", ErrCapacityExceeded, len(g.rooms))
	}

	code, err := g.newCodeLocked()
	if err != nil {
		return nil, "", err
	}

	room, err := NewRoom(code, hostKey, cfg, bank, Options{
		Logger:      g.log,
		Metrics:     g.opts.Metrics,
		Now:         g.opts.Now,
		RevealDelay: g.opts.RevealDelay,
		PlayerGrace: g.opts.PlayerGrace,
		OnClose: func(code, reason string) {
			g.Expire(code, reason)
		},
	})
	if err != nil {
		return nil, "", err
	}

	g.rooms[code] = room
	go room.Run()

	g.opts.Metrics.RoomOpened()

	g.log.WithFields(logrus.Fields{
		"room":      code,
		"teams":     room.cfg.NumTeams,
		"questions": len(bank),
	}).Info("room created")

	return room, hostKey, nil
}

// newCodeLocked draws codes until one is free.
func (g *Registry) newCodeLocked() (string, error) {
	buf := make([]byte, codeLength)

	for {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generating room code: %w", err)
		}

		out := make([]byte, codeLength)
		for i := range out {
			out[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
		}

		code := string(out)
		if _, exists := g.rooms[code]; !exists {
			return code, nil
		}
	}
}

// Lookup finds a room by code, ignoring case.
func (g *Registry) Lookup(code string) (*Room, error) {
	g.mu.RLock()
	room, ok := g.rooms[strings.ToUpper(code)]
	g.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, code)
	}

	return room, nil
}

// Expire removes a room and closes it with reason.
func (g *Registry) Expire(code, reason string) bool {
	g.mu.Lock()
	room, ok := g.rooms[code]
	if ok {
		delete(g.rooms, code)
	}
	g.mu.Unlock()

	if !ok {
		return false
	}

	room.Close(reason)
	g.opts.Metrics.RoomClosed(reason)

	return true
}

func (g *Registry) List() []RoomSummary {
	g.mu.RLock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		rooms = append(rooms, r)
	}
	g.mu.RUnlock()

	out := make([]RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		s := r.Snapshot()

		players := 0
		for _, t := range s.Teams {
			players += len(t.Roster)
		}

		out = append(out, RoomSummary{
			Code:      s.Code,
			Phase:     s.Phase,
			Teams:     len(s.Teams),
			Players:   players,
			CreatedAt: s.CreatedAt,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Code < out[j].Code
	})

	return out
}

func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.rooms)
}

// Reap expires every room idle since before now minus the idle timeout, and
// returns how many it closed.
func (g *Registry) Reap(now time.Time) int {
	if g.opts.IdleTimeout <= 0 {
		return 0
	}

	cutoff := now.Add(-g.opts.IdleTimeout)

	var idle []string

	g.mu.RLock()
	for code, r := range g.rooms {
		if r.LastActivity().Before(cutoff) {
			idle = append(idle, code)
		}
	}
	g.mu.RUnlock()

	closed := 0
	for _, code := range idle {
		if g.Expire(code, ReasonIdle) {
			g.log.WithField("room", code).Info("expired idle room")
			closed++
		}
	}

	return closed
}

// Run reaps idle rooms every half idle timeout until ctx is done.
func (g *Registry) Run(ctx context.Context) {
	if g.opts.IdleTimeout <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(g.opts.IdleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Reap(g.opts.Now())
		}
	}
}

// Shutdown closes every room.
func (g *Registry) Shutdown() {
	g.mu.RLock()
	codes := make([]string, 0, len(g.rooms))
	for code := range g.rooms {
		codes = append(codes, code)
	}
	g.mu.RUnlock()

	for _, code := range codes {
		g.Expire(code, ReasonShutdown)
	}
}
