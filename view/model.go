// Package view holds what the dashboard displays: the latest polled
// snapshot, local edits made ahead of the backend, and the notices
// produced by commands.
package view

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rustyeddy/traderdash/analytics"
	"github.com/rustyeddy/traderdash/backend"
	"github.com/rustyeddy/traderdash/internal/logger"
	"github.com/rustyeddy/traderdash/risk"
)

// Commander is the side-effecting half of the backend.
type Commander interface {
	RunScan(ctx context.Context) (backend.ScanResults, error)
	UploadFile(ctx context.Context, source, filename string, r io.Reader) (backend.Ack, error)
	ClosePosition(ctx context.Context, symbol string) (backend.Ack, error)
	LiquidateAll(ctx context.Context) (backend.Ack, error)
	ClearData(ctx context.Context) (backend.Ack, error)
}

// Model is the view state shared by the poller and command handlers.
type Model struct {
	cmd   Commander
	scans *ScanCache

	mu        sync.Mutex
	snap      Snapshot
	positions *OptimisticList[backend.Position]
	notices   []Notice
	subs      []func(Snapshot)
	refresh   func() bool
}

func NewModel(cmd Commander, scans *ScanCache) *Model {
	if scans == nil {
		scans = NewScanCache(0)
	}
	return &Model{
		cmd:       cmd,
		scans:     scans,
		snap:      EmptySnapshot(),
		positions: NewOptimisticList(backend.PositionKey),
	}
}

// SetRefresher wires the function commands call after success, normally
// the poller's Refresh.
func (m *Model) SetRefresher(fn func() bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresh = fn
}

// Subscribe registers fn to receive the snapshot after every change.
func (m *Model) Subscribe(fn func(Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// Apply installs a polled snapshot. It is the poller's publish function.
// A polled position list replaces any optimistic edits outright.
func (m *Model) Apply(s Snapshot) {
	m.mu.Lock()
	m.snap = s
	if s.Resources.Has(ResPositions) {
		m.positions.Replace(s.Positions)
	}
	m.mu.Unlock()

	m.emit()
}

// Snapshot returns the current view: the last poll with the position
// list as edited locally since.
func (m *Model) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current()
}

func (m *Model) current() Snapshot {
	s := m.snap
	s.Positions = m.positions.Items()
	s.Portfolio = analytics.Summarize(s.Positions)
	return s
}

func (m *Model) emit() {
	m.mu.Lock()
	s := m.current()
	subs := append([]func(Snapshot){}, m.subs...)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}

func (m *Model) Positions() []backend.Position { return m.positions.Items() }

func (m *Model) PositionsState() ListState { return m.positions.State() }

// Notices returns the notice backlog, oldest first.
func (m *Model) Notices() []Notice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notice(nil), m.notices...)
}

// Dismiss removes a notice by id.
func (m *Model) Dismiss(noticeID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range m.notices {
		if n.ID == noticeID {
			m.notices = append(m.notices[:i], m.notices[i+1:]...)
			return
		}
	}
}

func (m *Model) notify(n Notice) {
	m.mu.Lock()
	m.notices = append(m.notices, n)
	if over := len(m.notices) - maxNotices; over > 0 {
		m.notices = append([]Notice(nil), m.notices[over:]...)
	}
	m.mu.Unlock()

	if n.Level == LevelError {
		logger.L.Error("command failed", "action", n.Action, "err", n.Err)
	} else {
		logger.L.Info("command succeeded", "action", n.Action, "message", n.Message)
	}
}

func (m *Model) failed(action string, err error) error {
	m.notify(newNotice(LevelError, action, err.Error(), err))
	return err
}

func (m *Model) succeeded(action, msg string) {
	m.notify(newNotice(LevelInfo, action, msg, nil))

	m.mu.Lock()
	refresh := m.refresh
	m.mu.Unlock()
	if refresh != nil {
		refresh()
	}
}

// ClosePosition removes symbol from the list at once and then asks the
// backend to close it. A failed call leaves the list as it is; the next
// poll puts the position back.
func (m *Model) ClosePosition(ctx context.Context, symbol string) error {
	action := "close position " + symbol
	if !m.positions.Remove(symbol) {
		logger.L.Warn("close requested for unlisted position", "symbol", symbol)
	}
	m.emit()

	ack, err := m.cmd.ClosePosition(ctx, symbol)
	if err != nil {
		return m.failed(action, err)
	}
	m.succeeded(action, ack.Message)
	return nil
}

// LiquidateAll empties the list at once and then fires the kill switch.
func (m *Model) LiquidateAll(ctx context.Context) error {
	const action = "liquidate all"
	m.positions.Clear()
	m.emit()

	ack, err := m.cmd.LiquidateAll(ctx)
	if err != nil {
		return m.failed(action, err)
	}
	m.succeeded(action, ack.Message)
	return nil
}

// ClearData deletes uploaded data files on the backend.
func (m *Model) ClearData(ctx context.Context) error {
	const action = "clear data"
	ack, err := m.cmd.ClearData(ctx)
	if err != nil {
		return m.failed(action, err)
	}
	// candidates came from the files just removed
	m.scans.Flush()
	m.succeeded(action, ack.Message)
	return nil
}

// UploadFile sends a CSV for source.
func (m *Model) UploadFile(ctx context.Context, source, filename string, r io.Reader) error {
	action := fmt.Sprintf("upload %s to %s", filename, source)
	ack, err := m.cmd.UploadFile(ctx, source, filename, r)
	if err != nil {
		return m.failed(action, err)
	}
	m.succeeded(action, ack.Message)
	return nil
}

// RunScan runs the scanner and caches the result.
func (m *Model) RunScan(ctx context.Context) (backend.ScanResults, error) {
	const action = "run scan"
	res, err := m.cmd.RunScan(ctx)
	if err != nil {
		return nil, m.failed(action, err)
	}
	m.scans.Put(res, time.Now())
	m.succeeded(action, fmt.Sprintf("%d candidates", res.Total()))
	return res, nil
}

// LastScan returns the cached scan, if still fresh.
func (m *Model) LastScan() (ScanRun, bool) { return m.scans.Last() }

// ScanCandidate looks up a cached scan candidate by symbol.
func (m *Model) ScanCandidate(symbol string) (backend.ScanCandidate, bool) {
	return m.scans.Candidate(symbol)
}

// SizeCandidate sizes a cached scan candidate against the account as the
// view currently shows it.
func (m *Model) SizeCandidate(symbol string) (backend.ScanCandidate, risk.Decision, bool) {
	c, ok := m.scans.Candidate(symbol)
	if !ok {
		return backend.ScanCandidate{}, risk.Decision{}, false
	}
	return c, m.Size(c), true
}

// Size checks c against the account as the view currently shows it.
func (m *Model) Size(c backend.ScanCandidate) risk.Decision {
	s := m.Snapshot()
	return risk.SizeCandidate(c, s.Health, s.Positions)
}
