// Package stub is an in-memory stand-in for the trading backend. It
// serves the same HTTP surface with canned data, checks the access key,
// and can be told to fail or stall individual routes.
package stub

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rustyeddy/traderdash/internal/logger"
)

// Server holds the stub backend state.
type Server struct {
	mu sync.Mutex

	key       string
	header    string
	health    gin.H
	positions []gin.H
	journal   []gin.H
	stats     gin.H
	uploads   map[string][]string
	scan      gin.H

	fail  map[string]int
	delay map[string]time.Duration
	calls map[string]int

	engine *gin.Engine
}

// New returns a stub that accepts key in header. An empty key disables
// the check.
func New(header, key string) *Server {
	if header == "" {
		header = "X-Admin-Key"
	}
	s := &Server{
		key:    key,
		header: header,
		health: gin.H{"status": "system_active", "mode": "PAPER", "risk_limit": 0.01, "alpaca_status": "connected"},
		uploads: map[string][]string{
			"chatgpt":            {},
			"tradingview":        {},
			"finviz":             {},
			"chatgpt_automation": {},
		},
		scan:  gin.H{},
		fail:  map[string]int{},
		delay: map[string]time.Duration{},
		calls: map[string]int{},
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.instrument, s.authorize)

	r.GET("/", s.getHealth)
	r.GET("/scan", s.getScan)
	r.GET("/upload/list", s.getUploads)
	r.POST("/upload/:source", s.postUpload)
	r.GET("/api/journal/stats", s.getStats)
	r.GET("/api/journal/history", s.getHistory)
	r.GET("/api/alpaca/positions", s.getPositions)
	r.POST("/api/alpaca/close_position", s.postClosePosition)
	r.POST("/api/emergency/liquidate", s.postLiquidate)
	r.POST("/api/data/clear", s.postClear)

	s.engine = r
	return s
}

// Handler exposes the router, e.g. for httptest.NewServer.
func (s *Server) Handler() http.Handler { return s.engine }

// Seed loads a small demo data set.
func (s *Server) Seed() {
	s.SetHealth(gin.H{
		"status": "system_active", "mode": "PAPER", "risk_limit": 0.01, "alpaca_status": "connected",
		"equity": 25000.0, "daily_pnl": 310.5, "daily_pnl_pct": 0.0125,
	})
	s.SetPositions(
		gin.H{"symbol": "AAPL", "qty": 10, "side": "long", "market_value": 1950.0, "cost_basis": 1800.0, "unrealized_pl": 150.0, "unrealized_plpc": 0.0833, "current_price": 195.0},
		gin.H{"symbol": "NVDA", "qty": 5, "side": "long", "market_value": 620.0, "cost_basis": 650.0, "unrealized_pl": -30.0, "unrealized_plpc": -0.0462, "current_price": 124.0},
	)
	s.SetJournal(
		gin.H{"trade_id": "t-1", "symbol": "TSLA", "bucket": "warrior_day", "entry_time": "2026-01-05T14:31:00", "exit_time": "2026-01-05T15:02:00", "entry_price": 240.0, "exit_price": 246.0, "qty": 20, "pnl_dollars": 120.0, "r_multiple": 1.5, "holding_minutes": 31, "status": "CLOSED"},
		gin.H{"trade_id": "t-2", "symbol": "AMD", "bucket": "swing_2050", "entry_time": "2026-01-06T15:00:00", "exit_time": "2026-01-09T15:00:00", "entry_price": 150.0, "exit_price": 147.0, "qty": 15, "pnl_dollars": -45.0, "r_multiple": -0.75, "holding_minutes": 4320, "status": "CLOSED"},
		gin.H{"trade_id": "t-3", "symbol": "AAPL", "bucket": "SEEDED", "entry_time": "2026-01-08T16:00:00", "entry_price": 180.0, "qty": 10, "pnl_dollars": nil, "status": "OPEN", "notes": "Recovered from Alpaca Api"},
	)
	s.SetStats(gin.H{"total_trades": 2, "win_rate": 0.5, "avg_R": 0.375, "total_pnl": 75.0, "avg_hold_minutes": 2175.5, "max_drawdown": 45.0})
	s.SetScan(gin.H{
		"SWING GRADE SETUP": []gin.H{{
			"signal_id": "MSFT_SWING_2050", "symbol": "MSFT", "direction": "LONG", "setup_name": "20/50 pullback",
			"thesis": "Trend intact, pullback to 20 EMA", "scores": gin.H{"win_probability_estimate": 68.5},
			"trade_plan": gin.H{"entry": 410.5, "stop_loss": 402.0, "take_profit": 430.0},
		}},
	})
}

func (s *Server) SetHealth(h gin.H) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.health = h
}

func (s *Server) SetPositions(rows ...gin.H) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions = append([]gin.H(nil), rows...)
}

func (s *Server) SetJournal(rows ...gin.H) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journal = append([]gin.H(nil), rows...)
}

// SetStats sets the reported aggregate. nil means "no closed trades".
func (s *Server) SetStats(st gin.H) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = st
}

func (s *Server) SetScan(sc gin.H) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scan = sc
}

// Fail makes path answer with status until Heal is called.
func (s *Server) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[path] = status
}

func (s *Server) Heal(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fail, path)
}

// Delay stalls every request to path by d.
func (s *Server) Delay(path string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay[path] = d
}

// Calls reports how many requests reached path.
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

// Symbols lists the open position symbols in order.
func (s *Server) Symbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.positions))
	for _, p := range s.positions {
		out = append(out, fmt.Sprint(p["symbol"]))
	}
	return out
}

// Uploaded lists the stored filenames for source.
func (s *Server) Uploaded(source string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.uploads[source]...)
}

func (s *Server) instrument(c *gin.Context) {
	path := c.Request.URL.Path

	s.mu.Lock()
	s.calls[path]++
	d := s.delay[path]
	status, failing := s.fail[path]
	s.mu.Unlock()

	if d > 0 {
		select {
		case <-time.After(d):
		case <-c.Request.Context().Done():
			c.Abort()
			return
		}
	}
	if failing {
		c.AbortWithStatusJSON(status, gin.H{"detail": "injected failure"})
		return
	}
	c.Next()
}

func (s *Server) authorize(c *gin.Context) {
	if s.key != "" && c.GetHeader(s.header) != s.key {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Invalid or missing admin key"})
		return
	}
	c.Next()
}

func (s *Server) getHealth(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.health)
}

func (s *Server) getScan(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.scan)
}

func (s *Server) getUploads(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.uploads)
}

func (s *Server) postUpload(c *gin.Context) {
	source := c.Param("source")
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".csv") {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Only CSV files allowed"})
		return
	}

	name := time.Now().Format("20060102_150405") + "_" + filepath.Base(fh.Filename)

	s.mu.Lock()
	s.uploads[source] = append(s.uploads[source], name)
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"file_path": "uploads/" + source + "/" + name,
		"message":   source + " data received",
	})
}

func (s *Server) getStats(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats == nil {
		c.JSON(http.StatusOK, gin.H{"msg": "No closed trades yet"})
		return
	}
	c.JSON(http.StatusOK, s.stats)
}

func (s *Server) getHistory(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.journal
	if rows == nil {
		rows = []gin.H{}
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) getPositions(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.positions
	if rows == nil {
		rows = []gin.H{}
	}
	c.JSON(http.StatusOK, rows)
}

type closeRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

func (s *Server) postClosePosition(c *gin.Context) {
	var req closeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.positions {
		if fmt.Sprint(p["symbol"]) == req.Symbol {
			s.positions = append(s.positions[:i], s.positions[i+1:]...)
			logger.L.Debug("stub closed position", "symbol", req.Symbol)
			c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Closing " + req.Symbol})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "position not found: " + req.Symbol})
}

func (s *Server) postLiquidate(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions = nil
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Liquidate All Signal Sent"})
}

func (s *Server) postClear(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, files := range s.uploads {
		n += len(files)
		s.uploads[k] = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": fmt.Sprintf("Cleared %d files.", n)})
}
