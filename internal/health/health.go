// Package health builds the /health report: reachability of the database
// and cache, disk headroom, and a few process metrics.
package health

import (
	"context"
	"fmt"
	"time"
)

const (
	StatusOK      = "ok"
	StatusWarning = "warning"
	StatusError   = "error"
)

// Disk usage thresholds in percent, checked most severe first.
const (
	DiskErrorPercent   = 95
	DiskWarningPercent = 90
)

// Check is the outcome of one named probe.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Report is the JSON body served by /health.
type Report struct {
	Status      string           `json:"status"`
	Timestamp   string           `json:"timestamp"`
	Version     string           `json:"version"`
	Environment string           `json:"environment"`
	Checks      map[string]Check `json:"checks"`
	Metrics     Metrics          `json:"metrics"`
}

type Metrics struct {
	Memory        string `json:"memory"`
	Uptime        string `json:"uptime"`
	DBConnections any    `json:"db_connections"`
}

// Healthy reports whether every check is ok.
func (r Report) Healthy() bool {
	for _, c := range r.Checks {
		if c.Status != StatusOK {
			return false
		}
	}
	return true
}

// Pinger is anything that can prove it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PoolStats reports the number of open database connections.
type PoolStats interface {
	OpenConnections() int
}

// Config wires the probes. Cache may be nil when no cache is configured.
type Config struct {
	Version     string
	Environment string
	DataDir     string
	Database    Pinger
	Cache       Pinger
	Pool        PoolStats
	Timeout     time.Duration
}

// Checker assembles health reports.
type Checker struct {
	cfg       Config
	startedAt time.Time
	now       func() time.Time
	diskUsage func(path string) (int, error)
	memory    func() (string, error)
}

func NewChecker(cfg Config) *Checker {
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.Version == "" {
		cfg.Version = "unknown"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}
	return &Checker{
		cfg:       cfg,
		startedAt: time.Now(),
		now:       time.Now,
		diskUsage: DiskUsagePercent,
		memory:    residentMemory,
	}
}

// Check runs every probe. It returns an error only when the report itself
// could not be produced; failing probes are reported inside the Report.
func (c *Checker) Check(parent context.Context) (rep Report, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("health probe panicked: %v", p)
		}
	}()

	ctx, cancel := context.WithTimeout(parent, c.cfg.Timeout)
	defer cancel()

	rep = Report{
		Status:      StatusOK,
		Timestamp:   c.now().UTC().Format(time.RFC3339),
		Version:     c.cfg.Version,
		Environment: c.cfg.Environment,
		Checks: map[string]Check{
			"database":   c.databaseCheck(ctx),
			"redis":      c.cacheCheck(ctx),
			"disk_space": c.diskCheck(),
		},
		Metrics: c.metrics(),
	}
	if err := parent.Err(); err != nil {
		return Report{}, fmt.Errorf("health check aborted: %w", err)
	}
	if !rep.Healthy() {
		rep.Status = StatusError
	}
	return rep, nil
}

func (c *Checker) databaseCheck(ctx context.Context) Check {
	if c.cfg.Database == nil {
		return Check{Status: StatusError, Message: "Database not configured"}
	}
	if err := c.cfg.Database.Ping(ctx); err != nil {
		return Check{Status: StatusError, Message: "Database connection failed: " + err.Error()}
	}
	return Check{Status: StatusOK, Message: "Database connection successful"}
}

func (c *Checker) cacheCheck(ctx context.Context) Check {
	if c.cfg.Cache == nil {
		return Check{Status: StatusOK, Message: "Redis not configured"}
	}
	if err := c.cfg.Cache.Ping(ctx); err != nil {
		return Check{Status: StatusError, Message: "Redis connection failed: " + err.Error()}
	}
	return Check{Status: StatusOK, Message: "Redis connection successful"}
}

func (c *Checker) diskCheck() Check {
	pct, err := c.diskUsage(c.cfg.DataDir)
	if err != nil {
		return Check{Status: StatusError, Message: "Unable to check disk space: " + err.Error()}
	}
	return DiskCheck(pct)
}

// DiskCheck grades a usage percentage.
func DiskCheck(usagePercent int) Check {
	switch {
	case usagePercent > DiskErrorPercent:
		return Check{Status: StatusError, Message: fmt.Sprintf("Disk usage critical: %d%%", usagePercent)}
	case usagePercent > DiskWarningPercent:
		return Check{Status: StatusWarning, Message: fmt.Sprintf("Disk usage high: %d%%", usagePercent)}
	default:
		return Check{Status: StatusOK, Message: fmt.Sprintf("Disk usage normal: %d%%", usagePercent)}
	}
}

func (c *Checker) metrics() Metrics {
	m := Metrics{Memory: "N/A", DBConnections: "N/A"}
	if mem, err := c.memory(); err == nil {
		m.Memory = mem
	}
	m.Uptime = fmt.Sprintf("%.2f minutes", c.now().Sub(c.startedAt).Minutes())
	if c.cfg.Pool != nil {
		m.DBConnections = c.cfg.Pool.OpenConnections()
	}
	return m
}
