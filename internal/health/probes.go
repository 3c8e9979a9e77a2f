package health

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sys/unix"
)

// DiskUsagePercent reports how full the filesystem holding path is, the
// way df computes its Use% column.
func DiskUsagePercent(path string) (int, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	used := st.Blocks - st.Bfree
	total := used + st.Bavail
	if total == 0 {
		return 0, nil
	}
	// Round up like df.
	return int((used*100 + total - 1) / total), nil
}

var errNoRSS = errors.New("VmRSS not reported")

func residentMemory() (string, error) {
	f, err := os.Open("/proc/self/status")
	if err != nil {
		return "", err
	}
	defer f.Close()
	return parseVmRSS(f)
}

// parseVmRSS reads a /proc/<pid>/status document and formats VmRSS in MB.
func parseVmRSS(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "VmRSS:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return "", errNoRSS
		}
		kb, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return "", fmt.Errorf("parse VmRSS: %w", err)
		}
		return fmt.Sprintf("%.2f MB", kb/1024), nil
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return "", errNoRSS
}

// RedisProbe pings a Redis server.
type RedisProbe struct {
	client *redis.Client
}

// NewRedisProbe parses a redis:// URL. It does not connect until Ping.
func NewRedisProbe(url string) (*RedisProbe, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisProbe{client: redis.NewClient(opts)}, nil
}

func (p *RedisProbe) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *RedisProbe) Close() error {
	return p.client.Close()
}

// DBPool adapts *sql.DB to PoolStats.
type DBPool struct {
	DB *sql.DB
}

func (p DBPool) OpenConnections() int {
	return p.DB.Stats().OpenConnections
}
