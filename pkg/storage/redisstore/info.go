package redisstore

import (
	"bufio"
	"context"
	"strconv"
	"strings"

	"github.com/platinummonkey/pulse/pkg/api"
	"github.com/platinummonkey/pulse/pkg/storage"
)

// ServerStats returns a snapshot of the store's server introspection
// data: connections, memory, throughput and uptime.
func (c *Client) ServerStats(ctx context.Context) (*api.StoreStats, error) {
	info, err := c.rdb.Info(ctx).Result()
	if err != nil {
		return nil, storage.Unavailable("server stats", err)
	}

	fields := parseInfo(info)
	stats := &api.StoreStats{
		ConnectedClients:       parseInfoInt(fields, "connected_clients"),
		UsedMemoryHuman:        fields["used_memory_human"],
		TotalCommandsProcessed: parseInfoInt(fields, "total_commands_processed"),
		UptimeSeconds:          parseInfoInt(fields, "uptime_in_seconds"),
		InstantaneousOpsPerSec: parseInfoInt(fields, "instantaneous_ops_per_sec"),
	}
	return stats, nil
}

// parseInfo splits an INFO response into key/value pairs, skipping
// section headers and blank lines.
func parseInfo(info string) map[string]string {
	fields := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(info))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields[key] = value
	}
	return fields
}

func parseInfoInt(fields map[string]string, key string) int64 {
	v, err := strconv.ParseInt(fields[key], 10, 64)
	if err != nil {
		return 0
	}
	return v
}
