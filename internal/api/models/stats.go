// Package models contains the JSON response shapes served by internal/api.
package models

import "time"

// StatusResponse is the /health response body.
type StatusResponse struct {
	Status string `json:"status"`
}

// MemoryStats reports host memory usage, sourced from gopsutil.
type MemoryStats struct {
	TotalMB     float64 `json:"total_mb"`
	FreeMB      float64 `json:"free_mb"`
	UsedMB      float64 `json:"used_mb"`
	UsedPercent float64 `json:"used_percent"`
}

// CPUStats reports host CPU usage, sourced from gopsutil.
type CPUStats struct {
	NumCPU      int     `json:"num_cpu"`
	UsedPercent float64 `json:"used_percent"`
	IdlePercent float64 `json:"idle_percent"`
}

// ResolverStats reports counters from the DNS pipeline: cache occupancy
// and how many distinct hostnames are currently blocked.
type ResolverStats struct {
	CacheEntries  int `json:"cache_entries"`
	BlocklistSize int `json:"blocklist_size"`
}

// ServerStatsResponse is the /stats response body.
type ServerStatsResponse struct {
	Uptime        string        `json:"uptime"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	StartTime     time.Time     `json:"start_time"`
	CPU           CPUStats      `json:"cpu"`
	Memory        MemoryStats   `json:"memory"`
	Resolver      ResolverStats `json:"resolver"`
}
