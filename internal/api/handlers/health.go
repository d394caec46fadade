// Package handlers implements the gin handlers behind internal/api's
// management endpoints.
package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/donos-project/donosd/internal/api/models"
)

// Handler holds the accessors needed to answer health and stats queries.
// It deliberately has no write-path state: this repo's management API
// is read-only, with no cluster, zone, or custom-DNS administration.
type Handler struct {
	startTime     time.Time
	cacheLen      func() int
	blocklistSize func() int
}

// New builds a Handler. cacheLen and blocklistSize may be nil, in which
// case the corresponding stat reports zero.
func New(cacheLen, blocklistSize func() int) *Handler {
	return &Handler{
		startTime:     time.Now(),
		cacheLen:      cacheLen,
		blocklistSize: blocklistSize,
	}
}

// Health reports that the process is up and serving.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.StatusResponse{Status: "ok"})
}

// Stats reports process uptime, host resource usage, and resolver
// occupancy counters.
func (h *Handler) Stats(c *gin.Context) {
	uptime := time.Since(h.startTime)

	memStats := models.MemoryStats{}
	if vmStat, err := mem.VirtualMemory(); err == nil {
		memStats.TotalMB = float64(vmStat.Total) / 1024 / 1024
		memStats.FreeMB = float64(vmStat.Available) / 1024 / 1024
		memStats.UsedMB = float64(vmStat.Used) / 1024 / 1024
		memStats.UsedPercent = vmStat.UsedPercent
	}

	cpuStats := models.CPUStats{NumCPU: runtime.NumCPU()}
	if cpuPercent, err := cpu.Percent(200*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		cpuStats.UsedPercent = cpuPercent[0]
		cpuStats.IdlePercent = 100.0 - cpuPercent[0]
	}

	resolverStats := models.ResolverStats{}
	if h.cacheLen != nil {
		resolverStats.CacheEntries = h.cacheLen()
	}
	if h.blocklistSize != nil {
		resolverStats.BlocklistSize = h.blocklistSize()
	}

	c.JSON(http.StatusOK, models.ServerStatsResponse{
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: int64(uptime.Seconds()),
		StartTime:     h.startTime,
		CPU:           cpuStats,
		Memory:        memStats,
		Resolver:      resolverStats,
	})
}
