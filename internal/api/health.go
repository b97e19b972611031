package api

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse is the body of /health
type HealthResponse struct {
	Status      string      `json:"status"`
	Port        int         `json:"port"`
	ServerSpecs ServerSpecs `json:"server_specs"`
}

type ServerSpecs struct {
	Timestamp     string     `json:"timestamp"`
	RuntimeUptime string     `json:"runtime_uptime"`
	System        SystemInfo `json:"system"`
	Memory        MemoryInfo `json:"memory"`
}

type SystemInfo struct {
	OS        string `json:"os"`
	CPUCores  int    `json:"cpu_cores"`
	GoVersion string `json:"go_version"`
}

// MemoryInfo reports the Go runtime's view of the process; sizes are megabytes with two decimals.
type MemoryInfo struct {
	ProcessAllocMB string `json:"process_alloc_mb"`
	SysMB          string `json:"sys_mb"`
	Goroutines     int    `json:"goroutines"`
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "OK",
		Port:        h.port,
		ServerSpecs: serverSpecs(time.Now(), h.started),
	})
}

func serverSpecs(now, started time.Time) ServerSpecs {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return ServerSpecs{
		Timestamp:     now.UTC().Format(time.RFC3339Nano),
		RuntimeUptime: formatUptime(now.Sub(started)),
		System: SystemInfo{
			OS:        fmt.Sprintf("%s (%s)", runtime.GOOS, runtime.GOARCH),
			CPUCores:  runtime.NumCPU(),
			GoVersion: runtime.Version(),
		},
		Memory: MemoryInfo{
			ProcessAllocMB: megabytes(mem.Alloc),
			SysMB:          megabytes(mem.Sys),
			Goroutines:     runtime.NumGoroutine(),
		},
	}
}

// formatUptime renders d as "1d 2h 3m 4s".
func formatUptime(d time.Duration) string {
	seconds := int64(d / time.Second)
	return fmt.Sprintf("%dd %dh %dm %ds", seconds/86400, seconds%86400/3600, seconds%3600/60, seconds%60)
}

func megabytes(b uint64) string {
	return fmt.Sprintf("%.2f", float64(b)/(1024*1024))
}
