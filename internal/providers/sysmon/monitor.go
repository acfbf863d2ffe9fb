package sysmon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const probeURL = "https://www.google.com/generate_204"

// Monitor reads CPU and memory figures from /proc and probes internet
// reachability. Linux only, matching the deployment target.
type Monitor struct {
	client *http.Client
}

func NewMonitor() *Monitor {
	return &Monitor{client: &http.Client{Timeout: 5 * time.Second}}
}

// CPUUsage samples /proc/stat twice and returns busy time as a
// percentage over the sampling window.
func (m *Monitor) CPUUsage(ctx context.Context) (float64, error) {
	idle1, total1, err := readCPUSample()
	if err != nil {
		return 0, err
	}

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-time.After(250 * time.Millisecond):
	}

	idle2, total2, err := readCPUSample()
	if err != nil {
		return 0, err
	}

	dTotal := total2 - total1
	if dTotal == 0 {
		return 0, nil
	}
	dIdle := idle2 - idle1
	return 100 * float64(dTotal-dIdle) / float64(dTotal), nil
}

func readCPUSample() (idle, total uint64, err error) {
	data, err := os.ReadFile("/proc/stat")
	if err != nil {
		return 0, 0, fmt.Errorf("read cpu stats: %w", err)
	}

	line, _, _ := strings.Cut(string(data), "\n")
	fields := strings.Fields(line)
	if len(fields) < 5 || fields[0] != "cpu" {
		return 0, 0, fmt.Errorf("unexpected /proc/stat format")
	}

	for i, f := range fields[1:] {
		v, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("parse cpu field: %w", err)
		}
		total += v
		if i == 3 { // idle column
			idle = v
		}
	}
	return idle, total, nil
}

// MemoryUsage returns used memory as a percentage of total.
func (m *Monitor) MemoryUsage(ctx context.Context) (float64, error) {
	data, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		return 0, fmt.Errorf("read memory stats: %w", err)
	}

	var total, available uint64
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		v, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			total = v
		case "MemAvailable:":
			available = v
		}
	}
	if total == 0 {
		return 0, fmt.Errorf("no MemTotal in /proc/meminfo")
	}
	return 100 * float64(total-available) / float64(total), nil
}

// InternetStatus probes the outside world and returns a spoken
// sentence either way; only request construction is an error.
func (m *Monitor) InternetStatus(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, probeURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return "The internet connection appears to be down.", nil
	}
	_ = resp.Body.Close()
	return "Internet connection is up.", nil
}
