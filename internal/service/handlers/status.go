package handlers

import (
	"context"
	"fmt"
	"strings"
)

type Status struct {
	stats SystemStats
}

func NewStatus(stats SystemStats) *Status {
	return &Status{stats: stats}
}

func (h *Status) Name() string { return "status" }

func (h *Status) Handle(ctx context.Context, input string) (string, bool, error) {
	lower := strings.ToLower(input)

	switch {
	case strings.Contains(lower, "cpu usage"):
		cpu, err := h.stats.CPUUsage(ctx)
		if err != nil {
			return "Unable to retrieve CPU usage.", true, nil
		}
		return fmt.Sprintf("Current CPU usage is %.1f percent.", cpu), true, nil

	case strings.Contains(lower, "memory usage"):
		mem, err := h.stats.MemoryUsage(ctx)
		if err != nil {
			return "Unable to retrieve memory usage.", true, nil
		}
		return fmt.Sprintf("Current memory usage is %.1f percent.", mem), true, nil

	case strings.Contains(lower, "internet status") || strings.Contains(lower, "network status"):
		status, err := h.stats.InternetStatus(ctx)
		if err != nil {
			return "", false, err
		}
		return status, true, nil

	case strings.Contains(lower, "system status") || strings.Contains(lower, "status report"):
		cpu, cpuErr := h.stats.CPUUsage(ctx)
		mem, memErr := h.stats.MemoryUsage(ctx)
		net, netErr := h.stats.InternetStatus(ctx)
		if cpuErr != nil || memErr != nil || netErr != nil {
			return "Some systems are not reporting. I'll need a moment.", true, nil
		}
		return fmt.Sprintf("All systems nominal. CPU at %.1f percent, memory at %.1f percent. %s", cpu, mem, net), true, nil
	}

	return "", false, nil
}
