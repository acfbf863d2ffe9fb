package handlers

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const defaultZone = "thermostat"

var numberRe = regexp.MustCompile(`\d+(\.\d+)?`)

type Thermostat struct {
	svc ThermostatService
}

func NewThermostat(svc ThermostatService) *Thermostat {
	return &Thermostat{svc: svc}
}

func (h *Thermostat) Name() string { return "thermostat" }

func (h *Thermostat) Handle(ctx context.Context, input string) (string, bool, error) {
	lower := strings.ToLower(input)

	switch {
	case strings.Contains(lower, "current temperature") || strings.Contains(lower, "what's the temperature") || strings.Contains(lower, "current temp"):
		zone := parseZone(lower)
		temp, err := h.svc.CurrentTemperature(ctx, zone)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("The current temperature in %s is %.1f degrees.", zone, temp), true, nil

	case strings.Contains(lower, "set thermostat to") || strings.Contains(lower, "set temperature to"):
		temp, ok := extractFirstNumber(lower)
		if !ok {
			return "I didn't catch the temperature. Please give me a number.", true, nil
		}
		zone := parseZone(lower)
		if err := h.svc.SetTemperature(ctx, zone, temp); err != nil {
			return "", false, err
		}
		return fmt.Sprintf("Setting the %s to %.1f degrees.", zone, temp), true, nil

	case strings.Contains(lower, "heat to"):
		temp, ok := extractFirstNumber(lower)
		if !ok {
			return "Please specify a temperature for the heat.", true, nil
		}
		if err := h.svc.HeatTo(ctx, temp); err != nil {
			return "", false, err
		}
		return fmt.Sprintf("Turning on heat to %.1f degrees.", temp), true, nil

	case strings.Contains(lower, "ac to"):
		temp, ok := extractFirstNumber(lower)
		if !ok {
			return "Please specify a temperature for the AC.", true, nil
		}
		if err := h.svc.CoolTo(ctx, temp); err != nil {
			return "", false, err
		}
		return fmt.Sprintf("Turning on AC to %.1f degrees.", temp), true, nil
	}

	return "", false, nil
}

func extractFirstNumber(input string) (float64, bool) {
	m := numberRe.FindString(input)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseZone pulls a room out of phrases like "in the living room".
func parseZone(input string) string {
	const token = " in "
	idx := strings.LastIndex(input, token)
	if idx < 0 {
		return defaultZone
	}
	zone := strings.TrimSpace(input[idx+len(token):])
	zone = strings.TrimPrefix(zone, "the ")
	if zone == "" {
		return defaultZone
	}
	return zone
}
