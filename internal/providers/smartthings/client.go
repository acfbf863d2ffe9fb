package smartthings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sandevgo/homevoice/internal/config"
	"github.com/sandevgo/homevoice/pkg/log"
)

// Client drives switches and the thermostat through the SmartThings
// REST API. Devices are addressed by their user-facing label.
type Client struct {
	http         *resty.Client
	thermostatID string
}

func NewClient(cfg *config.HomeConfig) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.SmartThingsBaseURL).
			SetAuthToken(cfg.SmartThingsToken).
			SetTimeout(10 * time.Second),
		thermostatID: cfg.ThermostatDeviceID,
	}
}

type command struct {
	Component  string `json:"component"`
	Capability string `json:"capability"`
	Command    string `json:"command"`
	Arguments  []any  `json:"arguments,omitempty"`
}

type commandsPayload struct {
	Commands []command `json:"commands"`
}

func (c *Client) sendCommands(ctx context.Context, deviceID string, cmds ...command) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(commandsPayload{Commands: cmds}).
		Post(fmt.Sprintf("/devices/%s/commands", deviceID))
	if err != nil {
		return fmt.Errorf("send device commands: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("smartthings api: http %d", resp.StatusCode())
	}
	return nil
}

type deviceList struct {
	Items []struct {
		DeviceID string `json:"deviceId"`
		Label    string `json:"label"`
	} `json:"items"`
}

// findDevice resolves a spoken name to a device ID by case-insensitive
// label match. Empty ID means no such device.
func (c *Client) findDevice(ctx context.Context, name string) (string, error) {
	var out deviceList
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/devices")
	if err != nil {
		return "", fmt.Errorf("list devices: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("smartthings api: http %d", resp.StatusCode())
	}

	want := strings.ToLower(strings.TrimSpace(name))
	for _, d := range out.Items {
		if strings.ToLower(d.Label) == want {
			return d.DeviceID, nil
		}
	}
	// Fall back to a contains match ("kitchen light" vs "Kitchen Light Strip")
	for _, d := range out.Items {
		if strings.Contains(strings.ToLower(d.Label), want) {
			return d.DeviceID, nil
		}
	}
	return "", nil
}

func (c *Client) TurnOn(ctx context.Context, name string) (bool, error) {
	return c.setSwitch(ctx, name, "on")
}

func (c *Client) TurnOff(ctx context.Context, name string) (bool, error) {
	return c.setSwitch(ctx, name, "off")
}

func (c *Client) setSwitch(ctx context.Context, name, state string) (bool, error) {
	id, err := c.findDevice(ctx, name)
	if err != nil {
		return false, err
	}
	if id == "" {
		return false, nil
	}
	if err := c.sendCommands(ctx, id, command{
		Component:  "main",
		Capability: "switch",
		Command:    state,
	}); err != nil {
		return false, err
	}
	return true, nil
}

type deviceStatus struct {
	Components map[string]struct {
		TemperatureMeasurement struct {
			Temperature struct {
				Value float64 `json:"value"`
			} `json:"temperature"`
		} `json:"temperatureMeasurement"`
	} `json:"components"`
}

func (c *Client) CurrentTemperature(ctx context.Context, zone string) (float64, error) {
	component := "main"
	if zone != "" {
		component = zone
	}

	var out deviceStatus
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/devices/%s/status", c.thermostatID))
	if err != nil {
		return 0, fmt.Errorf("read thermostat: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("smartthings api: http %d", resp.StatusCode())
	}

	comp, ok := out.Components[component]
	if !ok {
		comp, ok = out.Components["main"]
	}
	if !ok {
		return 0, fmt.Errorf("thermostat has no component %q", component)
	}
	return comp.TemperatureMeasurement.Temperature.Value, nil
}

func (c *Client) SetTemperature(ctx context.Context, zone string, temp float64) error {
	component := "main"
	if zone != "" {
		component = zone
	}
	return c.sendCommands(ctx, c.thermostatID, command{
		Component:  component,
		Capability: "thermostatHeatingSetpoint",
		Command:    "setHeatingSetpoint",
		Arguments:  []any{temp},
	})
}

func (c *Client) HeatTo(ctx context.Context, temp float64) error {
	return c.sendCommands(ctx, c.thermostatID, command{
		Component:  "main",
		Capability: "thermostatHeatingSetpoint",
		Command:    "setHeatingSetpoint",
		Arguments:  []any{temp},
	})
}

func (c *Client) CoolTo(ctx context.Context, temp float64) error {
	return c.sendCommands(ctx, c.thermostatID, command{
		Component:  "main",
		Capability: "thermostatCoolingSetpoint",
		Command:    "setCoolingSetpoint",
		Arguments:  []any{temp},
	})
}

// Execute runs a stored scene definition: steps separated by "and",
// commas, or semicolons, each ending in "on" or "off", for example
// "living room lights on, tv off". Steps that match no device are
// logged and skipped so one stale name does not break the scene.
func (c *Client) Execute(ctx context.Context, definition string) error {
	logger := log.FromCtx(ctx)

	for _, step := range splitSteps(definition) {
		name, state, ok := parseStep(step)
		if !ok {
			logger.Debug().Str("step", step).Msg("unrecognized scene step skipped")
			continue
		}
		found, err := c.setSwitch(ctx, name, state)
		if err != nil {
			return fmt.Errorf("scene step %q: %w", step, err)
		}
		if !found {
			logger.Warn().Str("device", name).Msg("scene step references unknown device")
		}
	}
	return nil
}

func splitSteps(definition string) []string {
	parts := strings.FieldsFunc(definition, func(r rune) bool {
		return r == ',' || r == ';'
	})

	var steps []string
	for _, p := range parts {
		for _, s := range strings.Split(p, " and ") {
			if s = strings.TrimSpace(s); s != "" {
				steps = append(steps, s)
			}
		}
	}
	return steps
}

func parseStep(step string) (name, state string, ok bool) {
	s := strings.ToLower(strings.TrimSpace(step))
	switch {
	case strings.HasSuffix(s, " on"):
		name = strings.TrimSuffix(s, " on")
		state = "on"
	case strings.HasSuffix(s, " off"):
		name = strings.TrimSuffix(s, " off")
		state = "off"
	default:
		return "", "", false
	}
	name = strings.TrimPrefix(strings.TrimSpace(name), "the ")
	return name, state, name != ""
}
