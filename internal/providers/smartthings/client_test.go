package smartthings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sandevgo/homevoice/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCommand struct {
	device string
	cmd    command
}

func newTestClient(t *testing.T, commands *[]recordedCommand) *Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /devices", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"deviceId":"dev-kitchen","label":"Kitchen Light"},
			{"deviceId":"dev-tv","label":"Living Room TV"}
		]}`))
	})
	mux.HandleFunc("POST /devices/{id}/commands", func(w http.ResponseWriter, r *http.Request) {
		var payload commandsPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		for _, c := range payload.Commands {
			*commands = append(*commands, recordedCommand{device: r.PathValue("id"), cmd: c})
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /devices/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"components":{"main":{"temperatureMeasurement":{"temperature":{"value":21.5}}}}}`))
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return NewClient(&config.HomeConfig{
		SmartThingsBaseURL: ts.URL,
		SmartThingsToken:   "token",
		ThermostatDeviceID: "dev-thermo",
	})
}

func TestTurnOnMatchesLabel(t *testing.T) {
	var commands []recordedCommand
	c := newTestClient(t, &commands)

	found, err := c.TurnOn(context.Background(), "kitchen light")
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, commands, 1)
	assert.Equal(t, "dev-kitchen", commands[0].device)
	assert.Equal(t, "on", commands[0].cmd.Command)
}

func TestUnknownDeviceNotFound(t *testing.T) {
	var commands []recordedCommand
	c := newTestClient(t, &commands)

	found, err := c.TurnOn(context.Background(), "sauna heater")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, commands)
}

func TestCurrentTemperature(t *testing.T) {
	var commands []recordedCommand
	c := newTestClient(t, &commands)

	temp, err := c.CurrentTemperature(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 21.5, temp)
}

func TestSetTemperatureSendsSetpoint(t *testing.T) {
	var commands []recordedCommand
	c := newTestClient(t, &commands)

	require.NoError(t, c.SetTemperature(context.Background(), "", 23))
	require.Len(t, commands, 1)
	assert.Equal(t, "dev-thermo", commands[0].device)
	assert.Equal(t, "setHeatingSetpoint", commands[0].cmd.Command)
	assert.Equal(t, []any{23.0}, commands[0].cmd.Arguments)
}

func TestSceneExecutesEachStep(t *testing.T) {
	var commands []recordedCommand
	c := newTestClient(t, &commands)

	err := c.Execute(context.Background(), "the kitchen light off and living room tv on")
	require.NoError(t, err)

	require.Len(t, commands, 2)
	assert.Equal(t, "dev-kitchen", commands[0].device)
	assert.Equal(t, "off", commands[0].cmd.Command)
	assert.Equal(t, "dev-tv", commands[1].device)
	assert.Equal(t, "on", commands[1].cmd.Command)
}

func TestSplitSteps(t *testing.T) {
	steps := splitSteps("lights off, tv on; fan off and heater on")
	assert.Equal(t, []string{"lights off", "tv on", "fan off", "heater on"}, steps)
}
