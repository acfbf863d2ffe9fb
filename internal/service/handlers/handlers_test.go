package handlers

import (
	"context"
	"strings"
	"testing"

	"github.com/sandevgo/homevoice/internal/core"
	"github.com/sandevgo/homevoice/internal/service/conversation"
	"github.com/sandevgo/homevoice/internal/service/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWeather struct {
	current, tomorrow, weekly string
}

func (f *fakeWeather) Current(context.Context) (string, error)  { return f.current, nil }
func (f *fakeWeather) Tomorrow(context.Context) (string, error) { return f.tomorrow, nil }
func (f *fakeWeather) Weekly(context.Context) (string, error)   { return f.weekly, nil }

func TestWeatherMatching(t *testing.T) {
	h := NewWeather(&fakeWeather{
		current:  "Clear and sunny, 22 degrees.",
		tomorrow: "Rain expected tomorrow.",
		weekly:   "Mixed week ahead.",
	}, conversation.NewPersona())

	tests := []struct {
		input   string
		matched bool
		want    string
	}{
		{"what's the weather", true, "Clear and sunny, 22 degrees."},
		{"weather tomorrow please", true, "Rain expected tomorrow."},
		{"forecast for the week", true, "Mixed week ahead."},
		{"how's it looking outside", true, "Clear and sunny, 22 degrees."},
		{"turn on the lights", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			resp, matched, err := h.Handle(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.matched, matched)
			assert.Equal(t, tt.want, resp)
		})
	}
}

func TestWeatherAdjustsPersonaMood(t *testing.T) {
	p := conversation.NewPersona()
	h := NewWeather(&fakeWeather{current: "Severe storm alert in effect."}, p)

	_, matched, err := h.Handle(context.Background(), "what's the weather")
	require.NoError(t, err)
	require.True(t, matched)
	assert.Equal(t, conversation.MoodEmergency, p.Mood())
}

type fakeThermostat struct {
	setZone string
	setTemp float64
}

func (f *fakeThermostat) CurrentTemperature(_ context.Context, zone string) (float64, error) {
	return 21.5, nil
}
func (f *fakeThermostat) SetTemperature(_ context.Context, zone string, temp float64) error {
	f.setZone, f.setTemp = zone, temp
	return nil
}
func (f *fakeThermostat) HeatTo(_ context.Context, temp float64) error { return nil }
func (f *fakeThermostat) CoolTo(_ context.Context, temp float64) error { return nil }

func TestThermostatSetWithZone(t *testing.T) {
	ft := &fakeThermostat{}
	h := NewThermostat(ft)

	resp, matched, err := h.Handle(context.Background(), "set temperature to 23 in the bedroom")
	require.NoError(t, err)
	require.True(t, matched)
	assert.Equal(t, "bedroom", ft.setZone)
	assert.Equal(t, 23.0, ft.setTemp)
	assert.Contains(t, resp, "23.0")
}

func TestThermostatMissingNumber(t *testing.T) {
	h := NewThermostat(&fakeThermostat{})

	resp, matched, err := h.Handle(context.Background(), "set thermostat to warm")
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Contains(t, resp, "didn't catch")
}

type fakeLights struct {
	on, off []string
	found   bool
}

func (f *fakeLights) TurnOn(_ context.Context, name string) (bool, error) {
	f.on = append(f.on, name)
	return f.found, nil
}
func (f *fakeLights) TurnOff(_ context.Context, name string) (bool, error) {
	f.off = append(f.off, name)
	return f.found, nil
}

func TestLightsOnlyClaimsLightPhrases(t *testing.T) {
	fl := &fakeLights{found: true}
	h := NewLights(fl)

	_, matched, err := h.Handle(context.Background(), "turn on the kitchen light")
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, []string{"kitchen light"}, fl.on)

	_, matched, err = h.Handle(context.Background(), "turn on the tv")
	require.NoError(t, err)
	assert.False(t, matched, "tv phrases are not lights")
}

type memFacts struct {
	data map[string]string
}

func newMemFacts() *memFacts { return &memFacts{data: map[string]string{}} }

func (m *memFacts) Remember(_ context.Context, key, value string) error {
	m.data[key] = value
	return nil
}

func (m *memFacts) Recall(_ context.Context, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", core.ErrNotFound
	}
	return v, nil
}

func (m *memFacts) Forget(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

type fakeRunner struct {
	executed []string
}

func (f *fakeRunner) Execute(_ context.Context, definition string) error {
	f.executed = append(f.executed, definition)
	return nil
}

func TestSceneRoundTrip(t *testing.T) {
	facts := memory.NewFacts(newMemFacts())
	runner := &fakeRunner{}
	h := NewScene(facts, runner)

	_, matched, err := h.Handle(context.Background(), "remember scene movie night is dim lights and tv on")
	require.NoError(t, err)
	require.True(t, matched)

	resp, matched, err := h.Handle(context.Background(), "run scene movie night")
	require.NoError(t, err)
	require.True(t, matched)
	assert.Contains(t, resp, "movie night")
	assert.Equal(t, []string{"dim lights and tv on"}, runner.executed)
}

func TestSceneNotFound(t *testing.T) {
	h := NewScene(memory.NewFacts(newMemFacts()), &fakeRunner{})

	resp, matched, err := h.Handle(context.Background(), "run scene party")
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Contains(t, resp, "not found")
}

func TestFactsRememberAndRecall(t *testing.T) {
	h := NewFactsHandler(memory.NewFacts(newMemFacts()))

	_, matched, err := h.Handle(context.Background(), "remember the garage code is 4812")
	require.NoError(t, err)
	require.True(t, matched)

	resp, matched, err := h.Handle(context.Background(), "what is the garage code?")
	require.NoError(t, err)
	require.True(t, matched)
	assert.True(t, strings.Contains(resp, "4812"))
}

type fakeMusic struct {
	calls []string
	track string
}

func (f *fakeMusic) Play(context.Context) error     { f.calls = append(f.calls, "play"); return nil }
func (f *fakeMusic) Pause(context.Context) error    { f.calls = append(f.calls, "pause"); return nil }
func (f *fakeMusic) Next(context.Context) error     { f.calls = append(f.calls, "next"); return nil }
func (f *fakeMusic) Previous(context.Context) error { f.calls = append(f.calls, "previous"); return nil }
func (f *fakeMusic) CurrentTrack(context.Context) (string, error) {
	f.calls = append(f.calls, "current")
	return f.track, nil
}

func TestMusicPlaybackPhrases(t *testing.T) {
	tests := []struct {
		input string
		call  string
		want  string
	}{
		{"play some music please", "play", "Playing music."},
		{"pause the music", "pause", "Pausing the music."},
		{"next song", "next", "Skipping ahead."},
		{"skip this track", "next", "Skipping ahead."},
		{"previous song", "previous", "Going back a track."},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			fm := &fakeMusic{}
			h := NewMusic(fm)

			resp, matched, err := h.Handle(context.Background(), tt.input)
			require.NoError(t, err)
			require.True(t, matched)
			assert.Equal(t, tt.want, resp)
			assert.Equal(t, []string{tt.call}, fm.calls)
		})
	}
}

func TestMusicNowPlaying(t *testing.T) {
	fm := &fakeMusic{track: "Now playing So What by Miles Davis."}
	h := NewMusic(fm)

	resp, matched, err := h.Handle(context.Background(), "what song is this")
	require.NoError(t, err)
	require.True(t, matched)
	assert.Equal(t, "Now playing So What by Miles Davis.", resp)
}

func TestMusicIgnoresOtherPlayPhrases(t *testing.T) {
	fm := &fakeMusic{}
	h := NewMusic(fm)

	_, matched, err := h.Handle(context.Background(), "play it cool with the thermostat")
	require.NoError(t, err)
	assert.False(t, matched, "only music phrases claim the play verb")
	assert.Empty(t, fm.calls)
}

func TestUnknownFactFallsThrough(t *testing.T) {
	h := NewFactsHandler(memory.NewFacts(newMemFacts()))

	_, matched, err := h.Handle(context.Background(), "what is the meaning of life")
	require.NoError(t, err)
	assert.False(t, matched, "unknown facts go to the conversational fallback")
}
