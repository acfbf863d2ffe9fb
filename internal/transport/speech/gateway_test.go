package speech

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sandevgo/homevoice/internal/config"
	"github.com/sandevgo/homevoice/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine answers mode commands silently and clip requests with a
// canned clip ID; it also lets tests inject wake and utterance frames.
type fakeEngine struct {
	t      *testing.T
	ts     *httptest.Server
	frames chan frame // commands received from the gateway
	inject chan frame // frames pushed to the gateway
}

func newFakeEngine(t *testing.T) *fakeEngine {
	e := &fakeEngine{
		t:      t,
		frames: make(chan frame, 16),
		inject: make(chan frame, 16),
	}
	upgrader := websocket.Upgrader{}

	e.ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		go func() {
			for f := range e.inject {
				if err := conn.WriteJSON(f); err != nil {
					return
				}
			}
		}()

		for {
			var f frame
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			if f.Type == frameCapture {
				_ = conn.WriteJSON(frame{Type: frameClip, RequestID: f.RequestID, ClipID: "clip-77"})
			}
			e.frames <- f
		}
	}))
	t.Cleanup(e.ts.Close)
	return e
}

func (e *fakeEngine) url() string {
	return "ws" + strings.TrimPrefix(e.ts.URL, "http")
}

func (e *fakeEngine) nextFrame(t *testing.T) frame {
	t.Helper()
	select {
	case f := <-e.frames:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return frame{}
	}
}

func startGateway(t *testing.T, e *fakeEngine) *Gateway {
	t.Helper()
	g := NewGateway(&config.VoiceConfig{SpeechGatewayURL: e.url()})

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = g.Start(ctx) }()
	t.Cleanup(cancel)

	// Wait for the connection before issuing commands.
	require.Eventually(t, func() bool {
		g.mu.Lock()
		defer g.mu.Unlock()
		return g.conn != nil
	}, 2*time.Second, 10*time.Millisecond)
	return g
}

func TestStartWakeSendsCommandAndRejectsDoubleStart(t *testing.T) {
	e := newFakeEngine(t)
	g := startGateway(t, e)

	require.NoError(t, g.StartWake(context.Background()))
	assert.Equal(t, frameStartWake, e.nextFrame(t).Type)

	err := g.StartWake(context.Background())
	assert.ErrorIs(t, err, core.ErrRecognizerBusy)

	require.NoError(t, g.StopWake(context.Background()))
	assert.Equal(t, frameStopWake, e.nextFrame(t).Type)
	require.NoError(t, g.StartWake(context.Background()))
}

func TestDictationBusySemantics(t *testing.T) {
	e := newFakeEngine(t)
	g := startGateway(t, e)

	require.NoError(t, g.StartDictation(context.Background()))
	assert.ErrorIs(t, g.StartDictation(context.Background()), core.ErrRecognizerBusy)
}

func TestWakeAndUtteranceFramesReachChannels(t *testing.T) {
	e := newFakeEngine(t)
	g := startGateway(t, e)

	at := time.Now().UTC().Truncate(time.Second)
	e.inject <- frame{Type: frameWake, Text: "hey jarvis you there", ClipID: "clip-1", At: at}
	e.inject <- frame{Type: frameUtterance, Text: "turn on the lights", ClipID: "clip-2", At: at}

	select {
	case d := <-g.WakeDetections():
		assert.Equal(t, "clip-1", d.ClipID)
		assert.Equal(t, "hey jarvis you there", d.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("no wake detection")
	}

	select {
	case u := <-g.Utterances():
		assert.Equal(t, "turn on the lights", u.Text)
		assert.Equal(t, "clip-2", u.ClipID)
	case <-time.After(2 * time.Second):
		t.Fatal("no utterance")
	}
}

func TestCaptureRoundTrip(t *testing.T) {
	e := newFakeEngine(t)
	g := startGateway(t, e)

	clipID, err := g.Capture(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "clip-77", clipID)
}

func TestCaptureWhenDisconnected(t *testing.T) {
	g := NewGateway(&config.VoiceConfig{SpeechGatewayURL: "ws://127.0.0.1:1/events"})
	_, err := g.Capture(context.Background(), time.Now())
	assert.Error(t, err)
}
