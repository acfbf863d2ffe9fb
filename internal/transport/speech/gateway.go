package speech

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sandevgo/homevoice/internal/config"
	"github.com/sandevgo/homevoice/internal/core"
	"github.com/sandevgo/homevoice/pkg/log"
)

const (
	dialTimeout    = 5 * time.Second
	captureTimeout = 5 * time.Second
	redialDelay    = 2 * time.Second
)

// frame is the wire format shared with the recognition engine. One
// frame type per message; unused fields stay empty.
type frame struct {
	Type      string    `json:"type"`
	Text      string    `json:"text,omitempty"`
	ClipID    string    `json:"clip_id,omitempty"`
	At        time.Time `json:"at,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Around    time.Time `json:"around,omitempty"`
}

const (
	frameWake           = "wake"
	frameUtterance      = "utterance"
	frameClip           = "clip"
	frameStartWake      = "start_wake"
	frameStopWake       = "stop_wake"
	frameStartDictation = "start_dictation"
	frameStopDictation  = "stop_dictation"
	frameCapture        = "capture"
)

// Gateway is the websocket client for the external speech recognition
// engine. It implements core.SpeechGateway and reconnects on drops,
// restoring whichever recognition modes were active.
type Gateway struct {
	url    string
	wakeCh chan core.WakeDetection
	uttCh  chan core.Utterance

	mu      sync.Mutex
	conn    *websocket.Conn
	wakeOn  bool
	dictOn  bool
	pending map[string]chan string
}

func NewGateway(cfg *config.VoiceConfig) *Gateway {
	return &Gateway{
		url:     cfg.SpeechGatewayURL,
		wakeCh:  make(chan core.WakeDetection, 8),
		uttCh:   make(chan core.Utterance, 8),
		pending: make(map[string]chan string),
	}
}

func (g *Gateway) WakeDetections() <-chan core.WakeDetection { return g.wakeCh }
func (g *Gateway) Utterances() <-chan core.Utterance         { return g.uttCh }

// Start dials the engine and pumps frames until ctx is cancelled,
// redialing on connection loss.
func (g *Gateway) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)

	for {
		if err := g.dial(ctx); err != nil {
			logger.Warn().Err(err).Msg("speech gateway dial failed")
		} else {
			logger.Info().Str("url", g.url).Msg("speech gateway connected")
			g.restoreModes(ctx)
			g.readLoop(ctx)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(redialDelay):
		}
	}
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.conn != nil {
		_ = g.conn.Close()
		g.conn = nil
	}
	return nil
}

func (g *Gateway) dial(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, g.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", g.url, err)
	}

	g.mu.Lock()
	g.conn = conn
	g.mu.Unlock()
	return nil
}

// restoreModes re-sends mode commands after a reconnect so the engine
// matches the orchestrator's view.
func (g *Gateway) restoreModes(ctx context.Context) {
	g.mu.Lock()
	wakeOn, dictOn := g.wakeOn, g.dictOn
	g.mu.Unlock()

	if wakeOn {
		if err := g.send(frame{Type: frameStartWake}); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("failed to restore wake mode")
		}
	}
	if dictOn {
		if err := g.send(frame{Type: frameStartDictation}); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("failed to restore dictation mode")
		}
	}
}

func (g *Gateway) readLoop(ctx context.Context) {
	logger := log.FromCtx(ctx)

	g.mu.Lock()
	conn := g.conn
	g.mu.Unlock()
	if conn == nil {
		return
	}

	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			if ctx.Err() == nil {
				logger.Warn().Err(err).Msg("speech gateway connection lost")
			}
			g.mu.Lock()
			if g.conn == conn {
				g.conn = nil
			}
			g.mu.Unlock()
			_ = conn.Close()
			return
		}

		switch f.Type {
		case frameWake:
			g.wakeCh <- core.WakeDetection{Text: f.Text, ClipID: f.ClipID, At: f.At}
		case frameUtterance:
			g.uttCh <- core.Utterance{Text: f.Text, ClipID: f.ClipID, At: f.At}
		case frameClip:
			g.mu.Lock()
			ch, ok := g.pending[f.RequestID]
			delete(g.pending, f.RequestID)
			g.mu.Unlock()
			if ok {
				ch <- f.ClipID
			}
		default:
			logger.Debug().Str("type", f.Type).Msg("unknown frame from speech gateway")
		}
	}
}

func (g *Gateway) send(f frame) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.conn == nil {
		return errors.New("speech gateway not connected")
	}
	return g.conn.WriteJSON(f)
}

func (g *Gateway) StartWake(ctx context.Context) error {
	g.mu.Lock()
	if g.wakeOn {
		g.mu.Unlock()
		return core.ErrRecognizerBusy
	}
	g.wakeOn = true
	g.mu.Unlock()

	return g.send(frame{Type: frameStartWake})
}

func (g *Gateway) StopWake(ctx context.Context) error {
	g.mu.Lock()
	g.wakeOn = false
	g.mu.Unlock()
	return g.send(frame{Type: frameStopWake})
}

func (g *Gateway) StartDictation(ctx context.Context) error {
	g.mu.Lock()
	if g.dictOn {
		g.mu.Unlock()
		return core.ErrRecognizerBusy
	}
	g.dictOn = true
	g.mu.Unlock()

	return g.send(frame{Type: frameStartDictation})
}

func (g *Gateway) StopDictation(ctx context.Context) error {
	g.mu.Lock()
	g.dictOn = false
	g.mu.Unlock()
	return g.send(frame{Type: frameStopDictation})
}

// Capture asks the engine for a clip reference around the given moment
// and waits for the correlated reply.
func (g *Gateway) Capture(ctx context.Context, around time.Time) (string, error) {
	requestID := uuid.NewString()
	ch := make(chan string, 1)

	g.mu.Lock()
	g.pending[requestID] = ch
	g.mu.Unlock()

	if err := g.send(frame{Type: frameCapture, RequestID: requestID, Around: around}); err != nil {
		g.mu.Lock()
		delete(g.pending, requestID)
		g.mu.Unlock()
		return "", err
	}

	select {
	case clipID := <-ch:
		if clipID == "" {
			return "", errors.New("engine returned no clip")
		}
		return clipID, nil
	case <-time.After(captureTimeout):
		g.mu.Lock()
		delete(g.pending, requestID)
		g.mu.Unlock()
		return "", errors.New("clip capture timed out")
	case <-ctx.Done():
		g.mu.Lock()
		delete(g.pending, requestID)
		g.mu.Unlock()
		return "", ctx.Err()
	}
}
