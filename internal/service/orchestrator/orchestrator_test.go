package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/homevoice/internal/core"
	"github.com/sandevgo/homevoice/internal/service/conversation"
	"github.com/sandevgo/homevoice/internal/service/dispatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu          sync.Mutex
	wakeCh      chan core.WakeDetection
	uttCh       chan core.Utterance
	wakeOn      bool
	dictOn      bool
	wakeStarts  int
	dictStops   int
	captureClip string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		wakeCh:      make(chan core.WakeDetection, 8),
		uttCh:       make(chan core.Utterance, 8),
		captureClip: "clip-alice",
	}
}

func (g *fakeGateway) WakeDetections() <-chan core.WakeDetection { return g.wakeCh }
func (g *fakeGateway) Utterances() <-chan core.Utterance         { return g.uttCh }

func (g *fakeGateway) StartWake(context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.wakeOn {
		return core.ErrRecognizerBusy
	}
	g.wakeOn = true
	g.wakeStarts++
	return nil
}

func (g *fakeGateway) StopWake(context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.wakeOn = false
	return nil
}

func (g *fakeGateway) StartDictation(context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.dictOn {
		return core.ErrRecognizerBusy
	}
	g.dictOn = true
	return nil
}

func (g *fakeGateway) StopDictation(context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dictOn = false
	g.dictStops++
	return nil
}

func (g *fakeGateway) Capture(context.Context, time.Time) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.captureClip, nil
}

func (g *fakeGateway) snapshot() (wakeOn, dictOn bool, wakeStarts, dictStops int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.wakeOn, g.dictOn, g.wakeStarts, g.dictStops
}

type fakeIdentifier struct {
	mu     sync.Mutex
	byClip map[string]core.Identity
	calls  int
}

func (f *fakeIdentifier) Identify(_ context.Context, clipID string) (core.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	id, ok := f.byClip[clipID]
	if !ok {
		return core.Identity{UserID: core.UnknownUser}, nil
	}
	return id, nil
}

type fakeResolver struct {
	levels map[string]core.PermissionLevel
}

func (f *fakeResolver) Resolve(_ context.Context, userID string) (core.PermissionLevel, error) {
	return f.levels[userID], nil
}

type fakeVoice struct {
	mu     sync.Mutex
	spoken []string
	ch     chan string
}

func newFakeVoice() *fakeVoice {
	return &fakeVoice{ch: make(chan string, 64)}
}

func (v *fakeVoice) Speak(_ context.Context, text string) {
	v.mu.Lock()
	v.spoken = append(v.spoken, text)
	v.mu.Unlock()
	v.ch <- text
}

func (v *fakeVoice) next(t *testing.T) string {
	t.Helper()
	select {
	case s := <-v.ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for speech")
		return ""
	}
}

func (v *fakeVoice) expectSilence(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case s := <-v.ch:
		t.Fatalf("unexpected speech: %q", s)
	case <-time.After(d):
	}
}

type stubCompleter struct{}

func (stubCompleter) Complete(context.Context, []core.Turn) (string, error) {
	return "completion reply", nil
}

type stubHandler struct {
	name  string
	match func(string) bool
	resp  string
	delay time.Duration
}

func (s *stubHandler) Name() string { return s.name }

func (s *stubHandler) Handle(_ context.Context, input string) (string, bool, error) {
	if s.match != nil && !s.match(input) {
		return "", false, nil
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.resp, true, nil
}

type fakeCmdLog struct {
	mu       sync.Mutex
	commands []string
}

func (f *fakeCmdLog) Append(_ context.Context, _, command string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, command)
	return nil
}

func (f *fakeCmdLog) Recent(context.Context, string, int) ([]core.CommandRecord, error) {
	return nil, nil
}

func (f *fakeCmdLog) logged() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands...)
}

type harness struct {
	o      *Orchestrator
	gw     *fakeGateway
	ident  *fakeIdentifier
	voice  *fakeVoice
	cmdlog *fakeCmdLog
	cancel context.CancelFunc
}

func newHarness(t *testing.T, cfg Config, handlers ...core.CommandHandler) *harness {
	t.Helper()

	if cfg.WakePhrase == "" {
		cfg.WakePhrase = "hey jarvis you there"
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = time.Minute
	}

	gw := newFakeGateway()
	ident := &fakeIdentifier{byClip: map[string]core.Identity{
		"clip-alice": {UserID: "alice", Confidence: 0.98},
		"clip-bob":   {UserID: "bob", Confidence: 0.97},
	}}
	resolver := &fakeResolver{levels: map[string]core.PermissionLevel{
		"alice": core.PermissionAdmin,
		"bob":   core.PermissionStandard,
	}}
	voice := newFakeVoice()
	persona := conversation.NewPersona()
	convo := conversation.NewContext(stubCompleter{}, persona, 20, 2048)
	fallback := &stubHandler{name: "chat", resp: "fallback reply"}
	cmdlog := &fakeCmdLog{}

	o := New(cfg, Deps{
		Gateway:      gw,
		Identifier:   ident,
		Permissions:  resolver,
		Voice:        voice,
		Chain:        dispatch.NewChain(fallback, handlers...),
		Conversation: convo,
		Persona:      persona,
		CommandLog:   cmdlog,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = o.Start(ctx) }()
	t.Cleanup(cancel)

	h := &harness{o: o, gw: gw, ident: ident, voice: voice, cmdlog: cmdlog, cancel: cancel}
	require.Equal(t, greetingMessage, voice.next(t))
	return h
}

// activate drives the wake and auth steps and consumes the preamble.
func (h *harness) activate(t *testing.T, clipID string) {
	t.Helper()
	h.gw.wakeCh <- core.WakeDetection{ClipID: clipID, At: time.Now()}
	preamble := h.voice.next(t)
	require.Contains(t, preamble, "At your service")
}

func TestWakeAuthCommandCycle(t *testing.T) {
	weather := &stubHandler{
		name:  "weather",
		match: func(s string) bool { return s == "what's the weather" },
		resp:  "Clear skies, 21 degrees.",
	}
	h := newHarness(t, Config{}, weather)

	h.activate(t, "clip-alice")

	_, dictOn, _, _ := h.gw.snapshot()
	assert.True(t, dictOn, "dictation should run during the session")

	h.gw.uttCh <- core.Utterance{Text: "what's the weather", ClipID: "clip-alice"}
	assert.Equal(t, "Clear skies, 21 degrees.", h.voice.next(t))
}

func TestUnknownSpeakerDenied(t *testing.T) {
	h := newHarness(t, Config{})

	h.gw.wakeCh <- core.WakeDetection{ClipID: "clip-stranger", At: time.Now()}
	assert.Equal(t, denialMessage, h.voice.next(t))

	// Back to wake listening with no session.
	require.Eventually(t, func() bool {
		wakeOn, dictOn, _, _ := h.gw.snapshot()
		return wakeOn && !dictOn
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGuestLevelDeniedAtAuthentication(t *testing.T) {
	h := newHarness(t, Config{})
	h.ident.mu.Lock()
	h.ident.byClip["clip-guest"] = core.Identity{UserID: "visitor", Confidence: 0.9}
	h.ident.mu.Unlock()

	h.gw.wakeCh <- core.WakeDetection{ClipID: "clip-guest", At: time.Now()}
	assert.Equal(t, denialMessage, h.voice.next(t))
}

func TestSpeakerMismatchDroppedSilently(t *testing.T) {
	h := newHarness(t, Config{})
	h.activate(t, "clip-alice")

	// bob speaks into alice's session: no response, no denial, no error.
	h.gw.uttCh <- core.Utterance{Text: "unlock the front door", ClipID: "clip-bob"}
	h.voice.expectSilence(t, 300*time.Millisecond)

	// The session itself survives; alice is still heard.
	h.gw.uttCh <- core.Utterance{Text: "anything", ClipID: "clip-alice"}
	assert.Equal(t, "fallback reply", h.voice.next(t))
}

func TestIdleTimeoutEndsSession(t *testing.T) {
	h := newHarness(t, Config{IdleTimeout: 150 * time.Millisecond})
	h.activate(t, "clip-alice")

	msg := h.voice.next(t)
	assert.Contains(t, msg, "Returning to sleep mode")

	require.Eventually(t, func() bool {
		wakeOn, dictOn, _, stops := h.gw.snapshot()
		return wakeOn && !dictOn && stops >= 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestVerifiedUtteranceResetsIdleTimer(t *testing.T) {
	h := newHarness(t, Config{IdleTimeout: 500 * time.Millisecond})
	h.activate(t, "clip-alice")

	time.Sleep(300 * time.Millisecond)
	h.gw.uttCh <- core.Utterance{Text: "anything", ClipID: "clip-alice"}
	require.Equal(t, "fallback reply", h.voice.next(t))

	// Original deadline has passed but the timer was rearmed.
	h.voice.expectSilence(t, 300*time.Millisecond)

	msg := h.voice.next(t)
	assert.Contains(t, msg, "Returning to sleep mode")
}

func TestSleepCommandEndsSession(t *testing.T) {
	h := newHarness(t, Config{})
	h.activate(t, "clip-alice")

	h.gw.uttCh <- core.Utterance{Text: "go to sleep", ClipID: "clip-alice"}
	assert.Equal(t, sleepAckMessage, h.voice.next(t))

	require.Eventually(t, func() bool {
		wakeOn, dictOn, _, _ := h.gw.snapshot()
		return wakeOn && !dictOn
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTextWakeAndCommand(t *testing.T) {
	echo := &stubHandler{
		name:  "echo",
		match: func(s string) bool { return s == "status report" },
		resp:  "All systems nominal.",
	}
	h := newHarness(t, Config{}, echo)

	// Typed wake phrase authenticates via an ambient clip capture,
	// which the fake gateway attributes to alice.
	h.o.SubmitText("console", "hey jarvis you there")
	preamble := h.voice.next(t)
	require.Contains(t, preamble, "At your service")

	h.o.SubmitText("console", "status report")
	assert.Equal(t, "All systems nominal.", h.voice.next(t))
}

func TestTextIgnoredUnlessWakePhrase(t *testing.T) {
	h := newHarness(t, Config{})

	h.o.SubmitText("console", "turn on the lights")
	h.voice.expectSilence(t, 300*time.Millisecond)
}

func TestResponsesDeliveredInUtteranceOrder(t *testing.T) {
	slow := &stubHandler{
		name:  "slow",
		match: func(s string) bool { return s == "slow one" },
		resp:  "slow done",
		delay: 200 * time.Millisecond,
	}
	fast := &stubHandler{
		name:  "fast",
		match: func(s string) bool { return s == "fast one" },
		resp:  "fast done",
	}
	h := newHarness(t, Config{}, slow, fast)
	h.activate(t, "clip-alice")

	h.gw.uttCh <- core.Utterance{Text: "slow one", ClipID: "clip-alice"}
	h.gw.uttCh <- core.Utterance{Text: "fast one", ClipID: "clip-alice"}

	assert.Equal(t, "slow done", h.voice.next(t))
	assert.Equal(t, "fast done", h.voice.next(t))
}

func TestInsufficientPermissionGetsFixedDenial(t *testing.T) {
	h := newHarness(t, Config{MinCommandPermission: core.PermissionAdmin})
	h.activate(t, "clip-bob") // bob resolves to Standard

	h.gw.uttCh <- core.Utterance{Text: "open the garage", ClipID: "clip-bob"}
	assert.Equal(t, permissionMessage, h.voice.next(t))
}

func TestWakeIgnoredWhileActive(t *testing.T) {
	h := newHarness(t, Config{})
	h.activate(t, "clip-alice")

	h.gw.wakeCh <- core.WakeDetection{ClipID: "clip-bob", At: time.Now()}
	h.voice.expectSilence(t, 300*time.Millisecond)

	h.gw.uttCh <- core.Utterance{Text: "anything", ClipID: "clip-alice"}
	assert.Equal(t, "fallback reply", h.voice.next(t))
}

func TestOnlyDispatchedCommandsAreLogged(t *testing.T) {
	h := newHarness(t, Config{MinCommandPermission: core.PermissionAdmin})
	h.activate(t, "clip-bob") // Standard, below the command floor

	h.gw.uttCh <- core.Utterance{Text: "open the garage", ClipID: "clip-bob"}
	require.Equal(t, permissionMessage, h.voice.next(t))

	h.gw.uttCh <- core.Utterance{Text: "go to sleep", ClipID: "clip-bob"}
	require.Equal(t, sleepAckMessage, h.voice.next(t))

	h.activate(t, "clip-alice")
	h.gw.uttCh <- core.Utterance{Text: "anything", ClipID: "clip-alice"}
	require.Equal(t, "fallback reply", h.voice.next(t))

	// Denied and sleep commands never reach the chain and stay out of
	// the habit history.
	assert.Equal(t, []string{"anything"}, h.cmdlog.logged())
}

type errorHandler struct{}

func (errorHandler) Name() string { return "broken" }

func (errorHandler) Handle(_ context.Context, input string) (string, bool, error) {
	if input == "break please" {
		return "", true, errors.New("device unreachable")
	}
	return "", false, nil
}

func TestHandlerErrorSpeaksApologyAndSessionSurvives(t *testing.T) {
	h := newHarness(t, Config{}, errorHandler{})
	h.activate(t, "clip-alice")

	h.gw.uttCh <- core.Utterance{Text: "break please", ClipID: "clip-alice"}
	assert.Equal(t, apologyMessage, h.voice.next(t))

	h.gw.uttCh <- core.Utterance{Text: "anything", ClipID: "clip-alice"}
	assert.Equal(t, "fallback reply", h.voice.next(t))
}
