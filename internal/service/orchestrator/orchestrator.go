package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/homevoice/internal/core"
	"github.com/sandevgo/homevoice/internal/service/conversation"
	"github.com/sandevgo/homevoice/internal/service/dispatch"
	"github.com/sandevgo/homevoice/internal/service/suggest"
	"github.com/sandevgo/homevoice/pkg/log"
)

const (
	statusIdle       = "Idle"
	statusListening  = "Listening"
	statusProcessing = "Processing"
	statusSpeaking   = "Speaking"
)

const (
	greetingMessage   = "System online. Awaiting activation."
	denialMessage     = "Access denied. Please authenticate."
	permissionMessage = "Sorry, you don't have permission to do that."
	apologyMessage    = "Apologies, something went wrong handling that. Please try again."
	sleepAckMessage   = "Going back to sleep."
)

// Config carries the tunables of the session cycle.
type Config struct {
	WakePhrase           string
	IdleTimeout          time.Duration
	MinCommandPermission core.PermissionLevel
}

// Deps are the collaborators wired in at startup. Suggestions, Status,
// and CommandLog are optional.
type Deps struct {
	Gateway      core.SpeechGateway
	Identifier   core.SpeakerIdentifier
	Permissions  core.PermissionResolver
	Voice        core.Voice
	Chain        *dispatch.Chain
	Conversation *conversation.Context
	Persona      *conversation.Persona
	Suggestions  *suggest.Engine
	Status       core.StatusBroadcaster
	CommandLog   core.CommandLog
}

// Orchestrator runs the wake / authenticate / command / sleep cycle.
// All state lives in the single run loop; input sources and slow
// workers communicate with it only through the event channel, so no
// locking is needed around the session or the state machine.
type Orchestrator struct {
	cfg  Config
	deps Deps

	events    chan event
	listeners []func(text string)

	// Loop-owned. Never touched outside run.
	state     State
	session   *Session
	idleTimer *time.Timer
	idleEpoch uint64
	seq       uint64
	nextOut   uint64
	pending   map[uint64]resultEvent
}

func New(cfg Config, deps Deps) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		deps:    deps,
		events:  make(chan event, 128),
		state:   StateSleeping,
		pending: make(map[uint64]resultEvent),
	}
}

// AddResponseListener registers a sink for every spoken response. Must
// be called before Start.
func (o *Orchestrator) AddResponseListener(fn func(text string)) {
	o.listeners = append(o.listeners, fn)
}

// SubmitText feeds input from a trusted text channel. Safe to call from
// any goroutine.
func (o *Orchestrator) SubmitText(source, text string) {
	o.events <- textEvent{source: source, text: text}
}

// State is exposed for tests only; it is racy while the loop runs.
func (o *Orchestrator) State() State {
	return o.state
}

// Start runs the event loop until ctx is cancelled.
func (o *Orchestrator) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)

	if err := o.deps.Gateway.StartWake(ctx); err != nil && !errors.Is(err, core.ErrRecognizerBusy) {
		return fmt.Errorf("start wake recognition: %w", err)
	}
	o.broadcast(statusIdle)
	o.say(ctx, greetingMessage)
	logger.Info().Str("wake_phrase", o.cfg.WakePhrase).Msg("assistant sleeping, wake recognition active")

	go o.pumpWake(ctx)
	go o.pumpUtterances(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-o.events:
			o.reduce(ctx, ev)
		}
	}
}

// Shutdown stops the recognizers; the loop itself exits with its
// context.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.stopIdle()
	if err := o.deps.Gateway.StopDictation(ctx); err != nil {
		log.FromCtx(ctx).Debug().Err(err).Msg("stop dictation on shutdown")
	}
	if err := o.deps.Gateway.StopWake(ctx); err != nil {
		log.FromCtx(ctx).Debug().Err(err).Msg("stop wake on shutdown")
	}
	return nil
}

func (o *Orchestrator) pumpWake(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-o.deps.Gateway.WakeDetections():
			if !ok {
				return
			}
			o.events <- wakeEvent{detection: d}
		}
	}
}

func (o *Orchestrator) pumpUtterances(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-o.deps.Gateway.Utterances():
			if !ok {
				return
			}
			o.events <- utteranceEvent{utterance: u}
		}
	}
}

func (o *Orchestrator) reduce(ctx context.Context, ev event) {
	switch e := ev.(type) {
	case wakeEvent:
		o.handleWake(ctx, e)
	case textEvent:
		o.handleText(ctx, e)
	case utteranceEvent:
		o.handleUtterance(ctx, e)
	case authResultEvent:
		o.handleAuthResult(ctx, e)
	case verifiedEvent:
		o.handleVerified(ctx, e)
	case resultEvent:
		o.handleResult(ctx, e)
	case idleEvent:
		o.handleIdle(ctx, e)
	}
}

func (o *Orchestrator) handleWake(ctx context.Context, ev wakeEvent) {
	logger := log.FromCtx(ctx)
	if o.state != StateSleeping {
		logger.Debug().Str("state", o.state.String()).Msg("wake detection ignored")
		return
	}

	o.transition(ctx, StateWakeDetected)
	o.broadcast(statusProcessing)
	if err := o.deps.Gateway.StopWake(ctx); err != nil {
		logger.Debug().Err(err).Msg("stop wake recognition")
	}
	o.transition(ctx, StateAuthenticating)

	go o.authenticate(ctx, ev.detection.ClipID, ev.detection.At)
}

func (o *Orchestrator) handleText(ctx context.Context, ev textEvent) {
	logger := log.FromCtx(ctx)
	text := strings.TrimSpace(ev.text)
	if text == "" {
		return
	}

	switch o.state {
	case StateSleeping:
		if !strings.EqualFold(text, o.cfg.WakePhrase) {
			logger.Debug().Str("source", ev.source).Msg("text input while sleeping is not the wake phrase")
			return
		}
		o.transition(ctx, StateWakeDetected)
		o.broadcast(statusProcessing)
		if err := o.deps.Gateway.StopWake(ctx); err != nil {
			logger.Debug().Err(err).Msg("stop wake recognition")
		}
		o.transition(ctx, StateAuthenticating)
		// A typed wake phrase still authenticates by voice: capture an
		// ambient clip around now and identify the speaker.
		go o.authenticate(ctx, "", time.Now())

	case StateActive:
		// The text channel is already authenticated out of band, so the
		// utterance skips the per-phrase speaker check.
		o.deps.Persona.AdjustToneFromAttitude(text)
		sess := *o.session
		seq := o.seq
		o.seq++
		go o.process(ctx, seq, sess, text, "", false)

	default:
		logger.Debug().Str("state", o.state.String()).Str("source", ev.source).Msg("text input ignored")
	}
}

func (o *Orchestrator) handleUtterance(ctx context.Context, ev utteranceEvent) {
	logger := log.FromCtx(ctx)
	if o.state != StateActive || o.session == nil {
		logger.Debug().Str("state", o.state.String()).Msg("utterance outside active session dropped")
		return
	}
	text := strings.TrimSpace(ev.utterance.Text)
	if text == "" {
		return
	}

	o.deps.Persona.AdjustToneFromAttitude(text)
	sess := *o.session
	seq := o.seq
	o.seq++
	go o.process(ctx, seq, sess, text, ev.utterance.ClipID, true)
}

// authenticate runs off-loop: capture a clip if the wake detection did
// not carry one, identify the speaker, resolve permissions, and
// re-enter the loop with the outcome.
func (o *Orchestrator) authenticate(ctx context.Context, clipID string, at time.Time) {
	if clipID == "" {
		var err error
		clipID, err = o.deps.Gateway.Capture(ctx, at)
		if err != nil {
			o.events <- authResultEvent{err: fmt.Errorf("capture clip: %w", err)}
			return
		}
	}

	identity, err := o.deps.Identifier.Identify(ctx, clipID)
	if err != nil {
		o.events <- authResultEvent{err: fmt.Errorf("identify speaker: %w", err)}
		return
	}
	if !identity.Known() {
		o.events <- authResultEvent{identity: identity}
		return
	}

	level, err := o.deps.Permissions.Resolve(ctx, identity.UserID)
	if err != nil {
		o.events <- authResultEvent{identity: identity, err: fmt.Errorf("resolve permissions: %w", err)}
		return
	}
	o.events <- authResultEvent{identity: identity, level: level}
}

func (o *Orchestrator) handleAuthResult(ctx context.Context, ev authResultEvent) {
	logger := log.FromCtx(ctx)
	if o.state != StateAuthenticating {
		logger.Debug().Str("state", o.state.String()).Msg("stale auth result ignored")
		return
	}

	if ev.err != nil || !ev.identity.Known() || ev.level == core.PermissionGuest {
		logger.Warn().
			Err(ev.err).
			Str("user", ev.identity.UserID).
			Str("level", ev.level.String()).
			Msg("authentication failed")
		o.say(ctx, denialMessage)
		o.teardown(ctx)
		return
	}

	o.session = newSession(ev.identity.UserID, ev.level)
	o.transition(ctx, StateActive)
	logger.Info().
		Str("session", o.session.ID).
		Str("user", o.session.UserID).
		Str("level", o.session.Permission.String()).
		Msg("session started")

	if err := o.deps.Gateway.StartDictation(ctx); err != nil && !errors.Is(err, core.ErrRecognizerBusy) {
		logger.Error().Err(err).Msg("failed to start dictation")
		o.say(ctx, apologyMessage)
		o.teardown(ctx)
		return
	}
	o.armIdle()
	o.say(ctx, o.deps.Persona.Preamble())
	o.broadcast(statusListening)
}

// process runs off-loop: re-verify the speaker for voice input, then
// dispatch. The seq number keeps responses in utterance order even when
// handlers finish out of order.
func (o *Orchestrator) process(ctx context.Context, seq uint64, sess Session, text, clipID string, verify bool) {
	logger := log.FromCtx(ctx)

	if verify {
		identity, err := o.deps.Identifier.Identify(ctx, clipID)
		if err != nil {
			o.events <- resultEvent{seq: seq, sessionID: sess.ID, err: fmt.Errorf("speaker check: %w", err)}
			return
		}
		if !strings.EqualFold(identity.UserID, sess.UserID) {
			logger.Warn().
				Str("speaker", identity.UserID).
				Str("authorized", sess.UserID).
				Msg("speaker mismatch, utterance dropped")
			o.events <- resultEvent{seq: seq, sessionID: sess.ID, dropped: true}
			return
		}
	}
	o.events <- verifiedEvent{seq: seq, sessionID: sess.ID}

	if isSleepCommand(text) {
		o.events <- resultEvent{seq: seq, sessionID: sess.ID, sleep: true}
		return
	}

	if !sess.Permission.AtLeast(o.cfg.MinCommandPermission) {
		o.events <- resultEvent{seq: seq, sessionID: sess.ID, response: permissionMessage}
		return
	}

	// Only commands that reach the chain count toward habit history.
	if o.deps.CommandLog != nil {
		if err := o.deps.CommandLog.Append(ctx, sess.UserID, text); err != nil {
			logger.Debug().Err(err).Msg("failed to record command")
		}
	}

	resp, err := o.deps.Chain.Dispatch(ctx, text)
	if err != nil {
		o.events <- resultEvent{seq: seq, sessionID: sess.ID, err: err}
		return
	}
	o.events <- resultEvent{seq: seq, sessionID: sess.ID, response: resp}
}

func (o *Orchestrator) handleVerified(ctx context.Context, ev verifiedEvent) {
	if o.state != StateActive || o.session == nil || o.session.ID != ev.sessionID {
		return
	}
	o.session.Touch()
	o.armIdle()
	o.broadcast(statusProcessing)
}

func (o *Orchestrator) handleResult(ctx context.Context, ev resultEvent) {
	o.pending[ev.seq] = ev
	for {
		r, ok := o.pending[o.nextOut]
		if !ok {
			return
		}
		delete(o.pending, o.nextOut)
		o.nextOut++
		o.deliver(ctx, r)
	}
}

func (o *Orchestrator) deliver(ctx context.Context, r resultEvent) {
	logger := log.FromCtx(ctx)

	if r.dropped {
		return
	}
	if o.state != StateActive || o.session == nil || o.session.ID != r.sessionID {
		logger.Debug().Uint64("seq", r.seq).Msg("response for ended session discarded")
		return
	}
	if r.sleep {
		o.say(ctx, sleepAckMessage)
		o.teardown(ctx)
		return
	}
	if r.err != nil {
		logger.Error().Err(r.err).Msg("command handling failed")
		o.say(ctx, apologyMessage)
		o.broadcast(statusListening)
		return
	}
	if r.response == "" {
		o.broadcast(statusListening)
		return
	}

	o.broadcast(statusSpeaking)
	o.say(ctx, r.response)
	if o.deps.Suggestions != nil {
		if hint, ok := o.deps.Suggestions.Check(ctx, o.session.UserID, time.Now()); ok {
			o.say(ctx, hint)
		}
	}
	o.broadcast(statusListening)
}

func (o *Orchestrator) handleIdle(ctx context.Context, ev idleEvent) {
	if ev.epoch != o.idleEpoch || o.state != StateActive {
		log.FromCtx(ctx).Debug().Uint64("epoch", ev.epoch).Msg("stale idle timer ignored")
		return
	}
	log.FromCtx(ctx).Info().Str("session", o.session.ID).Msg("session idle timeout")
	o.say(ctx, fmt.Sprintf("No input received for %s. Returning to sleep mode.", o.cfg.IdleTimeout))
	o.teardown(ctx)
}

// teardown ends any in-progress session and returns to wake listening.
// Reentrant: a second call while already sleeping is a no-op.
func (o *Orchestrator) teardown(ctx context.Context) {
	logger := log.FromCtx(ctx)
	if o.state == StateSleeping && o.session == nil {
		return
	}

	o.stopIdle()
	if err := o.deps.Gateway.StopDictation(ctx); err != nil {
		logger.Debug().Err(err).Msg("stop dictation")
	}
	o.deps.Conversation.Reset()
	if o.deps.Suggestions != nil {
		o.deps.Suggestions.Reset()
	}
	if o.session != nil {
		logger.Info().Str("session", o.session.ID).Msg("session ended")
	}
	o.session = nil
	o.transition(ctx, StateSleeping)
	o.broadcast(statusIdle)

	if err := o.deps.Gateway.StartWake(ctx); err != nil && !errors.Is(err, core.ErrRecognizerBusy) {
		logger.Error().Err(err).Msg("failed to restart wake recognition")
	}
}

func (o *Orchestrator) transition(ctx context.Context, to State) {
	if !canTransition(o.state, to) {
		log.FromCtx(ctx).Error().
			Str("from", o.state.String()).
			Str("to", to.String()).
			Msg("invalid state transition")
		return
	}
	log.FromCtx(ctx).Debug().Str("from", o.state.String()).Str("to", to.String()).Msg("state transition")
	o.state = to
}

func (o *Orchestrator) armIdle() {
	o.idleEpoch++
	epoch := o.idleEpoch
	if o.idleTimer != nil {
		o.idleTimer.Stop()
	}
	o.idleTimer = time.AfterFunc(o.cfg.IdleTimeout, func() {
		o.events <- idleEvent{epoch: epoch}
	})
}

func (o *Orchestrator) stopIdle() {
	o.idleEpoch++
	if o.idleTimer != nil {
		o.idleTimer.Stop()
		o.idleTimer = nil
	}
}

func (o *Orchestrator) say(ctx context.Context, text string) {
	if text == "" {
		return
	}
	o.deps.Voice.Speak(ctx, text)
	for _, fn := range o.listeners {
		fn(text)
	}
}

func (o *Orchestrator) broadcast(state string) {
	if o.deps.Status != nil {
		o.deps.Status.Broadcast(state)
	}
}

var sleepPhrases = []string{
	"go to sleep",
	"go back to sleep",
	"goodnight",
	"good night",
	"log off",
	"that's all",
	"that is all",
}

func isSleepCommand(text string) bool {
	t := strings.ToLower(strings.TrimSpace(strings.TrimRight(text, ".!,")))
	for _, p := range sleepPhrases {
		if t == p {
			return true
		}
	}
	return false
}
