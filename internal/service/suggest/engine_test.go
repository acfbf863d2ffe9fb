package suggest

import (
	"context"
	"testing"
	"time"

	"github.com/sandevgo/homevoice/internal/core"
)

type fakeLog struct {
	records []core.CommandRecord
}

func (f *fakeLog) Append(_ context.Context, userID, command string) error {
	f.records = append(f.records, core.CommandRecord{UserID: userID, Command: command})
	return nil
}

func (f *fakeLog) Recent(_ context.Context, _ string, limit int) ([]core.CommandRecord, error) {
	if len(f.records) > limit {
		return f.records[len(f.records)-limit:], nil
	}
	return f.records, nil
}

func at(hour int) time.Time {
	return time.Date(2026, 3, 10, hour, 0, 0, 0, time.UTC)
}

func TestEveningPromptFiresOncePerSession(t *testing.T) {
	e := NewEngine(&fakeLog{records: []core.CommandRecord{{Command: "anything"}}})

	msg, ok := e.Check(context.Background(), "alice", at(23))
	if !ok || msg == "" {
		t.Fatal("expected evening suggestion")
	}

	if _, ok := e.Check(context.Background(), "alice", at(23)); ok {
		t.Error("evening suggestion should fire once per session")
	}

	e.Reset()
	if _, ok := e.Check(context.Background(), "alice", at(23)); !ok {
		t.Error("reset should re-arm the evening suggestion")
	}
}

func TestNoHistoryNoSuggestions(t *testing.T) {
	e := NewEngine(&fakeLog{})
	if _, ok := e.Check(context.Background(), "alice", at(23)); ok {
		t.Error("no history should produce no suggestions")
	}
}

func TestBedtimeHabitSuggestion(t *testing.T) {
	fl := &fakeLog{}
	for i := 0; i < 3; i++ {
		_ = fl.Append(context.Background(), "alice", "start bedtime mode")
	}
	e := NewEngine(fl)

	msg, ok := e.Check(context.Background(), "alice", at(12))
	if !ok {
		t.Fatal("expected bedtime suggestion")
	}
	if msg == "" {
		t.Error("suggestion text should not be empty")
	}

	if _, ok := e.Check(context.Background(), "alice", at(12)); ok {
		t.Error("bedtime suggestion should fire once per session")
	}

	e.Reset()
	if _, ok := e.Check(context.Background(), "alice", at(12)); !ok {
		t.Error("reset should re-arm the bedtime suggestion")
	}
}

func TestEveningSceneFiresOncePerSession(t *testing.T) {
	fl := &fakeLog{records: []core.CommandRecord{{Command: "run scene movie night"}}}
	e := NewEngine(fl)
	e.eveningPrompted = true // leave only the scene branch in play

	if _, ok := e.Check(context.Background(), "alice", at(22)); !ok {
		t.Fatal("expected evening scene suggestion")
	}

	if _, ok := e.Check(context.Background(), "alice", at(22)); ok {
		t.Error("evening scene suggestion should fire once per session")
	}
}

func TestMorningWeatherWindow(t *testing.T) {
	fl := &fakeLog{records: []core.CommandRecord{{Command: "what's the weather"}}}
	e := NewEngine(fl)

	if _, ok := e.Check(context.Background(), "alice", at(8)); !ok {
		t.Error("expected morning weather suggestion at 8am")
	}

	e.Reset()
	if _, ok := e.Check(context.Background(), "alice", at(14)); ok {
		t.Error("no weather suggestion outside the morning window")
	}
}
