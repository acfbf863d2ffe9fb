package conversation

import (
	"fmt"
	"strings"
	"sync"
)

type Mood int

const (
	MoodSerious Mood = iota
	MoodLighthearted
	MoodEmergency
)

func (m Mood) String() string {
	switch m {
	case MoodLighthearted:
		return "lighthearted"
	case MoodEmergency:
		return "emergency"
	default:
		return "serious"
	}
}

type CharacterMode int

const (
	ModeAdvisor CharacterMode = iota
	ModeCompanion
	ModeEmergency
	ModeSilent
)

func (m CharacterMode) String() string {
	switch m {
	case ModeCompanion:
		return "companion"
	case ModeEmergency:
		return "emergency"
	case ModeSilent:
		return "silent"
	default:
		return "advisor"
	}
}

func ParseCharacterMode(s string) (CharacterMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "advisor":
		return ModeAdvisor, true
	case "companion":
		return ModeCompanion, true
	case "emergency":
		return ModeEmergency, true
	case "silent":
		return ModeSilent, true
	default:
		return ModeAdvisor, false
	}
}

// Persona holds the assistant's current mood, character mode, and
// sarcasm flag. It feeds the system turn of the conversation and the
// spoken preamble after authentication.
type Persona struct {
	mu      sync.RWMutex
	mood    Mood
	mode    CharacterMode
	sarcasm bool
}

func NewPersona() *Persona {
	return &Persona{
		mood:    MoodLighthearted,
		mode:    ModeAdvisor,
		sarcasm: true,
	}
}

func (p *Persona) Mood() Mood {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mood
}

func (p *Persona) Mode() CharacterMode {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mode
}

func (p *Persona) SetMode(mode CharacterMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = mode
	if mode == ModeEmergency {
		p.mood = MoodEmergency
		p.sarcasm = false
	}
}

func (p *Persona) ApplyPreset(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "formal":
		p.mu.Lock()
		p.mood = MoodSerious
		p.sarcasm = false
		p.mu.Unlock()
	case "witty":
		p.mu.Lock()
		p.mood = MoodLighthearted
		p.sarcasm = true
		p.mu.Unlock()
	case "calm":
		p.mu.Lock()
		p.mood = MoodSerious
		p.sarcasm = false
		p.mu.Unlock()
	default:
		return false
	}
	return true
}

// AdjustMoodFromWeather shifts mood based on a spoken weather summary.
// Storms push the persona into emergency delivery, grey skies sober it,
// clear skies lighten it.
func (p *Persona) AdjustMoodFromWeather(summary string) {
	if strings.TrimSpace(summary) == "" {
		return
	}
	s := strings.ToLower(summary)

	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case strings.Contains(s, "storm") || strings.Contains(s, "alert") || strings.Contains(s, "tornado"):
		p.mood = MoodEmergency
	case strings.Contains(s, "rain") || strings.Contains(s, "cloud"):
		p.mood = MoodSerious
	case strings.Contains(s, "sunny") || strings.Contains(s, "clear"):
		p.mood = MoodLighthearted
	}
}

// AdjustToneFromAttitude tones sarcasm down when the user sounds
// frustrated.
func (p *Persona) AdjustToneFromAttitude(input string) {
	s := strings.ToLower(input)
	if strings.Contains(s, "stop joking") || strings.Contains(s, "be serious") || strings.Contains(s, "not funny") {
		p.mu.Lock()
		p.mood = MoodSerious
		p.sarcasm = false
		p.mu.Unlock()
	}
}

// Preamble is spoken right after successful authentication.
func (p *Persona) Preamble() string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	switch p.mode {
	case ModeCompanion:
		return "Good to hear your voice. What shall we get into?"
	case ModeEmergency:
		return "Emergency mode active. State the situation."
	case ModeSilent:
		return ""
	default:
		if p.mood == MoodLighthearted {
			return "At your service, sir. What can I do for you?"
		}
		return "Online and listening."
	}
}

// Describe renders the persona for the system turn of the conversation.
func (p *Persona) Describe() string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var b strings.Builder
	b.WriteString("You are a composed home assistant with the manner of a British butler. ")
	b.WriteString(fmt.Sprintf("Character mode: %s. ", p.mode))

	switch p.mood {
	case MoodLighthearted:
		b.WriteString("Maintain a charming, lightly humorous tone. ")
	case MoodEmergency:
		b.WriteString("Emergency: speak seriously, directly, and without humor. ")
	default:
		b.WriteString("Keep a measured, serious tone. ")
	}

	if p.sarcasm {
		b.WriteString("Use subtle, dry sarcasm where appropriate. ")
	}

	b.WriteString("Reply with only what should be spoken to the user.")
	return b.String()
}

// DescribeMode is the spoken confirmation after a mode change.
func (p *Persona) DescribeMode() string {
	switch p.Mode() {
	case ModeCompanion:
		return "I'll keep you company and chat freely."
	case ModeEmergency:
		return "All levity suspended. I will be brief and direct."
	case ModeSilent:
		return "I will only speak when spoken to."
	default:
		return "I'll advise and manage the house as usual."
	}
}
