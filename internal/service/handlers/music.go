package handlers

import (
	"context"
	"strings"
)

type musicAction int

const (
	musicPlay musicAction = iota
	musicPause
	musicNext
	musicPrevious
	musicNowPlaying
)

var musicPhrases = []struct {
	phrase string
	action musicAction
	reply  string
}{
	{"play some music", musicPlay, "Playing music."},
	{"play music", musicPlay, "Playing music."},
	{"resume the music", musicPlay, "Resuming the music."},
	{"resume music", musicPlay, "Resuming the music."},
	{"pause the music", musicPause, "Pausing the music."},
	{"pause music", musicPause, "Pausing the music."},
	{"stop the music", musicPause, "Pausing the music."},
	{"next song", musicNext, "Skipping ahead."},
	{"next track", musicNext, "Skipping ahead."},
	{"skip this song", musicNext, "Skipping ahead."},
	{"skip this track", musicNext, "Skipping ahead."},
	{"previous song", musicPrevious, "Going back a track."},
	{"previous track", musicPrevious, "Going back a track."},
	{"what's playing", musicNowPlaying, ""},
	{"what is playing", musicNowPlaying, ""},
	{"what song is this", musicNowPlaying, ""},
}

type Music struct {
	svc MusicService
}

func NewMusic(svc MusicService) *Music {
	return &Music{svc: svc}
}

func (h *Music) Name() string { return "music" }

func (h *Music) Handle(ctx context.Context, input string) (string, bool, error) {
	lower := strings.ToLower(input)

	for _, p := range musicPhrases {
		if !strings.Contains(lower, p.phrase) {
			continue
		}
		switch p.action {
		case musicNowPlaying:
			track, err := h.svc.CurrentTrack(ctx)
			if err != nil {
				return "", false, err
			}
			return track, true, nil
		case musicPlay:
			if err := h.svc.Play(ctx); err != nil {
				return "", false, err
			}
		case musicPause:
			if err := h.svc.Pause(ctx); err != nil {
				return "", false, err
			}
		case musicNext:
			if err := h.svc.Next(ctx); err != nil {
				return "", false, err
			}
		case musicPrevious:
			if err := h.svc.Previous(ctx); err != nil {
				return "", false, err
			}
		}
		return p.reply, true, nil
	}
	return "", false, nil
}
