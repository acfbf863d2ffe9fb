package handlers

import (
	"context"
	"strings"
)

var tvKeys = []struct {
	phrase string
	key    string
	reply  string
}{
	{"turn on the tv", "KEY_POWER", "Turning on the TV."},
	{"turn off the tv", "KEY_POWER", "Turning off the TV."},
	{"tv volume up", "KEY_VOLUP", "Volume up."},
	{"tv volume down", "KEY_VOLDOWN", "Volume down."},
	{"mute the tv", "KEY_MUTE", "Muting the TV."},
	{"tv channel up", "KEY_CHUP", "Channel up."},
	{"tv channel down", "KEY_CHDOWN", "Channel down."},
}

type TV struct {
	remote TVRemote
}

func NewTV(remote TVRemote) *TV {
	return &TV{remote: remote}
}

func (h *TV) Name() string { return "tv" }

func (h *TV) Handle(ctx context.Context, input string) (string, bool, error) {
	lower := strings.ToLower(input)

	for _, k := range tvKeys {
		if strings.Contains(lower, k.phrase) {
			if err := h.remote.SendKey(ctx, k.key); err != nil {
				return "", false, err
			}
			return k.reply, true, nil
		}
	}
	return "", false, nil
}
