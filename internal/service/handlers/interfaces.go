package handlers

import "context"

// Device-facing contracts consumed by the command handlers. The
// providers package implements them; handlers stay thin phrase glue.

type WeatherService interface {
	Current(ctx context.Context) (string, error)
	Tomorrow(ctx context.Context) (string, error)
	Weekly(ctx context.Context) (string, error)
}

type ThermostatService interface {
	CurrentTemperature(ctx context.Context, zone string) (float64, error)
	SetTemperature(ctx context.Context, zone string, temp float64) error
	HeatTo(ctx context.Context, temp float64) error
	CoolTo(ctx context.Context, temp float64) error
}

type LightsService interface {
	TurnOn(ctx context.Context, name string) (bool, error)
	TurnOff(ctx context.Context, name string) (bool, error)
}

type SceneRunner interface {
	Execute(ctx context.Context, definition string) error
}

type TVRemote interface {
	SendKey(ctx context.Context, key string) error
}

type MusicService interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	CurrentTrack(ctx context.Context) (string, error)
}

type SystemStats interface {
	CPUUsage(ctx context.Context) (float64, error)
	MemoryUsage(ctx context.Context) (float64, error)
	InternetStatus(ctx context.Context) (string, error)
}
