package config

import "os"

func IsDebug() bool {
	return os.Getenv("HOMEVOICE_DEBUG") == "1"
}
