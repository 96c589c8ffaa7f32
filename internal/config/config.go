package config

import (
	"os"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
)

// Init sets up logging from the environment.
func Init() error {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	initLogLevel()
	return nil
}

func initLogLevel() {
	switch os.Getenv("LOG_LEVEL") {
	case "trace":
		log.SetLevel(log.TraceLevel)
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// ExpandPath resolves a leading ~ to the home directory. Standard streams
// ("-") and empty paths are returned unchanged.
func ExpandPath(path string) string {
	if path == "" || path == "-" {
		return path
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		log.Debugf("could not expand %s: %v", path, err)
		return path
	}
	return expanded
}
