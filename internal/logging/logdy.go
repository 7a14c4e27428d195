package logging

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/logdyhq/logdy-core/logdy"
	"github.com/rs/zerolog/log"

	"farmwatch/internal/config"
)

type logdyWriter struct {
	logger logdy.Logdy
}

func (w *logdyWriter) Write(p []byte) (n int, err error) {
	line := strings.TrimRight(string(p), "\n")
	if line != "" {
		w.logger.LogString(line)
	}
	return len(p), nil
}

// StartLogdy starts the embedded Logdy UI and returns a writer that mirrors
// every log line into it, plus the UI address.
func StartLogdy(cfg *config.Config) (io.Writer, string, error) {
	if cfg.LogdyPort <= 0 {
		return nil, "", fmt.Errorf("invalid logdy port %d", cfg.LogdyPort)
	}
	portStr := strconv.Itoa(cfg.LogdyPort)
	ld := logdy.InitializeLogdy(logdy.Config{
		ServerIp:   cfg.LogdyHost,
		ServerPort: portStr,
	}, nil)

	url := fmt.Sprintf("http://%s:%s", cfg.LogdyHost, portStr)
	log.Info().Str("url", url).Msg("Logdy UI available")
	return &logdyWriter{logger: ld}, url, nil
}
