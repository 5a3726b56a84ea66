package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger. DEV gets a human readable
// console writer on stderr, everything else JSON lines.
func Setup(level, env string) {
	Configure(os.Stderr, level, env)
}

// Configure is Setup with an explicit output.
func Configure(out io.Writer, level, env string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	if strings.EqualFold(env, "DEV") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}
