package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

func init() {
	level := slog.LevelInfo
	if s := os.Getenv("LOG_LEVEL"); s != "" {
		if err := level.UnmarshalText([]byte(s)); err != nil {
			panic(fmt.Sprintf("invalid log level: %s", s))
		}
	}

	if level > slog.LevelDebug {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return
	}

	// Debug runs are read by people: colour, short times and module-relative
	// source paths
	prefix := modulePrefix()
	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.TimeOnly,
		AddSource:  true,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if source, ok := a.Value.Any().(*slog.Source); ok && a.Key == slog.SourceKey {
				source.File = trimSource(source.File, prefix)
			}
			if err, ok := a.Value.Any().(error); ok {
				aErr := tint.Err(err)
				aErr.Key = a.Key
				return aErr
			}
			return a
		},
	})
	slog.SetDefault(slog.New(handler))
	slog.Debug("debug logging enabled")
}

// modulePrefix is the last element of the main module path wrapped in
// slashes, e.g. "/campusconnect/"
func modulePrefix() string {
	path := "campusconnect"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Path != "" {
		path = info.Main.Path
	}
	return "/" + path[strings.LastIndex(path, "/")+1:] + "/"
}

func trimSource(file, prefix string) string {
	if _, rest, ok := strings.Cut(file, prefix); ok {
		return rest
	}
	if i := strings.LastIndex(file, "/src/"); i != -1 {
		return file[i+len("/src/"):]
	}
	return file
}
