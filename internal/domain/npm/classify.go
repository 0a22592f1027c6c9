package npm

import (
	"regexp"
	"strings"

	"github.com/felixgeelhaar/nodeops/internal/ports"
)

var stderrPattern = regexp.MustCompile(`npm\s([a-zA-Z]+!?)(\s.*)?$`)

var severities = map[string]ports.Level{
	"debug":       ports.LevelDebug,
	"info":        ports.LevelInfo,
	"information": ports.LevelInfo,
	"warn":        ports.LevelWarn,
	"warning":     ports.LevelWarn,
	"err!":        ports.LevelError,
	"error":       ports.LevelError,
	"critical":    ports.LevelError,
}

// ClassifyStderr maps an npm stderr line to a log level and the text to log.
// Lines such as "npm warn deprecated foo" take the level of their severity
// token; in verbose mode the whole line is kept, otherwise only the text after
// the token. Unrecognized lines are debug output.
func ClassifyStderr(line string, verbose bool) (ports.Level, string) {
	m := stderrPattern.FindStringSubmatch(line)
	if m == nil {
		return ports.LevelDebug, line
	}

	level, ok := severities[strings.ToLower(m[1])]
	if !ok {
		level = ports.LevelDebug
	}

	if verbose {
		return level, line
	}
	if text := strings.TrimSpace(m[2]); text != "" {
		return level, text
	}
	return level, line
}
