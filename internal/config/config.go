// Package config implements the server's line-oriented config file
// format, grounded on config_parser.c's parse()/parse_user()/skip_line()
// shape: `#`-prefixed comments, blank lines, and a fixed directive set
// tokenized on whitespace.
package config

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/lexidb/lexid/internal/acl"
	"github.com/pkg/errors"
)

// LogLevel is one of the five levels the config file's `loglevel`
// directive accepts.
type LogLevel string

const (
	LogNothing LogLevel = "nothing"
	LogInfo    LogLevel = "info"
	LogWarning LogLevel = "warning"
	LogVerbose LogLevel = "verbose"
	LogDebug   LogLevel = "debug"
)

// Config is the fully parsed contents of a config file.
type Config struct {
	BindAddr      string
	Port          uint16
	ProtectedMode bool
	TCPBacklog    int
	LogLevel      LogLevel
	LogFile       string
	Databases     int
	Users         []*acl.User
}

// Default returns the config that applies when a directive is absent from
// the file, matching the original's compiled-in defaults.
func Default() *Config {
	return &Config{
		BindAddr:      "127.0.0.1",
		Port:          6969,
		ProtectedMode: true,
		TCPBacklog:    511,
		LogLevel:      LogInfo,
		LogFile:       "",
		Databases:     16,
	}
}

// Parse reads a config file's contents and returns the resulting Config,
// starting from Default() and applying every directive found in order.
func Parse(contents string) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(strings.NewReader(contents))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		directive := fields[0]
		args := fields[1:]
		if err := cfg.apply(directive, args); err != nil {
			return nil, errors.Wrapf(err, "config: line %d", lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "config: reading file")
	}
	return cfg, nil
}

func (cfg *Config) apply(directive string, args []string) error {
	switch directive {
	case "bind":
		if len(args) != 1 {
			return fmt.Errorf("bind requires exactly one address")
		}
		cfg.BindAddr = args[0]
	case "port":
		if len(args) != 1 {
			return fmt.Errorf("port requires exactly one value")
		}
		n, err := strconv.ParseUint(args[0], 10, 16)
		if err != nil {
			return fmt.Errorf("port: %w", err)
		}
		cfg.Port = uint16(n)
	case "protected-mode":
		if len(args) != 1 {
			return fmt.Errorf("protected-mode requires yes or no")
		}
		switch args[0] {
		case "yes":
			cfg.ProtectedMode = true
		case "no":
			cfg.ProtectedMode = false
		default:
			return fmt.Errorf("protected-mode: expected yes|no, got %q", args[0])
		}
	case "tcp-backlog":
		if len(args) != 1 {
			return fmt.Errorf("tcp-backlog requires exactly one value")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("tcp-backlog: %w", err)
		}
		cfg.TCPBacklog = n
	case "loglevel":
		if len(args) != 1 {
			return fmt.Errorf("loglevel requires exactly one value")
		}
		lvl := LogLevel(args[0])
		switch lvl {
		case LogNothing, LogInfo, LogWarning, LogVerbose, LogDebug:
			cfg.LogLevel = lvl
		default:
			return fmt.Errorf("loglevel: unrecognized level %q", args[0])
		}
	case "logfile":
		cfg.LogFile = strings.Join(args, " ")
		if cfg.LogFile == `""` {
			cfg.LogFile = ""
		}
	case "databases":
		if len(args) != 1 {
			return fmt.Errorf("databases requires exactly one value")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("databases: %w", err)
		}
		if n <= 0 {
			return fmt.Errorf("databases: must be positive, got %d", n)
		}
		cfg.Databases = n
	case "user":
		u, err := acl.ParseUserRecord(args)
		if err != nil {
			return err
		}
		cfg.Users = append(cfg.Users, u)
	default:
		return fmt.Errorf("unrecognized directive %q", directive)
	}
	return nil
}
