package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide logger. Nil until Init runs; the package-level
// helpers tolerate that so early startup failures can still be reported.
var Logger *log.Logger

type Config struct {
	Debug bool
	// ConfigDir is where the logs/ directory is created, normally the
	// directory holding the database file.
	ConfigDir string
}

// Init sets up the global logger. Output always goes to a rotating file
// under <ConfigDir>/logs; debug mode also mirrors it to stderr and widens
// the level, since the CLI's stdout is reserved for command output.
func Init(cfg Config) error {
	logDir := filepath.Join(cfg.ConfigDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	var writer io.Writer = &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "weeklit.log"),
		MaxSize:    5, // megabytes
		MaxBackups: 4,
		MaxAge:     30, // days
		Compress:   true,
	}

	level := log.WarnLevel
	if cfg.Debug {
		level = log.DebugLevel
		writer = io.MultiWriter(os.Stderr, writer)
	}

	Logger = log.NewWithOptions(writer, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "weeklit",
	})

	return nil
}

func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}
