package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	InfoLogger  *logrus.Logger
	WarnLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
	DebugLogger *logrus.Logger
)

// InitLoggers sets up the level-specific loggers. Output goes to stdout and a
// rotating log file so container logs and on-disk logs stay in sync.
func InitLoggers() {
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "logs/boardroom.log"
	}

	rotator := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}

	output := io.MultiWriter(os.Stdout, rotator)

	InfoLogger = newLogger(output, logrus.InfoLevel)
	WarnLogger = newLogger(output, logrus.WarnLevel)
	ErrorLogger = newLogger(output, logrus.ErrorLevel)
	DebugLogger = newLogger(output, logrus.DebugLevel)
}

func newLogger(out io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}
