package log

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger writes verbose diagnostic messages when Enabled is true.
// Output goes to the configured writer (typically stderr).
type Logger struct {
	Enabled bool
	W       io.Writer

	once  sync.Once
	sugar *zap.SugaredLogger
}

// New returns a logger writing to w.
func New(w io.Writer, verbose bool) *Logger {
	return &Logger{Enabled: verbose, W: w}
}

// Printf writes a formatted message to W when Enabled is true.
// It is a no-op when Enabled is false.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || !l.Enabled {
		return
	}
	l.logger().Infof(format, args...)
}

// Warnf writes a formatted warning regardless of Enabled.
func (l *Logger) Warnf(format string, args ...any) {
	if l == nil {
		return
	}
	l.logger().Warnf("warning: "+format, args...)
}

// Sync flushes buffered output.
func (l *Logger) Sync() error {
	if l == nil || l.sugar == nil {
		return nil
	}
	return l.sugar.Sync()
}

func (l *Logger) logger() *zap.SugaredLogger {
	l.once.Do(func() {
		w := l.W
		if w == nil {
			w = os.Stderr
		}
		encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			MessageKey: "msg",
			LineEnding: zapcore.DefaultLineEnding,
		})
		core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(w)), zapcore.DebugLevel)
		l.sugar = zap.New(core).Sugar()
	})
	return l.sugar
}

// FileWriter tees w into a size-rotated log file at path.
func FileWriter(w io.Writer, path string) io.Writer {
	rotating := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
	}
	return io.MultiWriter(w, rotating)
}
