package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Messages = make(chan []byte, 128)

const (
	ErrorLvl      = 0
	WarningLvl    = 1
	InfoLvl       = 2
	ActionLvl     = 3
	KeysLvl       = 4
	ExpressionLvl = 5

	DebugLvl = 378
)

var (
	Error      = zap.Int("level", ErrorLvl)
	Warning    = zap.Int("level", WarningLvl)
	Info       = zap.Int("level", InfoLvl)
	Action     = zap.Int("level", ActionLvl)
	Keys       = zap.Int("level", KeysLvl)
	Expression = zap.Int("level", ExpressionLvl)

	Debug = zap.Int("level", DebugLvl)
)

type chanWriter struct {
	sync.Mutex
}

func (w *chanWriter) Write(p []byte) (n int, err error) {
	w.Lock()
	var newSlice = make([]byte, len(p))
	copy(newSlice, p)
	Messages <- newSlice
	w.Unlock()
	return len(p), nil
}

func (w *chanWriter) Sync() error {
	return nil
}

var (
	once   sync.Once
	shared *zap.Logger
)

// GetLogger returns process-wide logger, every entry lands in Messages as a single json document.
func GetLogger() *zap.Logger {
	once.Do(func() {
		writer := &chanWriter{}
		cfg := zap.NewProductionEncoderConfig()
		cfg.SkipLineEnding = true
		cfg.EncodeTime = zapcore.EpochNanosTimeEncoder
		cfg.LevelKey = ""
		encoder := zapcore.NewJSONEncoder(cfg)
		shared = zap.New(
			zapcore.NewCore(encoder, zapcore.Lock(writer), zap.DebugLevel),
			zap.AddCaller(),
		)
	})
	return shared
}

// Discard drains Messages until it gets closed, useful for tests and silent mode.
func Discard() {
	go func() {
		for range Messages {
		}
	}()
}
