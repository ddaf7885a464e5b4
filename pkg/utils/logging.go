package utils

import (
    "os"
    "path/filepath"
    "sync"

    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

var (
    logger   *zap.Logger
    loggerMu sync.Mutex
)

// Logger returns the process-wide logger. Set AXP_LOG_FILE to tee JSON
// logs into a file alongside stdout; otherwise the production logger
// writes to stderr. AXP_LOG_LEVEL (debug, info, warn, error) narrows
// what gets emitted.
func Logger() *zap.Logger {
    loggerMu.Lock()
    defer loggerMu.Unlock()
    if logger != nil { return logger }

    lvl := zapcore.InfoLevel
    if s := os.Getenv("AXP_LOG_LEVEL"); s != "" {
        if parsed, err := zapcore.ParseLevel(s); err == nil { lvl = parsed }
    }

    logFile := os.Getenv("AXP_LOG_FILE")
    if logFile == "" {
        cfg := zap.NewProductionConfig()
        cfg.Level = zap.NewAtomicLevelAt(lvl)
        l, err := cfg.Build()
        if err != nil { l = zap.NewNop() }
        logger = l
        return logger
    }

    _ = os.MkdirAll(filepath.Dir(logFile), 0o755)
    f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        l, berr := zap.NewProduction()
        if berr != nil { l = zap.NewNop() }
        logger = l
        return logger
    }
    enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
    logger = zap.New(zapcore.NewTee(
        zapcore.NewCore(enc, zapcore.AddSync(f), lvl),
        zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), lvl),
    ))
    return logger
}
