package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogDirName      = "logs"
	defaultLogFilename     = "storefront.log"
	defaultLedgerFilename  = "ledger.log"
	defaultLogMaxSizeMB    = 100
	defaultLogMaxBackups   = 7
	defaultLogMaxAgeDays   = 30
	defaultLedgerMaxAgeDay = 365
)

// Options 日志输出配置
type Options struct {
	Dir        string
	Filename   string
	Level      string // debug / info / warn / error，为空时按运行模式决定
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	// LedgerFilename 资金流水审计日志文件名，release 模式下与主日志分开滚动
	LedgerFilename string
}

// L 全局结构化日志实例
var L *zap.Logger

var (
	fallbackOnce sync.Once
	fallbackLog  *zap.Logger

	ledgerMu  sync.RWMutex
	ledgerLog *zap.Logger
)

// Init 初始化全局日志与资金流水日志
func Init(mode string, options Options) *zap.Logger {
	L = New(mode, options)
	zap.ReplaceGlobals(L)

	ledger := L.Named("ledger")
	if !isDebugMode(mode) {
		if sink, err := newFileWriteSyncer(ledgerOptions(options)); err == nil {
			ledger = buildLogger(zapcore.NewJSONEncoder(newEncoderConfig()), sink, zap.NewAtomicLevelAt(zap.InfoLevel)).Named("ledger")
		} else {
			L.Warn("ledger log file unavailable, using main log", zap.Error(err))
		}
	}
	ledgerMu.Lock()
	ledgerLog = ledger
	ledgerMu.Unlock()
	return L
}

// New 创建日志实例：debug 模式输出控制台，其余模式写 JSON 滚动文件，文件不可写时回退 stdout
func New(mode string, options Options) *zap.Logger {
	level := resolveLevel(mode, options.Level)
	encoderConfig := newEncoderConfig()

	if isDebugMode(mode) {
		return buildLogger(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stdout), level)
	}
	sink, err := newFileWriteSyncer(options)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed, fallback to stdout: %v\n", err)
		sink = zapcore.AddSync(os.Stdout)
	}
	return buildLogger(zapcore.NewJSONEncoder(encoderConfig), sink, level)
}

// Ledger 资金流水审计日志（钱包入账、扣款、退款）
func Ledger() *zap.SugaredLogger {
	ledgerMu.RLock()
	defer ledgerMu.RUnlock()
	if ledgerLog != nil {
		return ledgerLog.Sugar()
	}
	return Z().Named("ledger").Sugar()
}

// StdLogger 兼容标准库 log 的 logger，供启动阶段使用
func StdLogger() *log.Logger {
	return zap.NewStdLog(Z())
}

// Z 返回可用的结构化日志实例
func Z() *zap.Logger {
	if L != nil {
		return L
	}
	return fallbackLogger()
}

// S 返回可用的 SugaredLogger
func S() *zap.SugaredLogger {
	return Z().Sugar()
}

// SW 返回带上下文字段的 SugaredLogger
func SW(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return S()
	}
	return S().With(kv...)
}

func Debugw(message string, kv ...interface{}) {
	S().Debugw(message, kv...)
}

func Infow(message string, kv ...interface{}) {
	S().Infow(message, kv...)
}

func Warnw(message string, kv ...interface{}) {
	S().Warnw(message, kv...)
}

func Errorw(message string, kv ...interface{}) {
	S().Errorw(message, kv...)
}

func isDebugMode(mode string) bool {
	return strings.EqualFold(strings.TrimSpace(mode), "debug")
}

func resolveLevel(mode, raw string) zap.AtomicLevel {
	if raw = strings.TrimSpace(raw); raw != "" {
		if level, err := zapcore.ParseLevel(strings.ToLower(raw)); err == nil {
			return zap.NewAtomicLevelAt(level)
		}
	}
	if isDebugMode(mode) {
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zap.NewAtomicLevelAt(zap.InfoLevel)
}

func newEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return cfg
}

func buildLogger(encoder zapcore.Encoder, sink zapcore.WriteSyncer, level zap.AtomicLevel) *zap.Logger {
	return zap.New(zapcore.NewCore(encoder, sink, level), zap.AddCaller(), zap.AddCallerSkip(1))
}

func fallbackLogger() *zap.Logger {
	fallbackOnce.Do(func() {
		fallbackLog = buildLogger(
			zapcore.NewConsoleEncoder(newEncoderConfig()),
			zapcore.AddSync(os.Stdout),
			zap.NewAtomicLevelAt(zap.InfoLevel),
		)
	})
	return fallbackLog
}

// ledgerOptions 流水日志沿用主日志目录，保留期默认一年
func ledgerOptions(options Options) Options {
	ledger := options
	ledger.Filename = strings.TrimSpace(options.LedgerFilename)
	if ledger.Filename == "" {
		ledger.Filename = defaultLedgerFilename
	}
	if ledger.MaxAgeDays < defaultLedgerMaxAgeDay {
		ledger.MaxAgeDays = defaultLedgerMaxAgeDay
	}
	return ledger
}

func newFileWriteSyncer(options Options) (zapcore.WriteSyncer, error) {
	path, err := resolveLogFilePath(options)
	if err != nil {
		return nil, err
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    positiveOr(options.MaxSizeMB, defaultLogMaxSizeMB),
		MaxBackups: positiveOr(options.MaxBackups, defaultLogMaxBackups),
		MaxAge:     positiveOr(options.MaxAgeDays, defaultLogMaxAgeDays),
		Compress:   options.Compress,
	}), nil
}

func resolveLogFilePath(options Options) (string, error) {
	dir := strings.TrimSpace(options.Dir)
	if dir == "" {
		workDir, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve workdir failed: %w", err)
		}
		dir = filepath.Join(workDir, defaultLogDirName)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create log dir failed: %w", err)
	}
	filename := strings.TrimSpace(options.Filename)
	if filename == "" {
		filename = defaultLogFilename
	}
	path := filepath.Join(dir, filename)

	// 先探测写权限，失败时调用方回退到 stdout
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open log file failed: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close log file failed: %w", err)
	}
	return path, nil
}

func positiveOr(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
