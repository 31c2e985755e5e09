/*
 * Copyright 2025 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logger

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	MethodStdout = ""
	MethodFile   = "file"
	MethodVector = "vector"
)

var (
	ErrUnknownMethod = errors.New("unknown log method")
)

type LoggerConfig struct {
	LogLevel       string
	LogMethod      string
	LogFile        LogFile
	VectorEndpoint string
	SSLVerify      bool
}

type LogFile struct {
	Path       string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// New builds a json logger writing to stdout and, depending on LogMethod, to a
// rotated file or a vector http endpoint. The returned level can be changed
// while the logger is in use.
func New(svc, hostname string, cfg LoggerConfig) (*zap.Logger, zap.AtomicLevel, error) {
	atomicLevel := zap.NewAtomicLevelAt(ParseLevel(cfg.LogLevel))
	encoder := zapcore.NewJSONEncoder(ProdEncoderConf())

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), atomicLevel),
	}

	switch cfg.LogMethod {
	case MethodStdout:
	case MethodFile:
		if cfg.LogFile.Path == "" {
			return nil, atomicLevel, fmt.Errorf("log method %s requires a log file path", MethodFile)
		}
		ljWriteSyncer := zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(cfg.LogFile.Path, svc+".log"),
			MaxSize:    cfg.LogFile.MaxSize,
			MaxBackups: cfg.LogFile.MaxBackups,
			MaxAge:     cfg.LogFile.MaxAge,
		})
		cores = append(cores, zapcore.NewCore(encoder, ljWriteSyncer, atomicLevel))
	case MethodVector:
		u, err := url.Parse(cfg.VectorEndpoint)
		if err != nil || u.Host == "" {
			return nil, atomicLevel, fmt.Errorf("invalid vector endpoint %q", cfg.VectorEndpoint)
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(newVectorSink(u, cfg.SSLVerify)), atomicLevel))
	default:
		return nil, atomicLevel, fmt.Errorf("%w %q, expected %s or %s", ErrUnknownMethod, cfg.LogMethod, MethodFile, MethodVector)
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(),
		zap.Fields(
			zap.String("app", svc),
			zap.String("host", hostname),
		))

	return logger, atomicLevel, nil
}

// ParseLevel maps debug, info, warn and error to a zap level, anything else is info
func ParseLevel(l string) zapcore.Level {
	switch l {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func ProdEncoderConf() zapcore.EncoderConfig {
	encConf := zap.NewProductionEncoderConfig()
	encConf.EncodeTime = zapcore.RFC3339TimeEncoder

	return encConf
}
