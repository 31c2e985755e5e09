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
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func Test_ParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zap.DebugLevel},
		{"info", zap.InfoLevel},
		{"warn", zap.WarnLevel},
		{"error", zap.ErrorLevel},
		{"", zap.InfoLevel},
		{"verbose", zap.InfoLevel},
	}

	for _, test := range tests {
		assert.Equal(t, test.want, ParseLevel(test.in), "level %q", test.in)
	}
}

func Test_New_File(t *testing.T) {
	dir := t.TempDir()

	log, level, err := New("fishyredfish", "node1", LoggerConfig{
		LogLevel:  "warn",
		LogMethod: MethodFile,
		LogFile:   LogFile{Path: dir, MaxSize: 1, MaxBackups: 1, MaxAge: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, zap.WarnLevel, level.Level())

	log.Info("dropped")
	log.Warn("kept", zap.String("bmc", "10.0.0.1"))

	level.SetLevel(zap.DebugLevel)
	log.Debug("kept after level change")
	log.Sync()

	b, err := os.ReadFile(filepath.Join(dir, "fishyredfish.log"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "fishyredfish", entry["app"])
	assert.Equal(t, "node1", entry["host"])
	assert.Equal(t, "10.0.0.1", entry["bmc"])
	assert.Equal(t, "warn", entry["level"])
}

func Test_New_Vector(t *testing.T) {
	received := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		received <- b
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	log, _, err := New("fishyredfish", "node1", LoggerConfig{
		LogMethod:      MethodVector,
		VectorEndpoint: srv.URL,
	})
	require.NoError(t, err)

	log.Error("vector entry")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(<-received, &entry))
	assert.Equal(t, "vector entry", entry["msg"])
}

func Test_vectorSink_SSLVerify(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	entry := []byte(`{"msg":"tls entry"}`)

	n, err := newVectorSink(u, false).Write(entry)
	require.NoError(t, err)
	assert.Equal(t, len(entry), n)

	// the test server certificate is self signed
	_, err = newVectorSink(u, true).Write(entry)
	assert.Error(t, err)
}

func Test_New_Errors(t *testing.T) {
	_, _, err := New("svc", "host", LoggerConfig{LogMethod: "syslog"})
	assert.True(t, errors.Is(err, ErrUnknownMethod))

	_, _, err = New("svc", "host", LoggerConfig{LogMethod: MethodFile})
	assert.Error(t, err)

	_, _, err = New("svc", "host", LoggerConfig{LogMethod: MethodVector, VectorEndpoint: "not a url"})
	assert.Error(t, err)
}
