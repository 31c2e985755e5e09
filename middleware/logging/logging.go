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

package logging

import (
	"context"
	"time"

	"github.com/comcast/fishyredfish/common"
	"github.com/nrednav/cuid2"
	"go.uber.org/zap"
)

var (
	generate, _ = cuid2.Init(
		cuid2.WithLength(32),
	)
)

// NewTraceID returns a random id used to correlate the log lines of one run
func NewTraceID() string {
	return generate()
}

type loggingTransport struct {
	next common.Transport
	log  *zap.Logger
}

// Transport wraps next and logs every request it sends at debug level, and
// failed ones at warn level
func Transport(next common.Transport, log *zap.Logger) common.Transport {
	if log == nil {
		log = zap.NewNop()
	}
	return &loggingTransport{next: next, log: log}
}

func (t *loggingTransport) Do(ctx context.Context, method, uri string, cred *common.Credential, body []byte) (int, []byte, error) {
	start := time.Now()

	status, resp, err := t.next.Do(ctx, method, uri, cred, body)

	fields := []zap.Field{
		zap.String("method", method),
		zap.String("url", uri),
		zap.Int("status", status),
		zap.Int("response_bytes", len(resp)),
		zap.Float64("elapsed_time_sec", time.Since(start).Seconds()),
	}

	switch {
	case err != nil:
		t.log.Warn("request failed", append(fields, zap.Error(err))...)
	case !common.IsSuccess(status):
		t.log.Warn("request returned unsuccessful status", fields...)
	default:
		t.log.Debug("finished request", fields...)
	}

	return status, resp, err
}
