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

package common

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/comcast/fishyredfish/buildinfo"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	// DefaultTimeout bounds a single BMC request including reading the body
	DefaultTimeout = 30 * time.Second
)

// Transport performs exactly one HTTP exchange with a BMC and returns the status
// code and raw body. A nil cred sends the request without authentication.
type Transport interface {
	Do(ctx context.Context, method, uri string, cred *Credential, body []byte) (int, []byte, error)
}

// HTTPTransport is the default Transport, a single attempt retryablehttp client.
type HTTPTransport struct {
	client *retryablehttp.Client
}

// NewHTTPTransport builds a transport that verifies the BMC certificate only when
// sslVerify is set. A zero timeout uses DefaultTimeout.
func NewHTTPTransport(sslVerify bool, timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	tr := &http.Transport{
		Dial: (&net.Dialer{
			Timeout: 3 * time.Second,
		}).Dial,
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          1,
		MaxConnsPerHost:       1,
		MaxIdleConnsPerHost:   1,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !sslVerify,
			Renegotiation:      tls.RenegotiateOnceAsClient,
		},
		TLSHandshakeTimeout: 10 * time.Second,
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Transport = tr
	retryClient.HTTPClient.Timeout = timeout
	retryClient.Logger = nil
	// single attempt, the status code is handed back to the caller untouched
	retryClient.RetryMax = 0
	retryClient.CheckRetry = noRetryPolicy
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &HTTPTransport{client: retryClient}
}

func noRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return false, err
}

// Do implements Transport
func (t *HTTPTransport) Do(ctx context.Context, method, uri string, cred *Credential, body []byte) (int, []byte, error) {
	req, err := BuildRequest(ctx, method, uri, cred, body)
	if err != nil {
		return 0, nil, err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer EmptyAndCloseBody(resp)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("error reading response body - %w", err)
	}

	return resp.StatusCode, data, nil
}

// BuildRequest creates a request carrying basic auth and JSON headers.
func BuildRequest(ctx context.Context, method, uri string, cred *Credential, body []byte) (*retryablehttp.Request, error) {
	var rawBody interface{}
	if body != nil {
		rawBody = body
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, uri, rawBody)
	if err != nil || req == nil {
		return nil, fmt.Errorf("failed to build retryable request - %v", err)
	}
	if cred != nil {
		req.SetBasicAuth(cred.User, cred.Pass)
	}
	// this header is required by iDRAC9 with FW ver. 3.xx and 4.xx
	req.Header.Add("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// This is required to have a proper cleanup of the response body
// to have correctly working keep-alive connections
func EmptyAndCloseBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}

// IsSuccess reports whether status is a 2xx code
func IsSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}
