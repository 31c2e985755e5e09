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
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCredential = errors.New("invalid credential")
	ErrInvalidURL        = errors.New("invalid url")
	ErrDiscovery         = errors.New("topology discovery failed")
	ErrRemote            = errors.New("remote call failed")
	ErrUnsupportedAction = errors.New("unsupported action")
	ErrUnsupportedVendor = errors.New("unsupported vendor")
	ErrIndexOutOfRange   = errors.New("system index out of range")
)

// DiscoveryError is returned when building the topology of a BMC fails. No
// client is returned alongside it. It does not match ErrRemote, which is kept
// for calls against an already discovered BMC.
type DiscoveryError struct {
	Step       string // e.g. "fetch system list", "resolve chassis"
	URL        string
	StatusCode int
	Err        error
}

// NewDiscoveryError builds a DiscoveryError for step. A RemoteError cause is
// flattened into its status code and underlying error.
func NewDiscoveryError(step, url string, err error) *DiscoveryError {
	derr := &DiscoveryError{Step: step, URL: url, Err: err}

	var rerr *RemoteError
	if errors.As(err, &rerr) {
		derr.StatusCode = rerr.StatusCode
		derr.Err = rerr.Err
		if rerr.Field != "" {
			derr.Err = fmt.Errorf("missing or invalid field %q", rerr.Field)
		}
	}

	return derr
}

func (e *DiscoveryError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s: %s %s - HTTP status %d: %v", ErrDiscovery, e.Step, e.URL, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: %s %s - HTTP status %d", ErrDiscovery, e.Step, e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %s %s - %v", ErrDiscovery, e.Step, e.URL, e.Err)
	}
}

func (e *DiscoveryError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDiscovery}
	}
	return []error{ErrDiscovery, e.Err}
}

// RemoteError describes a failed call against an already discovered BMC.
type RemoteError struct {
	URL        string
	StatusCode int
	Field      string // name of a missing or unusable JSON field
	Err        error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("%s: %s - missing or invalid field %q", ErrRemote, e.URL, e.Field)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: %s - HTTP status %d", ErrRemote, e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %s - %v", ErrRemote, e.URL, e.Err)
	}
}

func (e *RemoteError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRemote}
	}
	return []error{ErrRemote, e.Err}
}

// UnsupportedActionError is returned before any request is sent when an action is
// not part of a vendor's action set.
type UnsupportedActionError struct {
	Action string
	Valid  []string
}

func (e *UnsupportedActionError) Error() string {
	return fmt.Sprintf("%s %q, valid actions are: %s", ErrUnsupportedAction, e.Action, strings.Join(e.Valid, ", "))
}

func (e *UnsupportedActionError) Is(target error) bool {
	return target == ErrUnsupportedAction
}
