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
	"fmt"
	"net/url"
	"strings"
)

// NormalizeBase returns host as a scheme qualified base URL. Hosts that do not
// already start with http:// or https:// get http:// prepended.
func NormalizeBase(host string) string {
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host
	}
	return "http://" + host
}

// JoinSegments resolves each segment against the ones before it and returns the
// resulting absolute URL. Every segment except the last is slash terminated first,
// so ("https://host", "a", "b") and ("https://host/", "a/", "b") both produce
// https://host/a/b. A segment starting with "/" replaces the accumulated path.
func JoinSegments(segments ...string) (string, error) {
	if len(segments) == 0 {
		return "", fmt.Errorf("%w: no segments to join", ErrInvalidURL)
	}

	if len(segments) == 1 {
		if _, err := url.Parse(segments[0]); err != nil {
			return "", fmt.Errorf("%w: %q - %v", ErrInvalidURL, segments[0], err)
		}
		return segments[0], nil
	}

	joined, err := url.Parse(appendSlash(segments[0]))
	if err != nil {
		return "", fmt.Errorf("%w: %q - %v", ErrInvalidURL, segments[0], err)
	}

	last := len(segments) - 1
	for i := 1; i <= last; i++ {
		seg := segments[i]
		if i < last {
			seg = appendSlash(seg)
		}
		ref, err := parseReference(seg)
		if err != nil {
			return "", fmt.Errorf("%w: %q - %v", ErrInvalidURL, segments[i], err)
		}
		joined = joined.ResolveReference(ref)
	}

	return joined.String(), nil
}

// parseReference parses a relative reference. Redfish ids such as "System:1"
// would otherwise be read as an opaque URL with scheme "System", and ids such
// as "1:2" are rejected as a first path segment holding a colon.
func parseReference(seg string) (*url.URL, error) {
	ref, err := url.Parse(seg)
	if err != nil {
		return url.Parse("./" + seg)
	}
	if ref.Scheme != "" && ref.Scheme != "http" && ref.Scheme != "https" {
		return url.Parse("./" + seg)
	}
	return ref, nil
}

// LastSegment returns the final path element of an @odata.id, e.g.
// /redfish/v1/Systems/437XR1138R2/ -> 437XR1138R2
func LastSegment(odataID string) string {
	trimmed := strings.TrimSuffix(odataID, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

func appendSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
