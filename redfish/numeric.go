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

package redfish

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParseNumber coerces a loosely typed JSON value into a float64. BMC firmware
// reports numbers either as JSON numbers or as strings. ok is false for null,
// non numeric strings, NaN and infinities.
func ParseNumber(v interface{}) (f float64, ok bool) {
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		var err error
		if f, err = n.Float64(); err != nil {
			return 0, false
		}
	case string:
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(n), 64); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Watts coerces a wattage reading to whole watts, truncating toward zero.
// Negative readings and readings that do not fit in an int are rejected.
func Watts(v interface{}) (int, bool) {
	f, ok := ParseNumber(v)
	if !ok || f < 0 || f >= float64(math.MaxInt) {
		return 0, false
	}
	return int(math.Trunc(f)), true
}
