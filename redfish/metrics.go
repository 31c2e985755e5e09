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

const (
	// TotalPowerKey is the metric name of the headline power consumption
	TotalPowerKey = "TotalPowerWatts"
)

// Thermal maps a temperature sensor name to its reading in Celsius. A nil
// reading means the BMC reported the sensor without a usable value.
type Thermal map[string]*float64

// Metrics maps a metric name to its value
type Metrics map[string]float64

// MergeMetrics returns the union of a and b. When both hold the same key the
// value from b wins. Neither argument is modified.
func MergeMetrics(a, b Metrics) Metrics {
	merged := make(Metrics, len(a)+len(b))
	for k, v := range a {
		merged[k] = v
	}
	for k, v := range b {
		merged[k] = v
	}
	return merged
}

// Metrics converts thermal readings into metrics, sensors without a reading
// are left out.
func (t Thermal) Metrics() Metrics {
	m := make(Metrics, len(t))
	for name, reading := range t {
		if reading != nil {
			m[name] = *reading
		}
	}
	return m
}

// setIfNumber stores v under name when it parses as a number. Optional fields
// that are missing or unparsable are dropped.
func (m Metrics) setIfNumber(name string, v interface{}) {
	if f, ok := ParseNumber(v); ok {
		m[name] = f
	}
}

// Collect builds a Metrics from optional, loosely typed fields. Fields that do
// not parse as numbers are dropped.
func Collect(fields map[string]interface{}) Metrics {
	m := make(Metrics, len(fields))
	for name, v := range fields {
		m.setIfNumber(name, v)
	}
	return m
}
