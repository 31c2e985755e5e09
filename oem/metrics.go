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

package oem

// /redfish/v1/Systems/XXXXX/Metrics

// SystemMetrics is the Intel RSD ComputerSystemMetrics document, values vary
// between numbers and strings across firmware versions
type SystemMetrics struct {
	ProcessorPowerWatt        interface{} `json:"ProcessorPowerWatt"`
	MemoryPowerWatt           interface{} `json:"MemoryPowerWatt"`
	ProcessorBandwidthPercent interface{} `json:"ProcessorBandwidthPercent"`
	MemoryBandwidthPercent    interface{} `json:"MemoryBandwidthPercent"`
	IOBandwidthGBps           interface{} `json:"IOBandwidthGBps"`
	Health                    []string    `json:"Health"`
}
