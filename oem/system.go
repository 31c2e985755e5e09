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

// PowerState is the power state reported by a computer system. Values other than
// the ones listed are passed through as reported by the BMC.
type PowerState string

const (
	PowerStateOn          PowerState = "On"
	PowerStateOff         PowerState = "Off"
	PowerStatePoweringOn  PowerState = "PoweringOn"
	PowerStatePoweringOff PowerState = "PoweringOff"
)

// /redfish/v1/Systems/XXXXX

// System is the part of a computer system document needed to address its chassis,
// manager and actions
type System struct {
	ID           string       `json:"Id"`
	Name         string       `json:"Name"`
	Manufacturer string       `json:"Manufacturer"`
	Model        string       `json:"Model"`
	SerialNumber string       `json:"SerialNumber"`
	BiosVersion  string       `json:"BiosVersion"`
	HostName     string       `json:"HostName"`
	PowerState   PowerState   `json:"PowerState"`
	Status       Status       `json:"Status"`
	Links        *SystemLinks `json:"Links"`
	Actions      SystemAction `json:"Actions"`
	Oem          OemSys       `json:"Oem"`
}

// SystemLinks points at the chassis containing the system and the managers of it
type SystemLinks struct {
	Chassis   []Link `json:"Chassis"`
	ManagedBy []Link `json:"ManagedBy"`
}

type SystemAction struct {
	Reset ResetAction `json:"#ComputerSystem.Reset"`
}

// ResetAction describes a reset action target and the reset types it accepts
type ResetAction struct {
	Target          string   `json:"target"`
	AllowableValues []string `json:"ResetType@Redfish.AllowableValues"`
}

type OemSys struct {
	IntelRackScale IntelRackScale `json:"Intel_RackScale,omitempty"`
}

type IntelRackScale struct {
	Metrics Link `json:"Metrics"`
}

// ResetRequest is the payload accepted by ComputerSystem.Reset and Manager.Reset
type ResetRequest struct {
	ResetType string `json:"ResetType"`
}
