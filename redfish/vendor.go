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
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/comcast/fishyredfish/common"
	"github.com/comcast/fishyredfish/config"
	"github.com/comcast/fishyredfish/oem"
)

// Vendor is the capability contract every vendor adapter provides. Adapters
// embed *Client to inherit PowerState and Thermal and supply the rest.
type Vendor interface {
	Name() string
	Topology() *Topology

	// PowerConsumption returns the power draw of a system in whole watts. It
	// fails rather than returning a reading it could not parse.
	PowerConsumption(ctx context.Context, system int) (int, error)
	PowerState(ctx context.Context, system int) (oem.PowerState, error)
	Thermal(ctx context.Context, system int) (Thermal, error)
	Metrics(ctx context.Context, system int) (Metrics, error)

	// PowerAction posts a ComputerSystem.Reset with action as ResetType. Actions
	// outside of Actions() are rejected without contacting the BMC.
	PowerAction(ctx context.Context, system int, action string) error
	Actions() []string
}

// ManagerResetter is implemented by vendors able to restart their BMC
type ManagerResetter interface {
	ResetManager(ctx context.Context, system int) error
}

// ValidateAction checks action against the valid set of a vendor
func ValidateAction(action string, valid []string) error {
	for _, v := range valid {
		if v == action {
			return nil
		}
	}
	return &common.UnsupportedActionError{Action: action, Valid: append([]string(nil), valid...)}
}

// Reset posts {"ResetType": resetType} to the reset action of a resource, e.g.
// Actions/ComputerSystem.Reset below a system url
func (c *Client) Reset(ctx context.Context, resourceURL, action, resetType string) error {
	uri, err := SubResource(resourceURL, "Actions", action)
	if err != nil {
		return err
	}
	return c.Post(ctx, uri, oem.ResetRequest{ResetType: resetType})
}

// Constructor builds a vendor adapter, discovering the BMC topology
type Constructor func(ctx context.Context, cfg config.Config, opts ...Option) (Vendor, error)

var (
	vendorsMu sync.RWMutex
	vendors   = make(map[string]Constructor)
)

// Register makes a vendor adapter available by name. It panics when called
// twice for the same name.
func Register(name string, ctor Constructor) {
	vendorsMu.Lock()
	defer vendorsMu.Unlock()
	if ctor == nil {
		panic("redfish: Register constructor is nil")
	}
	if _, dup := vendors[name]; dup {
		panic("redfish: Register called twice for vendor " + name)
	}
	vendors[name] = ctor
}

// Vendors lists the registered vendor names
func Vendors() []string {
	vendorsMu.RLock()
	defer vendorsMu.RUnlock()
	names := make([]string, 0, len(vendors))
	for name := range vendors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open builds the adapter registered under name
func Open(ctx context.Context, name string, cfg config.Config, opts ...Option) (Vendor, error) {
	vendorsMu.RLock()
	ctor, ok := vendors[name]
	vendorsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q, registered vendors are %v", common.ErrUnsupportedVendor, name, Vendors())
	}
	return ctor(ctx, cfg, opts...)
}
