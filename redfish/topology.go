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
	"encoding/json"
	"fmt"

	"github.com/comcast/fishyredfish/common"
	"github.com/comcast/fishyredfish/oem"
	"go.uber.org/zap"
)

const (
	SystemPrefix  = "/redfish/v1/Systems"
	ChassisPrefix = "/redfish/v1/Chassis"
	ManagerPrefix = "/redfish/v1/Managers"
)

// Topology is the set of systems a BMC manages together with the chassis and
// manager each system resolves to. It is built once when a client is created
// and is read only afterwards; a changed physical topology needs a new client.
type Topology struct {
	base      string
	systems   []string
	documents map[string]json.RawMessage
	chassis   map[string]string
	managers  map[string]string
}

// discover walks /redfish/v1/Systems and every system document, one request at
// a time in listing order. Any failure aborts the whole discovery.
func discover(ctx context.Context, c *Client) (*Topology, error) {
	t := &Topology{
		base:      c.base,
		documents: make(map[string]json.RawMessage),
		chassis:   make(map[string]string),
		managers:  make(map[string]string),
	}

	collURL, err := common.JoinSegments(c.base, SystemPrefix)
	if err != nil {
		return nil, common.NewDiscoveryError("build system list url", c.base, err)
	}

	var coll oem.Collection
	if _, err := c.get(ctx, collURL, &coll); err != nil {
		return nil, common.NewDiscoveryError("fetch system list", collURL, err)
	}
	if coll.Members == nil {
		return nil, common.NewDiscoveryError("fetch system list", collURL, fmt.Errorf("missing %q key", "Members"))
	}

	for _, member := range coll.Members {
		t.systems = append(t.systems, common.LastSegment(member.URL))
	}

	for _, id := range t.systems {
		sysURL, err := common.JoinSegments(c.base, SystemPrefix, id)
		if err != nil {
			return nil, common.NewDiscoveryError("build system url", id, err)
		}

		var sys oem.System
		raw, err := c.get(ctx, sysURL, &sys)
		if err != nil {
			return nil, common.NewDiscoveryError("fetch system document", sysURL, err)
		}

		chassisID, managerID, err := resolveLinks(sys)
		if err != nil {
			return nil, common.NewDiscoveryError("resolve system "+id, sysURL, err)
		}

		t.documents[id] = raw
		t.chassis[id] = chassisID
		t.managers[id] = managerID

		c.log.Debug("resolved system topology",
			zap.String("system", id),
			zap.String("chassis", chassisID),
			zap.String("manager", managerID),
			zap.String("url", sysURL))
	}

	return t, nil
}

// resolveLinks only looks at the first linked chassis and manager, additional
// links are ignored.
func resolveLinks(sys oem.System) (string, string, error) {
	if sys.Links == nil {
		return "", "", fmt.Errorf("missing %q key", "Links")
	}
	if len(sys.Links.Chassis) == 0 || sys.Links.Chassis[0].URL == "" {
		return "", "", fmt.Errorf("no linked chassis in %q", "Links.Chassis")
	}
	if len(sys.Links.ManagedBy) == 0 || sys.Links.ManagedBy[0].URL == "" {
		return "", "", fmt.Errorf("no linked manager in %q", "Links.ManagedBy")
	}
	return common.LastSegment(sys.Links.Chassis[0].URL), common.LastSegment(sys.Links.ManagedBy[0].URL), nil
}

// Len is the number of discovered systems
func (t *Topology) Len() int {
	return len(t.systems)
}

// Systems returns the system identifiers in the order the BMC listed them
func (t *Topology) Systems() []string {
	return append([]string(nil), t.systems...)
}

func (t *Topology) systemID(i int) (string, error) {
	if i < 0 || i >= len(t.systems) {
		return "", fmt.Errorf("%w: %d, %d system(s) discovered", common.ErrIndexOutOfRange, i, len(t.systems))
	}
	return t.systems[i], nil
}

// SystemID returns the identifier of system i
func (t *Topology) SystemID(i int) (string, error) {
	return t.systemID(i)
}

// ChassisID returns the identifier of the chassis linked to system i
func (t *Topology) ChassisID(i int) (string, error) {
	id, err := t.systemID(i)
	if err != nil {
		return "", err
	}
	return t.chassis[id], nil
}

// ManagerID returns the identifier of the manager linked to system i
func (t *Topology) ManagerID(i int) (string, error) {
	id, err := t.systemID(i)
	if err != nil {
		return "", err
	}
	return t.managers[id], nil
}

// SystemDocument returns a copy of the cached JSON document of system i
func (t *Topology) SystemDocument(i int) (json.RawMessage, error) {
	id, err := t.systemID(i)
	if err != nil {
		return nil, err
	}
	return append(json.RawMessage(nil), t.documents[id]...), nil
}

// System decodes the cached document of system i into a fresh value
func (t *Topology) System(i int) (oem.System, error) {
	var sys oem.System
	id, err := t.systemID(i)
	if err != nil {
		return sys, err
	}
	err = json.Unmarshal(t.documents[id], &sys)
	return sys, err
}

func (t *Topology) SystemURL(i int) (string, error) {
	id, err := t.systemID(i)
	if err != nil {
		return "", err
	}
	return common.JoinSegments(t.base, SystemPrefix, id)
}

func (t *Topology) ChassisURL(i int) (string, error) {
	id, err := t.ChassisID(i)
	if err != nil {
		return "", err
	}
	return common.JoinSegments(t.base, ChassisPrefix, id)
}

func (t *Topology) ManagerURL(i int) (string, error) {
	id, err := t.ManagerID(i)
	if err != nil {
		return "", err
	}
	return common.JoinSegments(t.base, ManagerPrefix, id)
}
