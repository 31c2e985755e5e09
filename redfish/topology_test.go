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
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/comcast/fishyredfish/common"
	"github.com/comcast/fishyredfish/config"
	"github.com/comcast/fishyredfish/redfish/redfishtest"
	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(host string) config.Config {
	return config.Config{
		Host: host,
		User: redfishtest.User,
		Pass: redfishtest.Pass,
	}
}

func Test_Discovery(t *testing.T) {
	assert := assert.New(t)

	bmc := redfishtest.NewServer()
	defer bmc.Close()
	bmc.AddSystem("S1", "C1", "M1")
	bmc.AddSystem("S2", "C2", "M1")

	c, err := New(context.Background(), testConfig(bmc.URL))
	require.NoError(t, err)

	topo := c.Topology()
	if diff := deep.Equal(topo.Systems(), []string{"S1", "S2"}); diff != nil {
		t.Error(diff)
	}
	assert.Equal(2, topo.Len())

	chassis0, err := c.ChassisURL(0)
	assert.NoError(err)
	assert.Equal(bmc.URL+"/redfish/v1/Chassis/C1", chassis0)

	chassis1, err := c.ChassisURL(1)
	assert.NoError(err)
	assert.Equal(bmc.URL+"/redfish/v1/Chassis/C2", chassis1)

	system1, err := c.SystemURL(1)
	assert.NoError(err)
	assert.Equal(bmc.URL+"/redfish/v1/Systems/S2", system1)

	manager0, err := c.ManagerURL(0)
	assert.NoError(err)
	assert.Equal(bmc.URL+"/redfish/v1/Managers/M1", manager0)

	doc, err := topo.SystemDocument(0)
	assert.NoError(err)
	assert.Contains(string(doc), `"PowerState":"On"`)

	sys, err := topo.System(1)
	assert.NoError(err)
	assert.Equal("S2", sys.ID)

	// system documents are fetched one at a time in listing order
	var paths []string
	for _, r := range bmc.Requests() {
		assert.Equal(http.MethodGet, r.Method)
		paths = append(paths, r.Path)
	}
	if diff := deep.Equal(paths, []string{"/redfish/v1/Systems", "/redfish/v1/Systems/S1", "/redfish/v1/Systems/S2"}); diff != nil {
		t.Error(diff)
	}
}

func Test_Discovery_HostWithoutScheme(t *testing.T) {
	bmc := redfishtest.NewServer()
	defer bmc.Close()
	bmc.AddSystem("1", "1", "BMC")

	host := strings.TrimPrefix(bmc.URL, "http://")
	c, err := New(context.Background(), testConfig(host))
	require.NoError(t, err)

	assert.Equal(t, "http://"+host, c.BaseURL())
	assert.Equal(t, host, c.Name())
}

func Test_Discovery_ColonIDs(t *testing.T) {
	bmc := redfishtest.NewServer()
	defer bmc.Close()
	bmc.AddSystem("1:2", "System:1", "3:BMC")

	c, err := New(context.Background(), testConfig(bmc.URL))
	require.NoError(t, err)

	systemURL, err := c.SystemURL(0)
	assert.NoError(t, err)
	assert.Equal(t, bmc.URL+"/redfish/v1/Systems/1:2", systemURL)

	chassisURL, _ := c.ChassisURL(0)
	managerURL, _ := c.ManagerURL(0)
	assert.Equal(t, bmc.URL+"/redfish/v1/Chassis/System:1", chassisURL)
	assert.Equal(t, bmc.URL+"/redfish/v1/Managers/3:BMC", managerURL)
}

func Test_Discovery_OnlyFirstLinkUsed(t *testing.T) {
	bmc := redfishtest.NewServer()
	defer bmc.Close()
	bmc.AddSystemDocument("1", map[string]interface{}{
		"Id": "1",
		"Links": map[string]interface{}{
			"Chassis": []map[string]string{
				{"@odata.id": "/redfish/v1/Chassis/Blade1/"},
				{"@odata.id": "/redfish/v1/Chassis/Enclosure"},
			},
			"ManagedBy": []map[string]string{
				{"@odata.id": "/redfish/v1/Managers/iDRAC.Embedded.1"},
				{"@odata.id": "/redfish/v1/Managers/CMC"},
			},
		},
	})

	c, err := New(context.Background(), testConfig(bmc.URL))
	require.NoError(t, err)

	chassisID, _ := c.Topology().ChassisID(0)
	managerID, _ := c.Topology().ManagerID(0)
	assert.Equal(t, "Blade1", chassisID)
	assert.Equal(t, "iDRAC.Embedded.1", managerID)
}

func Test_Discovery_Failures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(bmc *redfishtest.Server)
		user    string
		errText string
	}{
		{
			name: "missing ManagedBy",
			setup: func(bmc *redfishtest.Server) {
				bmc.AddSystemDocument("1", map[string]interface{}{
					"Links": map[string]interface{}{
						"Chassis": []map[string]string{{"@odata.id": "/redfish/v1/Chassis/1"}},
					},
				})
			},
			errText: "Links.ManagedBy",
		},
		{
			name: "empty Chassis list",
			setup: func(bmc *redfishtest.Server) {
				bmc.AddSystemDocument("1", map[string]interface{}{
					"Links": map[string]interface{}{
						"Chassis":   []map[string]string{},
						"ManagedBy": []map[string]string{{"@odata.id": "/redfish/v1/Managers/1"}},
					},
				})
			},
			errText: "Links.Chassis",
		},
		{
			name: "missing Links",
			setup: func(bmc *redfishtest.Server) {
				bmc.AddSystemDocument("1", map[string]interface{}{"Id": "1"})
			},
			errText: `"Links"`,
		},
		{
			name: "missing Members",
			setup: func(bmc *redfishtest.Server) {
				bmc.HandleGet("/redfish/v1/Systems", map[string]interface{}{"Name": "Computer System Collection"})
			},
			errText: `"Members"`,
		},
		{
			name: "system list unreachable",
			setup: func(bmc *redfishtest.Server) {
			},
			errText: "HTTP status 404",
		},
		{
			name: "second system document missing",
			setup: func(bmc *redfishtest.Server) {
				bmc.AddSystem("1", "1", "1")
				bmc.HandleGet("/redfish/v1/Systems", map[string]interface{}{
					"Members": []map[string]string{
						{"@odata.id": "/redfish/v1/Systems/1"},
						{"@odata.id": "/redfish/v1/Systems/2"},
					},
				})
			},
			errText: "/redfish/v1/Systems/2",
		},
		{
			name: "malformed system list",
			setup: func(bmc *redfishtest.Server) {
				bmc.HandleGet("/redfish/v1/Systems", "<html>")
			},
			errText: "unmarshalling",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			bmc := redfishtest.NewServer()
			defer bmc.Close()
			test.setup(bmc)

			c, err := New(context.Background(), testConfig(bmc.URL))
			assert.Nil(t, c)
			assert.True(t, errors.Is(err, common.ErrDiscovery), "got %v", err)
			assert.False(t, errors.Is(err, common.ErrRemote), "got %v", err)
			assert.ErrorContains(t, err, test.errText)

			var derr *common.DiscoveryError
			assert.True(t, errors.As(err, &derr))
		})
	}
}

func Test_Discovery_Unauthorized(t *testing.T) {
	bmc := redfishtest.NewServer()
	defer bmc.Close()
	bmc.AddSystem("1", "1", "1")

	cfg := testConfig(bmc.URL)
	cfg.Pass = "wrong"

	c, err := New(context.Background(), cfg)
	assert.Nil(t, c)
	assert.True(t, errors.Is(err, common.ErrDiscovery))
	assert.True(t, errors.Is(err, common.ErrInvalidCredential))
	assert.False(t, errors.Is(err, common.ErrRemote))

	var derr *common.DiscoveryError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, http.StatusUnauthorized, derr.StatusCode)
}

func Test_Discovery_MissingHost(t *testing.T) {
	c, err := New(context.Background(), config.Config{})
	assert.Nil(t, c)
	assert.True(t, errors.Is(err, config.ErrMissingHost))
}

func Test_Topology_IndexOutOfRange(t *testing.T) {
	assert := assert.New(t)

	bmc := redfishtest.NewServer()
	defer bmc.Close()
	bmc.AddSystem("1", "1", "1")

	c, err := New(context.Background(), testConfig(bmc.URL))
	require.NoError(t, err)

	for _, i := range []int{-1, 1, 5} {
		_, err := c.SystemURL(i)
		assert.True(errors.Is(err, common.ErrIndexOutOfRange))
		_, err = c.ChassisURL(i)
		assert.True(errors.Is(err, common.ErrIndexOutOfRange))
		_, err = c.ManagerURL(i)
		assert.True(errors.Is(err, common.ErrIndexOutOfRange))
		_, err = c.Topology().SystemDocument(i)
		assert.True(errors.Is(err, common.ErrIndexOutOfRange))
	}

	_, err = c.PowerState(context.Background(), 3)
	assert.True(errors.Is(err, common.ErrIndexOutOfRange))
}

func Test_Topology_ReadOnly(t *testing.T) {
	bmc := redfishtest.NewServer()
	defer bmc.Close()
	bmc.AddSystem("1", "1", "1")

	c, err := New(context.Background(), testConfig(bmc.URL))
	require.NoError(t, err)

	systems := c.Topology().Systems()
	systems[0] = "mutated"
	doc, _ := c.Topology().SystemDocument(0)
	doc[0] = 'X'

	id, _ := c.Topology().SystemID(0)
	assert.Equal(t, "1", id)
	doc, _ = c.Topology().SystemDocument(0)
	assert.Equal(t, byte('{'), doc[0])
}
