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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/comcast/fishyredfish/common"
	"github.com/comcast/fishyredfish/config"
	"github.com/comcast/fishyredfish/oem"
	"github.com/comcast/fishyredfish/pool"
	"github.com/comcast/fishyredfish/redfish"
	"github.com/comcast/fishyredfish/redfish/redfishtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBMC(t *testing.T) *redfishtest.Server {
	t.Helper()

	bmc := redfishtest.NewServer()
	t.Cleanup(bmc.Close)
	bmc.AddSystem("1", "1", "1")
	bmc.HandleGet("/redfish/v1/Chassis/1/Power", map[string]interface{}{
		"PowerControl":  []map[string]interface{}{{"PowerConsumedWatts": 180.4}},
		"PowerSupplies": []map[string]interface{}{{"LastPowerOutputWatts": "100"}, {"LastPowerOutputWatts": "150"}},
	})
	bmc.HandleGet("/redfish/v1/Chassis/1/Thermal", map[string]interface{}{
		"Temperatures": []map[string]interface{}{{"Name": "Inlet", "ReadingCelsius": 24.5}},
	})
	bmc.HandleGet("/redfish/v1/Systems/1/Metrics", map[string]interface{}{"ProcessorPowerWatt": 90})
	bmc.Handle(http.MethodPost, "/redfish/v1/Managers/1/Actions/Manager.Reset", http.StatusNoContent, nil)
	return bmc
}

func testTarget(bmc *redfishtest.Server, vendor string) config.Target {
	return config.Target{
		Config: config.Config{Host: bmc.URL, User: redfishtest.User, Pass: redfishtest.Pass, Name: vendor + "-node"},
		Vendor: vendor,
	}
}

func Test_run(t *testing.T) {
	bmc := newBMC(t)
	ctx := context.Background()

	tests := []struct {
		vendor  string
		command string
		action  string
		want    interface{}
	}{
		{"supermicro", cmdPower, "", redfish.Metrics{redfish.TotalPowerKey: 250}},
		{"intel", cmdPower, "", redfish.Metrics{redfish.TotalPowerKey: 180}},
		{"supermicro", cmdState, "", oem.PowerStateOn},
		{"supermicro", cmdMetrics, "", redfish.Metrics{"Inlet": 24.5, redfish.TotalPowerKey: 250}},
		{"intel", cmdMetrics, "", redfish.Metrics{"ProcessorPowerWatt": 90, "Inlet": 24.5, redfish.TotalPowerKey: 180}},
		{"supermicro", cmdAction, "GracefulRestart", map[string]string{"action": "GracefulRestart"}},
		{"intel", cmdResetManager, "", map[string]string{"action": "ForceRestart"}},
	}

	for _, test := range tests {
		t.Run(test.vendor+" "+test.command, func(t *testing.T) {
			got, err := run(ctx, testTarget(bmc, test.vendor), test.command, 0, test.action)
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func Test_run_Thermal(t *testing.T) {
	bmc := newBMC(t)

	got, err := run(context.Background(), testTarget(bmc, "supermicro"), cmdThermal, 0, "")
	require.NoError(t, err)

	thermal, ok := got.(redfish.Thermal)
	require.True(t, ok)
	assert.Equal(t, 24.5, *thermal["Inlet"])
}

func Test_run_Errors(t *testing.T) {
	bmc := newBMC(t)
	ctx := context.Background()

	_, err := run(ctx, testTarget(bmc, "supermicro"), cmdResetManager, 0, "")
	assert.True(t, errors.Is(err, common.ErrUnsupportedAction))

	_, err = run(ctx, testTarget(bmc, "supermicro"), cmdAction, 0, "PushPowerButton")
	assert.True(t, errors.Is(err, common.ErrUnsupportedAction))

	_, err = run(ctx, testTarget(bmc, "hpe"), cmdPower, 0, "")
	assert.True(t, errors.Is(err, common.ErrUnsupportedVendor))

	_, err = run(ctx, testTarget(bmc, "intel"), "reboot", 0, "")
	assert.EqualError(t, err, `unknown command "reboot"`)
}

type staticSecrets map[string][2]string

func (s staticSecrets) ReadCredential(ctx context.Context, profile, target string) (string, string, error) {
	cred, ok := s[profile+"/"+target]
	if !ok {
		return "", "", errors.New("no such secret")
	}
	return cred[0], cred[1], nil
}

func Test_resolveCredential(t *testing.T) {
	creds := common.NewCredentials(staticSecrets{"bmc/10.0.0.1": {"admin", "vault-pass"}})
	ctx := context.Background()

	fromVault := config.Target{Config: config.Config{Host: "10.0.0.1"}, CredentialProfile: "bmc"}
	require.NoError(t, resolveCredential(ctx, creds, &fromVault))
	assert.Equal(t, "admin", fromVault.User)
	assert.Equal(t, "vault-pass", fromVault.Pass)

	static := config.Target{Config: config.Config{Host: "10.0.0.2", User: "root", Pass: "static"}, CredentialProfile: "bmc"}
	require.NoError(t, resolveCredential(ctx, creds, &static))
	assert.Equal(t, "static", static.Pass)

	missing := config.Target{Config: config.Config{Host: "10.0.0.3"}, CredentialProfile: "bmc"}
	assert.ErrorContains(t, resolveCredential(ctx, creds, &missing), "10.0.0.3")
}

func Test_writeResults(t *testing.T) {
	ok := pool.NewTask("node1", func() (interface{}, error) {
		return redfish.Metrics{redfish.TotalPowerKey: 250}, nil
	})
	bad := pool.NewTask("node2", func() (interface{}, error) {
		return redfish.Metrics{}, errors.New("remote call failed")
	})

	p := pool.NewPool([]*pool.Task{ok, bad}, 2)
	p.Run()

	var buf bytes.Buffer
	failed, err := writeResults(&buf, p.Tasks)
	require.NoError(t, err)
	assert.True(t, failed)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"name":"node1","result":{"TotalPowerWatts":250}}`, lines[0])
	assert.JSONEq(t, `{"name":"node2","error":"remote call failed"}`, lines[1])

	var r result
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &r))
	assert.Empty(t, r.Error)
}

func Test_newLogConfig(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		sslVerify bool
	}{
		{name: "vector tls unverified by default", args: []string{cmdPower}},
		{name: "vector tls verified", args: []string{"--vector.ssl-verify", cmdPower}, sslVerify: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			command, err := a.Parse(append([]string{"--log.method", "vector", "--vector.endpoint", "https://vector:4444"}, test.args...))
			require.NoError(t, err)
			assert.Equal(t, cmdPower, command)

			cfg := newLogConfig()
			assert.Equal(t, "vector", cfg.LogMethod)
			assert.Equal(t, "https://vector:4444", cfg.VectorEndpoint)
			assert.Equal(t, test.sslVerify, cfg.SSLVerify)
		})
	}
}
