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
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/comcast/fishyredfish/common"
	"github.com/comcast/fishyredfish/config"
	"github.com/comcast/fishyredfish/pool"
	"github.com/comcast/fishyredfish/redfish"
	"github.com/comcast/fishyredfish/vault"
)

const (
	cmdPower        = "power"
	cmdThermal      = "thermal"
	cmdState        = "state"
	cmdMetrics      = "metrics"
	cmdAction       = "action"
	cmdResetManager = "reset-manager"
	cmdVersion      = "version"
)

// result is printed once per target
type result struct {
	Name   string      `json:"name"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// execute runs one command against a connected vendor adapter
func execute(ctx context.Context, v redfish.Vendor, command string, system int, action string) (interface{}, error) {
	switch command {
	case cmdPower:
		watts, err := v.PowerConsumption(ctx, system)
		if err != nil {
			return nil, err
		}
		return redfish.Metrics{redfish.TotalPowerKey: float64(watts)}, nil
	case cmdThermal:
		return v.Thermal(ctx, system)
	case cmdState:
		return v.PowerState(ctx, system)
	case cmdMetrics:
		return v.Metrics(ctx, system)
	case cmdAction:
		if err := v.PowerAction(ctx, system, action); err != nil {
			return nil, err
		}
		return map[string]string{"action": action}, nil
	case cmdResetManager:
		resetter, ok := v.(redfish.ManagerResetter)
		if !ok {
			return nil, fmt.Errorf("%w: %s cannot reset its manager", common.ErrUnsupportedAction, v.Name())
		}
		if err := resetter.ResetManager(ctx, system); err != nil {
			return nil, err
		}
		return map[string]string{"action": "ForceRestart"}, nil
	default:
		return nil, fmt.Errorf("unknown command %q", command)
	}
}

// run connects to target with the adapter of its vendor and executes command
func run(ctx context.Context, target config.Target, command string, system int, action string, opts ...redfish.Option) (interface{}, error) {
	v, err := redfish.Open(ctx, target.Vendor, target.Config, opts...)
	if err != nil {
		return nil, err
	}
	return execute(ctx, v, command, system, action)
}

// resolveCredential fills in the user and password of a target without static
// credentials from its credential profile
func resolveCredential(ctx context.Context, creds *common.Credentials, target *config.Target) error {
	if target.User != "" || target.Pass != "" || target.CredentialProfile == "" {
		return nil
	}

	cred, err := creds.Resolve(ctx, target.CredentialProfile, target.Host)
	if err != nil {
		return err
	}

	target.User = cred.User
	target.Pass = cred.Pass
	return nil
}

// addProfiles makes the credential profiles of a targets file readable through v
func addProfiles(v *vault.Vault, profiles []config.Profile) {
	for _, p := range profiles {
		v.AddProfile(p.Name, vault.SecretProperties{
			MountPath:     p.MountPath,
			Path:          p.Path,
			UserField:     p.UserField,
			PasswordField: p.PasswordField,
			SecretName:    p.SecretName,
		})
	}
}

// writeResults prints one json line per task in task order and reports
// whether any of them failed
func writeResults(w io.Writer, tasks []*pool.Task) (bool, error) {
	enc := json.NewEncoder(w)
	failed := false

	for _, task := range tasks {
		r := result{Name: task.Name, Result: task.Result}
		if task.Err != nil {
			failed = true
			r.Result = nil
			r.Error = task.Err.Error()
		}
		if err := enc.Encode(r); err != nil {
			return failed, err
		}
	}

	return failed, nil
}
