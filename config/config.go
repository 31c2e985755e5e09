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

package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrMissingHost = errors.New("missing host")
)

// Config holds the connection parameters of a single BMC. A client copies it at
// construction and never changes it afterwards.
type Config struct {
	Host      string `yaml:"host"`
	User      string `yaml:"user"`
	Pass      string `yaml:"pass"`
	SSLVerify bool   `yaml:"sslVerify"`
	Name      string `yaml:"name"`
}

func (c Config) Validate() error {
	if c.Host == "" {
		return ErrMissingHost
	}
	return nil
}

// DisplayName returns Name, or Host when no display name is set
func (c Config) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Host
}

// Target is one BMC entry of a targets file
type Target struct {
	Config            `yaml:",inline"`
	Vendor            string `yaml:"vendor"`
	CredentialProfile string `yaml:"credentialProfile"`
}

// Profile holds the parameters needed to read a BMC credential from vault
type Profile struct {
	Name          string `yaml:"name"`
	MountPath     string `yaml:"mountPath"`
	Path          string `yaml:"path"`
	UserField     string `yaml:"userField"`
	PasswordField string `yaml:"passwordField"`
	SecretName    string `yaml:"secretName"`
}

// Targets is the content of a targets file, i.e.
//
//	profiles:
//	  - name: profile1
//	    mountPath: kv2
//	    path: path/to/secret
//	    userField: user
//	    passwordField: password
//	targets:
//	  - name: rack1-node1
//	    host: https://10.0.0.1
//	    vendor: supermicro
//	    credentialProfile: profile1
type Targets struct {
	Profiles []Profile `yaml:"profiles"`
	Targets  []Target  `yaml:"targets"`
}

// LoadTargets reads and validates a targets file
func LoadTargets(path string) (*Targets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading targets file %s - %w", path, err)
	}
	return ParseTargets(data)
}

// ParseTargets parses and validates the yaml content of a targets file
func ParseTargets(data []byte) (*Targets, error) {
	var t Targets
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("error unmarshalling targets - %w", err)
	}

	for i, target := range t.Targets {
		if err := target.Validate(); err != nil {
			return nil, fmt.Errorf("target #%d: %w", i, err)
		}
		if target.CredentialProfile != "" {
			if _, ok := t.Profile(target.CredentialProfile); !ok {
				return nil, fmt.Errorf("target %s references unknown credential profile %q", target.DisplayName(), target.CredentialProfile)
			}
		}
	}

	return &t, nil
}

// Profile looks up a credential profile by name
func (t *Targets) Profile(name string) (Profile, bool) {
	for _, p := range t.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}
