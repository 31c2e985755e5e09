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

package common

import (
	"context"
	"fmt"
	"sync"
)

// Credential is a BMC basic auth user/password pair
type Credential struct {
	User string
	Pass string
}

// SecretReader looks up the credential of a target from a secrets backend
// using a named credential profile.
type SecretReader interface {
	ReadCredential(ctx context.Context, profile, target string) (user, pass string, err error)
}

// Credentials caches credentials per target. Entries are filled from the
// secrets backend on first use.
type Credentials struct {
	mu      sync.Mutex
	creds   map[string]*Credential
	secrets SecretReader
}

func NewCredentials(secrets SecretReader) *Credentials {
	return &Credentials{
		creds:   make(map[string]*Credential),
		secrets: secrets,
	}
}

func (c *Credentials) Get(key string) (*Credential, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.creds[key]
	return val, ok
}

func (c *Credentials) Set(key string, value *Credential) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creds[key] = value
}

// Delete drops a cached credential, e.g. after it was rejected by the BMC
func (c *Credentials) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.creds, key)
}

// Resolve returns the cached credential of target or reads it from the secrets
// backend using profile.
func (c *Credentials) Resolve(ctx context.Context, profile, target string) (*Credential, error) {
	if cred, ok := c.Get(target); ok {
		return cred, nil
	}

	if c.secrets == nil {
		return nil, fmt.Errorf("issue retrieving credentials for target %s: no secrets backend configured", target)
	}

	user, pass, err := c.secrets.ReadCredential(ctx, profile, target)
	if err != nil {
		return nil, fmt.Errorf("issue retrieving credentials for target %s using profile %q: %w", target, profile, err)
	}

	cred := &Credential{User: user, Pass: pass}
	c.Set(target, cred)

	return cred, nil
}
