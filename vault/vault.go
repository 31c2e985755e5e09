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

package vault

import (
	"context"
	"errors"
	"fmt"
	"sync"

	vault "github.com/hashicorp/vault/api"
	"github.com/hashicorp/vault/api/auth/approle"
	"go.uber.org/zap"
)

const (
	// kvV2Mount is the mount path read with the KV version 2 api, any other
	// mount is read as KV version 1
	kvV2Mount = "kv2"
)

var (
	ErrUnknownProfile = errors.New("unknown credential profile")
	ErrMissingField   = errors.New("secret is missing field")
)

type Parameters struct {
	// connection and credential parameters
	Address         string
	ApproleRoleID   string
	ApproleSecretID string
	CACertBytes     []byte
}

// the locations / field names of kv secrets
type SecretProperties struct {
	MountPath     string
	Path          string
	UserField     string
	PasswordField string
	SecretName    string
	UserName      string
}

type Vault struct {
	mu         sync.RWMutex
	client     *vault.Client
	log        *zap.Logger
	profiles   map[string]SecretProperties
	Parameters Parameters
}

// NewAppRoleClient returns a client for the vault at parameters.Address. It
// has to Login before secrets can be read.
func NewAppRoleClient(parameters Parameters, log *zap.Logger) (*Vault, error) {
	config := vault.DefaultConfig()
	config.Address = parameters.Address
	if len(parameters.CACertBytes) > 0 {
		if err := config.ConfigureTLS(&vault.TLSConfig{
			CACertBytes: parameters.CACertBytes,
		}); err != nil {
			return nil, fmt.Errorf("unable to configure TLS: %w", err)
		}
	}

	client, err := vault.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize vault client: %w", err)
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Vault{
		client:     client,
		log:        log,
		profiles:   make(map[string]SecretProperties),
		Parameters: parameters,
	}, nil
}

// Login authenticates with the AppRole method, a combination of a RoleID and a
// SecretID. The token is kept by the client for later reads.
func (v *Vault) Login(ctx context.Context) error {
	approleSecretID := &approle.SecretID{
		FromString: v.Parameters.ApproleSecretID,
	}

	appRoleAuth, err := approle.NewAppRoleAuth(
		v.Parameters.ApproleRoleID,
		approleSecretID,
	)
	if err != nil {
		return fmt.Errorf("unable to initialize approle authentication method: %w", err)
	}

	authInfo, err := v.client.Auth().Login(ctx, appRoleAuth)
	if err != nil {
		return fmt.Errorf("unable to login using approle auth method: %w", err)
	}
	if authInfo == nil || authInfo.Auth == nil {
		return fmt.Errorf("unable to login using approle auth method: no auth info returned")
	}

	v.log.Info("logged in to vault", zap.String("address", v.Parameters.Address),
		zap.Int("lease_duration", authInfo.Auth.LeaseDuration))

	return nil
}

// Revoke revokes the token obtained by Login
func (v *Vault) Revoke(ctx context.Context) error {
	if v.client.Token() == "" {
		return nil
	}
	return v.client.Auth().Token().RevokeSelfWithContext(ctx, v.client.Token())
}

func (v *Vault) AddProfile(name string, props SecretProperties) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.profiles[name] = props
}

func (v *Vault) profile(name string) (SecretProperties, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	props, ok := v.profiles[name]
	return props, ok
}

// GetKVSecret fetches the latest version of the secret of a target from kv-v1
// or kv-v2
func (v *Vault) GetKVSecret(ctx context.Context, props SecretProperties, target string) (*vault.KVSecret, error) {
	var kvSecret *vault.KVSecret
	var err error

	secretPath := secretPath(props, target)

	if props.MountPath != kvV2Mount {
		kvSecret, err = v.client.KVv1(props.MountPath).Get(ctx, secretPath)
	} else {
		kvSecret, err = v.client.KVv2(props.MountPath).Get(ctx, secretPath)
	}

	if err != nil {
		return kvSecret, fmt.Errorf("unable to read secret %s/%s: %w", props.MountPath, secretPath, err)
	}

	return kvSecret, nil
}

func secretPath(props SecretProperties, target string) string {
	name := target
	if props.SecretName != "" {
		name = props.SecretName
	}
	if props.Path != "" {
		return props.Path + "/" + name
	}
	return name
}

// ReadCredential returns the BMC user and password stored for target under
// the named profile. A profile with a UserName uses it instead of the user
// field of the secret.
func (v *Vault) ReadCredential(ctx context.Context, profile, target string) (string, string, error) {
	props, ok := v.profile(profile)
	if !ok {
		return "", "", fmt.Errorf("%w %q", ErrUnknownProfile, profile)
	}

	secret, err := v.GetKVSecret(ctx, props, target)
	if err != nil {
		return "", "", err
	}

	user := props.UserName
	if user == "" {
		if user, err = stringField(secret, props.UserField); err != nil {
			return "", "", err
		}
	}

	pass, err := stringField(secret, props.PasswordField)
	if err != nil {
		return "", "", err
	}

	v.log.Debug("read credential from vault", zap.String("profile", profile), zap.String("target", target))

	return user, pass, nil
}

func stringField(secret *vault.KVSecret, field string) (string, error) {
	val, ok := secret.Data[field].(string)
	if !ok || val == "" {
		return "", fmt.Errorf("%w %q", ErrMissingField, field)
	}
	return val, nil
}
