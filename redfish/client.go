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
	"net/http"
	"strings"

	"github.com/comcast/fishyredfish/common"
	"github.com/comcast/fishyredfish/config"
	"github.com/comcast/fishyredfish/oem"
	"go.uber.org/zap"
)

const (
	// DefaultThermalSuffix is used when no vendor adapter supplies a thermal suffix
	DefaultThermalSuffix = "Thermal"
	// DefaultPowerSuffix is appended to the chassis url to reach the power resource
	DefaultPowerSuffix = "Power"
)

// Client is the vendor independent part of a Redfish BMC client. It owns the
// connection parameters and the topology discovered by New. Vendor adapters
// embed it and add their own parsing on top.
type Client struct {
	cfg           config.Config
	base          string
	cred          *common.Credential
	transport     common.Transport
	log           *zap.Logger
	thermalSuffix string
	topology      *Topology
}

// Option configures a Client
type Option func(*Client)

// WithTransport replaces the default HTTP transport
func WithTransport(t common.Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithLogger sets the logger, the default discards everything
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithThermalSuffix sets the path appended to the chassis url for thermal readings
func WithThermalSuffix(suffix string) Option {
	return func(c *Client) {
		c.thermalSuffix = suffix
	}
}

// New builds a client and discovers the topology of the BMC. When discovery
// fails no client is returned.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:           cfg,
		base:          common.NormalizeBase(cfg.Host),
		cred:          &common.Credential{User: cfg.User, Pass: cfg.Pass},
		log:           zap.NewNop(),
		thermalSuffix: DefaultThermalSuffix,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = common.NewHTTPTransport(cfg.SSLVerify, common.DefaultTimeout)
	}
	c.log = c.log.With(zap.String("bmc", cfg.DisplayName()))

	topology, err := discover(ctx, c)
	if err != nil {
		c.log.Error("topology discovery failed", zap.Error(err))
		return nil, err
	}
	c.topology = topology

	c.log.Debug("topology discovery finished", zap.Strings("systems", topology.Systems()))

	return c, nil
}

// Name is the display name of the BMC
func (c *Client) Name() string {
	return c.cfg.DisplayName()
}

// BaseURL is the scheme qualified base url derived from the configured host
func (c *Client) BaseURL() string {
	return c.base
}

// Topology returns the topology discovered at construction
func (c *Client) Topology() *Topology {
	return c.topology
}

// ThermalSuffix is the path below the chassis url read by Thermal
func (c *Client) ThermalSuffix() string {
	return c.thermalSuffix
}

func (c *Client) Logger() *zap.Logger {
	return c.log
}

func (c *Client) SystemURL(system int) (string, error) {
	return c.topology.SystemURL(system)
}

func (c *Client) ChassisURL(system int) (string, error) {
	return c.topology.ChassisURL(system)
}

func (c *Client) ManagerURL(system int) (string, error) {
	return c.topology.ManagerURL(system)
}

// SubResource appends a vendor suffix such as "Thermal" or "/Power" to a resource url
func SubResource(resourceURL string, suffix ...string) (string, error) {
	segments := []string{resourceURL}
	for _, s := range suffix {
		segments = append(segments, strings.TrimPrefix(s, "/"))
	}
	return common.JoinSegments(segments...)
}

// Get fetches uri and decodes the JSON body into v
func (c *Client) Get(ctx context.Context, uri string, v interface{}) error {
	_, err := c.get(ctx, uri, v)
	return err
}

func (c *Client) get(ctx context.Context, uri string, v interface{}) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return nil, &common.RemoteError{URL: uri, Err: fmt.Errorf("error unmarshalling response body - %w", err)}
	}

	return body, nil
}

// Post sends payload as JSON to uri
func (c *Client) Post(ctx context.Context, uri string, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshalling payload for %s - %w", uri, err)
	}

	_, err = c.do(ctx, http.MethodPost, uri, b)
	return err
}

func (c *Client) do(ctx context.Context, method, uri string, body []byte) ([]byte, error) {
	status, resp, err := c.transport.Do(ctx, method, uri, c.cred, body)
	if err != nil {
		c.log.Error("api call "+uri+" failed", zap.String("method", method), zap.Error(err))
		return nil, &common.RemoteError{URL: uri, Err: err}
	}

	if !common.IsSuccess(status) {
		c.log.Error("api call "+uri+" failed", zap.String("method", method), zap.Int("status", status))
		rerr := &common.RemoteError{URL: uri, StatusCode: status}
		if status == http.StatusUnauthorized {
			rerr.Err = common.ErrInvalidCredential
		}
		return nil, rerr
	}

	c.log.Debug("api call "+uri+" succeeded", zap.String("method", method), zap.Int("status", status))

	return resp, nil
}

// PowerState reads the PowerState of a system
func (c *Client) PowerState(ctx context.Context, system int) (oem.PowerState, error) {
	uri, err := c.SystemURL(system)
	if err != nil {
		return "", err
	}

	var sys oem.System
	if err := c.Get(ctx, uri, &sys); err != nil {
		return "", err
	}
	if sys.PowerState == "" {
		return "", &common.RemoteError{URL: uri, Field: "PowerState"}
	}

	return sys.PowerState, nil
}

// Thermal reads the temperature sensors of the chassis linked to a system.
// Sensors reporting null keep their entry with a nil reading.
func (c *Client) Thermal(ctx context.Context, system int) (Thermal, error) {
	chassisURL, err := c.ChassisURL(system)
	if err != nil {
		return nil, err
	}
	uri, err := SubResource(chassisURL, c.thermalSuffix)
	if err != nil {
		return nil, err
	}

	var tm oem.ThermalMetrics
	if err := c.Get(ctx, uri, &tm); err != nil {
		return nil, err
	}
	if tm.Temperatures == nil {
		return nil, &common.RemoteError{URL: uri, Field: "Temperatures"}
	}

	thermal := make(Thermal, len(tm.Temperatures))
	for _, sensor := range tm.Temperatures {
		var reading *float64
		if celsius, ok := ParseNumber(sensor.ReadingCelsius); ok {
			reading = &celsius
		}
		thermal[sensor.Name] = reading
	}

	return thermal, nil
}

// PowerMetrics fetches the power resource of the chassis linked to a system
func (c *Client) PowerMetrics(ctx context.Context, system int) (oem.PowerMetrics, string, error) {
	var pm oem.PowerMetrics

	chassisURL, err := c.ChassisURL(system)
	if err != nil {
		return pm, "", err
	}
	uri, err := SubResource(chassisURL, DefaultPowerSuffix)
	if err != nil {
		return pm, "", err
	}

	err = c.Get(ctx, uri, &pm)
	return pm, uri, err
}
