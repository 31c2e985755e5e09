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

package intel

import (
	"context"

	"github.com/comcast/fishyredfish/common"
	"github.com/comcast/fishyredfish/config"
	"github.com/comcast/fishyredfish/oem"
	"github.com/comcast/fishyredfish/redfish"
	"go.uber.org/zap"
)

const (
	// VendorName is the name the adapter is registered under
	VendorName = "intel"

	// ThermalSuffix is appended to the chassis url to reach the thermal resource
	ThermalSuffix = "Thermal"

	resetAction        = "ComputerSystem.Reset"
	managerResetAction = "Manager.Reset"
	managerResetType   = "ForceRestart"
	metricsSuffix      = "Metrics"
)

var actions = []string{
	"PushPowerButton",
	"On",
	"GracefulShutdown",
	"ForceRestart",
	"Nmi",
	"ForceOn",
	"ForceOff",
}

func init() {
	redfish.Register(VendorName, func(ctx context.Context, cfg config.Config, opts ...redfish.Option) (redfish.Vendor, error) {
		return New(ctx, cfg, opts...)
	})
}

// Intel reads power from the power control of a chassis and enriches metrics
// with the RackScale system metrics document
type Intel struct {
	*redfish.Client
}

func New(ctx context.Context, cfg config.Config, opts ...redfish.Option) (*Intel, error) {
	opts = append([]redfish.Option{redfish.WithThermalSuffix(ThermalSuffix)}, opts...)
	c, err := redfish.New(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Intel{Client: c}, nil
}

// PowerConsumption returns PowerControl[0].PowerConsumedWatts truncated to
// whole watts
func (i *Intel) PowerConsumption(ctx context.Context, system int) (int, error) {
	pm, uri, err := i.PowerMetrics(ctx, system)
	if err != nil {
		return 0, err
	}

	if len(pm.PowerControl.PowerControl) == 0 {
		return 0, &common.RemoteError{URL: uri, Field: "PowerControl"}
	}

	consumed := pm.PowerControl.PowerControl[0].PowerConsumedWatts
	watts, ok := redfish.Watts(consumed)
	if !ok {
		i.Logger().Error("unusable power control reading", zap.String("url", uri), zap.Any("value", consumed))
		return 0, &common.RemoteError{URL: uri, Field: "PowerControl[0].PowerConsumedWatts"}
	}

	return watts, nil
}

// SystemMetricsURL returns the url of the system metrics document, taken from
// Oem.Intel_RackScale.Metrics of the system when present
func (i *Intel) SystemMetricsURL(system int) (string, error) {
	sys, err := i.Topology().System(system)
	if err != nil {
		return "", err
	}
	if link := sys.Oem.IntelRackScale.Metrics.URL; link != "" {
		return common.JoinSegments(i.BaseURL(), link)
	}

	sysURL, err := i.SystemURL(system)
	if err != nil {
		return "", err
	}
	return redfish.SubResource(sysURL, metricsSuffix)
}

// SystemMetrics returns the numeric fields of the system metrics document,
// fields that are missing or do not parse are left out
func (i *Intel) SystemMetrics(ctx context.Context, system int) (redfish.Metrics, error) {
	uri, err := i.SystemMetricsURL(system)
	if err != nil {
		return nil, err
	}

	var sm oem.SystemMetrics
	if err := i.Get(ctx, uri, &sm); err != nil {
		return nil, err
	}

	return redfish.Collect(map[string]interface{}{
		"ProcessorPowerWatt":        sm.ProcessorPowerWatt,
		"MemoryPowerWatt":           sm.MemoryPowerWatt,
		"ProcessorBandwidthPercent": sm.ProcessorBandwidthPercent,
		"MemoryBandwidthPercent":    sm.MemoryBandwidthPercent,
		"IOBandwidthGBps":           sm.IOBandwidthGBps,
	}), nil
}

// Metrics merges system metrics, thermal readings and TotalPowerWatts in that
// order
func (i *Intel) Metrics(ctx context.Context, system int) (redfish.Metrics, error) {
	sm, err := i.SystemMetrics(ctx, system)
	if err != nil {
		return nil, err
	}

	thermal, err := i.Thermal(ctx, system)
	if err != nil {
		return nil, err
	}

	watts, err := i.PowerConsumption(ctx, system)
	if err != nil {
		return nil, err
	}

	merged := redfish.MergeMetrics(sm, thermal.Metrics())
	return redfish.MergeMetrics(merged, redfish.Metrics{redfish.TotalPowerKey: float64(watts)}), nil
}

func (i *Intel) PowerAction(ctx context.Context, system int, action string) error {
	if err := redfish.ValidateAction(action, actions); err != nil {
		return err
	}

	uri, err := i.SystemURL(system)
	if err != nil {
		return err
	}

	i.Logger().Info("sending power action", zap.String("action", action), zap.String("url", uri))

	return i.Reset(ctx, uri, resetAction, action)
}

func (i *Intel) Actions() []string {
	return append([]string(nil), actions...)
}

// ResetManager restarts the BMC managing a system
func (i *Intel) ResetManager(ctx context.Context, system int) error {
	uri, err := i.ManagerURL(system)
	if err != nil {
		return err
	}

	i.Logger().Info("resetting manager", zap.String("url", uri))

	return i.Reset(ctx, uri, managerResetAction, managerResetType)
}
