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

package supermicro

import (
	"context"
	"fmt"
	"math"

	"github.com/comcast/fishyredfish/common"
	"github.com/comcast/fishyredfish/config"
	"github.com/comcast/fishyredfish/redfish"
	"go.uber.org/zap"
)

const (
	// VendorName is the name the adapter is registered under
	VendorName = "supermicro"

	// ThermalSuffix is appended to the chassis url to reach the thermal resource
	ThermalSuffix = "Thermal"

	resetAction = "ComputerSystem.Reset"
)

var actions = []string{
	"On",
	"ForceOff",
	"GracefulShutdown",
	"GracefulRestart",
	"ForceRestart",
	"Nmi",
	"ForceOn",
}

func init() {
	redfish.Register(VendorName, func(ctx context.Context, cfg config.Config, opts ...redfish.Option) (redfish.Vendor, error) {
		return New(ctx, cfg, opts...)
	})
}

// Supermicro reads power from the power supplies of a chassis
type Supermicro struct {
	*redfish.Client
}

func New(ctx context.Context, cfg config.Config, opts ...redfish.Option) (*Supermicro, error) {
	opts = append([]redfish.Option{redfish.WithThermalSuffix(ThermalSuffix)}, opts...)
	c, err := redfish.New(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Supermicro{Client: c}, nil
}

// PowerConsumption sums LastPowerOutputWatts over every power supply of the
// chassis, each reading truncated to whole watts
func (s *Supermicro) PowerConsumption(ctx context.Context, system int) (int, error) {
	pm, uri, err := s.PowerMetrics(ctx, system)
	if err != nil {
		return 0, err
	}

	if len(pm.PowerSupplies) == 0 {
		return 0, &common.RemoteError{URL: uri, Field: "PowerSupplies"}
	}

	var total int
	for i, psu := range pm.PowerSupplies {
		watts, ok := redfish.Watts(psu.LastPowerOutputWatts)
		if !ok {
			s.Logger().Error("unusable power supply reading",
				zap.String("url", uri),
				zap.String("psu", psu.Name),
				zap.Any("value", psu.LastPowerOutputWatts))
			return 0, &common.RemoteError{URL: uri, Field: fmt.Sprintf("PowerSupplies[%d].LastPowerOutputWatts", i)}
		}
		if total > math.MaxInt-watts {
			return 0, &common.RemoteError{URL: uri, Field: "PowerSupplies", Err: fmt.Errorf("sum of power supply readings overflows")}
		}
		total += watts
	}

	return total, nil
}

// Metrics returns the thermal readings plus TotalPowerWatts
func (s *Supermicro) Metrics(ctx context.Context, system int) (redfish.Metrics, error) {
	thermal, err := s.Thermal(ctx, system)
	if err != nil {
		return nil, err
	}

	watts, err := s.PowerConsumption(ctx, system)
	if err != nil {
		return nil, err
	}

	return redfish.MergeMetrics(thermal.Metrics(), redfish.Metrics{redfish.TotalPowerKey: float64(watts)}), nil
}

func (s *Supermicro) PowerAction(ctx context.Context, system int, action string) error {
	if err := redfish.ValidateAction(action, actions); err != nil {
		return err
	}

	uri, err := s.SystemURL(system)
	if err != nil {
		return err
	}

	s.Logger().Info("sending power action", zap.String("action", action), zap.String("url", uri))

	return s.Reset(ctx, uri, resetAction, action)
}

func (s *Supermicro) Actions() []string {
	return append([]string(nil), actions...)
}
