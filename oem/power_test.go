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

package oem

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_PowerControlWrapper(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		count int
		first interface{}
	}{
		{
			name:  "array",
			body:  `{"PowerControl":[{"PowerConsumedWatts":312},{"PowerConsumedWatts":5}]}`,
			count: 2,
			first: float64(312),
		},
		{
			name:  "single object",
			body:  `{"PowerControl":{"PowerConsumedWatts":"199.9"}}`,
			count: 1,
			first: "199.9",
		},
		{
			name:  "missing",
			body:  `{"PowerSupplies":[]}`,
			count: 0,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var pm PowerMetrics
			require.NoError(t, json.Unmarshal([]byte(test.body), &pm))
			require.Len(t, pm.PowerControl.PowerControl, test.count)
			if test.count > 0 {
				assert.Equal(t, test.first, pm.PowerControl.PowerControl[0].PowerConsumedWatts)
			}
		})
	}
}

func Test_System_Links(t *testing.T) {
	var sys System
	require.NoError(t, json.Unmarshal([]byte(`{"Id":"1","PowerState":"Off"}`), &sys))
	assert.Nil(t, sys.Links)
	assert.Equal(t, PowerStateOff, sys.PowerState)

	body := `{"Links":{"Chassis":[{"@odata.id":"/redfish/v1/Chassis/1"}]},
		"Oem":{"Intel_RackScale":{"Metrics":{"@odata.id":"/redfish/v1/Systems/1/Metrics"}}}}`
	require.NoError(t, json.Unmarshal([]byte(body), &sys))
	require.NotNil(t, sys.Links)
	assert.Equal(t, "/redfish/v1/Chassis/1", sys.Links.Chassis[0].URL)
	assert.Nil(t, sys.Links.ManagedBy)
	assert.Equal(t, "/redfish/v1/Systems/1/Metrics", sys.Oem.IntelRackScale.Metrics.URL)
}
