// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bench

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// settings holds human-readable configuration captured at startup.
	settingsMu sync.RWMutex
	settings   = make(map[string]string)
)

func SetSetting(name string, value string) {
	settingsMu.Lock()
	settings[name] = value
	settingsMu.Unlock()
}

func SetSettingInt(name string, v int) { SetSetting(name, fmt.Sprintf("%d", v)) }
func SetSettingDuration(name string, d time.Duration) { SetSetting(name, d.String()) }
func SetSettingBool(name string, b bool) { SetSetting(name, fmt.Sprintf("%t", b)) }

// Settings returns a copy of the captured settings.
func Settings() map[string]string {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	out := make(map[string]string, len(settings))
	for k, v := range settings {
		out[k] = v
	}
	return out
}

// LogSettings emits the captured settings as one structured entry.
func LogSettings(log logrus.FieldLogger) {
	s := Settings()
	if len(s) == 0 {
		return
	}
	fields := make(logrus.Fields, len(s))
	for k, v := range s {
		fields[k] = v
	}
	log.WithFields(fields).Info("configured settings")
}

func resetSettingsForTests() {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	for k := range settings {
		delete(settings, k)
	}
}
