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

package kernel

import (
	"sort"
	"strings"
	"sync"
)

// Registry maps kernel names to implementations. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	kernels map[string]Func
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{kernels: make(map[string]Func)}
}

// Register makes a kernel available under name. Like database/sql.Register it
// panics if f is nil or name is already taken; registration happens in init.
func (r *Registry) Register(name string, f Func) {
	if f == nil {
		panic("kernel: Register func is nil for " + name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.kernels[name]; dup {
		panic("kernel: Register called twice for " + name)
	}
	r.kernels[name] = f
}

// Lookup resolves a kernel by name. An unknown name yields a *MissingKernelError.
func (r *Registry) Lookup(name string) (Func, error) {
	r.mu.RLock()
	f, ok := r.kernels[name]
	r.mu.RUnlock()
	if !ok {
		hint := ""
		if strings.HasPrefix(name, Native) {
			hint = NativeHint
		}
		return nil, &MissingKernelError{Name: name, Hint: hint}
	}
	return f, nil
}

// Names returns the registered kernel names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.kernels))
	for k := range r.kernels {
		out = append(out, k)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Default is the process-wide registry populated by kernel packages in init.
var Default = NewRegistry()

func Register(name string, f Func) { Default.Register(name, f) }
func Lookup(name string) (Func, error) { return Default.Lookup(name) }
func Names() []string { return Default.Names() }
