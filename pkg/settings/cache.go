// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package settings

import (
	"reflect"

	"tailscale.com/syncs"
)

type built struct {
	d   *Descriptor
	err error
}

// descriptors caches tag-built descriptors using the default registry.
var descriptors syncs.Map[reflect.Type, built]

// For returns the tag-built descriptor of T, building it on first use.
// Descriptors built with options other than the defaults are not cached;
// call Build for those.
func For[T any]() (*Descriptor, error) {
	return ForType(reflect.TypeFor[T]())
}

// ForType is For for a reflect.Type.
func ForType(t reflect.Type) (*Descriptor, error) {
	b, _ := descriptors.LoadOrInit(t, func() built {
		d, err := Build(t)
		return built{d, err}
	})
	return b.d, b.err
}
