// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package convert

import (
	"encoding"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"sync"
	"time"

	"tailscale.com/util/mak"
)

// Registry holds custom parsers and enum tables. Register types before
// resolving destinations that use them; a resolved Target keeps the
// parser it was resolved with.
type Registry struct {
	mu      sync.RWMutex
	parsers map[reflect.Type]func(string) (reflect.Value, error)
	enums   map[reflect.Type]*enumTable
}

// NewRegistry returns an empty registry. Built-in conversions are always
// available and do not need registering.
func NewRegistry() *Registry {
	return &Registry{}
}

// Default is the registry used when none is supplied.
var Default = NewRegistry()

// Register installs fn as the parser for T, taking precedence over the
// built-in conversions.
func Register[T any](r *Registry, fn func(string) (T, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mak.Set(&r.parsers, reflect.TypeFor[T](), func(s string) (reflect.Value, error) {
		v, err := fn(s)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(&v).Elem(), nil
	})
}

// RegisterEnum declares the members of an integer type that does not
// implement Enumerated itself.
func (r *Registry) RegisterEnum(t reflect.Type, flags bool, members ...Member) error {
	et, err := newEnumTable(t, flags, members)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	mak.Set(&r.enums, t, et)
	return nil
}

func (r *Registry) parser(t reflect.Type) (func(string) (reflect.Value, error), bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.parsers[t]
	return fn, ok
}

// Resolve decides the Kind of t. Slices become collections of their
// element type; fixed-size arrays are rejected. Slice and array types
// that unmarshal from text (net.IP, uuid.UUID) are scalars.
func (r *Registry) Resolve(t reflect.Type) (Target, error) {
	if _, ok := r.parser(t); !ok && !reflect.PointerTo(t).Implements(textUnmarshalerType) {
		switch t.Kind() {
		case reflect.Slice:
			e, err := r.element(t.Elem())
			if err != nil {
				return Target{}, fmt.Errorf("collection %v: %w", t, err)
			}
			return Target{Kind: Collection, Type: t, Elem: e}, nil
		case reflect.Array:
			return Target{}, fmt.Errorf("%w: fixed-size array %v", ErrUnsupported, t)
		}
	}
	e, err := r.element(t)
	if err != nil {
		return Target{}, err
	}
	return Target{Kind: e.Kind, Type: t, Elem: e}, nil
}

func (r *Registry) element(t reflect.Type) (Element, error) {
	if fn, ok := r.parser(t); ok {
		return Element{Kind: Scalar, Type: t, parse: fn}, nil
	}
	if t.Kind() == reflect.Pointer {
		e, err := r.element(t.Elem())
		if err != nil {
			return Element{}, err
		}
		if e.Ptr {
			return Element{}, fmt.Errorf("%w: %v", ErrUnsupported, t)
		}
		e.Ptr = true
		return e, nil
	}
	et, err := r.enumFor(t)
	if err != nil {
		return Element{}, err
	}
	if et != nil {
		k := Enum
		if et.flags {
			k = Flags
		}
		return Element{Kind: k, Type: t, enum: et}, nil
	}
	if fn := builtinParser(t); fn != nil {
		return Element{Kind: Scalar, Type: t, parse: fn}, nil
	}
	return Element{}, fmt.Errorf("%w: %v", ErrUnsupported, t)
}

var (
	enumeratedType      = reflect.TypeFor[Enumerated]()
	flaggedType         = reflect.TypeFor[Flagged]()
	durationType        = reflect.TypeFor[time.Duration]()
	urlType             = reflect.TypeFor[url.URL]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

func (r *Registry) enumFor(t reflect.Type) (*enumTable, error) {
	r.mu.RLock()
	et := r.enums[t]
	r.mu.RUnlock()
	if et != nil {
		return et, nil
	}
	if !t.Implements(enumeratedType) {
		return nil, nil
	}
	zero := reflect.Zero(t).Interface()
	flags := false
	if t.Implements(flaggedType) {
		flags = zero.(Flagged).EnumFlags()
	}
	return newEnumTable(t, flags, zero.(Enumerated).EnumMembers())
}

func builtinParser(t reflect.Type) func(string) (reflect.Value, error) {
	switch {
	case t == durationType:
		return func(s string) (reflect.Value, error) {
			d, err := time.ParseDuration(s)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(d), nil
		}
	case t == urlType:
		return func(s string) (reflect.Value, error) {
			u, err := url.Parse(s)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(*u), nil
		}
	case reflect.PointerTo(t).Implements(textUnmarshalerType):
		return func(s string) (reflect.Value, error) {
			p := reflect.New(t)
			if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
				return reflect.Value{}, err
			}
			return p.Elem(), nil
		}
	}

	switch k := t.Kind(); {
	case k == reflect.String:
		return func(s string) (reflect.Value, error) {
			v := reflect.New(t).Elem()
			v.SetString(s)
			return v, nil
		}
	case k == reflect.Bool:
		return func(s string) (reflect.Value, error) {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return reflect.Value{}, err
			}
			v := reflect.New(t).Elem()
			v.SetBool(b)
			return v, nil
		}
	case isSigned(k):
		return func(s string) (reflect.Value, error) {
			n, err := strconv.ParseInt(s, 10, t.Bits())
			if err != nil {
				return reflect.Value{}, err
			}
			v := reflect.New(t).Elem()
			v.SetInt(n)
			return v, nil
		}
	case isUnsigned(k):
		return func(s string) (reflect.Value, error) {
			n, err := strconv.ParseUint(s, 10, t.Bits())
			if err != nil {
				return reflect.Value{}, err
			}
			v := reflect.New(t).Elem()
			v.SetUint(n)
			return v, nil
		}
	case k == reflect.Float32 || k == reflect.Float64:
		return func(s string) (reflect.Value, error) {
			f, err := strconv.ParseFloat(s, t.Bits())
			if err != nil {
				return reflect.Value{}, err
			}
			v := reflect.New(t).Elem()
			v.SetFloat(f)
			return v, nil
		}
	}
	return nil
}
