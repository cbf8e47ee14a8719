// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package settings describes the switches and positional arguments of a
// settings struct.
//
// A Descriptor is built once per struct type, either from struct tags
// (Build, For) or by hand (NewBuilder), and is then shared read-only by
// every parse of that type.
//
// Struct tags read by Build:
//
//	switch:"name,alias"   switch names; empty means the field name
//	occurs:"1-3"          occurrence bounds: "N", "N-M", "N-*" or "*"
//	args:"0-*"            argument bounds, same syntax
//	join:""               arguments are fused into the switch token
//	sep:";,"              joined argument separator characters
//	set:"value"           value assigned when no argument is given
//	exclusive:"a,b"       switches that may not appear with this one
//	pos:"0" / pos:"1?"    positional argument index, "?" marks it optional
//	validate:"Method"     method of *T validating this field's values
//	leftover:""           []string field receiving unconsumed arguments
//
// A validate tag on the leftover field binds the leftover validator.
// Untagged embedded structs are walked as if their fields were declared
// inline.
//
// For example:
//
//	type Settings struct {
//		Verbose bool     `switch:"v,verbose" set:"true"`
//		Include []string `switch:"I" join:"" sep:";,"`
//		Input   string   `pos:"0"`
//		Rest    []string `leftover:""`
//	}
package settings
