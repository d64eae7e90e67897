// Copyright 2026 The Devpanel Authors
// SPDX-License-Identifier: Apache-2.0

// Package version carries the build version stamped into release
// binaries via -ldflags "-X ...version.Version=v1.2.3".
package version

import "fmt"

// Version is the build version. "dev" for untagged builds.
var Version = "dev"

// Print writes the standard version line for a binary.
func Print(binary string) {
	fmt.Printf("%s %s\n", binary, Version)
}
