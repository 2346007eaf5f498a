// main.go: Entry point for the conftree CLI
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewManager().Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "conftree: %v\n", err)
		os.Exit(1)
	}
}
