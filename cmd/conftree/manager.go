// manager.go: Orpheus-powered CLI for conftree stores
//
// The CLI operates on a schema-defined tree: every command loads the YAML
// schema, builds a registry, binds the chosen backend and then runs one
// driver operation. Keys are given as rendered paths ("/food/bread/white",
// "/orders/1") or raw identifiers ("0x7fffffffffffffe2").
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"github.com/agilira/orpheus/pkg/orpheus"
)

const version = "1.0.0"

// Manager wires the command tree and shared store flags.
type Manager struct {
	app *orpheus.App
}

// NewManager builds the CLI command structure.
func NewManager() *Manager {
	app := orpheus.New("conftree").
		SetDescription("Hierarchical configuration store management").
		SetVersion(version)

	m := &Manager{app: app}
	m.setupValueCommands()
	m.setupStoreCommands()
	m.setupInspectCommands()
	return m
}

// Run executes the CLI with the provided arguments.
func (m *Manager) Run(args []string) error {
	return m.app.Run(args)
}

// addStoreFlags attaches the flags every command needs to reach a store.
func addStoreFlags(cmd *orpheus.Command) *orpheus.Command {
	cmd.AddFlag("schema", "s", "conftree.yaml", "Tree schema file")
	cmd.AddFlag("backend", "b", "bolt", "Backend kind (bolt|sqlite|file|ram)")
	cmd.AddFlag("db", "d", "conftree.db", "Backend path (file or directory)")
	return cmd
}

// setupValueCommands configures in-memory value access.
func (m *Manager) setupValueCommands() {
	// get <key> [--raw]
	getCmd := orpheus.NewCommand("get", "Read a value (imports it first)")
	getCmd.SetHandler(m.handleGet)
	getCmd.AddBoolFlag("raw", "r", false, "Print raw bytes instead of hex")
	addStoreFlags(getCmd)
	m.app.AddCommand(getCmd)

	// set <key> <value>
	setCmd := orpheus.NewCommand("set", "Write a value and export it")
	setCmd.SetHandler(m.handleSet)
	setCmd.AddBoolFlag("no-export", "n", false, "Keep the change in memory only")
	addStoreFlags(setCmd)
	m.app.AddCommand(setCmd)
}

// setupStoreCommands configures persistence operations.
func (m *Manager) setupStoreCommands() {
	importCmd := orpheus.NewCommand("import", "Load a subtree from the backend")
	importCmd.SetHandler(m.handleImport)
	addStoreFlags(importCmd)
	m.app.AddCommand(importCmd)

	exportCmd := orpheus.NewCommand("export", "Persist a subtree to the backend")
	exportCmd.SetHandler(m.handleExport)
	addStoreFlags(exportCmd)
	m.app.AddCommand(exportCmd)

	deleteCmd := orpheus.NewCommand("delete", "Remove a subtree's records from the backend")
	deleteCmd.SetHandler(m.handleDelete)
	addStoreFlags(deleteCmd)
	m.app.AddCommand(deleteCmd)

	verifyCmd := orpheus.NewCommand("verify", "Verify a subtree after importing it")
	verifyCmd.SetHandler(m.handleVerify)
	verifyCmd.AddBoolFlag("reimport", "r", false, "Reload failing handlers from the backend")
	addStoreFlags(verifyCmd)
	m.app.AddCommand(verifyCmd)
}

// setupInspectCommands configures diagnostics.
func (m *Manager) setupInspectCommands() {
	treeCmd := orpheus.NewCommand("tree", "Print the schema's element tree")
	treeCmd.SetHandler(m.handleTree)
	addStoreFlags(treeCmd)
	m.app.AddCommand(treeCmd)
}
