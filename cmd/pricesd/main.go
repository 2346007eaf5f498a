// main.go: Price catalog daemon
//
// pricesd keeps the catalog tree in memory, persists it in a bolt store
// and re-exports on an interval. It wires up the optional registry
// machinery end to end: journal, change notifier, verification with
// reimport recovery and apply activation.
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	flashflags "github.com/agilira/flash-flags"
	"github.com/confkit/conftree"
	"github.com/confkit/conftree/backend/bolt"
)

func main() {
	flags := flashflags.New("pricesd")
	flags.SetDescription("Price catalog daemon backed by a conftree store")
	flags.SetVersion("1.0.0")
	dbPath := flags.String("db", "prices.db", "Bolt database path")
	journalPath := flags.String("journal", "prices.journal", "Operation journal path (JSONL)")
	interval := flags.Duration("export-interval", 30*time.Second, "Periodic export interval")
	verbose := flags.Bool("verbose", false, "Log every change event")

	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatalf("pricesd: %v", err)
	}

	if err := run(*dbPath, *journalPath, *interval, *verbose); err != nil {
		log.Fatalf("pricesd: %v", err)
	}
}

func run(dbPath, journalPath string, interval time.Duration, verbose bool) error {
	journal, err := conftree.OpenJournal(journalPath)
	if err != nil {
		return err
	}
	defer func() { _ = journal.Close() }()

	notifier := conftree.NewNotifier(64, func(ev *conftree.ChangeEvent) {
		if verbose {
			log.Printf("pricesd: %s %s (sid 0x%x)", ev.Op, ev.PathString(), uint64(ev.SID))
		}
	})
	go notifier.Run()
	defer notifier.Stop()

	cat, err := buildCatalog(
		conftree.WithRootLabel("/prices"),
		conftree.WithJournal(journal),
		conftree.WithNotifier(notifier),
	)
	if err != nil {
		return err
	}

	be, err := bolt.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = be.Close() }()

	if err := cat.reg.SetBackend(0, be, be); err != nil {
		return err
	}

	// Defaults first, then overlay whatever the store already has. Missing
	// records are fine on first start; the default import logs and moves on.
	if err := cat.seed(); err != nil {
		return err
	}
	if err := cat.reg.Import(0); err != nil {
		return err
	}
	if err := cat.reg.Verify(0, true); err != nil {
		return err
	}
	if err := cat.reg.Apply(0); err != nil {
		return err
	}
	if err := cat.reg.Export(0); err != nil {
		return err
	}
	log.Printf("pricesd: catalog ready, exporting every %s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			if err := cat.reg.Export(0); err != nil {
				log.Printf("pricesd: export failed: %v", err)
			}
		case <-stop:
			log.Printf("pricesd: shutting down")
			return cat.reg.Export(0)
		}
	}
}
