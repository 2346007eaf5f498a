// handlers.go: Command handler implementations for the conftree CLI
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/agilira/go-errors"
	"github.com/agilira/orpheus/pkg/orpheus"
	"github.com/confkit/conftree"
	"github.com/confkit/conftree/backend/bolt"
	"github.com/confkit/conftree/backend/file"
	"github.com/confkit/conftree/backend/ram"
	"github.com/confkit/conftree/backend/sqlite"
	"github.com/spf13/afero"
)

// store bundles a built registry with its bound backend.
type store struct {
	reg   *conftree.Registry
	idx   *conftree.SchemaIndex
	close func() error
}

// openStore loads the schema, builds the registry and binds the backend
// chosen on the command line to the whole tree.
func openStore(ctx *orpheus.Context) (*store, error) {
	schemaPath := ctx.GetFlagString("schema")
	data, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, errors.Wrap(err, conftree.ErrCodeNoData, "failed to read schema file").
			WithContext("path", schemaPath)
	}
	schema, err := conftree.ParseSchema(data)
	if err != nil {
		return nil, err
	}
	reg, idx, err := schema.Build()
	if err != nil {
		return nil, err
	}

	s := &store{reg: reg, idx: idx, close: func() error { return nil }}
	dbPath := ctx.GetFlagString("db")
	switch kind := ctx.GetFlagString("backend"); kind {
	case "bolt":
		be, err := bolt.Open(dbPath)
		if err != nil {
			return nil, err
		}
		s.close = be.Close
		err = reg.SetBackend(0, be, be)
		if err != nil {
			return nil, err
		}
	case "sqlite":
		be, err := sqlite.Open(dbPath)
		if err != nil {
			return nil, err
		}
		s.close = be.Close
		if err = reg.SetBackend(0, be, be); err != nil {
			return nil, err
		}
	case "file":
		be := file.New(afero.NewOsFs(), dbPath)
		if err = reg.SetBackend(0, be, be); err != nil {
			return nil, err
		}
	case "ram":
		be := ram.New()
		if err = reg.SetBackend(0, be, be); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New(conftree.ErrCodeNotSupported, "unknown backend kind").
			WithContext("backend", kind)
	}
	return s, nil
}

// resolveKey turns a command-line key (rendered path or 0x identifier)
// into an identifier.
func (s *store) resolveKey(arg string) (conftree.SID, error) {
	if arg == "" {
		return 0, errors.New(conftree.ErrCodeNotFound, "missing key argument")
	}
	if strings.HasPrefix(arg, "0x") || strings.HasPrefix(arg, "0X") {
		v, err := strconv.ParseUint(arg[2:], 16, 64)
		if err != nil {
			return 0, errors.Wrap(err, conftree.ErrCodeNotFound, "malformed identifier").
				WithContext("key", arg)
		}
		return conftree.SID(v), nil
	}
	sid, ok := s.idx.SIDOf(arg)
	if !ok {
		return 0, errors.New(conftree.ErrCodeNotFound, "key not in schema").
			WithContext("key", arg)
	}
	return sid, nil
}

func (m *Manager) handleGet(ctx *orpheus.Context) error {
	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.close() }()

	sid, err := s.resolveKey(ctx.GetArg(0))
	if err != nil {
		return err
	}
	if err := s.reg.Import(sid); err != nil {
		return err
	}
	size, err := s.reg.Size(sid)
	if err != nil {
		return err
	}
	buf := make([]byte, size)
	if _, err := s.reg.Get(sid, buf); err != nil {
		return err
	}

	if ctx.GetFlagBool("raw") {
		fmt.Println(strings.TrimRight(string(buf), "\x00"))
	} else {
		fmt.Println(hex.EncodeToString(buf))
	}
	return nil
}

func (m *Manager) handleSet(ctx *orpheus.Context) error {
	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.close() }()

	sid, err := s.resolveKey(ctx.GetArg(0))
	if err != nil {
		return err
	}
	size, err := s.reg.Size(sid)
	if err != nil {
		return err
	}
	value, err := parseValue(ctx.GetArg(1), size)
	if err != nil {
		return err
	}
	if _, err := s.reg.Set(sid, value); err != nil {
		return err
	}
	if ctx.GetFlagBool("no-export") {
		return nil
	}
	return s.reg.Export(sid)
}

func (m *Manager) handleImport(ctx *orpheus.Context) error {
	return m.runDriver(ctx, func(s *store, sid conftree.SID) error {
		return s.reg.Import(sid)
	})
}

func (m *Manager) handleExport(ctx *orpheus.Context) error {
	return m.runDriver(ctx, func(s *store, sid conftree.SID) error {
		return s.reg.Export(sid)
	})
}

func (m *Manager) handleDelete(ctx *orpheus.Context) error {
	return m.runDriver(ctx, func(s *store, sid conftree.SID) error {
		return s.reg.Delete(sid)
	})
}

func (m *Manager) handleVerify(ctx *orpheus.Context) error {
	reimport := ctx.GetFlagBool("reimport")
	return m.runDriver(ctx, func(s *store, sid conftree.SID) error {
		if err := s.reg.Import(sid); err != nil {
			return err
		}
		return s.reg.Verify(sid, reimport)
	})
}

// runDriver is the shared open-resolve-run shape of the one-shot commands.
func (m *Manager) runDriver(ctx *orpheus.Context, op func(*store, conftree.SID) error) error {
	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.close() }()

	sid, err := s.resolveKey(ctx.GetArg(0))
	if err != nil {
		return err
	}
	return op(s, sid)
}

func (m *Manager) handleTree(ctx *orpheus.Context) error {
	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.close() }()

	return s.reg.Walk(0, func(reg conftree.Registrant, k conftree.OpKey) bool {
		if k.Path == "" {
			return true // skip the unnamed root
		}
		indent := strings.Repeat("  ", strings.Count(k.Path, "/")-1)
		lower, upper := reg.Range()
		switch e := reg.(type) {
		case *conftree.ArrayHandler:
			fmt.Printf("%s%s  [0x%x, 0x%x] array count=%d stride=%d size=%d\n",
				indent, e.Name(), uint64(lower), uint64(upper), e.Count(), uint64(e.Stride()), e.Size())
		case *conftree.Handler:
			fmt.Printf("%s%s  0x%x size=%d\n", indent, e.Name(), uint64(lower), e.Size())
		default:
			fmt.Printf("%s%s/  [0x%x, 0x%x]\n", indent, e.Name(), uint64(lower), uint64(upper))
		}
		return true
	})
}

// parseValue decodes a command-line value: "0x" prefixed hex, or literal
// text zero-padded to the addressed span.
func parseValue(arg string, size int) ([]byte, error) {
	var raw []byte
	if strings.HasPrefix(arg, "0x") || strings.HasPrefix(arg, "0X") {
		var err error
		if raw, err = hex.DecodeString(arg[2:]); err != nil {
			return nil, errors.Wrap(err, conftree.ErrCodeNotSupported, "malformed hex value")
		}
	} else {
		raw = []byte(arg)
	}
	if len(raw) > size {
		return nil, errors.New(conftree.ErrCodeNoBufferSpace, "value larger than addressed span").
			WithContext("size", size)
	}
	value := make([]byte, size)
	copy(value, raw)
	return value, nil
}
