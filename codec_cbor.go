// codec_cbor.go: CBOR framing for persisted values
//
// Copyright (c) 2026 ConfKit
// Series: a ConfKit fragment
// SPDX-License-Identifier: MPL-2.0

package conftree

import (
	"github.com/agilira/go-errors"
	"github.com/ugorji/go/codec"
)

var cborHandle codec.CborHandle

// CBOROps is DefaultOps with CBOR framing: persisted records are CBOR
// byte strings instead of raw bytes, so stores shared with other software
// get self-describing, length-prefixed values. Handlers wanting custom
// verification on top embed CBOROps the same way they would DefaultOps.
type CBOROps struct {
	DefaultOps
}

// Encode wraps the in-memory bytes in a CBOR byte string.
func (CBOROps) Encode(h *Handler, mem []byte) ([]byte, error) {
	var out []byte
	enc := codec.NewEncoderBytes(&out, &cborHandle)
	if err := enc.Encode(mem); err != nil {
		return nil, errors.Wrap(err, ErrCodeNotSupported, "cbor encode failed")
	}
	return out, nil
}

// Decode unwraps a CBOR byte string into the handler's storage, checking
// the decoded length against the destination span.
func (CBOROps) Decode(h *Handler, stored []byte, mem []byte) error {
	var raw []byte
	dec := codec.NewDecoderBytes(stored, &cborHandle)
	if err := dec.Decode(&raw); err != nil {
		return errors.Wrap(err, ErrCodeNotSupported, "cbor decode failed")
	}
	if len(raw) > len(mem) {
		return errors.New(ErrCodeNoBufferSpace, "decoded value larger than handler storage")
	}
	copy(mem, raw)
	return nil
}
