// Package btcmsg verifies legacy Bitcoin signed messages against mainnet
// P2PKH and native segwit v0 P2WPKH addresses.
package btcmsg

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// messageSignatureMagic is the magic prefix Bitcoin Core prepends to signed
// messages, trailing newline included.
const messageSignatureMagic = "Bitcoin Signed Message:\n"

// Compact signature header bytes are 27 + recovery id, plus 4 when the
// signing key is compressed.
const (
	minSigHeader = 27
	maxSigHeader = 34
)

var (
	errAddressMismatch = errors.New("recovered key does not match address")
	errWrongNetwork    = errors.New("address is not a mainnet address")
)

// Verify checks that signatureB64 is a valid compact recoverable signature
// over message by the key controlling address. Every failure mode returns a
// descriptive error; callers are expected to log it and collapse it into a
// single opaque signal before it crosses a trust boundary.
func Verify(address, message, signatureB64 string) error {
	raw, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	if len(raw) != 65 {
		return fmt.Errorf("signature must be 65 bytes, got %d", len(raw))
	}

	header := raw[0]
	if header < minSigHeader || header > maxSigHeader {
		return fmt.Errorf("invalid signature header byte %d", header)
	}
	compressed := (header-minSigHeader)&4 != 0

	pubKey, wasCompressed, err := ecdsa.RecoverCompact(raw, messageHash(message))
	if err != nil {
		return fmt.Errorf("recover public key: %w", err)
	}
	if wasCompressed != compressed {
		// RecoverCompact derives the flag from the same header byte, so a
		// disagreement here means the input changed under us.
		return errors.New("inconsistent compression flag")
	}

	addr, err := decodeSupported(address)
	if err != nil {
		return err
	}

	switch a := addr.(type) {
	case *btcutil.AddressPubKeyHash:
		pkBytes := pubKey.SerializeUncompressed()
		if compressed {
			pkBytes = pubKey.SerializeCompressed()
		}
		if !bytes.Equal(btcutil.Hash160(pkBytes), a.Hash160()[:]) {
			return errAddressMismatch
		}
	case *btcutil.AddressWitnessPubKeyHash:
		// Segwit signing always uses the compressed key.
		if !compressed {
			return errors.New("segwit signature requires a compressed key")
		}
		if !bytes.Equal(btcutil.Hash160(pubKey.SerializeCompressed()), a.Hash160()[:]) {
			return errAddressMismatch
		}
	default:
		return fmt.Errorf("unsupported address type %T", addr)
	}

	return nil
}

// ValidateAddress reports whether address is a mainnet address in one of the
// supported encodings (P2PKH or P2WPKH v0). Unsupported encodings are
// rejected here so a challenge is never issued for an address that could not
// pass verification anyway.
func ValidateAddress(address string) error {
	_, err := decodeSupported(address)
	return err
}

func decodeSupported(address string) (btcutil.Address, error) {
	addr, err := btcutil.DecodeAddress(address, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("parse address: %w", err)
	}
	if !addr.IsForNet(&chaincfg.MainNetParams) {
		return nil, errWrongNetwork
	}

	switch a := addr.(type) {
	case *btcutil.AddressPubKeyHash:
		return a, nil
	case *btcutil.AddressWitnessPubKeyHash:
		// Witness v0 with a 20-byte program by construction.
		return a, nil
	default:
		return nil, fmt.Errorf("unsupported address type %T", addr)
	}
}

// messageHash builds the signed-message preimage (compact-size length
// prefixed magic and message) and double-SHA256 hashes it.
func messageHash(message string) []byte {
	var buf bytes.Buffer
	_ = wire.WriteVarString(&buf, 0, messageSignatureMagic)
	_ = wire.WriteVarString(&buf, 0, message)
	return chainhash.DoubleHashB(buf.Bytes())
}
