package auth

import (
	"crypto/ed25519"
	"encoding/base32"
	"encoding/binary"
	"errors"
)

// ErrInvalidAccount is returned when a principal is not a Stellar account ID.
var ErrInvalidAccount = errors.New("principal is not a valid account id")

// accountVersion is the strkey version byte of an ed25519 account ID ('G...').
const accountVersion byte = 6 << 3

var strkeyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// AccountKey decodes a Stellar account ID into its ed25519 public key.
func AccountKey(p Principal) (ed25519.PublicKey, error) {
	raw, err := strkeyEncoding.DecodeString(string(p))
	if err != nil {
		return nil, ErrInvalidAccount
	}
	if len(raw) != 1+ed25519.PublicKeySize+2 || raw[0] != accountVersion {
		return nil, ErrInvalidAccount
	}
	body, sum := raw[:len(raw)-2], raw[len(raw)-2:]
	if crc16(body) != binary.LittleEndian.Uint16(sum) {
		return nil, ErrInvalidAccount
	}
	return ed25519.PublicKey(body[1:]), nil
}

// AccountID encodes an ed25519 public key as a Stellar account ID.
func AccountID(pub ed25519.PublicKey) Principal {
	raw := make([]byte, 0, 1+len(pub)+2)
	raw = append(raw, accountVersion)
	raw = append(raw, pub...)
	raw = binary.LittleEndian.AppendUint16(raw, crc16(raw))
	return Principal(strkeyEncoding.EncodeToString(raw))
}

// crc16 is CRC-16/XMODEM, the strkey checksum.
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
