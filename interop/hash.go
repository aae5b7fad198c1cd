package interop

import (
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160"
)

// ScriptHash is the 20-byte identity of a loaded script: RIPEMD-160 over
// SHA-256 of the bytecode. It scopes notifications and storage contexts.
type ScriptHashID [20]byte

// HashScript computes the script hash of raw bytecode.
func HashScript(script []byte) ScriptHashID {
	sha := sha256.Sum256(script)
	h := ripemd160.New()
	h.Write(sha[:])
	var out ScriptHashID
	copy(out[:], h.Sum(nil))
	return out
}

// Bytes returns the hash as a fresh slice.
func (s ScriptHashID) Bytes() []byte {
	out := make([]byte, len(s))
	copy(out, s[:])
	return out
}
