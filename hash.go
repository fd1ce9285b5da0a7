package sessionstore

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// HashAlgorithm names a digest used to hash session identifiers.
type HashAlgorithm string

const (
	HashMD5        HashAlgorithm = "md5"
	HashSHA1       HashAlgorithm = "sha1"
	HashSHA256     HashAlgorithm = "sha256"
	HashSHA512     HashAlgorithm = "sha512"
	HashSHA3_256   HashAlgorithm = "sha3-256"
	HashBLAKE2b256 HashAlgorithm = "blake2b-256"
)

// Defaults applied by WithHash for empty arguments.
const (
	DefaultHashSalt      = "sessionstore"
	DefaultHashAlgorithm = HashSHA1
)

var hashers = map[HashAlgorithm]func() hash.Hash{
	HashMD5:      md5.New,
	HashSHA1:     sha1.New,
	HashSHA256:   sha256.New,
	HashSHA512:   sha512.New,
	HashSHA3_256: func() hash.Hash { return sha3.New256() },
	HashBLAKE2b256: func() hash.Hash {
		h, _ := blake2b.New256(nil) // only fails for keys longer than 64 bytes
		return h
	},
}

// identifier maps raw session ids to storage ids.
type identifier struct {
	newHash func() hash.Hash
	salt    string
}

func newIdentifier(h *hashConfig) (identifier, error) {
	if h == nil {
		return identifier{}, nil
	}
	fn, ok := hashers[h.algorithm]
	if !ok {
		return identifier{}, ErrUnsupportedHash
	}
	return identifier{newHash: fn, salt: h.salt}, nil
}

// normalize returns the lowercase hex digest of salt+id, or id when hashing is off.
func (i identifier) normalize(id string) string {
	if i.newHash == nil {
		return id
	}
	h := i.newHash()
	h.Write([]byte(i.salt + id))
	return hex.EncodeToString(h.Sum(nil))
}
