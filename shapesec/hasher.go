// Package shapesec adapts the teacher's password-hasher collaborators
// (argon2/bcrypt) into a pair of duck-typed union members so a hashed
// credential can ride through the engine as an opaque, polymorphic
// field: the caller hashes a secret once, outside any encode call
// (hashing is one-way and cannot live inside a Read/Write pair), and
// stores the resulting Credential value in whatever struct they
// serialize. shapepack discriminates Argon2Credential from
// BcryptCredential structurally, the same way it discriminates Cat
// from Dog: by which required field is present on the wire.
package shapesec

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/zoobzio/shapepack"
)

func init() {
	shapepack.RegisterDuckTypedUnion[Credential](
		shapepack.UnionCase[Argon2Credential](),
		shapepack.UnionCase[BcryptCredential](),
	)
}

// Credential is the duck-typed union base: a hashed secret, tagged by
// which one-way hasher produced it.
type Credential interface {
	isCredential()
}

// Argon2Credential holds an Argon2id-hashed secret, encoded as
// "$argon2id$v=...$m=...,t=...,p=...$<salt>$<hash>" per the teacher's
// convention.
type Argon2Credential struct {
	Argon2Hash string `msgpack:"argon2_hash" required:"true"`
}

func (Argon2Credential) isCredential() {}

// BcryptCredential holds a bcrypt-hashed secret.
type BcryptCredential struct {
	BcryptHash string `msgpack:"bcrypt_hash" required:"true"`
}

func (BcryptCredential) isCredential() {}

// Argon2Params configures Argon2id hashing (spec-external: hashing
// itself is not part of the wire format, only the resulting Credential
// shape is).
type Argon2Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// DefaultArgon2Params mirrors the teacher's OWASP-recommended defaults.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:    1,
		Memory:  64 * 1024,
		Threads: 4,
		KeyLen:  32,
		SaltLen: 16,
	}
}

// HashArgon2 hashes plaintext with DefaultArgon2Params and returns the
// Credential ready to be stored in a serializable struct.
func HashArgon2(plaintext []byte) (Argon2Credential, error) {
	return HashArgon2WithParams(plaintext, DefaultArgon2Params())
}

// HashArgon2WithParams hashes plaintext with explicit params.
func HashArgon2WithParams(plaintext []byte, params Argon2Params) (Argon2Credential, error) {
	salt := make([]byte, params.SaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return Argon2Credential{}, fmt.Errorf("generate salt: %w", err)
	}
	hash := argon2.IDKey(plaintext, salt, params.Time, params.Memory, params.Threads, params.KeyLen)
	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, params.Memory, params.Time, params.Threads,
		base64.RawStdEncoding.EncodeToString(salt), base64.RawStdEncoding.EncodeToString(hash))
	return Argon2Credential{Argon2Hash: encoded}, nil
}

// BcryptCost is the bcrypt work factor.
type BcryptCost int

const (
	BcryptMinCost     BcryptCost = BcryptCost(bcrypt.MinCost)
	BcryptDefaultCost BcryptCost = BcryptCost(bcrypt.DefaultCost)
	BcryptMaxCost     BcryptCost = BcryptCost(bcrypt.MaxCost)
)

// HashBcrypt hashes plaintext at BcryptDefaultCost.
func HashBcrypt(plaintext []byte) (BcryptCredential, error) {
	return HashBcryptWithCost(plaintext, BcryptDefaultCost)
}

// HashBcryptWithCost hashes plaintext at an explicit cost factor.
func HashBcryptWithCost(plaintext []byte, cost BcryptCost) (BcryptCredential, error) {
	hash, err := bcrypt.GenerateFromPassword(plaintext, int(cost))
	if err != nil {
		return BcryptCredential{}, fmt.Errorf("bcrypt hash: %w", err)
	}
	return BcryptCredential{BcryptHash: string(hash)}, nil
}

// VerifyBcrypt reports whether plaintext produced c's hash.
func VerifyBcrypt(c BcryptCredential, plaintext []byte) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.BcryptHash), plaintext) == nil
}
