package identity

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/common"
	"github.com/sirupsen/logrus"
)

// Hasher produces one-way, salted identity hashes from client IPs. Only the
// hash is ever persisted; the raw address stays in the request scope.
type Hasher struct {
	salt   string
	logger *logrus.Logger
}

// NewHasher builds a Hasher with the operator-provided salt. An empty salt
// falls back to a built-in value that must never reach production, so the
// fallback is logged loudly.
func NewHasher(salt string, logger *logrus.Logger) *Hasher {
	if salt == "" {
		logger.Warn("IP_HASH_SALT is not set, falling back to the built-in salt; do not run this in production")
		salt = common.DefaultIPHashSalt
	}
	return &Hasher{salt: salt, logger: logger}
}

// HashIP returns a 64-character lowercase hex SHA-256 of the salted address.
func (h *Hasher) HashIP(ip string) string {
	sum := sha256.Sum256([]byte(h.salt + ":" + ip))
	return hex.EncodeToString(sum[:])
}
