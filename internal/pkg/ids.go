package pkg

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxNameLength caps display names, counted in runes.
const MaxNameLength = 16

func GenerateGameID() string {
	return uuid.NewString()
}

func GenerateBotID() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}

// GenerateSessionSecret returns the value kept in the session cookie. It is
// never shown to other players; they only see the derived user id.
func GenerateSessionSecret() string {
	return uuid.NewString()
}

func UserIDFromSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:12])
}

func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) <= MaxNameLength {
		return name
	}

	return string([]rune(name)[:MaxNameLength])
}
