package util

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// MaxKeyLen bounds storage keys; longer ones are hashed.
const MaxKeyLen = 250

var escaper = strings.NewReplacer("%", "%25", ":", "%3A")

// LevelKey returns the storage key of one serie level:
//
//	level:<ns>:<serie>:<level>
//
// Components are escaped so ':' inside them cannot collide. Keys longer than
// MaxKeyLen keep the namespace prefix and replace the rest with a short hash.
func LevelKey(ns, serie, level string) string {
	prefix := "level:" + escaper.Replace(ns) + ":"
	k := prefix + escaper.Replace(serie) + ":" + escaper.Replace(level)
	if len(k) <= MaxKeyLen {
		return k
	}
	sum := sha256.Sum256([]byte(k))
	return fmt.Sprintf("%s#%x", prefix, sum[:16])
}
