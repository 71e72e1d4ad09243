package sslcommerz

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
)

// VerifyHash recomputes the gateway's response signature and compares it to
// verify_sign. The construction must match the gateway byte for byte:
// verify_key lists the participating fields; store_passwd enters as the MD5
// of the store password; pairs are sorted by key and serialized k=v&k=v.
// Any anomaly fails verification, never passes it.
func VerifyHash(resp Response, storePassword string) bool {
	sign, _ := resp.Get("verify_sign")
	key, _ := resp.Get("verify_key")
	if sign == "" || key == "" {
		return false
	}

	fields := strings.Split(key, ",")
	pairs := make(map[string]string, len(fields)+1)
	pairs["store_passwd"] = md5Hex(storePassword)
	for _, f := range fields {
		v, _ := resp.Get(f)
		pairs[f] = v
	}

	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(pairs[k])
	}

	return md5Hex(b.String()) == sign
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
