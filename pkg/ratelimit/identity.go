package ratelimit

import (
	"net/http"
	"strings"

	"seotooler/internal/constants"
)

// ResolveIdentity returns the first non-empty entry of the first populated
// header in headers, or "unknown". The peer address is never consulted, so
// every request without those headers shares the "unknown" bucket. Entries
// are cut to MaxIdentityLength runes to bound store keys.
func ResolveIdentity(r *http.Request, headers []string) string {
	for _, h := range headers {
		v := r.Header.Get(h)
		if v == "" {
			continue
		}
		first, _, _ := strings.Cut(v, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			if runes := []rune(ip); len(runes) > constants.MaxIdentityLength {
				ip = string(runes[:constants.MaxIdentityLength])
			}
			return ip
		}
	}
	return constants.UnknownIdentity
}
