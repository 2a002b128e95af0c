package logging

import (
	"log/slog"
	"strings"
)

// RedactedValue is the canonical placeholder used for sensitive fields in logs.
const RedactedValue = "[REDACTED]"

// String attributes are masked unless their key is listed here. Keys holding
// public identifiers or request metadata only.
var redactionAllowlist = map[string]struct{}{
	"addr":          {},
	"authorization": {},
	"delivery":      {},
	"env":           {},
	"hash":          {},
	"kind":          {},
	"method":        {},
	"network":       {},
	"path":          {},
	"reason":        {},
	"requestid":     {},
	"service":       {},
	"severity":      {},
	"signer":        {},
	"subject":       {},
	"type":          {},
}

// IsAllowlisted reports whether the provided key is exempt from automatic redaction.
func IsAllowlisted(key string) bool {
	normalized := strings.ToLower(strings.TrimSpace(key))
	_, ok := redactionAllowlist[normalized]
	return ok
}

// MaskValue returns the canonical redacted placeholder for non-empty values. Empty values
// are returned unchanged.
func MaskValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return value
	}
	return RedactedValue
}

// MaskField returns a slog.Attr that redacts the supplied value unless the key is
// explicitly allowlisted. The original key casing is preserved.
func MaskField(key, value string) slog.Attr {
	if IsAllowlisted(key) {
		return slog.String(key, value)
	}
	return slog.String(key, MaskValue(value))
}

// redactAttr masks string attributes outside the allowlist. Numbers, errors
// and structured values pass through.
func redactAttr(attr slog.Attr) slog.Attr {
	if attr.Value.Kind() != slog.KindString {
		return attr
	}
	return MaskField(attr.Key, attr.Value.String())
}

// MaskAuthorization keeps the scheme of an Authorization header and redacts
// the credential, so logs show "Bearer [REDACTED]".
func MaskAuthorization(header string) string {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return ""
	}
	scheme, _, found := strings.Cut(trimmed, " ")
	if !found {
		return RedactedValue
	}
	return scheme + " " + RedactedValue
}
