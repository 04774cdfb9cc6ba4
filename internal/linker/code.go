package linker

import (
	"fmt"
	"regexp"
	"strings"
)

// codePattern matches project-code-shaped tokens like "25 BK-013" or
// "25BK-013" for a given studio prefix. Codes are two year digits, the
// studio letters, and a three-digit sequence number.
func codePattern(prefix string) (*regexp.Regexp, error) {
	if prefix == "" {
		return nil, fmt.Errorf("linker: code prefix is required")
	}
	expr := fmt.Sprintf(`\b(\d{2})\s?(%s)-(\d{3})\b`, regexp.QuoteMeta(prefix))
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("linker: compile code pattern: %w", err)
	}
	return re, nil
}

// ExtractCode returns the first project-code token found in text, normalized
// to the canonical "NN XX-NNN" form, or "" when no token is present.
func ExtractCode(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return fmt.Sprintf("%s %s-%s", m[1], m[2], m[3])
}

// senderDomain returns the lowercased domain part of an email address, or ""
// when the address has no usable domain.
func senderDomain(addr string) string {
	addr = normalizeAddress(addr)
	i := strings.LastIndex(addr, "@")
	if i < 0 || i == len(addr)-1 {
		return ""
	}
	return addr[i+1:]
}

// normalizeAddress lowercases an address and strips an RFC 5322 display name
// ("Jan Brandt <jan@brandtkessler.com>" -> "jan@brandtkessler.com").
func normalizeAddress(addr string) string {
	addr = strings.TrimSpace(strings.ToLower(addr))
	if i := strings.LastIndex(addr, "<"); i >= 0 {
		addr = strings.TrimSuffix(addr[i+1:], ">")
	}
	return strings.TrimSpace(addr)
}
