package slug

import (
	"net"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Subdomain extracts the leftmost host label that sits in front of the primary
// domain. Without a primary domain the registrable domain is derived from the
// public suffix list. Hosts with fewer than three labels, IP addresses and the
// primary domain itself have no subdomain.
func (m *Mapper) Subdomain(host string) string {
	host = cleanHost(host)
	if host == "" || net.ParseIP(host) != nil {
		return ""
	}

	if m.primaryDomain != "" {
		if host == m.primaryDomain {
			return ""
		}
		if strings.HasSuffix(host, "."+m.primaryDomain) {
			left := strings.TrimSuffix(host, "."+m.primaryDomain)
			return leftmostLabel(left)
		}
	}

	labels := strings.Split(host, ".")
	if len(labels) < 3 {
		return ""
	}
	if registrable, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		if registrable == host {
			return ""
		}
		return leftmostLabel(strings.TrimSuffix(host, "."+registrable))
	}
	return labels[0]
}

// FolderFor returns the content folder a request host is folded into, or ""
// when folding is disabled, the host has no subdomain or it is ignored.
func (m *Mapper) FolderFor(host string) string {
	if !m.subdomainFolders {
		return ""
	}
	sub := m.Subdomain(host)
	if m.ignored.Has(sub) {
		return ""
	}
	return sub
}

// ApplySubdomain prefixes s with the request's subdomain folder.
func (m *Mapper) ApplySubdomain(s, host string) string {
	return Join(m.FolderFor(host), s)
}

// Unfold strips folder from s so the result resolves back to s when requested
// through the folded host. Slugs outside folder are returned unchanged.
func Unfold(s, folder string) string {
	s = Normalize(s)
	if folder == "" {
		return s
	}
	if strings.EqualFold(s, folder) {
		return ""
	}
	if len(s) > len(folder) && strings.EqualFold(s[:len(folder)+1], folder+"/") {
		return s[len(folder)+1:]
	}
	return s
}

func cleanHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	return strings.TrimRight(host, ".")
}

func leftmostLabel(s string) string {
	for _, label := range strings.Split(s, ".") {
		if label != "" {
			return label
		}
	}
	return ""
}
