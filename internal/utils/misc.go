package utils

import (
	"net"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

func WaitForSignal() chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGINT)

	return ch
}

// FileURL turns a local path into a file:// URL the backend can open.
func FileURL(fpath string) string {
	abs, err := filepath.Abs(fpath)
	if err != nil {
		abs = fpath
	}

	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	if !strings.HasPrefix(u.Path, "/") {
		// windows drive letters
		u.Path = "/" + u.Path
	}
	return u.String()
}

// IsFullIPv4 reports whether addr is a dotted quad.
func IsFullIPv4(addr string) bool {
	ip := net.ParseIP(addr)
	return ip != nil && ip.To4() != nil && strings.Count(addr, ".") == 3
}

// IsIPv4Suffix reports whether addr is the trailing one to three octets of an
// IPv4 address, e.g. "23" or "1.23".
func IsIPv4Suffix(addr string) bool {
	parts := strings.Split(addr, ".")
	if addr == "" || len(parts) > 3 {
		return false
	}
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 || p == "" {
			return false
		}
	}
	return true
}
