package firewall

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Keywords accepted by the platform in place of local port numbers.
var portKeywords = []string{"*", "RPC", "RPC-EPMap", "IPHTTPS", "Teredo"}

// ValidateLocalPorts checks that ports is a comma-separated list of port
// numbers, port ranges in start-end notation, or port keywords.
func ValidateLocalPorts(ports string) error {
	if strings.TrimSpace(ports) == "" {
		return errors.New("no local ports specified")
	}

	for _, item := range strings.Split(ports, ",") {
		item = strings.TrimSpace(item)
		if isPortKeyword(item) {
			continue
		}

		start, end, isRange := strings.Cut(item, "-")
		startPort, err := parsePort(start)
		if err != nil {
			return fmt.Errorf("failed parsing local port '%s': %w", item, err)
		}
		if !isRange {
			continue
		}
		endPort, err := parsePort(end)
		if err != nil {
			return fmt.Errorf("failed parsing local port '%s': %w", item, err)
		}
		if startPort > endPort {
			return fmt.Errorf("failed parsing local port '%s': range start is greater than end", item)
		}
	}

	return nil
}

func isPortKeyword(val string) bool {
	for _, kw := range portKeywords {
		if strings.EqualFold(val, kw) {
			return true
		}
	}
	return false
}

func parsePort(val string) (uint16, error) {
	port, err := strconv.ParseUint(strings.TrimSpace(val), 10, 16)
	if err != nil {
		return 0, errors.New("must be a number between 1 and 65535")
	}
	if port == 0 {
		return 0, errors.New("must be greater than 0")
	}
	return uint16(port), nil
}
