package registry

import (
	"fmt"
	"regexp"
	"strconv"
)

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_]+)\}`)

// formatCommandLine substitutes the {ip_address} and {port} slots in a
// device's command template. Any other placeholder is a formatting
// failure, mirroring the source's format-string KeyError.
func formatCommandLine(template, ip string, port uint16) (string, error) {
	var formatErr error
	result := placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		if formatErr != nil {
			return token
		}
		switch token[1 : len(token)-1] {
		case "ip_address":
			return ip
		case "port":
			return strconv.Itoa(int(port))
		default:
			formatErr = fmt.Errorf("registry: unknown template placeholder %s", token)
			return token
		}
	})
	if formatErr != nil {
		return "", formatErr
	}
	return result, nil
}
