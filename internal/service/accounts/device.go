package accounts

import "strings"

// DeviceName maps a user agent to a coarse platform label.
func DeviceName(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "android"):
		return "Android Device"
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"), strings.Contains(ua, "ipod"):
		return "iOS Device"
	case strings.Contains(ua, "windows"):
		return "Windows Device"
	case strings.Contains(ua, "mac"):
		return "Mac Device"
	case strings.Contains(ua, "linux"):
		return "Linux Device"
	default:
		return "Unknown Device"
	}
}
