package utils

import (
	"fmt"
	"net/url"
)

// AvatarURL returns the generated avatar for a username. Accounts without
// an uploaded avatar fall back to this.
func AvatarURL(username string) string {
	return fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", url.QueryEscape(username))
}
