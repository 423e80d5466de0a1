package domain

import (
	"fmt"
	"strings"
	"time"
)

// Platform tags the kind of app installation behind a device token.
type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
	PlatformWeb     Platform = "web"
)

func (p Platform) String() string { return string(p) }

func (p Platform) IsValid() bool {
	switch p {
	case PlatformAndroid, PlatformIOS, PlatformWeb:
		return true
	}
	return false
}

func ParsePlatformFromString(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: invalid platform %q", ErrValidation, s)
	}
	return p, nil
}

// UserDevice maps a push token to the user who most recently registered it.
// A token belongs to at most one user at any time; re-registration under a
// different user displaces the previous owner's row.
type UserDevice struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Token     string    `json:"-"`
	Platform  Platform  `json:"platform"`
	CreatedAt time.Time `json:"createdAt"`
}

func (d *UserDevice) Validate() error {
	if strings.TrimSpace(d.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if strings.TrimSpace(d.Token) == "" {
		return fmt.Errorf("%w: device token is required", ErrValidation)
	}
	if !d.Platform.IsValid() {
		return fmt.Errorf("%w: invalid platform %q", ErrValidation, d.Platform)
	}
	return nil
}
