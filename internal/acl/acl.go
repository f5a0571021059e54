// Package acl implements the access-control record grammar from the
// config file's `user` directive:
//
//	user <name> [on|off] [nopass] [+<cmd>|+$<category>]* [><password>]*
//
// grounded on config_parser.c's parse_user, generalized from that file's
// two-token (username, single password) shape to the full grammar spec.md
// §6 describes.
package acl

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

// User is one parsed ACL record.
type User struct {
	Name       string
	Enabled    bool
	NoPass     bool
	Passwords  []string // hex-encoded SHA-256 digests
	Commands   map[string]bool
	Categories map[string]bool
}

// ParseUserRecord parses the token list following the `user` keyword
// (fields[0] is the username).
func ParseUserRecord(fields []string) (*User, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("acl: empty user record")
	}
	u := &User{
		Name:       fields[0],
		Enabled:    false,
		Commands:   make(map[string]bool),
		Categories: make(map[string]bool),
	}
	for _, tok := range fields[1:] {
		switch {
		case tok == "on":
			u.Enabled = true
		case tok == "off":
			u.Enabled = false
		case tok == "nopass":
			u.NoPass = true
		case strings.HasPrefix(tok, "+$"):
			u.Categories[strings.ToLower(tok[2:])] = true
		case strings.HasPrefix(tok, "+"):
			u.Commands[strings.ToUpper(tok[1:])] = true
		case strings.HasPrefix(tok, ">"):
			u.Passwords = append(u.Passwords, hashPassword(tok[1:]))
		default:
			return nil, fmt.Errorf("acl: unrecognized token %q in record for user %q", tok, u.Name)
		}
	}
	return u, nil
}

func hashPassword(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// CanRun reports whether u is allowed to invoke cmd, which belongs to
// category.
func (u *User) CanRun(cmd, category string) bool {
	if u.Commands[strings.ToUpper(cmd)] {
		return true
	}
	return u.Categories[strings.ToLower(category)]
}

// Authenticate checks plain against u's stored password digests using a
// constant-time comparison, grounded on auth.c's time_safe_compare: timing
// depends only on digest length, never on where the first mismatched byte
// falls.
func (u *User) Authenticate(plain string) bool {
	if u.NoPass {
		return true
	}
	candidate := hashPassword(plain)
	for _, want := range u.Passwords {
		if timeSafeEqual(candidate, want) {
			return true
		}
	}
	return false
}

func timeSafeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
