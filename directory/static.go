package directory

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// StaticDirectory checks logins against bcrypt hashes from the environment.
// It is meant for development and for sites without a directory server.
type StaticDirectory struct {
	hashes map[string][]byte
	admins map[string]struct{}
}

// ParseStatic reads "user:hash,user:hash" and "admin,admin".
func ParseStatic(users, admins string) (*StaticDirectory, error) {
	d := &StaticDirectory{
		hashes: make(map[string][]byte),
		admins: make(map[string]struct{}),
	}
	for _, entry := range strings.Split(users, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, hash, ok := strings.Cut(entry, ":")
		if !ok || name == "" || hash == "" {
			return nil, fmt.Errorf("invalid static user entry %q", entry)
		}
		d.hashes[name] = []byte(hash)
	}
	for _, name := range strings.Split(admins, ",") {
		if name = strings.TrimSpace(name); name != "" {
			d.admins[name] = struct{}{}
		}
	}
	return d, nil
}

// AddUser hashes and registers a password.
func (d *StaticDirectory) AddUser(name, password string, admin bool) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	d.hashes[name] = hash
	if admin {
		d.admins[name] = struct{}{}
	}
	return nil
}

func (d *StaticDirectory) Authenticate(_ context.Context, username, password string) bool {
	hash, ok := d.hashes[strings.TrimSpace(username)]
	if !ok || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

func (d *StaticDirectory) IsAdmin(_ context.Context, username string) bool {
	for _, v := range usernameVariants(username) {
		if _, ok := d.admins[v]; ok {
			return true
		}
	}
	return false
}
