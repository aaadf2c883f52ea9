package membership

import "github.com/vovakirdan/gem-arcade/internal/storage"

// Access is what the platform needs to decide whether a player may start
// a members-only game.
type Access interface {
	IsAuthenticated() bool
	IsMember() bool
}

// Account is a signed-in player.
type Account struct {
	ID       int64
	Username string
	Member   bool
	Admin    bool
}

func accountFrom(u *storage.User) Account {
	return Account{
		ID:       u.ID,
		Username: u.Username,
		Member:   u.IsMember,
		Admin:    u.IsAdmin,
	}
}

// IsAuthenticated is always true for an Account.
func (a Account) IsAuthenticated() bool { return true }

// IsMember reports paid membership. Admins are always members.
func (a Account) IsMember() bool { return a.Member || a.Admin }

// Anonymous is a player who has not signed in.
type Anonymous struct{}

func (Anonymous) IsAuthenticated() bool { return false }
func (Anonymous) IsMember() bool        { return false }

// Unrestricted grants everything. Used for local development with the
// gate switched off.
type Unrestricted struct{}

func (Unrestricted) IsAuthenticated() bool { return true }
func (Unrestricted) IsMember() bool        { return true }

// CanPlay reports whether access allows starting a game that may be
// members-only.
func CanPlay(access Access, membersOnly bool) bool {
	if !membersOnly {
		return true
	}
	return access != nil && access.IsAuthenticated() && access.IsMember()
}
