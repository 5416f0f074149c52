package store

import (
	"context"
	"fmt"
	"strings"
)

// Identity is the profile an identity provider reports at sign-in.
type Identity struct {
	ID      string
	Email   string
	Name    string
	Picture string
}

// InviteResult reports the outcome of SendHomeInvite. An unsuccessful
// result is an expected outcome, not an error.
type InviteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// GetUser returns the user with the given ID.
func (s *Store) GetUser(ctx context.Context, userID string) (*User, error) {
	var user *User
	err := s.view(ctx, func(db *Database) error {
		u, ok := db.Users[userID]
		if !ok {
			return notFound("user", userID)
		}
		user = u
		return nil
	})
	return user, err
}

// GetUserByEmail matches email addresses case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user *User
	err := s.view(ctx, func(db *Database) error {
		user = findUserByEmail(db, email)
		if user == nil {
			return notFound("user with email", email)
		}
		return nil
	})
	return user, err
}

func findUserByEmail(db *Database, email string) *User {
	email = strings.TrimSpace(email)
	for _, u := range db.Users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

// RecordLogin creates the user on first sign-in and otherwise updates the
// last login time.
func (s *Store) RecordLogin(ctx context.Context, id Identity) (*User, error) {
	if id.ID == "" || id.Email == "" {
		return nil, fmt.Errorf("identity requires id and email: %w", ErrInvalid)
	}

	var user *User
	err := s.update(ctx, func(db *Database) error {
		now := s.timestamp()
		if u, ok := db.Users[id.ID]; ok {
			u.LastLoginAt = now
			user = u
			return nil
		}

		name := id.Name
		if name == "" {
			name = id.Email
		}
		user = &User{
			ID:           id.ID,
			Email:        id.Email,
			Name:         name,
			Picture:      id.Picture,
			CreatedAt:    now,
			LastLoginAt:  now,
			HouseholdIDs: []string{},
			HomeInvites:  []string{},
		}
		db.Users[user.ID] = user
		return nil
	})
	return user, err
}

// GetUserHouseholds returns the households the user belongs to. An unknown
// user has none.
func (s *Store) GetUserHouseholds(ctx context.Context, userID string) ([]*Household, error) {
	homes := []*Household{}
	err := s.view(ctx, func(db *Database) error {
		if u, ok := db.Users[userID]; ok {
			homes = lookupHouseholds(db, u.HouseholdIDs)
		}
		return nil
	})
	return homes, err
}

func lookupHouseholds(db *Database, ids []string) []*Household {
	out := []*Household{}
	for _, id := range ids {
		if h, ok := db.Households[id]; ok {
			out = append(out, h)
		}
	}
	return out
}

// SetCurrentHome selects one of the user's households as current.
func (s *Store) SetCurrentHome(ctx context.Context, userID, homeID string) (*User, error) {
	var user *User
	err := s.update(ctx, func(db *Database) error {
		u, ok := db.Users[userID]
		if !ok {
			return notFound("user", userID)
		}
		if !contains(u.HouseholdIDs, homeID) {
			return fmt.Errorf("user does not have access to home %s: %w", homeID, ErrForbidden)
		}
		u.CurrentHomeID = homeID
		user = u
		return nil
	})
	return user, err
}

// SendHomeInvite records an invite to homeID for the user with the given
// email. The inviter must be a member of the home.
func (s *Store) SendHomeInvite(ctx context.Context, homeID, inviterID, email string) (InviteResult, error) {
	var result InviteResult
	err := s.update(ctx, func(db *Database) error {
		home, ok := db.Households[homeID]
		if !ok {
			return notFound("household", homeID)
		}
		if _, ok := db.Users[inviterID]; !ok {
			return notFound("user", inviterID)
		}
		if !contains(home.MemberIDs, inviterID) {
			return fmt.Errorf("you do not have permission to invite users to this home: %w", ErrForbidden)
		}

		invitee := findUserByEmail(db, email)
		switch {
		case invitee == nil:
			result = InviteResult{Message: "No user found with that email address"}
		case contains(home.MemberIDs, invitee.ID):
			result = InviteResult{Message: "User is already a member of this home"}
		case contains(invitee.HomeInvites, homeID):
			result = InviteResult{Message: "User has already been invited to this home"}
		default:
			invitee.HomeInvites = append(invitee.HomeInvites, homeID)
			result = InviteResult{Success: true, Message: "Invite sent to " + invitee.Name}
		}
		return nil
	})
	return result, err
}

// GetUserInvites returns the households the user has pending invites to.
func (s *Store) GetUserInvites(ctx context.Context, userID string) ([]*Household, error) {
	homes := []*Household{}
	err := s.view(ctx, func(db *Database) error {
		if u, ok := db.Users[userID]; ok {
			homes = lookupHouseholds(db, u.HomeInvites)
		}
		return nil
	})
	return homes, err
}

// AcceptHomeInvite adds the user to the household and removes the invite.
func (s *Store) AcceptHomeInvite(ctx context.Context, userID, homeID string) (*Household, error) {
	var home *Household
	err := s.update(ctx, func(db *Database) error {
		u, ok := db.Users[userID]
		if !ok {
			return notFound("user", userID)
		}
		h, ok := db.Households[homeID]
		if !ok {
			return notFound("household", homeID)
		}
		if !contains(u.HomeInvites, homeID) {
			return fmt.Errorf("no invite found for home %s: %w", homeID, ErrForbidden)
		}

		if !contains(h.MemberIDs, userID) {
			h.MemberIDs = append(h.MemberIDs, userID)
			h.UpdatedAt = s.timestamp()
		}
		if !contains(u.HouseholdIDs, homeID) {
			u.HouseholdIDs = append(u.HouseholdIDs, homeID)
		}
		u.HomeInvites = without(u.HomeInvites, homeID)
		home = h
		return nil
	})
	return home, err
}

// DeclineHomeInvite removes a pending invite without joining.
func (s *Store) DeclineHomeInvite(ctx context.Context, userID, homeID string) error {
	return s.update(ctx, func(db *Database) error {
		u, ok := db.Users[userID]
		if !ok {
			return notFound("user", userID)
		}
		u.HomeInvites = without(u.HomeInvites, homeID)
		return nil
	})
}
