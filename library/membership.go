package library

import (
	"context"
	"errors"
	"strings"

	"librarydesk/models"
)

// Membership manages member records.
type Membership struct {
	members MemberStore
}

func NewMembership(members MemberStore) *Membership { return &Membership{members: members} }

type MemberInput struct {
	Name  string `label:"Name" validate:"required,max=150"`
	Email string `label:"Email" validate:"max=254"`
	Phone string `label:"Phone" validate:"max=15"`
}

type MemberEdit struct {
	Name  string `label:"Name" validate:"max=150"`
	Email string `label:"Email" validate:"max=254"`
	Phone string `label:"Phone" validate:"max=15"`
}

func (s *Membership) Add(ctx context.Context, in MemberInput) (*models.Member, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	m := &models.Member{Name: in.Name, Email: optional(in.Email), Phone: in.Phone}
	if err := s.members.CreateMember(ctx, m); err != nil {
		return nil, emailConflict(err, in.Email)
	}
	return m, nil
}

// List returns every member ordered by name.
func (s *Membership) List(ctx context.Context) ([]models.Member, error) {
	return s.members.ListMembers(ctx)
}

func (s *Membership) Get(ctx context.Context, id uint) (*models.Member, error) {
	return s.members.FindMemberByID(ctx, id)
}

func (s *Membership) Edit(ctx context.Context, id uint, in MemberEdit) (*models.Member, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	m, err := s.members.UpdateMember(ctx, id, func(m *models.Member) error {
		m.Name = in.Name
		m.Email = optional(in.Email)
		m.Phone = in.Phone
		return nil
	})
	if err != nil {
		return nil, emailConflict(err, in.Email)
	}
	return m, nil
}

// Delete removes the member and their issue records. Books they still had
// out become available again.
func (s *Membership) Delete(ctx context.Context, id uint) error {
	return s.members.DeleteMember(ctx, id)
}

func emailConflict(err error, email string) error {
	if errors.Is(err, ErrDuplicateKey) {
		return &DuplicateKeyError{Field: "Email", Value: email}
	}
	return err
}
