package gormstore

import (
	"time"

	"bolt-api/internal/domain"
)

type userModel struct {
	ID             string `gorm:"primaryKey"`
	Username       string
	Email          string
	PasswordDigest string
	Bio            string
	Avatar         string
	CreatedAt      time.Time
}

func (userModel) TableName() string { return "users" }

func (m *userModel) toDomain() *domain.User {
	return &domain.User{
		ID:             m.ID,
		Username:       m.Username,
		Email:          m.Email,
		PasswordDigest: m.PasswordDigest,
		Bio:            m.Bio,
		Avatar:         m.Avatar,
		CreatedAt:      m.CreatedAt,
	}
}

func userFromDomain(u *domain.User) *userModel {
	return &userModel{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		PasswordDigest: u.PasswordDigest,
		Bio:            u.Bio,
		Avatar:         u.Avatar,
		CreatedAt:      u.CreatedAt,
	}
}

type groupModel struct {
	ID          string `gorm:"primaryKey"`
	Name        string
	Description string
	CreatorID   string
	CreatedAt   time.Time
}

func (groupModel) TableName() string { return "user_group" }

func (m *groupModel) toDomain(memberIDs []string) *domain.Group {
	if memberIDs == nil {
		memberIDs = []string{}
	}
	return &domain.Group{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		CreatorID:   m.CreatorID,
		CreatedAt:   m.CreatedAt,
		MemberIDs:   memberIDs,
	}
}

type memberModel struct {
	GroupID  string `gorm:"primaryKey"`
	UserID   string `gorm:"primaryKey"`
	JoinedAt time.Time
}

func (memberModel) TableName() string { return "group_member" }

type pollModel struct {
	ID          string `gorm:"primaryKey"`
	Title       string
	Description string
	GroupID     string
	CreatorID   string
	CreatedAt   time.Time
	ExpireAt    *time.Time
}

func (pollModel) TableName() string { return "poll" }

func (m *pollModel) toDomain(options []*domain.PollOption) *domain.Poll {
	if options == nil {
		options = []*domain.PollOption{}
	}
	return &domain.Poll{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		GroupID:     m.GroupID,
		CreatorID:   m.CreatorID,
		CreatedAt:   m.CreatedAt,
		ExpireAt:    m.ExpireAt,
		Options:     options,
	}
}

type optionModel struct {
	ID       string `gorm:"primaryKey"`
	PollID   string
	Text     string
	Position int
}

func (optionModel) TableName() string { return "poll_option" }

func (m *optionModel) toDomain() *domain.PollOption {
	return &domain.PollOption{ID: m.ID, PollID: m.PollID, Text: m.Text, Position: m.Position}
}

type voteModel struct {
	ID       string `gorm:"primaryKey"`
	OptionID string
	PollID   string
	UserID   string
	VotedAt  time.Time
}

func (voteModel) TableName() string { return "vote" }

func (m *voteModel) toDomain() *domain.Vote {
	return &domain.Vote{ID: m.ID, OptionID: m.OptionID, PollID: m.PollID, UserID: m.UserID, VotedAt: m.VotedAt}
}
