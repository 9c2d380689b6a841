package handler

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"bolt-api/internal/domain"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)
)

// rule is one step of a validation pipeline. Rules run in order and the
// first failing rule for a field supplies its message.
type rule struct {
	field   string
	ok      bool
	message string
}

func validate(rules ...rule) error {
	verr := domain.NewValidationError()
	for _, r := range rules {
		if !r.ok {
			verr.Add(r.field, r.message)
		}
	}
	return verr.OrNil()
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}

func minLength(s string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= n
}

func loginRules(req *loginRequest) []rule {
	return []rule{
		{"email", present(req.Email), "Email is required"},
		{"password", req.Password != "", "Password is required"},
	}
}

func registerRules(req *registerRequest) []rule {
	return []rule{
		{"email", present(req.Email), "Email is required"},
		{"email", emailPattern.MatchString(req.Email), "Invalid email format"},
		{"username", present(req.Username), "Username is required"},
		{"username", usernamePattern.MatchString(req.Username), "Username must be 3-20 characters and contain only letters, numbers, underscores, or hyphens"},
		{"password", req.Password != "", "Password is required"},
		{"password", utf8.RuneCountInString(req.Password) >= 8, "Password must be at least 8 characters long"},
	}
}

func updateProfileRules(req *updateProfileRequest) []rule {
	rules := []rule{
		{"id", present(req.ID), "User ID is required"},
	}
	if req.Username != nil {
		rules = append(rules, rule{"username", usernamePattern.MatchString(*req.Username), "Username must be 3-20 characters and contain only letters, numbers, underscores, or hyphens"})
	}
	return rules
}

func createGroupRules(req *createGroupRequest) []rule {
	return []rule{
		{"name", present(req.Name), "Group name is required"},
		{"name", minLength(req.Name, 3), "Group name must be at least 3 characters"},
		{"creator_id", present(req.CreatorID), "Creator ID is required"},
	}
}

func addMemberRules(req *addMemberRequest) []rule {
	return []rule{
		{"user_id", present(req.UserID), "User ID is required"},
	}
}

func createPollRules(req *createPollRequest) []rule {
	return []rule{
		{"question", present(req.question()), "Poll question is required"},
		{"options", len(req.Options) >= 2, "At least 2 options are required"},
		{"creator_id", present(req.creator()), "Creator ID is required"},
	}
}

func voteRules(req *voteRequest) []rule {
	return []rule{
		{"user_id", present(req.UserID), "User ID is required"},
		{"option_id", present(req.OptionID), "Option ID is required"},
	}
}
