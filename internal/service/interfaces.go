package service

import "time"

// Clock returns the current instant. Services read it once per operation.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

// Services aggregates the application services
type Services struct {
	Credentials *CredentialService
	Groups      *GroupService
	Polls       *PollService
}
