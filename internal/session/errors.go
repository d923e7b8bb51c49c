package session

import "fmt"

// AuthError is a wrong-password failure. Remaining is the number of further
// failures allowed before lockout.
type AuthError struct {
	Remaining int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("Wrong password. %d attempts remaining.", e.Remaining)
}

// RateLimitError reports an active lockout. The message is the same whether
// this attempt or an earlier one triggered it.
type RateLimitError struct {
	RetryAfter int // seconds
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("Too many attempts. Try again in %ds", e.RetryAfter)
}
