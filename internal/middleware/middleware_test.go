package middleware

import (
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"typobot/internal/config"
)

func message(username string, userID int64) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			Text: "в доме",
			From: &tgbotapi.User{ID: userID, UserName: username},
			Chat: &tgbotapi.Chat{ID: userID},
		},
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute, zap.NewNop())
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow(1))
	assert.True(t, rl.Allow(1))
	assert.False(t, rl.Allow(1))
	assert.True(t, rl.Allow(2))

	now = base.Add(61 * time.Second)
	assert.True(t, rl.Allow(1))

	now = base.Add(10 * time.Minute)
	rl.Cleanup()
	assert.Empty(t, rl.requests)
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute, zap.NewNop())
	for range 100 {
		assert.True(t, rl.Allow(1))
	}
}

func TestChain_Order(t *testing.T) {
	var calls []string
	mw := func(name string) Func {
		return func(update tgbotapi.Update, next Handler) {
			calls = append(calls, name)
			next(update)
		}
	}

	Chain(func(tgbotapi.Update) { calls = append(calls, "handler") }, mw("a"), mw("b"))(tgbotapi.Update{})
	assert.Equal(t, []string{"a", "b", "handler"}, calls)
}

func TestMiddleware_RecoversPanic(t *testing.T) {
	m := New(&config.Config{RateLimitRequests: 10, RateLimitWindow: time.Minute}, zap.NewNop())

	assert.NotPanics(t, func() {
		m.ProcessWithMiddleware(message("user", 1), func(tgbotapi.Update) {
			panic("boom")
		})
	})
}

func TestMiddleware_RateLimit(t *testing.T) {
	m := New(&config.Config{RateLimitRequests: 1, RateLimitWindow: time.Minute}, zap.NewNop())

	handled := 0
	for range 3 {
		m.ProcessWithMiddleware(message("user", 1), func(tgbotapi.Update) { handled++ })
	}
	assert.Equal(t, 1, handled)
}

func TestAdminOnlyMiddleware(t *testing.T) {
	var denied []int64
	deny := func(chatID int64) { denied = append(denied, chatID) }

	handled := 0
	handler := func(tgbotapi.Update) { handled++ }

	admin := AdminOnlyMiddleware("boss", deny, zap.NewNop())
	admin(message("boss", 1), handler)
	admin(message("guest", 2), handler)

	assert.Equal(t, 1, handled)
	assert.Equal(t, []int64{2}, denied)

	unset := AdminOnlyMiddleware("", deny, zap.NewNop())
	unset(message("", 3), handler)
	assert.Equal(t, 1, handled)
	assert.Equal(t, []int64{2, 3}, denied)
}

func TestGetUserIdentifier(t *testing.T) {
	assert.Equal(t, "unknown", getUserIdentifier(nil))
	assert.Equal(t, "@anna", getUserIdentifier(&tgbotapi.User{UserName: "anna"}))
	assert.Equal(t, "Анна Петрова", getUserIdentifier(&tgbotapi.User{FirstName: "Анна", LastName: "Петрова"}))
	assert.Equal(t, "user_7", getUserIdentifier(&tgbotapi.User{ID: 7}))
}
