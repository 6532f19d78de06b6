package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  string
}

func newTestService(config Config, err error) (*Service, *[]sent) {
	var log []sent
	s := NewService(config)
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		log = append(log, sent{addr, a, from, to, string(msg)})
		return err
	}
	return s, &log
}

func TestSend(t *testing.T) {
	s, log := newTestService(Config{Host: "smtp.test", Username: "user", Password: "pw", From: "noreply@campus.test"}, nil)

	err := s.Send(context.Background(), &Email{
		To:      []string{"support@campus.test"},
		ReplyTo: "meera@example.com",
		Subject: "Hello",
		Body:    "<p>Hi</p>",
	})
	require.NoError(t, err)

	require.Len(t, *log, 1)
	got := (*log)[0]
	assert.Equal(t, "smtp.test:587", got.addr)
	assert.NotNil(t, got.auth)
	assert.Equal(t, []string{"support@campus.test"}, got.to)
	assert.Contains(t, got.msg, "Reply-To: meera@example.com\r\n")
	assert.Contains(t, got.msg, "Content-Type: text/html; charset=\"utf-8\"\r\n")
	assert.True(t, strings.HasSuffix(got.msg, "\r\n\r\n<p>Hi</p>"))
}

func TestSend_Errors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		s, log := newTestService(Config{}, nil)
		err := s.Send(context.Background(), &Email{To: []string{"a@b.test"}})
		assert.ErrorIs(t, err, ErrNotConfigured)
		assert.Empty(t, *log)
	})

	t.Run("cancelled", func(t *testing.T) {
		s, log := newTestService(Config{Host: "smtp.test", From: "x@campus.test"}, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := s.Send(ctx, &Email{To: []string{"a@b.test"}})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, *log)
	})

	t.Run("smtp failure", func(t *testing.T) {
		s, _ := newTestService(Config{Host: "smtp.test", From: "x@campus.test"}, errors.New("421 try later"))
		err := s.Send(context.Background(), &Email{To: []string{"a@b.test"}})
		assert.ErrorContains(t, err, "421 try later")
	})
}

func TestContactRequestEmail(t *testing.T) {
	e, err := ContactRequestEmail("support@campus.test", ContactRequestData{
		ID:      "01J0000000000000000000000",
		Name:    "Meera <Shah>",
		Email:   "meera@example.com",
		Phone:   "9876543210",
		Message: "Do you list hostels in Vadodara?",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"support@campus.test"}, e.To)
	assert.Equal(t, "meera@example.com", e.ReplyTo)
	assert.Equal(t, "New Contact Request - General enquiry", e.Subject)
	assert.Contains(t, e.Body, "Do you list hostels in Vadodara?")
	assert.Contains(t, e.Body, "Meera &lt;Shah&gt;")
	assert.Contains(t, e.Body, "<title>New Contact Request - General enquiry</title>")
}
