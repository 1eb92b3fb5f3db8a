package mailer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingTransport struct {
	mu       sync.Mutex
	sent     []Message
	failures int // fail this many sends before succeeding
}

func (r *recordingTransport) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures > 0 {
		r.failures--
		return errors.New("smtp unavailable")
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingTransport) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func TestQueue_DeliversAndDrainsOnStop(t *testing.T) {
	tr := &recordingTransport{}
	q := NewQueue(tr, nil, QueueConfig{Workers: 3})
	q.Start()

	for i := 0; i < 10; i++ {
		id, err := q.Enqueue(Welcome("s@campus.edu", "Asha", "21CS001"))
		require.NoError(t, err)
		assert.NotEmpty(t, id)
	}

	require.NoError(t, q.Stop(context.Background()))
	assert.Equal(t, 10, tr.count())

	_, err := q.Enqueue(Welcome("s@campus.edu", "Asha", "21CS001"))
	assert.ErrorIs(t, err, ErrQueueClosed)
	assert.NoError(t, q.Stop(context.Background()), "second Stop is a no-op")
}

func TestQueue_Retries(t *testing.T) {
	tr := &recordingTransport{failures: 2}
	q := NewQueue(tr, nil, QueueConfig{Workers: 1, Backoff: time.Millisecond})
	q.Start()

	_, err := q.Enqueue(Welcome("s@campus.edu", "Asha", "21CS001"))
	require.NoError(t, err)
	require.NoError(t, q.Stop(context.Background()))
	assert.Equal(t, 1, tr.count())
}

func TestQueue_GivesUpAfterMaxAttempts(t *testing.T) {
	tr := &recordingTransport{failures: 5}
	q := NewQueue(tr, nil, QueueConfig{Workers: 1, MaxAttempts: 2, Backoff: time.Millisecond})
	q.Start()

	_, err := q.Enqueue(Welcome("s@campus.edu", "Asha", "21CS001"))
	require.NoError(t, err)
	require.NoError(t, q.Stop(context.Background()))
	assert.Equal(t, 0, tr.count())
	assert.Equal(t, 3, tr.failures)
}

func TestQueue_FullBuffer(t *testing.T) {
	tr := &recordingTransport{}
	q := NewQueue(tr, nil, QueueConfig{Buffer: 1})
	// not started, so nothing drains the buffer
	_, err := q.Enqueue(Welcome("a@campus.edu", "A", "1"))
	require.NoError(t, err)
	_, err = q.Enqueue(Welcome("b@campus.edu", "B", "2"))
	assert.ErrorIs(t, err, ErrQueueFull)
	require.NoError(t, q.Stop(context.Background()))
}

func TestQueue_RejectsInvalidMessage(t *testing.T) {
	q := NewQueue(&recordingTransport{}, nil, QueueConfig{})
	_, err := q.Enqueue(Message{Subject: "no one"})
	assert.Error(t, err)
	require.NoError(t, q.Stop(context.Background()))
}

func TestRegistrationConfirmed(t *testing.T) {
	msg := RegistrationConfirmed("s@campus.edu", "Asha <A>", EventInfo{
		Name: "Hackathon", Date: "2026-11-01", Location: "Lab 3",
	}, "0b8f6a52-1a7e-4a0e-9e59-5d8c1f0a3b11")

	assert.Equal(t, []string{"s@campus.edu"}, msg.To)
	assert.Equal(t, "Event Registration Successful", msg.Subject)
	assert.Contains(t, msg.TextBody, "0b8f6a52-1a7e-4a0e-9e59-5d8c1f0a3b11")
	assert.Contains(t, msg.HTMLBody, "Asha &lt;A&gt;")
	assert.False(t, strings.Contains(msg.HTMLBody, "<A>"))
}

func TestEventAnnouncement(t *testing.T) {
	msg := EventAnnouncement("s@campus.edu", EventInfo{Name: "Expo", Date: "2026-12-01", Location: "Ground"})
	assert.Equal(t, "New Event Announcement!", msg.Subject)
	assert.Contains(t, msg.TextBody, "Event Name: Expo")
	assert.NotContains(t, msg.TextBody, "Description:")
}

func TestLogTransport(t *testing.T) {
	assert.NoError(t, LogTransport{}.Send(context.Background(), Welcome("s@campus.edu", "A", "1")))
	assert.Error(t, LogTransport{}.Send(context.Background(), Message{}))
}
