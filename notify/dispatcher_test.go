package notify

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedMail struct {
	to, subject, body string
}

// recorderSender captures sends and signals a WaitGroup so tests can wait for
// the detached goroutines without sleeping.
type recorderSender struct {
	mu   sync.Mutex
	wg   sync.WaitGroup
	sent []recordedMail
	fail bool
}

func (r *recorderSender) Send(to, subject, htmlBody string) error {
	defer r.wg.Done()
	if r.fail {
		return errors.New("smtp unavailable")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, recordedMail{to: to, subject: subject, body: htmlBody})
	return nil
}

func (r *recorderSender) wait(t *testing.T) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dispatches")
	}
}

func TestDispatchSends(t *testing.T) {
	rec := &recorderSender{}
	d := NewDispatcher(rec, nil)

	rec.wg.Add(1)
	d.Dispatch("alice@example.com", "hello", "<p>hi</p>")
	rec.wait(t)

	require.Len(t, rec.sent, 1)
	assert.Equal(t, "alice@example.com", rec.sent[0].to)
	assert.Equal(t, "hello", rec.sent[0].subject)
}

func TestDispatchFailureIsSilent(t *testing.T) {
	rec := &recorderSender{fail: true}
	d := NewDispatcher(rec, nil)

	rec.wg.Add(1)
	d.Dispatch("alice@example.com", "hello", "<p>hi</p>")
	rec.wait(t)

	assert.Empty(t, rec.sent)
}

func TestDispatchComment(t *testing.T) {
	rec := &recorderSender{}
	d := NewDispatcher(rec, nil)

	recipients := []Recipient{
		{Username: "owner", Email: "owner@example.com", Reason: ReasonOwner},
		{Username: "alice", Email: "alice@example.com", Reason: ReasonMention},
	}
	mail := CommentMail{
		Actor:      "carol",
		FileName:   "Acme Rollout",
		EntityName: "Deploy",
		Text:       "ready for review @alice",
		IsReply:    false,
	}

	rec.wg.Add(len(recipients))
	d.DispatchComment(recipients, mail)
	rec.wait(t)

	require.Len(t, rec.sent, 2)
	byTo := map[string]recordedMail{}
	for _, m := range rec.sent {
		byTo[m.to] = m
	}

	ownerMail := byTo["owner@example.com"]
	assert.Equal(t, "New Comment on 'Acme Rollout'", ownerMail.subject)
	assert.Contains(t, ownerMail.body, "Hi owner,")
	assert.Contains(t, ownerMail.body, "carol")

	mentionMail := byTo["alice@example.com"]
	assert.Equal(t, "carol mentioned you on 'Acme Rollout'", mentionMail.subject)
	assert.Contains(t, mentionMail.body, "Hi alice,")
}

func TestDispatchCommentReplyLabels(t *testing.T) {
	rec := &recorderSender{}
	d := NewDispatcher(rec, nil)

	rec.wg.Add(1)
	d.DispatchComment([]Recipient{
		{Username: "owner", Email: "owner@example.com", Reason: ReasonOwner},
	}, CommentMail{Actor: "carol", FileName: "Acme Rollout", EntityName: "Deploy", Text: "done", IsReply: true})
	rec.wait(t)

	require.Len(t, rec.sent, 1)
	assert.Equal(t, "New Reply on 'Acme Rollout'", rec.sent[0].subject)
	assert.True(t, strings.Contains(rec.sent[0].body, "reply"))
}

func TestMentionEmailStripsMarkup(t *testing.T) {
	_, body := mentionEmail("alice", CommentMail{
		Actor:    "carol",
		FileName: "Acme Rollout",
		Text:     `<script>alert("x")</script>hello @alice`,
	})
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "hello @alice")
}

func TestDeadlineEmail(t *testing.T) {
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	subject, body := DeadlineEmail("owner", "Acme Rollout", []DeadlineTask{
		{TaskName: "Deploy - Smoke test", AssignedTo: "alice", DueDate: due, DaysUntil: 1, Progress: 60},
		{TaskName: "Deploy - Sign-off", AssignedTo: "bob", DueDate: due.AddDate(0, 0, 2), DaysUntil: 3, Progress: 10},
	})

	assert.Equal(t, "Upcoming Deadlines in 'Acme Rollout'", subject)
	assert.Contains(t, body, "Deploy - Smoke test")
	assert.Contains(t, body, "#ff0000")
	assert.Contains(t, body, "#ff9900")
	assert.Contains(t, body, "60%")
}
