// Package testutil provides shared fakes for exercising sync cycles without
// the real schedule host or Discord API.
package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/SebPartof2/stw222-bot/discordapi"
)

// MockScheduleServer serves a schedule document over HTTP for tests.
type MockScheduleServer struct {
	*httptest.Server
	mu     sync.Mutex
	status int
	body   []byte
}

// NewMockScheduleServer starts a server answering every request with the
// configured document. It begins with an empty schedule.
func NewMockScheduleServer(t *testing.T) *MockScheduleServer {
	t.Helper()
	m := &MockScheduleServer{status: http.StatusOK, body: []byte(`{"streams":[]}`)}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		status, body := m.status, m.body
		m.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(m.Close)
	return m
}

// SetDocument responds with the JSON encoding of doc from now on.
func (m *MockScheduleServer) SetDocument(t *testing.T, doc interface{}) {
	t.Helper()
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal schedule document: %v", err)
	}
	m.mu.Lock()
	m.status, m.body = http.StatusOK, b
	m.mu.Unlock()
}

// SetRaw responds with an arbitrary status and body from now on.
func (m *MockScheduleServer) SetRaw(status int, body string) {
	m.mu.Lock()
	m.status, m.body = status, []byte(body)
	m.mu.Unlock()
}

// fakeBulkMaxAge mirrors the API's bulk deletion age ceiling.
const fakeBulkMaxAge = 14 * 24 * time.Hour

// FakeChannel is an in-memory message channel. It serves messages newest
// first like the real API, enforces bulk-delete constraints, and can be
// scripted to fail at chosen points.
type FakeChannel struct {
	mu     sync.Mutex
	msgs   []discordapi.Message
	nextID int64

	// MessagesErr, when set, fails every Messages call.
	MessagesErr error
	// BulkDeleteErr, when set, fails every BulkDelete call.
	BulkDeleteErr error
	// DeleteErrs maps message IDs to errors their individual delete returns.
	DeleteErrs map[string]error
	// FailSendAt fails the Nth Send attempt (1-based). Zero disables.
	FailSendAt int
	// SendErr is the error returned at FailSendAt. Defaults to a 500.
	SendErr error

	SendCount       int
	MessagesCalls   int
	BulkDeleteCalls [][]string
	DeleteCalls     []string
}

// NewFakeChannel returns an empty channel.
func NewFakeChannel() *FakeChannel {
	return &FakeChannel{nextID: 1000}
}

// SeedEmbed inserts a message with an embed footer, created at the given
// time. Use it to lay out pre-existing channel state.
func (fc *FakeChannel) SeedEmbed(footer string, at time.Time) discordapi.Message {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	m := discordapi.Message{
		ID:        fc.newIDLocked(),
		Timestamp: at,
		Embeds:    []discordapi.Embed{{Footer: &discordapi.EmbedFooter{Text: footer}}},
	}
	fc.msgs = append(fc.msgs, m)
	return m
}

// SeedPlain inserts a plain text message (as from a channel member).
func (fc *FakeChannel) SeedPlain(content string, at time.Time) discordapi.Message {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	m := discordapi.Message{ID: fc.newIDLocked(), Timestamp: at, Content: content}
	fc.msgs = append(fc.msgs, m)
	return m
}

func (fc *FakeChannel) newIDLocked() string {
	fc.nextID++
	return strconv.FormatInt(fc.nextID, 10)
}

// Messages returns up to limit messages, newest first.
func (fc *FakeChannel) Messages(ctx context.Context, limit int) ([]discordapi.Message, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.MessagesCalls++
	if fc.MessagesErr != nil {
		return nil, fc.MessagesErr
	}
	sorted := make([]discordapi.Message, len(fc.msgs))
	copy(sorted, fc.msgs)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.After(sorted[j].Timestamp)
		}
		return sorted[i].ID > sorted[j].ID
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

// Send appends a message stamped with the current time.
func (fc *FakeChannel) Send(ctx context.Context, m discordapi.OutgoingMessage) (*discordapi.Message, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.FailSendAt > 0 && fc.SendCount+1 == fc.FailSendAt {
		if fc.SendErr != nil {
			return nil, fc.SendErr
		}
		return nil, &discordapi.APIError{StatusCode: http.StatusInternalServerError, Body: "scripted send failure"}
	}
	fc.SendCount++
	created := discordapi.Message{
		ID:        fc.newIDLocked(),
		Timestamp: time.Now(),
		Content:   m.Content,
		Embeds:    m.Embeds,
	}
	fc.msgs = append(fc.msgs, created)
	return &created, nil
}

// BulkDelete removes the given messages, enforcing the real API's batch size
// and age limits.
func (fc *FakeChannel) BulkDelete(ctx context.Context, ids []string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.BulkDeleteCalls = append(fc.BulkDeleteCalls, append([]string(nil), ids...))
	if fc.BulkDeleteErr != nil {
		return fc.BulkDeleteErr
	}
	if len(ids) < 2 || len(ids) > 100 {
		return &discordapi.APIError{StatusCode: http.StatusBadRequest, Body: "bulk delete batch size out of range"}
	}
	cutoff := time.Now().Add(-fakeBulkMaxAge)
	for _, id := range ids {
		for _, m := range fc.msgs {
			if m.ID == id && !m.Timestamp.After(cutoff) {
				return &discordapi.APIError{StatusCode: http.StatusBadRequest, Body: "message too old for bulk delete"}
			}
		}
	}
	for _, id := range ids {
		fc.removeLocked(id)
	}
	return nil
}

// Delete removes one message, returning a 404 APIError when it is absent.
func (fc *FakeChannel) Delete(ctx context.Context, messageID string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.DeleteCalls = append(fc.DeleteCalls, messageID)
	if err, ok := fc.DeleteErrs[messageID]; ok {
		return err
	}
	if !fc.removeLocked(messageID) {
		return &discordapi.APIError{StatusCode: http.StatusNotFound, Body: "unknown message"}
	}
	return nil
}

func (fc *FakeChannel) removeLocked(id string) bool {
	for i, m := range fc.msgs {
		if m.ID == id {
			fc.msgs = append(fc.msgs[:i], fc.msgs[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of messages currently in the channel.
func (fc *FakeChannel) Len() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return len(fc.msgs)
}

// FooterTexts returns the embed footers of all messages, oldest first.
// Messages without a footer contribute an empty string.
func (fc *FakeChannel) FooterTexts() []string {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	sorted := make([]discordapi.Message, len(fc.msgs))
	copy(sorted, fc.msgs)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		}
		return sorted[i].ID < sorted[j].ID
	})
	out := make([]string, 0, len(sorted))
	for _, m := range sorted {
		out = append(out, m.FooterText())
	}
	return out
}
