package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"adminchat/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	messages []models.Message
	fetchErr error

	fetchCalls []int64
	sent       []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, sinceID int64) ([]models.Message, error) {
	f.fetchCalls = append(f.fetchCalls, sinceID)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []models.Message
	for _, msg := range f.messages {
		if msg.ID > sinceID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (f *fakeFetcher) Send(ctx context.Context, body string) error {
	f.sent = append(f.sent, body)
	nextID := int64(1)
	if n := len(f.messages); n > 0 {
		nextID = f.messages[n-1].ID + 1
	}
	f.messages = append(f.messages, models.Message{
		ID:        nextID,
		Body:      body,
		CreatedAt: time.Now(),
	})
	return nil
}

type recordingRenderer struct {
	events []string
}

func (r *recordingRenderer) RenderDateSeparator(date string) {
	r.events = append(r.events, "--- "+date)
}

func (r *recordingRenderer) RenderMessage(msg models.Message) {
	r.events = append(r.events, msg.Body)
}

func at(day, hour int) time.Time {
	return time.Date(2025, time.March, day, hour, 0, 0, 0, time.Local)
}

func TestPollerStateTransitions(t *testing.T) {
	fetcher := &fakeFetcher{messages: []models.Message{
		{ID: 1, Body: "first", CreatedAt: at(1, 9)},
		{ID: 2, Body: "second", CreatedAt: at(1, 10)},
	}}
	renderer := &recordingRenderer{}
	poller := NewPoller(fetcher, renderer, time.Second)

	assert.Equal(t, StateUninitialized, poller.State())

	require.NoError(t, poller.Poll(context.Background()))
	assert.Equal(t, StateLive, poller.State())
	assert.Equal(t, int64(2), poller.LastID())

	// Первая выборка полная, последующие - от курсора
	require.NoError(t, poller.Poll(context.Background()))
	assert.Equal(t, []int64{0, 2}, fetcher.fetchCalls)
}

func TestPollerFailedFetchKeepsCursor(t *testing.T) {
	fetcher := &fakeFetcher{messages: []models.Message{
		{ID: 1, Body: "first", CreatedAt: at(1, 9)},
	}}
	renderer := &recordingRenderer{}
	poller := NewPoller(fetcher, renderer, time.Second)

	require.NoError(t, poller.Poll(context.Background()))
	require.Equal(t, int64(1), poller.LastID())

	fetcher.fetchErr = errors.New("network down")
	require.Error(t, poller.Poll(context.Background()))
	assert.Equal(t, StateLive, poller.State())
	assert.Equal(t, int64(1), poller.LastID())

	// После восстановления следующий тик догоняет пропущенное
	fetcher.fetchErr = nil
	fetcher.messages = append(fetcher.messages, models.Message{ID: 2, Body: "second", CreatedAt: at(1, 10)})
	require.NoError(t, poller.Poll(context.Background()))
	assert.Equal(t, int64(2), poller.LastID())
	assert.Contains(t, renderer.events, "second")
}

func TestPollerDeduplicatesByID(t *testing.T) {
	fetcher := &fakeFetcher{messages: []models.Message{
		{ID: 1, Body: "first", CreatedAt: at(1, 9)},
		{ID: 2, Body: "second", CreatedAt: at(1, 10)},
	}}
	renderer := &recordingRenderer{}
	poller := NewPoller(fetcher, renderer, time.Second)

	require.NoError(t, poller.Poll(context.Background()))

	// Наложившаяся полная выборка не дублирует отрисованное
	messages, err := fetcher.Fetch(context.Background(), 0)
	require.NoError(t, err)
	poller.Seed(messages)

	assert.Equal(t, []string{"--- Mar 1, 2025", "first", "second"}, renderer.events)
}

func TestPollerDateSeparators(t *testing.T) {
	fetcher := &fakeFetcher{messages: []models.Message{
		{ID: 1, Body: "monday", CreatedAt: at(3, 9)},
		{ID: 2, Body: "still monday", CreatedAt: at(3, 18)},
		{ID: 3, Body: "tuesday", CreatedAt: at(4, 8)},
	}}
	renderer := &recordingRenderer{}
	poller := NewPoller(fetcher, renderer, time.Second)

	require.NoError(t, poller.Poll(context.Background()))

	assert.Equal(t, []string{
		"--- Mar 3, 2025",
		"monday",
		"still monday",
		"--- Mar 4, 2025",
		"tuesday",
	}, renderer.events)
}

func TestPollerSendThenFetch(t *testing.T) {
	fetcher := &fakeFetcher{}
	renderer := &recordingRenderer{}
	poller := NewPoller(fetcher, renderer, time.Second)

	require.NoError(t, poller.Poll(context.Background()))
	require.NoError(t, poller.Send(context.Background(), "hello"))

	// Отправленное сообщение приходит выборкой, не оптимистичной отрисовкой
	assert.Equal(t, []string{"hello"}, fetcher.sent)
	assert.Contains(t, renderer.events, "hello")
	assert.Equal(t, int64(1), poller.LastID())
}

// concurrentFetcher - потокобезопасный транспорт для проверки наложения
// выборок и отправок из разных горутин
type concurrentFetcher struct {
	mu       sync.Mutex
	messages []models.Message
}

func (f *concurrentFetcher) Fetch(ctx context.Context, sinceID int64) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Message
	for _, msg := range f.messages {
		if msg.ID > sinceID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (f *concurrentFetcher) Send(ctx context.Context, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, models.Message{
		ID:        int64(len(f.messages) + 1),
		Body:      body,
		CreatedAt: at(1, 9),
	})
	return nil
}

func TestPollerConcurrentSendAndPoll(t *testing.T) {
	const sends = 50

	fetcher := &concurrentFetcher{}
	renderer := &recordingRenderer{}
	poller := NewPoller(fetcher, renderer, time.Second)

	ctx := context.Background()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < sends; i++ {
			if err := poller.Poll(ctx); err != nil {
				t.Errorf("poll failed: %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < sends; i++ {
			if err := poller.Send(ctx, fmt.Sprintf("message %d", i)); err != nil {
				t.Errorf("send failed: %v", err)
				return
			}
		}
	}()
	wg.Wait()

	require.NoError(t, poller.Poll(ctx))
	assert.Equal(t, int64(sends), poller.LastID())

	// Каждое сообщение отрисовано ровно один раз, несмотря на наложение выборок
	rendered := map[string]int{}
	for _, event := range renderer.events {
		if strings.HasPrefix(event, "--- ") {
			continue
		}
		rendered[event]++
	}
	require.Len(t, rendered, sends)
	for body, count := range rendered {
		assert.Equal(t, 1, count, body)
	}
}

func TestPollerSeedSkipsFullFetch(t *testing.T) {
	fetcher := &fakeFetcher{messages: []models.Message{
		{ID: 1, Body: "first", CreatedAt: at(1, 9)},
		{ID: 2, Body: "second", CreatedAt: at(1, 10)},
	}}
	renderer := &recordingRenderer{}
	poller := NewPoller(fetcher, renderer, time.Second)

	poller.Seed(fetcher.messages)
	assert.Equal(t, StateLive, poller.State())
	assert.Equal(t, int64(2), poller.LastID())

	require.NoError(t, poller.Poll(context.Background()))
	assert.Equal(t, []int64{2}, fetcher.fetchCalls)
}
