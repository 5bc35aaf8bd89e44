package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestProducerPublish(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, nil)
	p.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

	p.Publish(context.Background(), EventGameFinished, map[string]any{"gameId": "g1", "winner": "human"})
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("g1"), w.msgs[0].Key)

	var e Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &e))
	assert.Equal(t, EventGameFinished, e.Event)
	assert.Equal(t, "human", e.Payload["winner"])
	assert.True(t, p.now().Equal(e.Timestamp))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestProducerWriteFailureIsSwallowed(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := newProducer(w, nil)
	assert.NotPanics(t, func() {
		p.Publish(context.Background(), EventMovePlayed, map[string]any{})
	})
}

func TestNilProducer(t *testing.T) {
	p := NewProducer(nil, "topic", nil)
	assert.Nil(t, p)
	assert.NotPanics(t, func() {
		p.Publish(context.Background(), EventMovePlayed, nil)
	})
	assert.NoError(t, p.Close())
}

func TestTally(t *testing.T) {
	day := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	events := []string{
		`{"event":"game_finished","payload":{"winner":"human","status":"won","moves":7,"duration":12.5}}`,
		`{"event":"game_finished","payload":{"winner":"","status":"tied","moves":42,"duration":30}}`,
		`{"event":"move_played","payload":{"gameId":"x"}}`,
		`{"event":"game_finished","payload":{"winner":"random","status":"won","moves":11}}`,
	}

	tally := NewTally()
	for _, raw := range events {
		var e Event
		require.NoError(t, json.Unmarshal([]byte(raw), &e))
		e.Timestamp = day
		tally.Record(e)
	}

	s := tally.Summary()
	assert.Equal(t, 3, s.TotalGames)
	assert.Equal(t, 1, s.Ties)
	assert.Equal(t, map[string]int{"human": 1, "random": 1}, s.Wins)
	assert.Equal(t, map[string]int{"2026-03-04": 3}, s.GamesPerDay)
	assert.InDelta(t, 20.0, s.AverageMoves, 1e-9)
	assert.InDelta(t, 21.25, s.AverageDuration, 1e-9)
}
