package audit

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/workforce/auth/session"
	"github.com/kochabx/workforce/log"
)

func TestAuditorDeliversInOrder(t *testing.T) {
	sink := &MemorySink{}
	a := New(8, sink)

	listen := a.SessionListener()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	listen(session.Event{From: session.Anonymous, To: session.Authenticated, Subject: "bob", Reason: session.ReasonLogin, At: at})
	listen(session.Event{From: session.Authenticated, To: session.Anonymous, Subject: "bob", Reason: session.ReasonInactivity, At: at.Add(time.Minute)})
	a.Record(Event{Type: TypeAdmin, Subject: "root", Reason: "delete-user", Detail: map[string]string{"userId": "7"}})

	require.NoError(t, a.Close())
	require.NoError(t, a.Close())

	events := sink.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "login", events[0].Reason)
	assert.Equal(t, map[string]string{"from": "anonymous", "to": "authenticated"}, events[0].Detail)
	assert.Equal(t, "inactivity", events[1].Reason)
	assert.Equal(t, TypeAdmin, events[2].Type)
	assert.False(t, events[2].At.IsZero())

	// 关闭后的记录被忽略
	a.Record(Event{Type: TypeAdmin})
	assert.Len(t, sink.Events(), 3)
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	s := LogSink{Log: log.NewWriter(&buf)}

	require.NoError(t, s.Write(context.Background(), Event{Type: TypeSession, Subject: "bob", Reason: "logout"}))
	assert.Contains(t, buf.String(), `"subject":"bob"`)
	assert.Contains(t, buf.String(), `"reason":"logout"`)
}

func TestOpenDisabledKafka(t *testing.T) {
	a, err := Open(Config{}, nil)
	require.NoError(t, err)
	assert.Len(t, a.sinks, 1)
	require.NoError(t, a.Close())
}
