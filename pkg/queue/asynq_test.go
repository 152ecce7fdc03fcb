package queue

import (
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
)

func TestRedisConnOpt(t *testing.T) {
	cases := []struct {
		Name   string
		Given  string
		Expect asynq.RedisClientOpt
	}{
		{"BareAddr", "localhost:6379", asynq.RedisClientOpt{Addr: "localhost:6379"}},
		{"URI", "redis://localhost:6380/2", asynq.RedisClientOpt{Addr: "localhost:6380", DB: 2}},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			conn, err := redisConnOpt(&Options{URL: c.Given})

			assert.Nil(t, err)
			assert.Equal(t, c.Expect, conn)
		})
	}
}

func TestRedisConnOptBadURI(t *testing.T) {
	_, err := redisConnOpt(&Options{URL: "http://localhost"})

	assert.NotNil(t, err)
}

func TestNewDefaultsToPool(t *testing.T) {
	q, err := New(nil)

	assert.Nil(t, err)
	_, ok := q.(*Pool)
	assert.True(t, ok)
	q.Close()
}

func TestAsynqCloseWithoutServer(t *testing.T) {
	q, err := NewAsynqQueue(&Options{URL: "localhost:6379"})
	assert.Nil(t, err)

	assert.Nil(t, q.Close())
	assert.Nil(t, q.Close())
}
