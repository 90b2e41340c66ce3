package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	b := New[string]()
	a := b.Subscribe(1)
	c := b.Subscribe(0)

	assert.Equal(t, 2, b.Publish("x"))
	assert.Equal(t, "x", <-a)
	assert.Equal(t, "x", <-c)
}

func TestSlowSubscriberDrops(t *testing.T) {
	b := New[int]()
	sub := b.Subscribe(1)
	assert.Equal(t, 1, b.Publish(1))
	assert.Equal(t, 0, b.Publish(2))
	assert.Equal(t, uint64(1), b.Dropped())
	assert.Equal(t, 1, <-sub)
}

func TestUnsubscribe(t *testing.T) {
	b := New[int]()
	sub := b.Subscribe(1)
	other := b.Subscribe(1)
	b.Unsubscribe(sub)

	_, ok := <-sub
	assert.False(t, ok)
	assert.Equal(t, 1, b.Publish(7))
	assert.Equal(t, 7, <-other)
}

func TestClose(t *testing.T) {
	b := New[int]()
	sub := b.Subscribe(1)
	b.Close()
	b.Close()

	_, ok := <-sub
	assert.False(t, ok)
	assert.Equal(t, 0, b.Publish(1))

	late := b.Subscribe(1)
	_, ok = <-late
	require.False(t, ok)
}
