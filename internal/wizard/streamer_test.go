package wizard

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUTF8SplitterPassesCompleteRunes(t *testing.T) {
	var d utf8Splitter
	assert.Equal(t, "hello", d.feed([]byte("hello")))
	assert.Equal(t, "", d.flush())
}

func TestUTF8SplitterHoldsBackIncompleteRune(t *testing.T) {
	var d utf8Splitter
	raw := []byte("héllo") // é is 0xC3 0xA9

	assert.Equal(t, "h", d.feed(raw[:2]))
	assert.Equal(t, "éllo", d.feed(raw[2:]))
	assert.Equal(t, "", d.flush())
}

func TestUTF8SplitterHandlesMultiByteBoundary(t *testing.T) {
	var d utf8Splitter
	raw := []byte("a€b") // € is three bytes

	out := d.feed(raw[:2])
	assert.Equal(t, "a", out)
	out = d.feed(raw[2:3])
	assert.Equal(t, "", out)
	out = d.feed(raw[3:])
	assert.Equal(t, "€b", out)
}

func TestUTF8SplitterFlushReturnsRemainder(t *testing.T) {
	var d utf8Splitter
	assert.Equal(t, "", d.feed([]byte{0xE2, 0x82}))
	remainder := d.flush()
	assert.Len(t, remainder, 2)
}

func TestUTF8SplitterEmptyFeed(t *testing.T) {
	var d utf8Splitter
	assert.Equal(t, "", d.feed(nil))
	assert.Equal(t, "", d.flush())
}

func TestCoalescerAccumulatesAndFlushes(t *testing.T) {
	var mu sync.Mutex
	var emits []string
	c := newCoalescer(time.Millisecond, func(total string) {
		mu.Lock()
		emits = append(emits, total)
		mu.Unlock()
	})

	c.add(`{"chatgpt":{`)
	c.add(`"nickname":"Sam"`)
	c.add(`}}`)
	c.close()

	assert.Equal(t, `{"chatgpt":{"nickname":"Sam"}}`, c.total())

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, emits)
	assert.Equal(t, `{"chatgpt":{"nickname":"Sam"}}`, emits[len(emits)-1])
	for i := 1; i < len(emits); i++ {
		assert.True(t, len(emits[i]) > len(emits[i-1]), "each emission extends the previous total")
	}
}

func TestCoalescerConsolidatesBursts(t *testing.T) {
	var mu sync.Mutex
	var emits []string
	c := newCoalescer(50*time.Millisecond, func(total string) {
		mu.Lock()
		emits = append(emits, total)
		mu.Unlock()
	})

	for i := 0; i < 100; i++ {
		c.add("x")
	}
	c.close()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, emits)
	assert.Less(t, len(emits), 100, "bursts must be consolidated, not forwarded per delta")
	assert.Len(t, emits[len(emits)-1], 100)
}

func TestCoalescerIgnoresEmptyDeltas(t *testing.T) {
	c := newCoalescer(time.Millisecond, func(string) {
		t.Error("no emission expected for empty deltas")
	})
	c.add("")
	c.close()
	assert.Equal(t, "", c.total())
}
