package calllog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"helpsync/types"
)

func TestRingKeepsMostRecent(t *testing.T) {
	r := NewRing[int](3)
	for i := 1; i <= 5; i++ {
		r.Add(i)
	}

	assert.Equal(t, []int{3, 4, 5}, r.Entries())
	assert.Equal(t, 3, r.Len())

	r.Clear()
	assert.Empty(t, r.Entries())
}

func TestRingEntriesIsCopy(t *testing.T) {
	r := NewRing[string](2)
	r.Add("a")

	got := r.Entries()
	got[0] = "mutated"

	assert.Equal(t, []string{"a"}, r.Entries())
}

func TestLogRecordsThroughSink(t *testing.T) {
	log := NewLog(2)
	var sink Sink = log

	for i := 0; i < 3; i++ {
		sink.Record(types.CallLogEntry{Method: "GET", Details: fmt.Sprintf("page %d", i+1)})
	}

	entries := log.Entries()
	assert.Len(t, entries, 2)
	assert.Equal(t, "page 2", entries[0].Details)
	assert.Equal(t, "page 3", entries[1].Details)
}

func TestMultiFansOut(t *testing.T) {
	a := NewLog(10)
	var seen []string
	b := SinkFunc(func(e types.CallLogEntry) { seen = append(seen, e.URL) })

	sink := Multi(a, nil, b)
	sink.Record(types.CallLogEntry{URL: "u1"})
	sink.Record(types.CallLogEntry{URL: "u2"})

	assert.Equal(t, 2, a.Len())
	assert.Equal(t, []string{"u1", "u2"}, seen)
}
