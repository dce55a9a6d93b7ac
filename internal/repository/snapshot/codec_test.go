package snapshot

import (
	"errors"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bennettck/collections-local-sub001/internal/domain/item"
)

func fullItem() item.Item {
	return item.Item{
		ID:              "item-1",
		Category:        "Food",
		Headline:        "Late night ramen",
		Summary:         "A bowl of tonkotsu ramen in Shinjuku",
		ExtractedText:   []string{"ラーメン", "open 24h"},
		Subcategories:   []string{"Japanese"},
		KeyInterest:     "noodles",
		Themes:          []string{"comfort"},
		Objects:         []string{"bowl", "chopsticks"},
		LocationTags:    []string{"Tokyo"},
		Emotions:        []string{"cozy"},
		Vibes:           []string{"neon"},
		Hashtags:        []string{"#ramen"},
		LikelySource:    "instagram",
		Attribution:     "@noodlefan",
		VisualHierarchy: []string{"bowl", "sign"},
	}
}

func TestItemsCodec_RoundTrip(t *testing.T) {
	items := []item.Item{fullItem(), {ID: "sparse", Themes: []string{}}}

	got, err := unmarshal(itemsMUS, marshal(itemsMUS, items))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, items[0], got[0])
	assert.Equal(t, "sparse", got[1].ID)
	assert.Nil(t, got[1].Themes, "empty list decodes as nil")
}

func TestMetaCodec_RoundTrip(t *testing.T) {
	builtAt := time.Date(2026, 5, 4, 10, 0, 0, 123456000, time.UTC)
	meta := Meta{Version: formatVersion, Generation: "gen-1", BuiltAt: builtAt, Count: 42}

	got, err := unmarshal(metaMUS, marshal(metaMUS, meta))
	require.NoError(t, err)
	assert.Equal(t, meta.Generation, got.Generation)
	assert.True(t, builtAt.Equal(got.BuiltAt))
	assert.Equal(t, 42, got.Count)

	zero, err := unmarshal(metaMUS, marshal(metaMUS, Meta{Generation: "g"}))
	require.NoError(t, err)
	assert.True(t, zero.BuiltAt.IsZero())
}

func TestItemsCodec_RejectsTruncated(t *testing.T) {
	bs := marshal(itemsMUS, []item.Item{fullItem()})

	for _, cut := range []int{1, len(bs) / 2, len(bs) - 1} {
		_, err := unmarshal(itemsMUS, bs[:cut])
		assert.Error(t, err, "cut at %d", cut)
	}
}

func TestItemsCodec_RejectsTrailingBytes(t *testing.T) {
	bs := append(marshal(itemsMUS, []item.Item{fullItem()}), 0x00)

	_, err := unmarshal(itemsMUS, bs)
	assert.True(t, errors.Is(err, errMalformed), "got %v", err)
}

func TestItemsCodec_RejectsOversizedLength(t *testing.T) {
	// Varint list length 1<<20 with no elements behind it.
	_, err := unmarshal(itemsMUS, []byte{0x80, 0x80, 0x40})
	assert.True(t, errors.Is(err, errMalformed), "got %v", err)
}

func TestLoad_CorruptItems(t *testing.T) {
	r := openMemory(t)
	require.NoError(t, r.Save(Meta{Generation: "g"}, []item.Item{fullItem()}))

	require.NoError(t, r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(itemsKey, []byte{0x05, 0x01})
	}))

	_, err := r.Load()
	assert.Error(t, err)
}
