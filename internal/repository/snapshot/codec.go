package snapshot

import (
	"errors"
	"fmt"
	"time"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/bennettck/collections-local-sub001/internal/domain/item"
)

var errMalformed = errors.New("malformed snapshot value")

// MUS serializers for persisted values. Lists are a length followed by their
// elements; an empty list decodes as nil.
var (
	metaMUS  mus.Serializer[Meta]        = metaSer{}
	itemsMUS mus.Serializer[[]item.Item] = itemsSer{}
)

func marshal[T any](s mus.Serializer[T], v T) []byte {
	bs := make([]byte, s.Size(v))
	s.Marshal(v, bs)
	return bs
}

// unmarshal decodes bs completely; trailing bytes are an error.
func unmarshal[T any](s mus.Serializer[T], bs []byte) (T, error) {
	v, n, err := s.Unmarshal(bs)
	if err != nil {
		return v, err
	}
	if n != len(bs) {
		var zero T
		return zero, fmt.Errorf("%w: %d trailing bytes", errMalformed, len(bs)-n)
	}
	return v, nil
}

// encoder and decoder thread the byte offset through a sequence of fields.

type encoder struct {
	bs []byte
	n  int
}

func (e *encoder) putInt(v int)     { e.n += varint.PositiveInt.Marshal(v, e.bs[e.n:]) }
func (e *encoder) putInt64(v int64) { e.n += varint.Int64.Marshal(v, e.bs[e.n:]) }
func (e *encoder) putStr(v string)  { e.n += ord.String.Marshal(v, e.bs[e.n:]) }

func (e *encoder) putList(v []string) {
	e.putInt(len(v))
	for _, s := range v {
		e.putStr(s)
	}
}

type decoder struct {
	bs  []byte
	n   int
	err error
}

func (d *decoder) readInt() int {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.PositiveInt.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *decoder) readInt64() int64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *decoder) readStr() string {
	if d.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

// readLen reads a list length. Every element takes at least one byte, so a
// length beyond the remaining input is rejected before allocating.
func (d *decoder) readLen() int {
	l := d.readInt()
	if d.err == nil && (l < 0 || l > len(d.bs)-d.n) {
		d.err = fmt.Errorf("%w: list length %d exceeds input", errMalformed, l)
	}
	if d.err != nil {
		return 0
	}
	return l
}

func (d *decoder) readList() []string {
	l := d.readLen()
	if l == 0 {
		return nil
	}
	out := make([]string, l)
	for i := range out {
		out[i] = d.readStr()
	}
	return out
}

func strSize(v string) int { return ord.String.Size(v) }

func listSize(v []string) int {
	size := varint.PositiveInt.Size(len(v))
	for _, s := range v {
		size += strSize(s)
	}
	return size
}

// timeMicros stores the zero time as 0 so it survives the round trip.
func timeMicros(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func microsTime(us int64) time.Time {
	if us == 0 {
		return time.Time{}
	}
	return time.UnixMicro(us).UTC()
}

type metaSer struct{}

func (metaSer) Marshal(m Meta, bs []byte) int {
	e := encoder{bs: bs}
	e.putInt(m.Version)
	e.putStr(m.Generation)
	e.putInt64(timeMicros(m.BuiltAt))
	e.putInt(m.Count)
	return e.n
}

func (metaSer) Unmarshal(bs []byte) (Meta, int, error) {
	d := decoder{bs: bs}
	m := Meta{
		Version:    d.readInt(),
		Generation: d.readStr(),
		BuiltAt:    microsTime(d.readInt64()),
		Count:      d.readInt(),
	}
	if d.err != nil {
		return Meta{}, d.n, fmt.Errorf("decode snapshot meta: %w", d.err)
	}
	return m, d.n, nil
}

func (metaSer) Size(m Meta) int {
	return varint.PositiveInt.Size(m.Version) +
		strSize(m.Generation) +
		varint.Int64.Size(timeMicros(m.BuiltAt)) +
		varint.PositiveInt.Size(m.Count)
}

func (s metaSer) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}

type itemsSer struct{}

func (itemsSer) Marshal(items []item.Item, bs []byte) int {
	e := encoder{bs: bs}
	e.putInt(len(items))
	for i := range items {
		it := &items[i]
		e.putStr(it.ID)
		e.putStr(it.Category)
		e.putStr(it.Headline)
		e.putStr(it.Summary)
		e.putList(it.ExtractedText)
		e.putList(it.Subcategories)
		e.putStr(it.KeyInterest)
		e.putList(it.Themes)
		e.putList(it.Objects)
		e.putList(it.LocationTags)
		e.putList(it.Emotions)
		e.putList(it.Vibes)
		e.putList(it.Hashtags)
		e.putStr(it.LikelySource)
		e.putStr(it.Attribution)
		e.putList(it.VisualHierarchy)
	}
	return e.n
}

func (itemsSer) Unmarshal(bs []byte) ([]item.Item, int, error) {
	d := decoder{bs: bs}
	l := d.readLen()
	items := make([]item.Item, l)
	for i := 0; i < l && d.err == nil; i++ {
		items[i] = item.Item{
			ID:              d.readStr(),
			Category:        d.readStr(),
			Headline:        d.readStr(),
			Summary:         d.readStr(),
			ExtractedText:   d.readList(),
			Subcategories:   d.readList(),
			KeyInterest:     d.readStr(),
			Themes:          d.readList(),
			Objects:         d.readList(),
			LocationTags:    d.readList(),
			Emotions:        d.readList(),
			Vibes:           d.readList(),
			Hashtags:        d.readList(),
			LikelySource:    d.readStr(),
			Attribution:     d.readStr(),
			VisualHierarchy: d.readList(),
		}
	}
	if d.err != nil {
		return nil, d.n, fmt.Errorf("decode snapshot items: %w", d.err)
	}
	return items, d.n, nil
}

func (itemsSer) Size(items []item.Item) int {
	size := varint.PositiveInt.Size(len(items))
	for i := range items {
		it := &items[i]
		size += strSize(it.ID) + strSize(it.Category) + strSize(it.Headline) + strSize(it.Summary) +
			listSize(it.ExtractedText) + listSize(it.Subcategories) + strSize(it.KeyInterest) +
			listSize(it.Themes) + listSize(it.Objects) + listSize(it.LocationTags) +
			listSize(it.Emotions) + listSize(it.Vibes) + listSize(it.Hashtags) +
			strSize(it.LikelySource) + strSize(it.Attribution) + listSize(it.VisualHierarchy)
	}
	return size
}

func (s itemsSer) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}
