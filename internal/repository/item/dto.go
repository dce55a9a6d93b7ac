package item

import (
	"encoding/json"
	"fmt"
	"strings"

	domitem "github.com/bennettck/collections-local-sub001/internal/domain/item"
)

// itemDTO is the stored JSON shape of an item's analysis metadata.
type itemDTO struct {
	ID              string     `json:"id,omitempty"`
	Category        string     `json:"category"`
	Headline        string     `json:"headline"`
	Summary         string     `json:"summary"`
	ExtractedText   stringList `json:"extracted_text"`
	Subcategories   stringList `json:"subcategories"`
	KeyInterest     string     `json:"key_interest"`
	Themes          stringList `json:"themes"`
	Objects         stringList `json:"objects"`
	LocationTags    stringList `json:"location_tags"`
	Emotions        stringList `json:"emotions"`
	Vibes           stringList `json:"vibes"`
	Hashtags        stringList `json:"hashtags"`
	LikelySource    string     `json:"likely_source"`
	Attribution     string     `json:"attribution"`
	VisualHierarchy stringList `json:"visual_hierarchy"`
}

// stringList accepts either a JSON array of strings or a single string.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if strings.TrimSpace(one) == "" {
			*l = nil
		} else {
			*l = stringList{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*l = many
	return nil
}

func toDTO(it *domitem.Item) itemDTO {
	return itemDTO{
		ID:              it.ID,
		Category:        it.Category,
		Headline:        it.Headline,
		Summary:         it.Summary,
		ExtractedText:   it.ExtractedText,
		Subcategories:   it.Subcategories,
		KeyInterest:     it.KeyInterest,
		Themes:          it.Themes,
		Objects:         it.Objects,
		LocationTags:    it.LocationTags,
		Emotions:        it.Emotions,
		Vibes:           it.Vibes,
		Hashtags:        it.Hashtags,
		LikelySource:    it.LikelySource,
		Attribution:     it.Attribution,
		VisualHierarchy: it.VisualHierarchy,
	}
}

func (d *itemDTO) toDomain(id string) domitem.Item {
	return domitem.Item{
		ID:              id,
		Category:        d.Category,
		Headline:        d.Headline,
		Summary:         d.Summary,
		ExtractedText:   d.ExtractedText,
		Subcategories:   d.Subcategories,
		KeyInterest:     d.KeyInterest,
		Themes:          d.Themes,
		Objects:         d.Objects,
		LocationTags:    d.LocationTags,
		Emotions:        d.Emotions,
		Vibes:           d.Vibes,
		Hashtags:        d.Hashtags,
		LikelySource:    d.LikelySource,
		Attribution:     d.Attribution,
		VisualHierarchy: d.VisualHierarchy,
	}
}

// decodeItem parses stored metadata. The storage identifier wins over any id in the payload.
func decodeItem(id string, data []byte) (domitem.Item, error) {
	if len(data) == 0 {
		return domitem.Item{}, fmt.Errorf("decode item %s: empty metadata", id)
	}
	var d itemDTO
	if err := json.Unmarshal(data, &d); err != nil {
		return domitem.Item{}, fmt.Errorf("decode item %s: %w", id, err)
	}
	return d.toDomain(id), nil
}

func encodeItem(it *domitem.Item) ([]byte, error) {
	data, err := json.Marshal(toDTO(it))
	if err != nil {
		return nil, fmt.Errorf("encode item %s: %w", it.ID, err)
	}
	return data, nil
}

// DecodeJSON parses one item from its exported JSON form, taking the id from the payload.
func DecodeJSON(data []byte) (domitem.Item, error) {
	var d itemDTO
	if err := json.Unmarshal(data, &d); err != nil {
		return domitem.Item{}, fmt.Errorf("decode item: %w", err)
	}
	it := d.toDomain(d.ID)
	if err := it.Validate(); err != nil {
		return domitem.Item{}, err
	}
	return it, nil
}
