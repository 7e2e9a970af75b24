package osmcodec

import "sort"

// ClassifyNodeTags turns a node's raw tag set into the NodeFields sum
// type §4.8 describes: strip the discarded tags (§6), then attempt the
// single-well-known-tag niche, falling back to the free-form field-pool
// path for anything left. Mapping a free-form key/value pair onto one
// of the schema's structured field shapes (address, contact, color,
// ...) is the `iD` tagging-schema code generator's job, an external
// collaborator per spec §1's scope boundary; this function only does
// what §4.8 itself specifies; callers that already have a structured
// Field (built via whatever schema layer they use) should not use this
// helper.
func ClassifyNodeTags(tags map[string]string) NodeFields {
	working := make(map[string]string, len(tags))
	for k, v := range tags {
		working[k] = v
	}
	RemoveDiscardedTags(working)

	if len(working) == 0 {
		return NodeNoTags{}
	}

	if single, ok := NodeSingleInlinedFromTags(working); ok {
		return NodeSingleTag{Tag: single}
	}

	return NodeMultipleTags{Fields: tagsToOtherFields(working)}
}

// ClassifyFreeformFields strips discarded tags and returns the
// remainder as OtherField values, the fallback path §4.8 describes for
// ways and relations (which have no single-well-known-tag niche).
func ClassifyFreeformFields(tags map[string]string) []Field {
	working := make(map[string]string, len(tags))
	for k, v := range tags {
		working[k] = v
	}
	RemoveDiscardedTags(working)
	return tagsToOtherFields(working)
}

// tagsToOtherFields converts a tag map into OtherField values sorted by
// key, so that two calls with the same tag set always produce the same
// field-pool insertion order (deterministic blob bytes for identical
// input).
func tagsToOtherFields(tags map[string]string) []Field {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, OtherField{
			Key:   LiteralValueFromTag(k),
			Value: LiteralValueFromTag(tags[k]),
		})
	}
	return fields
}
