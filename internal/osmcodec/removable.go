package osmcodec

// discardedTags lists the keys spec §6 says are stripped silently
// during ingest: editor/lifecycle annotations plus legacy importer
// artifacts (tiger/openGeoDB/KSJ2/geobase/gnis and friends) that carry
// no queryable information and would otherwise bloat the field pool
// with unique-per-object garbage.
var discardedTags = []string{
	"source",
	"note",
	"note:ja",
	"note:en",
	"note:city",
	"note:post_town",
	"fixme",
	"comment",

	"KSJ2:curve_id",
	"KSJ2:lat",
	"KSJ2:long",
	"created_by",
	"geobase:datasetName",
	"geobase:uuid",
	"gnis:import_uuid",
	"lat",
	"latitude",
	"lon",
	"longitude",
	"openGeoDB:auto_update",
	"openGeoDB:layer",
	"openGeoDB:version",
	"import_uuid",
	"odbl",
	"odbl:note",
	"sub_sea:type",
	"tiger:separated",
	"tiger:source",
	"tiger:tlid",
	"tiger:upload_uuid",
}

var discardedTagSet = buildDiscardedTagSet()

func buildDiscardedTagSet() map[string]struct{} {
	m := make(map[string]struct{}, len(discardedTags))
	for _, k := range discardedTags {
		m[k] = struct{}{}
	}
	return m
}

// RemoveDiscardedTags deletes every key spec §6 names as discardable
// from tags, in place.
func RemoveDiscardedTags(tags map[string]string) {
	for k := range tags {
		if _, discard := discardedTagSet[k]; discard {
			delete(tags, k)
		}
	}
}
