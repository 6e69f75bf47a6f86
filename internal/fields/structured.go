package fields

import (
	"strings"

	"github.com/dgallion1/ctidoc/internal/ctijson"
	"github.com/dgallion1/ctidoc/internal/schema"
)

var descriptionKeys = []string{"description", "summary", "details", "overview", "abstract"}

// Structured resolves the broader, format-agnostic field set used by the
// comprehensive renderer. Its type comes from schema.ObjectType, not Classify.
func Structured(rec ctijson.Value) Set {
	var s Set
	s.put(Name, first(rec, "name", "threat_actor_name", "title", "label"))
	s.put(ID, first(rec, "id", "mitre_id", "misp_id", "standard_id"))
	s.put(Type, ctijson.StringValue(schema.ObjectType(rec)))
	s.put(Description, ctijson.StringValue(structuredDescription(rec)))
	s.put(Created, first(rec, "created", "date_added", "first_seen", "created_time"))
	s.put(Modified, first(rec, "modified", "last_updated", "last_seen", "updated_time"))
	s.put(Country, rec.Lookup("country"))
	s.put(Attribution, rec.Lookup("attribution"))
	s.put(MalpediaURL, rec.Lookup("malpedia_url"))

	if urls, ok := rec.Get("urls"); ok {
		if !urls.IsArray() {
			urls = ctijson.ArrayValue(urls)
		}
		s.put(URLs, urls)
	} else if url, ok := rec.Get("url"); ok {
		s.put(URLs, ctijson.ArrayValue(url))
	}
	return s
}

// structuredDescription takes the first description-like field that still
// has content after trimming and dropping a leading ": ".
func structuredDescription(rec ctijson.Value) string {
	for _, key := range descriptionKeys {
		v := rec.Lookup(key)
		if !v.Truthy() {
			continue
		}
		desc := strings.TrimPrefix(strings.TrimSpace(v.Text()), ": ")
		if desc != "" {
			return desc
		}
	}
	return ""
}
