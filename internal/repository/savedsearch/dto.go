package savedsearch

import (
	"encoding/json"
	"net/url"
	"strconv"

	domss "github.com/kailas-cloud/ssbulk/internal/domain/savedsearch"
	"github.com/kailas-cloud/ssbulk/internal/transport/splunk"
)

// entryToDomain converts a REST entry into a domain SavedSearch.
func entryToDomain(e *splunk.Entry) domss.SavedSearch {
	owner := e.ACL.Owner
	if owner == "" {
		owner = e.Author
	}
	return domss.Reconstruct(
		e.Name, e.ACL.App, owner,
		firstNonEmpty(e.Links.Edit, e.Links.Alternate),
		firstNonEmpty(e.Links.List, e.Links.Alternate),
		contentToStrings(e.Content),
	)
}

// contentToStrings renders typed JSON content values as strings. Null values are dropped.
func contentToStrings(content map[string]any) map[string]string {
	m := make(map[string]string, len(content))
	for k, v := range content {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			m[k] = val
		case bool:
			m[k] = strconv.FormatBool(val)
		case float64:
			m[k] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			b, err := json.Marshal(val)
			if err != nil {
				continue
			}
			m[k] = string(b)
		}
	}
	return m
}

// entityPath builds the namespaced path of a saved search when the entry carried no links.
func entityPath(s *domss.SavedSearch) string {
	owner := s.Owner()
	if owner == "" {
		owner = "nobody"
	}
	return "/servicesNS/" + url.PathEscape(owner) + "/" + url.PathEscape(s.App()) +
		"/saved/searches/" + url.PathEscape(s.Name())
}

func editPath(s *domss.SavedSearch) string {
	return firstNonEmpty(s.EditPath(), entityPath(s))
}

func listPath(s *domss.SavedSearch) string {
	return firstNonEmpty(s.ListPath(), entityPath(s))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
