package enrich

import (
	"sort"
)

// Merge assembles a ResultSet from classified features. Containing polygons
// win over nearby duplicates of the same identity; features with no identity
// are never deduplicated. Nearby features come back stably sorted by
// ascending distance.
func Merge(features []AnnotatedFeature) ResultSet {
	var rs ResultSet
	seen := make(map[string]bool)

	for _, f := range features {
		if !f.IsContaining {
			continue
		}
		if f.Identity != "" {
			if seen[f.Identity] {
				continue
			}
			seen[f.Identity] = true
		}
		rs.Containing = append(rs.Containing, f)
	}

	for _, f := range features {
		if f.IsContaining {
			continue
		}
		if f.Identity != "" {
			if seen[f.Identity] {
				continue
			}
			seen[f.Identity] = true
		}
		rs.Nearby = append(rs.Nearby, f)
	}

	sort.SliceStable(rs.Nearby, func(i, j int) bool {
		return rs.Nearby[i].DistanceMiles < rs.Nearby[j].DistanceMiles
	})
	return rs
}
