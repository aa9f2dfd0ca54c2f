// Package reconcile partitions help-center articles against the knowledge base.
//
// Articles are joined on the destination record's own id. Source ids are used
// verbatim as destination ids when articles are created, so direct equality of
// the string forms is the join key. Ids are compared byte for byte and missing
// ids share the "" bucket.
package reconcile

import "helpsync/types"

// Compare computes the existing, new and orphaned partitions. Each partition
// keeps the input order of the collection it is drawn from.
func Compare(source []types.SourceArticle, dest []types.DestinationArticle) types.ComparisonResult {
	return CompareWithPrefix(source, dest, "")
}

// CompareWithPrefix matches source ids as idPrefix+id, the form they were
// created with when an id prefix is configured.
func CompareWithPrefix(source []types.SourceArticle, dest []types.DestinationArticle, idPrefix string) types.ComparisonResult {
	sourceKey := func(a types.SourceArticle) string { return idPrefix + a.ID }

	sourceIDs := make(map[string]struct{}, len(source))
	for _, a := range source {
		sourceIDs[sourceKey(a)] = struct{}{}
	}

	// first destination record wins when ids collide
	destByID := make(map[string]types.DestinationArticle, len(dest))
	for _, d := range dest {
		k := d.ID.String()
		if _, seen := destByID[k]; !seen {
			destByID[k] = d
		}
	}

	result := types.ComparisonResult{
		Existing: make([]types.MatchedPair, 0),
		New:      make([]types.SourceArticle, 0),
		Orphaned: make([]types.DestinationArticle, 0),
	}

	for _, a := range source {
		if d, ok := destByID[sourceKey(a)]; ok {
			result.Existing = append(result.Existing, types.MatchedPair{Source: a, Destination: d})
			continue
		}
		result.New = append(result.New, a)
	}

	for _, d := range dest {
		if _, ok := sourceIDs[d.ID.String()]; !ok {
			result.Orphaned = append(result.Orphaned, d)
		}
	}

	return result
}

// SelectNew returns the new articles whose ids are in ids, or all of them when ids is empty
func SelectNew(result types.ComparisonResult, ids []string) []types.SourceArticle {
	if len(ids) == 0 {
		return append([]types.SourceArticle{}, result.New...)
	}
	want := keySet(ids)
	selected := make([]types.SourceArticle, 0, len(ids))
	for _, a := range result.New {
		if _, ok := want[a.ID]; ok {
			selected = append(selected, a)
		}
	}
	return selected
}

// SelectOrphaned returns the orphaned articles whose ids are in ids, or all of them when ids is empty
func SelectOrphaned(result types.ComparisonResult, ids []string) []types.DestinationArticle {
	if len(ids) == 0 {
		return append([]types.DestinationArticle{}, result.Orphaned...)
	}
	want := keySet(ids)
	selected := make([]types.DestinationArticle, 0, len(ids))
	for _, d := range result.Orphaned {
		if _, ok := want[d.ID.String()]; ok {
			selected = append(selected, d)
		}
	}
	return selected
}

func keySet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
