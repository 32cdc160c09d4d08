package reporting

import (
	"context"
	"sort"

	"github.com/mamadbah2/farmreports/internal/domain/models"
)

// CategorySet derives the selectable categories of a domain. The dedicated
// category list wins; when it is empty, category names are enumerated from
// inventory, usage and transaction records instead.
func (n *Normalizer) CategorySet(ctx context.Context, domain models.Domain) []string {
	set := make(map[string]bool)

	switch domain {
	case models.DomainAnimal:
		addAll(set, asStrings(n.get(ctx, KeyAnimalCategories)))
		if len(set) == 0 {
			addRecordCategories(set, n.LoadInventory(ctx, models.DomainAnimal))
			addRecordCategories(set, n.loadAnimals(ctx))
		}
	case models.DomainFeed:
		addAll(set, asStrings(n.get(ctx, KeyFeedCategories)))
		if len(set) == 0 {
			addRecordCategories(set, n.LoadInventory(ctx, models.DomainFeed))
			addRecordCategories(set, n.loadFeed(ctx))
			addAll(set, n.usageFeedTypes(ctx))
		}
	case models.DomainHealth:
		addRecordCategories(set, n.loadHealth(ctx))
		if len(set) == 0 {
			addAll(set, n.CategorySet(ctx, models.DomainAnimal))
		}
	}

	categories := make([]string, 0, len(set))
	for name := range set {
		categories = append(categories, name)
	}
	sort.Strings(categories)
	return categories
}

func addAll(set map[string]bool, names []string) {
	for _, name := range names {
		if name != "" {
			set[name] = true
		}
	}
}

func addRecordCategories(set map[string]bool, records []models.Record) {
	for _, record := range records {
		for _, name := range []string{record.Category, record.FromCategory, record.ToCategory} {
			if name != "" {
				set[name] = true
			}
		}
	}
}

// usageFeedTypes lists the feed types named inside feedUsageByAnimal entries
// of the {feedType: quantity} shape.
func (n *Normalizer) usageFeedTypes(ctx context.Context) []string {
	value, ok := n.get(ctx, KeyFeedUsageByAnimal).(map[string]any)
	if !ok {
		return nil
	}
	var feeds []string
	for _, animal := range sortedKeys(value) {
		if inner, ok := value[animal].(map[string]any); ok {
			feeds = append(feeds, sortedKeys(inner)...)
		}
	}
	return feeds
}
