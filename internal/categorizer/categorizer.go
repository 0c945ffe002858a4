package categorizer

import (
	"fmt"
	"strings"

	"github.com/insightdelivered/statement-scanner/internal/logging"
	"github.com/insightdelivered/statement-scanner/internal/models"
)

// Categorizer suggests categories from learned choices, keyword rules and
// per-type defaults, in that order.
type Categorizer struct {
	store  *Store
	logger logging.Logger
}

func New(store *Store, logger logging.Logger) *Categorizer {
	if logger == nil {
		logger = logging.Nop()
	}
	if store == nil {
		store, _ = OpenStore("", logger)
	}
	return &Categorizer{store: store, logger: logger}
}

// Suggest returns the category to preselect for txn.
func (c *Categorizer) Suggest(txn models.Transaction) string {
	if learned, ok := c.store.Lookup(txn.Merchant); ok {
		return learned
	}
	if txn.Type == models.TypeExpense {
		if category, ok := ruleCategory(txn.Merchant); ok {
			return category
		}
	}
	if d, ok := defaultCategory[txn.Type]; ok {
		return d
	}
	return defaultCategory[models.TypeExpense]
}

// Apply fills SuggestedCategory on every transaction in place.
func (c *Categorizer) Apply(txns []models.Transaction) {
	for i := range txns {
		txns[i].SuggestedCategory = c.Suggest(txns[i])
	}
}

// Learn remembers that merchant belongs to category.
func (c *Categorizer) Learn(merchant, category string) error {
	merchant = strings.TrimSpace(merchant)
	if merchant == "" {
		return fmt.Errorf("merchant must not be empty")
	}
	if !Valid(category) {
		return fmt.Errorf("unknown category %q", category)
	}
	if err := c.store.Set(merchant, category); err != nil {
		return fmt.Errorf("saving learned category: %w", err)
	}
	c.logger.Info("learned category",
		logging.F(logging.FieldMerchant, key(merchant)),
		logging.F(logging.FieldCategory, category))
	return nil
}

// Learned returns a copy of the learning map.
func (c *Categorizer) Learned() map[string]string {
	return c.store.Snapshot()
}
