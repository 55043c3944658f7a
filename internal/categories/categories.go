// Package categories supplies the bookkeeping category labels offered
// to the extraction model as hints for the debit/credit sides of an
// entry. Labels come from an optional yaml file with a built-in
// default set as fallback.
package categories

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Set holds the label hints for each slot of a journal entry.
type Set struct {
	Debit  []string `yaml:"debit"`
	Credit []string `yaml:"credit"`
	Tax    []string `yaml:"tax"`
}

// defaultSet covers the categories a typical small-business bank
// statement maps onto. The extraction model may still answer with a
// label outside this list; entries are free-form.
var defaultSet = Set{
	Debit: []string{
		"Supplies", "Communication", "Travel", "Utilities", "Rent",
		"Entertainment", "Meeting", "Insurance", "Outsourcing fee",
		"Commission fee", "Books and subscriptions", "Miscellaneous loss",
		"Accounts payable", "Owner's draw",
	},
	Credit: []string{
		"Sales", "Accounts receivable", "Interest income",
		"Miscellaneous income", "Owner's investment", "Ordinary deposit",
	},
	Tax: []string{
		"Taxable purchase 10%", "Taxable purchase 8%", "Taxable sale 10%",
		"Taxable sale 8%", "out of scope",
	},
}

// Load reads a label set from path, or returns the built-in default
// when path is empty. A file that exists but fails to parse is an
// error; a missing file falls back to the default.
func Load(path string) (Set, error) {
	if path == "" {
		return defaultSet, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from user config
	if err != nil {
		if os.IsNotExist(err) {
			return defaultSet, nil
		}
		return Set{}, fmt.Errorf("error reading categories file: %w", err)
	}

	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Set{}, fmt.Errorf("error parsing categories file: %w", err)
	}

	// Partial files inherit the missing slots from the default.
	if len(s.Debit) == 0 {
		s.Debit = defaultSet.Debit
	}
	if len(s.Credit) == 0 {
		s.Credit = defaultSet.Credit
	}
	if len(s.Tax) == 0 {
		s.Tax = defaultSet.Tax
	}

	return s, nil
}

// Default returns the built-in label set.
func Default() Set {
	return defaultSet
}
