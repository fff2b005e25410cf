// Package revenue answers the customer count and contract value questions.
// A customer is a company with at least one closed-won deal.
package revenue

import (
	"sort"
	"strings"

	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dataset/entity"
)

// CustomerLifecycleStage is the contact lifecycle value that marks a customer.
const CustomerLifecycleStage = "customer"

// WonDeals returns the closed-won deals in input order.
func WonDeals(deals []entity.Deal) []entity.Deal {
	var out []entity.Deal
	for _, d := range deals {
		if d.IsClosedWon {
			out = append(out, d)
		}
	}
	return out
}

// CustomerIDs returns the distinct company ids of won deals in order of first
// appearance. Deals without a company id do not create a customer.
func CustomerIDs(deals []entity.Deal) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range WonDeals(deals) {
		if d.CompanyID == "" {
			continue
		}
		if _, ok := seen[d.CompanyID]; ok {
			continue
		}
		seen[d.CompanyID] = struct{}{}
		out = append(out, d.CompanyID)
	}
	return out
}

// Count is one category of a breakdown.
type Count struct {
	Label string
	Value int
}

// Customers is the answer to "how many customers do we have today".
type Customers struct {
	Total      int
	ByCountry  []Count
	ByIndustry []Count
	// ContactCustomers counts distinct companies with a contact in the
	// customer lifecycle stage; used to cross-check Total.
	ContactCustomers int
}

// Mismatch reports whether contacts and deals disagree on the customer count.
func (c Customers) Mismatch() bool { return c.ContactCustomers != c.Total }

func ComputeCustomers(deals []entity.Deal, companies []entity.Company, contacts []entity.Contact) Customers {
	ids := CustomerIDs(deals)
	isCustomer := make(map[string]bool, len(ids))
	for _, id := range ids {
		isCustomer[id] = true
	}

	var customerCos []entity.Company
	for _, c := range companies {
		if isCustomer[c.ID] {
			customerCos = append(customerCos, c)
		}
	}

	return Customers{
		Total:            len(ids),
		ByCountry:        countBy(customerCos, func(c entity.Company) string { return c.Country }),
		ByIndustry:       countBy(customerCos, func(c entity.Company) string { return c.Industry }),
		ContactCustomers: contactCustomers(contacts),
	}
}

// countBy counts companies per category, largest first, ties by label.
// Companies with an empty category are left out.
func countBy(companies []entity.Company, category func(entity.Company) string) []Count {
	counts := make(map[string]int)
	for _, c := range companies {
		if v := category(c); v != "" {
			counts[v]++
		}
	}
	out := make([]Count, 0, len(counts))
	for label, n := range counts {
		out = append(out, Count{Label: label, Value: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func contactCustomers(contacts []entity.Contact) int {
	seen := make(map[string]struct{})
	for _, c := range contacts {
		if c.CompanyID == "" || !strings.EqualFold(c.LifecycleStage, CustomerLifecycleStage) {
			continue
		}
		seen[c.CompanyID] = struct{}{}
	}
	return len(seen)
}
